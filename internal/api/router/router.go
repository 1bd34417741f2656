package router

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/storage"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, parseHandler *handler.ParseHandler) {
	api := h.Group("/api/v1")

	if len(cfg.Server.APIKeys) > 0 {
		api.Use(apiKeyMiddleware(cfg.Server.APIKeys))
	}

	api.POST("/resume/parse", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ParseRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}

		resp, err := parseHandler.HandleParse(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/resume/:uuid", func(c context.Context, ctx *app.RequestContext) {
		submissionUUID := ctx.Param("uuid")
		if submissionUUID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少提交UUID"})
			return
		}

		resp, err := parseHandler.HandleGet(c, submissionUUID)
		if err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "解析结果不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查不走鉴权
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// apiKeyMiddleware 基于 X-API-Key 请求头的静态密钥鉴权
func apiKeyMiddleware(keys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:X-API-Key", ""),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			_, ok := allowed[key]
			return ok, nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.JSON(consts.StatusUnauthorized, utils.H{"error": "无效的API密钥"})
			c.Abort()
		}),
	)
}
