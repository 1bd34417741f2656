package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	appCoreLogger "resume-parser-go/internal/logger"
	"resume-parser-go/internal/outbox"
	"resume-parser-go/internal/pipeline"
	"resume-parser-go/internal/refiner"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"
)

var (
	version     = "1.0.0"            //nolint:gochecknoglobals
	serviceName = "resume-parser-go" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}

	initLogger(cfg)
	glog.Infof("%s v%s 配置加载成功", serviceName, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, &cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("关闭链路追踪失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	var messageRelay *outbox.MessageRelay
	if storageManager.MySQL != nil && storageManager.RabbitMQ != nil {
		messageRelay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ)
		messageRelay.Start()
		glog.Info("发件箱中继已启动")
	}

	parser := pipeline.NewParser(cfg,
		[]pipeline.ComponentOpt{pipeline.WithRefiner(buildRefiner(cfg))},
		nil)
	glog.Info("解析管线初始化成功")

	parseHandler := handler.NewParseHandler(cfg, storageManager, parser)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(requestIDMiddleware())
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, cfg, parseHandler)
	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	if messageRelay != nil {
		messageRelay.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// buildRefiner 按配置构造精修器，未启用或无可用通道时返回禁用实例
func buildRefiner(cfg *config.Config) *refiner.Refiner {
	if !cfg.Refiner.Enabled || cfg.Refiner.Endpoint == "" {
		if cfg.Refiner.Enabled {
			glog.Warn("精修已启用但未配置endpoint，精修将被跳过")
		}
		return refiner.New(nil)
	}

	timeout := config.GetDuration(cfg.Refiner.Timeout, 60*time.Second)
	transport := refiner.NewHTTPTransport(
		cfg.Refiner.Endpoint,
		cfg.Refiner.APIKey,
		cfg.Refiner.MaxTokens,
		cfg.Refiner.Temperature,
		timeout,
	)
	glog.Infof("精修器初始化成功，endpoint: %s", cfg.Refiner.Endpoint)
	return refiner.New(transport)
}

// requestIDMiddleware 为每个请求补齐 X-Request-ID
func requestIDMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		requestID := string(ctx.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Response.Header.Set("X-Request-ID", requestID)
		ctx.Set("request_id", requestID)
		ctx.Next(c)
	}
}

func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	// Hertz 的 hlog 走同一个 zerolog 实例
	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
