package handler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/pipeline"
	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

var handlerTracer = otel.Tracer("resume-parser-go/api/handler")

// SubmissionNamespace 提交UUID的命名空间
// 同一原文的提交UUID确定，天然幂等
var SubmissionNamespace = uuid.NewV5(uuid.NamespaceDNS, "resume-parser-go/submission")

// ParseHandler 简历解析接口处理器
type ParseHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	parser  *pipeline.Parser
}

// NewParseHandler 创建解析处理器
func NewParseHandler(cfg *config.Config, st *storage.Storage, parser *pipeline.Parser) *ParseHandler {
	return &ParseHandler{cfg: cfg, storage: st, parser: parser}
}

// ParseRequest 解析请求体
// 调用方提交上游嵌入阶段产出的词元流与全文
type ParseRequest struct {
	Source        string        `json:"source"`
	SourceChannel string        `json:"source_channel,omitempty"`
	RawText       string        `json:"raw_text"`
	Tokens        []types.Token `json:"tokens"`
	Pages         int           `json:"pages,omitempty"`
}

// ParseResponse 解析响应体
type ParseResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
	// Deduplicated 原文MD5命中既有提交时为true，未重新解析
	Deduplicated bool                 `json:"deduplicated,omitempty"`
	WarningCount int                  `json:"warning_count"`
	Record       *schema.ResumeRecord `json:"record"`
}

// HandleParse 处理一次解析提交
// 原文MD5命中既有提交时直接返回既有结果；否则执行解析管线并持久化
func (h *ParseHandler) HandleParse(ctx context.Context, req *ParseRequest) (*ParseResponse, error) {
	if req == nil || (len(req.Tokens) == 0 && strings.TrimSpace(req.RawText) == "") {
		return nil, fmt.Errorf("请求缺少词元与原文")
	}

	ctx, span := handlerTracer.Start(ctx, "handler.HandleParse")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.source", tracing.SafeAttributeValue("source", req.Source, tracing.DefaultMaxLength)),
		attribute.String("resume.raw_text", tracing.SafeRawText(req.RawText)),
		attribute.Int("resume.tokens", len(req.Tokens)),
	)

	rawMD5 := md5Hex(req.RawText, req.Tokens)
	submissionUUID := uuid.NewV5(SubmissionNamespace, rawMD5).String()

	if existing := h.lookupExisting(ctx, rawMD5); existing != nil {
		logger.Info().Str("submission_uuid", existing.SubmissionUUID).Msg("原文MD5命中既有提交")
		return existing, nil
	}

	doc := &types.Document{
		Tokens:  req.Tokens,
		RawText: req.RawText,
		Source:  req.Source,
		Pages:   req.Pages,
	}
	result, err := h.parser.Parse(ctx, doc)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypePipeline)
		return nil, err
	}

	recordJSON, err := result.Record.ToJSON()
	if err != nil {
		return nil, err
	}

	channel := req.SourceChannel
	if channel == "" {
		channel = constants.SourceChannelUpload
	}
	h.persist(ctx, submissionUUID, rawMD5, channel, req, result, recordJSON)

	return &ParseResponse{
		SubmissionUUID: submissionUUID,
		Status:         result.Status,
		WarningCount:   len(result.Warnings),
		Record:         result.Record,
	}, nil
}

// HandleGet 按提交UUID查询解析结果，先查缓存再落库
func (h *ParseHandler) HandleGet(ctx context.Context, submissionUUID string) (*ParseResponse, error) {
	if h.storage == nil {
		return nil, fmt.Errorf("存储未配置，无法查询历史结果")
	}

	if h.storage.Redis != nil {
		if data, err := h.storage.Redis.GetCachedRecord(ctx, submissionUUID); err == nil {
			record, err := schema.FromJSON(data)
			if err == nil {
				return &ParseResponse{SubmissionUUID: submissionUUID, Record: record}, nil
			}
		}
	}

	if h.storage.MySQL == nil {
		// 无数据库时退到对象存储中的记录JSON
		if h.storage.MinIO != nil {
			data, err := h.storage.MinIO.GetRecordJSON(ctx, submissionUUID)
			if err != nil {
				return nil, storage.ErrRecordNotFound
			}
			record, err := schema.FromJSON(data)
			if err != nil {
				return nil, fmt.Errorf("反序列化历史记录失败: %w", err)
			}
			return &ParseResponse{SubmissionUUID: submissionUUID, Record: record}, nil
		}
		return nil, storage.ErrRecordNotFound
	}
	row, err := h.storage.MySQL.GetParseResult(ctx, submissionUUID)
	if err != nil {
		return nil, err
	}
	record, err := schema.FromJSON(row.RecordJSON)
	if err != nil {
		return nil, fmt.Errorf("反序列化历史记录失败: %w", err)
	}
	return &ParseResponse{
		SubmissionUUID: row.SubmissionUUID,
		Status:         row.Status,
		WarningCount:   row.WarningCount,
		Record:         record,
	}, nil
}

// lookupExisting 按原文MD5查询既有提交，未命中返回nil
func (h *ParseHandler) lookupExisting(ctx context.Context, rawMD5 string) *ParseResponse {
	if h.storage == nil {
		return nil
	}
	var existingUUID string
	if h.storage.Redis != nil {
		if u, err := h.storage.Redis.LookupMD5(ctx, rawMD5); err == nil && u != "" {
			existingUUID = u
		}
	}
	if existingUUID == "" && h.storage.MySQL != nil {
		if row, err := h.storage.MySQL.FindByRawTextMD5(ctx, rawMD5); err == nil {
			existingUUID = row.SubmissionUUID
		}
	}
	if existingUUID == "" {
		return nil
	}

	resp, err := h.HandleGet(ctx, existingUUID)
	if err != nil {
		logger.Warn().Err(err).Str("submission_uuid", existingUUID).Msg("读取既有提交失败，按新提交处理")
		return nil
	}
	resp.Deduplicated = true
	return resp
}

// persist 持久化解析结果到各已配置后端
// 持久化失败降级为日志，不影响响应
func (h *ParseHandler) persist(ctx context.Context, submissionUUID, rawMD5, channel string, req *ParseRequest, result *pipeline.Result, recordJSON []byte) {
	if h.storage == nil {
		return
	}

	event := &storage.ParsedEvent{
		SubmissionUUID: submissionUUID,
		Source:         result.Record.Meta.Source,
		Status:         result.Status,
		WarningCount:   len(result.Warnings),
		ParserVersion:  h.cfg.ActiveParserVersion,
	}

	// MySQL可用时事件走发件箱，与解析结果同事务落库，由中继异步发布
	eventQueued := false
	if h.storage.MySQL != nil {
		row := &models.ParseResult{
			SubmissionUUID: submissionUUID,
			Source:         result.Record.Meta.Source,
			RawTextMD5:     rawMD5,
			RecordJSON:     recordJSON,
			Status:         result.Status,
			ParserVersion:  h.cfg.ActiveParserVersion,
			WarningCount:   len(result.Warnings),
			SourceChannel:  channel,
		}
		outboxMsg := h.buildOutboxMessage(submissionUUID, event)
		if err := h.storage.MySQL.SaveParseResultWithOutbox(ctx, row, outboxMsg); err != nil {
			logger.Error().Err(err).Msg("解析结果落库失败")
		} else {
			eventQueued = outboxMsg != nil
		}
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.RegisterMD5(ctx, rawMD5, submissionUUID); err != nil {
			logger.Warn().Err(err).Msg("写入MD5去重缓存失败")
		}
		if err := h.storage.Redis.CacheRecord(ctx, submissionUUID, recordJSON); err != nil {
			logger.Warn().Err(err).Msg("缓存解析结果失败")
		}
	}

	if h.storage.MinIO != nil {
		// 提交的原始词元流留档，便于版本升级后重解析
		if docJSON, err := json.Marshal(req); err == nil {
			if _, err := h.storage.MinIO.PutOriginal(ctx, submissionUUID, "document.json", docJSON, "application/json"); err != nil {
				logger.Warn().Err(err).Msg("原始文档上传对象存储失败")
			}
		}
		if _, err := h.storage.MinIO.PutRecordJSON(ctx, submissionUUID, recordJSON); err != nil {
			logger.Warn().Err(err).Msg("解析结果JSON上传对象存储失败")
		}
	}

	// 无发件箱兜底时直接发布
	if !eventQueued && h.storage.RabbitMQ != nil {
		if err := h.storage.RabbitMQ.PublishParsedEvent(ctx, event); err != nil {
			logger.Warn().Err(err).Msg("解析事件发布失败")
		}
	}
}

// buildOutboxMessage 构造发件箱事件行，消息队列未配置时返回nil
func (h *ParseHandler) buildOutboxMessage(submissionUUID string, event *storage.ParsedEvent) *models.OutboxMessage {
	if h.storage.RabbitMQ == nil && h.cfg.RabbitMQ.URL == "" {
		return nil
	}

	payload, err := storage.MarshalParsedEvent(event)
	if err != nil {
		logger.Warn().Err(err).Msg("序列化解析事件失败，跳过发件箱")
		return nil
	}

	exchange := h.cfg.RabbitMQ.ParseEventsExchange
	routingKey := h.cfg.RabbitMQ.ParsedRoutingKey
	if h.storage.RabbitMQ != nil {
		exchange = h.storage.RabbitMQ.Exchange()
		routingKey = h.storage.RabbitMQ.ParsedRoutingKey()
	}

	return &models.OutboxMessage{
		AggregateID:      submissionUUID,
		EventType:        routingKey,
		Payload:          string(payload),
		TargetExchange:   exchange,
		TargetRoutingKey: routingKey,
		Status:           models.OutboxStatusPending,
	}
}

// md5Hex 原文MD5；原文为空时退化为词元文本拼接的MD5
func md5Hex(rawText string, tokens []types.Token) string {
	source := rawText
	if strings.TrimSpace(source) == "" {
		parts := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			parts = append(parts, tok.Text)
		}
		source = strings.Join(parts, " ")
	}
	sum := md5.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}
