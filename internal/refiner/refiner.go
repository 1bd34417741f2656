package refiner

import (
	"context"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/schema"
)

// Status 精修结果状态
type Status int

const (
	// StatusAccepted 精修结果通过门控，替换基线
	StatusAccepted Status = iota
	// StatusRejectedByGate 精修结果引入新事实，被门控拒绝
	StatusRejectedByGate
	// StatusUnavailable 精修服务不可用或输出不可解析
	StatusUnavailable
)

// String 状态的可读形式
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejectedByGate:
		return "rejected_by_gate"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Outcome 精修结果
// Record 在 Accepted 时为精修记录，其余状态回落为基线记录
type Outcome struct {
	Status Status
	Record *schema.ResumeRecord
	Reason string
}

// Refiner 精修门控
// 精修永远是增益路径：任何失败都回落到基线，从不向上传播错误
type Refiner struct {
	transport Transport
}

// New 创建精修门控，transport为nil时精修关闭
func New(transport Transport) *Refiner {
	return &Refiner{transport: transport}
}

// Enabled 精修是否可用
func (r *Refiner) Enabled() bool {
	return r != nil && r.transport != nil
}

// Refine 对基线记录执行一次精修
// 基线记录不被修改；候选记录先净化再过无新事实门控
func (r *Refiner) Refine(ctx context.Context, baseline *schema.ResumeRecord, rawText string) Outcome {
	fallback := Outcome{Status: StatusUnavailable, Record: baseline}
	if !r.Enabled() {
		fallback.Reason = "精修通道未配置"
		return fallback
	}

	baselineJSON, err := baseline.ToJSON()
	if err != nil {
		fallback.Reason = "基线序列化失败: " + err.Error()
		logger.Error().Err(err).Msg("精修前基线序列化失败")
		return fallback
	}

	output, err := r.transport.Generate(ctx, BuildPrompt(baselineJSON, rawText))
	if err != nil {
		fallback.Reason = "生成调用失败: " + err.Error()
		logger.Warn().Err(err).Msg("精修调用失败，保留基线")
		return fallback
	}

	jsonStr := extractJSON(output)
	if jsonStr == "" {
		fallback.Reason = "输出中无有效JSON"
		logger.Warn().Str("output", truncate(output, 200)).Msg("精修输出不含JSON，保留基线")
		return fallback
	}

	candidate, err := sanitizePayload(jsonStr)
	if err != nil {
		fallback.Reason = "输出解析失败: " + err.Error()
		logger.Warn().Err(err).Msg("精修输出解析失败，保留基线")
		return fallback
	}
	// meta由管线维护，不接受模型输出
	candidate.Meta = baseline.Meta

	if leaf, ok := checkNoNewFacts(candidate, baseline, rawText); !ok {
		logger.Warn().Str("leaf", truncate(leaf, 120)).Msg("精修结果引入新事实，整体拒绝")
		return Outcome{
			Status: StatusRejectedByGate,
			Record: baseline,
			Reason: "叶子值未见于基线或原文: " + truncate(leaf, 120),
		}
	}

	schema.Coerce(candidate)
	logger.Info().Msg("精修结果通过门控")
	return Outcome{Status: StatusAccepted, Record: candidate}
}
