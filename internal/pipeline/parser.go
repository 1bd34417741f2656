package pipeline

import (
	"context"
	"fmt"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/extractor"
	"resume-parser-go/internal/layout"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/refiner"
	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/segmenter"
	"resume-parser-go/internal/types"
)

// Parser 简历解析管线
// 阶段严格前向：嵌入 -> 布局归一化 -> 分段 -> 抽取 -> 去重 -> 校验 -> 可选精修。
// 单文档单线程；精修调用是唯一的挂起点，受超时约束且可取消
type Parser struct {
	components Components
	settings   Settings
}

// Result 单文档的解析结果
type Result struct {
	Record *schema.ResumeRecord
	// Status 处理状态，见 constants 包
	Status string
	// RefineOutcome 精修结果状态，精修未启用时为空
	RefineOutcome string
	Warnings      []string
}

// NewParser 按配置创建管线，组件与设置可被选项覆盖
func NewParser(cfg *config.Config, compOpts []ComponentOpt, setOpts []SettingOpt) *Parser {
	p := &Parser{
		components: Components{
			Normalizer: layout.NewNormalizer(cfg.Pipeline),
			Segmenter:  segmenter.New(cfg.Segmenter),
		},
		settings: Settings{
			ProcessingTime: time.Now,
			RefineEnabled:  cfg.Refiner.Enabled,
		},
	}
	for _, opt := range compOpts {
		opt(&p.components)
	}
	for _, opt := range setOpts {
		opt(&p.settings)
	}
	return p
}

// Parse 解析单个文档
// 输入缺陷就地降级并记入告警；分段覆盖不变量违规是致命错误；
// 精修失败永远回落基线，不向上传播
func (p *Parser) Parse(ctx context.Context, doc *types.Document) (*Result, error) {
	if doc == nil || (len(doc.Tokens) == 0 && doc.RawText == "") {
		return nil, newParseError(sourceOf(doc), "input", ErrEmptyDocument, "")
	}

	ref := p.settings.ProcessingTime()
	start := time.Now()
	var warnings []string

	embeddedCount, err := p.ensureEmbeddings(ctx, doc)
	if err != nil {
		return nil, newParseError(doc.Source, "embed", ErrEmbedFailed, err.Error())
	}

	lines, layoutWarnings, err := p.components.Normalizer.Normalize(doc)
	if err != nil {
		return nil, newParseError(doc.Source, "layout", err, "")
	}
	warnings = append(warnings, layoutWarnings...)

	spans, err := p.components.Segmenter.Segment(lines)
	if err != nil {
		return nil, newParseError(doc.Source, "segment", ErrSegmentFailed, err.Error())
	}

	record := schema.NewResumeRecord(doc.Source)
	extractor.Apply(record, spans, ref)

	coerceWarnings := schema.Coerce(record)
	warnings = append(warnings, coerceWarnings...)
	record.Meta.Warnings = warnings
	record.Meta.Notes = ""
	record.Meta.AppendNote(fmt.Sprintf("tokens=%d", len(doc.Tokens)))
	record.Meta.AppendNote(fmt.Sprintf("embeddings=%d", embeddedCount))
	record.Meta.AppendNote(fmt.Sprintf("warnings=%d", len(warnings)))

	result := &Result{
		Record:   record,
		Status:   constants.StatusParsed,
		Warnings: warnings,
	}

	if p.settings.RefineEnabled && p.components.Refiner.Enabled() {
		outcome := p.components.Refiner.Refine(ctx, record, doc.RawText)
		result.RefineOutcome = outcome.Status.String()
		result.Record = outcome.Record
		switch outcome.Status {
		case refiner.StatusAccepted:
			result.Status = constants.StatusRefined
		case refiner.StatusRejectedByGate:
			result.Status = constants.StatusRefineRejected
		case refiner.StatusUnavailable:
			result.Status = constants.StatusRefineUnavailable
		}
	}

	logger.Info().
		Str("source", doc.Source).
		Str("status", result.Status).
		Int("warnings", len(warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("文档解析完成")

	return result, nil
}

// ParseBytes 经摄取边界解析原始文档字节
// 摄取失败包装为 ErrIngestFailed 向上传播，不产生部分结果
func (p *Parser) ParseBytes(ctx context.Context, ing Ingestor, data []byte, filename string) (*Result, error) {
	doc, err := ing.Ingest(ctx, data, filename)
	if err != nil {
		return nil, newParseError(filename, "ingest", ErrIngestFailed, err.Error())
	}
	return p.Parse(ctx, doc)
}

// ensureEmbeddings 为缺少嵌入的词元补算向量，返回持有嵌入的词元数
// 嵌入组件未配置时跳过，不是错误
func (p *Parser) ensureEmbeddings(ctx context.Context, doc *types.Document) (int, error) {
	count := 0
	var missing []int
	for i := range doc.Tokens {
		if len(doc.Tokens[i].Embedding) > 0 {
			count++
		} else {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 || p.components.Embedder == nil {
		return count, nil
	}

	texts := make([]string, len(missing))
	for i, idx := range missing {
		texts[i] = doc.Tokens[idx].Text
	}
	vectors, err := p.components.Embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return count, fmt.Errorf("嵌入调用失败: %w", err)
	}
	if len(vectors) != len(missing) {
		return count, fmt.Errorf("嵌入数量不匹配: 期望%d, 实际%d", len(missing), len(vectors))
	}
	for i, idx := range missing {
		doc.Tokens[idx].Embedding = vectors[i]
		count++
	}
	return count, nil
}

func sourceOf(doc *types.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Source
}
