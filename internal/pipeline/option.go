package pipeline

import (
	"time"

	"resume-parser-go/internal/layout"
	"resume-parser-go/internal/refiner"
	"resume-parser-go/internal/segmenter"
)

// Components 管线组件集合
type Components struct {
	Normalizer *layout.Normalizer
	Segmenter  *segmenter.Segmenter
	Refiner    *refiner.Refiner
	Embedder   Embedder
}

// Settings 管线运行设置
type Settings struct {
	// ProcessingTime 处理时刻来源，present类日期和两位年份以此为基准。
	// 测试中注入固定时刻以保证确定性
	ProcessingTime func() time.Time
	// RefineEnabled 是否启用精修门控
	RefineEnabled bool
}

// ComponentOpt 组件选项，仅改变 Components 内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项，仅改变 Settings 内的字段
type SettingOpt func(*Settings)

// WithRefiner 设置精修门控组件
func WithRefiner(r *refiner.Refiner) ComponentOpt {
	return func(c *Components) {
		c.Refiner = r
	}
}

// WithEmbedder 设置词元嵌入组件
func WithEmbedder(e Embedder) ComponentOpt {
	return func(c *Components) {
		c.Embedder = e
	}
}

// WithNormalizer 覆盖默认的布局归一化器
func WithNormalizer(n *layout.Normalizer) ComponentOpt {
	return func(c *Components) {
		c.Normalizer = n
	}
}

// WithSegmenter 覆盖默认的分段器
func WithSegmenter(s *segmenter.Segmenter) ComponentOpt {
	return func(c *Components) {
		c.Segmenter = s
	}
}

// WithProcessingTime 注入处理时刻来源
func WithProcessingTime(fn func() time.Time) SettingOpt {
	return func(s *Settings) {
		s.ProcessingTime = fn
	}
}

// WithRefineEnabled 开关精修门控
func WithRefineEnabled(enabled bool) SettingOpt {
	return func(s *Settings) {
		s.RefineEnabled = enabled
	}
}
