package pipeline

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	// ErrIngestFailed 摄取边界失败，向上传播
	ErrIngestFailed = errors.New("文档摄取失败")
	// ErrEmbedFailed 嵌入边界失败，向上传播
	ErrEmbedFailed = errors.New("词元嵌入失败")
	// ErrSegmentFailed 分段阶段的内部不变量违规，致命
	ErrSegmentFailed = errors.New("章节分段失败")
	// ErrEmptyDocument 输入文档为空
	ErrEmptyDocument = errors.New("文档为空")
)

// ParseError 带阶段信息的解析错误
type ParseError struct {
	Source  string
	Stage   string
	BaseErr error
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (阶段:%s, 来源:%s): %s", e.BaseErr, e.Stage, e.Source, e.Detail)
	}
	return fmt.Sprintf("%s (阶段:%s, 来源:%s)", e.BaseErr, e.Stage, e.Source)
}

func (e *ParseError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newParseError(source, stage string, base error, detail string) error {
	return &ParseError{Source: source, Stage: stage, BaseErr: base, Detail: detail}
}
