package types

import "strings"

// BBoxScale 归一化坐标系的刻度，所有边界框坐标都落在 [0, BBoxScale] 区间内
const BBoxScale = 1000

// BoundingBox 归一化到 0-1000 坐标系的词元边界框
type BoundingBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Width 边界框宽度
func (b BoundingBox) Width() int { return b.X1 - b.X0 }

// Height 边界框高度
func (b BoundingBox) Height() int { return b.Y1 - b.Y0 }

// CenterX 边界框水平中心
func (b BoundingBox) CenterX() int { return (b.X0 + b.X1) / 2 }

// CenterY 边界框垂直中心
func (b BoundingBox) CenterY() int { return (b.Y0 + b.Y1) / 2 }

// Token 表示文档中的单个词元，由上游嵌入阶段产出后不再修改
type Token struct {
	Text      string      `json:"text"`
	BBox      BoundingBox `json:"bbox"`
	Embedding []float64   `json:"embedding,omitempty"`
	Page      int         `json:"page"`
	// LineID 上游提供的行号；小于0表示未知，由布局阶段按y坐标推断
	LineID int `json:"line_id"`
	// Column 布局阶段聚类得到的列号
	Column int `json:"column,omitempty"`
}

// Line 同一阅读行上的有序词元序列，由布局归一化阶段产出，下游只读
type Line struct {
	Tokens  []Token `json:"tokens"`
	Page    int     `json:"page"`
	Column  int     `json:"column"`
	YCenter int     `json:"y_center"`
	X0      int     `json:"x0"`
	// Height 行内词元的最大高度，用于分段器的字号/强调信号
	Height int `json:"height"`
}

// Text 拼接行内全部词元文本
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Tokens))
	for _, t := range l.Tokens {
		parts = append(parts, t.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// SectionLabel 简历章节标签
type SectionLabel string

const (
	// SectionContact 联系方式章节
	SectionContact SectionLabel = "contact"
	// SectionEducation 教育经历章节
	SectionEducation SectionLabel = "education"
	// SectionExperience 工作经历章节
	SectionExperience SectionLabel = "experience"
	// SectionSkills 技能章节
	SectionSkills SectionLabel = "skills"
	// SectionCertifications 证书章节
	SectionCertifications SectionLabel = "certifications"
	// SectionProjects 项目经历章节
	SectionProjects SectionLabel = "projects"
	// SectionPublications 论文/出版物章节
	SectionPublications SectionLabel = "publications"
	// SectionLanguages 语言能力章节
	SectionLanguages SectionLabel = "languages"
	// SectionOther 未识别内容章节
	SectionOther SectionLabel = "other"
)

// AllSectionLabels 全部合法章节标签，按习惯的简历顺序排列
var AllSectionLabels = []SectionLabel{
	SectionContact,
	SectionEducation,
	SectionExperience,
	SectionSkills,
	SectionCertifications,
	SectionProjects,
	SectionPublications,
	SectionLanguages,
	SectionOther,
}

// SectionSpan 归属于同一章节标签的连续行区间
// 不变量：全部span按顺序拼接后必须恰好还原原始行序列，不重不漏
type SectionSpan struct {
	Label      SectionLabel `json:"label"`
	Lines      []Line       `json:"lines"`
	Confidence float64      `json:"confidence"`
}

// Text 拼接span内全部行文本，以换行分隔
func (s SectionSpan) Text() string {
	parts := make([]string, 0, len(s.Lines))
	for _, ln := range s.Lines {
		if txt := ln.Text(); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n")
}

// CandidateRecord 单个章节抽取出的松散类型中间结果，仅由所属抽取器写入
type CandidateRecord struct {
	Label SectionLabel `json:"label"`
	// Fields 字段名到原始字符串值的映射
	Fields map[string][]string `json:"fields"`
	// Extra 未被任何字段消费的残余文本
	Extra []string `json:"extra"`
	// Raw 章节原文
	Raw string `json:"raw"`
}

// NewCandidateRecord 创建指定标签的空候选记录
func NewCandidateRecord(label SectionLabel) *CandidateRecord {
	return &CandidateRecord{
		Label:  label,
		Fields: make(map[string][]string),
	}
}

// Add 追加一个字段值
func (c *CandidateRecord) Add(field, value string) {
	if value == "" {
		return
	}
	c.Fields[field] = append(c.Fields[field], value)
}

// First 返回字段的首个值，不存在时返回空串
func (c *CandidateRecord) First(field string) string {
	if vs := c.Fields[field]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Document 摄取边界产出的归一化文档形态，核心管线唯一依赖的输入形状
type Document struct {
	Tokens  []Token `json:"tokens"`
	RawText string  `json:"raw_text"`
	// Source 文档来源标识（文件路径、URL或上传文件名）
	Source string `json:"source"`
	// Pages 页数，0表示未知
	Pages int `json:"pages,omitempty"`
}

// TokenEmbedding 词元与其上下文嵌入向量的关联
type TokenEmbedding struct {
	TokenIndex int       `json:"token_index"`
	Embedding  []float64 `json:"embedding"`
}
