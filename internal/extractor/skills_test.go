package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// spanFromLines 由纯文本行构造测试用章节区间
func spanFromLines(label types.SectionLabel, texts ...string) types.SectionSpan {
	span := types.SectionSpan{Label: label, Confidence: 1.0}
	for i, text := range texts {
		var toks []types.Token
		x := 100
		for _, w := range splitOnSpace(text) {
			toks = append(toks, types.Token{
				Text: w,
				BBox: types.BoundingBox{X0: x, Y0: 100 + i*30, X1: x + len(w)*10, Y1: 120 + i*30},
				Page: 1,
			})
			x += len(w)*10 + 10
		}
		span.Lines = append(span.Lines, types.Line{
			Tokens: toks, Page: 1, YCenter: 110 + i*30, X0: 100, Height: 20,
		})
	}
	return span
}

func splitOnSpace(text string) []string {
	var words []string
	current := ""
	for _, r := range text {
		if r == ' ' {
			if current != "" {
				words = append(words, current)
			}
			current = ""
			continue
		}
		current += string(r)
	}
	if current != "" {
		words = append(words, current)
	}
	return words
}

// TestExtractSkillsSplitting 技能列表按分隔符拆分，长片段被丢弃
func TestExtractSkillsSplitting(t *testing.T) {
	span := spanFromLines(types.SectionSkills,
		"Skills",
		"Python, Go; Kubernetes / Docker • Terraform",
	)
	skills := ExtractSkills(span)
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Python", "Go", "Kubernetes", "Docker", "Terraform"}, names)
}

// TestExtractSkillsCategoryPrefix 类别前缀行为后续技能填充类别
func TestExtractSkillsCategoryPrefix(t *testing.T) {
	span := spanFromLines(types.SectionSkills,
		"Skills",
		"Programming: Python, Go",
	)
	skills := ExtractSkills(span)
	require.Len(t, skills, 2)
	assert.Equal(t, "Programming", schema.Deref(skills[0].Category))
	assert.Equal(t, "Programming", schema.Deref(skills[1].Category))
}

// TestDedupSkillsCaseFold 大小写与空白差异的重复被合并，首见写法保留
func TestDedupSkillsCaseFold(t *testing.T) {
	skills := []schema.Skill{
		{Name: "Python"},
		{Name: "PYTHON", Category: schema.Str("Scripting")},
		{Name: "machine  learning"},
		{Name: "Machine Learning"},
	}
	deduped := DedupSkills(skills)
	require.Len(t, deduped, 2)
	assert.Equal(t, "Python", deduped[0].Name)
	// 后续重复项的类别补全首见条目
	assert.Equal(t, "Scripting", schema.Deref(deduped[0].Category))
	assert.Equal(t, "machine  learning", deduped[1].Name)
}

// TestDedupSkillsConvergent 去重结果再次去重是恒等操作
func TestDedupSkillsConvergent(t *testing.T) {
	skills := []schema.Skill{
		{Name: "Python"},
		{Name: "PYTHON (Scripting)"},
		{Name: "Go"},
		{Name: "go"},
	}
	once := DedupSkills(skills)
	twice := DedupSkills(once)
	assert.Equal(t, once, twice)
}

// TestExtractSkillsParentheticalCategory 括号内容作为类别从名称剥离
func TestExtractSkillsParentheticalCategory(t *testing.T) {
	span := spanFromLines(types.SectionSkills,
		"Skills",
		"Python (Scripting), Go",
	)
	skills := ExtractSkills(span)
	require.Len(t, skills, 2)
	assert.Equal(t, "Python", skills[0].Name)
	assert.Equal(t, "Scripting", schema.Deref(skills[0].Category))
	assert.Nil(t, skills[1].Category)
}

// TestExtractAndDedupPythonScripting 抽取+去重后 Python/PYTHON (Scripting) 收敛为一条
func TestExtractAndDedupPythonScripting(t *testing.T) {
	span := spanFromLines(types.SectionSkills,
		"Skills",
		"Python, PYTHON (Scripting)",
	)
	deduped := DedupSkills(ExtractSkills(span))
	require.Len(t, deduped, 1)
	assert.Equal(t, "Python", deduped[0].Name)
	assert.Equal(t, "Scripting", schema.Deref(deduped[0].Category))
}
