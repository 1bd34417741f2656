package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

func testSegmenterConfig() config.SegmenterConfig {
	return config.SegmenterConfig{
		HeadingThreshold: 0.75,
		ShortLineBonus:   0.35,
		EmphasisBonus:    0.25,
		TopContactBonus:  0.3,
		TopRegionLines:   5,
		MaxHeadingTokens: 4,
	}
}

// makeLine 按词拆分文本构造测试行
func makeLine(text string, y, height int) types.Line {
	words := []types.Token{}
	x := 100
	for _, w := range splitWords(text) {
		words = append(words, types.Token{
			Text: w,
			BBox: types.BoundingBox{X0: x, Y0: y - height/2, X1: x + len(w)*10, Y1: y + height/2},
			Page: 1,
		})
		x += len(w)*10 + 10
	}
	return types.Line{Tokens: words, Page: 1, YCenter: y, X0: 100, Height: height}
}

func splitWords(text string) []string {
	var words []string
	current := ""
	for _, r := range text {
		if r == ' ' {
			if current != "" {
				words = append(words, current)
				current = ""
			}
			continue
		}
		current += string(r)
	}
	if current != "" {
		words = append(words, current)
	}
	return words
}

// TestSegmentBasicResume 标准简历切分出期望的章节序列
func TestSegmentBasicResume(t *testing.T) {
	s := New(testSegmenterConfig())
	lines := []types.Line{
		makeLine("Jane Doe", 50, 24),
		makeLine("jane.doe@example.com", 80, 16),
		makeLine("Education", 120, 20),
		makeLine("State University", 150, 16),
		makeLine("Experience", 200, 20),
		makeLine("Acme Corp", 230, 16),
		makeLine("Skills", 280, 20),
		makeLine("Python, Go", 310, 16),
	}

	spans, err := s.Segment(lines)
	require.NoError(t, err)
	require.Len(t, spans, 4)
	assert.Equal(t, types.SectionContact, spans[0].Label)
	assert.Equal(t, types.SectionEducation, spans[1].Label)
	assert.Equal(t, types.SectionExperience, spans[2].Label)
	assert.Equal(t, types.SectionSkills, spans[3].Label)
	// 标题行归属新章节
	assert.Equal(t, "Education State University", spans[1].Lines[0].Text()+" "+spans[1].Lines[1].Text())
}

// TestSegmentCoverageInvariant 区间顺序拼接恰好还原输入行序列
func TestSegmentCoverageInvariant(t *testing.T) {
	s := New(testSegmenterConfig())
	lines := []types.Line{
		makeLine("John Smith", 50, 20),
		makeLine("Employment History", 100, 20),
		makeLine("Engineer at Acme", 130, 16),
		makeLine("Skills", 180, 20),
		makeLine("Go", 210, 16),
	}

	spans, err := s.Segment(lines)
	require.NoError(t, err)

	var flattened []types.Line
	for _, span := range spans {
		flattened = append(flattened, span.Lines...)
	}
	require.Len(t, flattened, len(lines))
	for i := range lines {
		assert.Equal(t, lines[i].Text(), flattened[i].Text(), "第%d行", i)
	}
}

// TestSegmentEmploymentHistorySynonym "Employment History"识别为experience章节
func TestSegmentEmploymentHistorySynonym(t *testing.T) {
	s := New(testSegmenterConfig())
	lines := []types.Line{
		makeLine("Jane Doe", 50, 20),
		makeLine("Employment History", 100, 20),
		makeLine("Acme Corp", 130, 16),
	}

	spans, err := s.Segment(lines)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, types.SectionExperience, spans[1].Label)
}

// TestSegmentKeywordInLongLineNotHeading 关键词出现在长句中不构成章节边界
func TestSegmentKeywordInLongLineNotHeading(t *testing.T) {
	s := New(testSegmenterConfig())
	lines := []types.Line{
		makeLine("Jane Doe", 50, 20),
		makeLine("Ten years of professional software experience in backend", 100, 16),
	}

	spans, err := s.Segment(lines)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, types.SectionContact, spans[0].Label)
}

// TestSegmentHeadingWithColon 标题尾部冒号被归一化掉
func TestSegmentHeadingWithColon(t *testing.T) {
	s := New(testSegmenterConfig())
	lines := []types.Line{
		makeLine("Jane Doe", 50, 20),
		makeLine("SKILLS:", 100, 20),
		makeLine("Python", 130, 16),
	}

	spans, err := s.Segment(lines)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, types.SectionSkills, spans[1].Label)
}

// TestSegmentLeadingBlockIsContact 首个标题之前的全部行归属contact
func TestSegmentLeadingBlockIsContact(t *testing.T) {
	s := New(testSegmenterConfig())
	lines := []types.Line{
		makeLine("Jane Doe", 50, 20),
		makeLine("jane@example.com +1 555 0100", 80, 16),
		makeLine("San Francisco CA", 110, 16),
	}

	spans, err := s.Segment(lines)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, types.SectionContact, spans[0].Label)
	assert.Len(t, spans[0].Lines, 3)
}

// TestSegmentEmptyInput 空输入返回空区间而非错误
func TestSegmentEmptyInput(t *testing.T) {
	s := New(testSegmenterConfig())
	spans, err := s.Segment(nil)
	require.NoError(t, err)
	assert.Empty(t, spans)
}

// TestSegmentExactMatchWins 平局时更精确的匹配优先
func TestSegmentExactMatchWins(t *testing.T) {
	s := New(testSegmenterConfig())
	lines := []types.Line{
		makeLine("Jane Doe", 50, 20),
		makeLine("Work Experience", 100, 20),
	}

	spans, err := s.Segment(lines)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, types.SectionExperience, spans[1].Label)
}
