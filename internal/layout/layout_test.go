package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		BBoxScale:        1000,
		MaxColumns:       3,
		ColumnGap:        120,
		EdgeRegionHeight: 80,
		EdgeMinRepeats:   2,
	}
}

func tok(text string, x0, y0, x1, y1, page int) types.Token {
	return types.Token{
		Text:   text,
		BBox:   types.BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1},
		Page:   page,
		LineID: -1,
	}
}

// TestNormalizeDropsDegenerateBoxes 退化边界框被剔除并产生告警
func TestNormalizeDropsDegenerateBoxes(t *testing.T) {
	n := NewNormalizer(testPipelineConfig())
	doc := &types.Document{
		Source: "test.pdf",
		Tokens: []types.Token{
			tok("valid", 100, 200, 160, 220, 1),
			tok("zerowidth", 300, 200, 300, 220, 1),
		},
	}

	lines, warnings, err := n.Normalize(doc)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "退化")
	require.Len(t, lines, 1)
	assert.Equal(t, "valid", lines[0].Text())
}

// TestNormalizeClampsCoordinates 越界坐标被钳制到归一化区间
func TestNormalizeClampsCoordinates(t *testing.T) {
	n := NewNormalizer(testPipelineConfig())
	doc := &types.Document{
		Source: "test.pdf",
		Tokens: []types.Token{tok("edge", -50, 200, 1200, 220, 1)},
	}

	lines, _, err := n.Normalize(doc)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	b := lines[0].Tokens[0].BBox
	assert.Equal(t, 0, b.X0)
	assert.Equal(t, 1000, b.X1)
}

// TestNormalizeReadingOrder 同行词元按X0排序，行按垂直位置排序
func TestNormalizeReadingOrder(t *testing.T) {
	n := NewNormalizer(testPipelineConfig())
	doc := &types.Document{
		Source: "test.pdf",
		Tokens: []types.Token{
			tok("Doe", 160, 100, 220, 120, 1),
			tok("Engineer", 100, 200, 220, 220, 1),
			tok("Jane", 100, 100, 150, 120, 1),
		},
	}

	lines, _, err := n.Normalize(doc)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Jane Doe", lines[0].Text())
	assert.Equal(t, "Engineer", lines[1].Text())
}

// TestNormalizeIdempotent 同一输入重复归一化产出相同行序列
func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(testPipelineConfig())
	doc := &types.Document{
		Source: "test.pdf",
		Tokens: []types.Token{
			tok("Skills", 100, 300, 180, 320, 1),
			tok("Python", 100, 340, 170, 360, 1),
			tok("Go", 180, 340, 210, 360, 1),
		},
	}

	first, _, err := n.Normalize(doc)
	require.NoError(t, err)
	second, _, err := n.Normalize(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestColumnClustering 水平间距超过阈值的词元被分到不同列
func TestColumnClustering(t *testing.T) {
	n := NewNormalizer(testPipelineConfig())
	doc := &types.Document{
		Source: "test.pdf",
		Tokens: []types.Token{
			tok("Left", 50, 100, 150, 120, 1),
			tok("Right", 600, 100, 700, 120, 1),
		},
	}

	lines, _, err := n.Normalize(doc)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 0, lines[0].Column)
	assert.Equal(t, 1, lines[1].Column)
}

// TestStripRepeatedEdges 跨页重复的页眉行被剔除
func TestStripRepeatedEdges(t *testing.T) {
	n := NewNormalizer(testPipelineConfig())
	doc := &types.Document{
		Source: "test.pdf",
		Tokens: []types.Token{
			tok("Confidential", 100, 10, 260, 30, 1),
			tok("Body", 100, 400, 160, 420, 1),
			tok("Confidential", 100, 10, 260, 30, 2),
			tok("More", 100, 400, 160, 420, 2),
		},
		Pages: 2,
	}

	lines, warnings, err := n.Normalize(doc)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, ln := range lines {
		assert.NotEqual(t, "Confidential", ln.Text())
	}
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "页眉/页脚")
}

// TestUpstreamLineIDsRespected 上游行号优先于y聚类
func TestUpstreamLineIDsRespected(t *testing.T) {
	n := NewNormalizer(testPipelineConfig())
	t1 := tok("Alpha", 100, 100, 160, 120, 1)
	t1.LineID = 1
	t2 := tok("Beta", 170, 102, 230, 122, 1)
	t2.LineID = 2
	doc := &types.Document{Source: "test.pdf", Tokens: []types.Token{t1, t2}}

	lines, _, err := n.Normalize(doc)
	require.NoError(t, err)
	// y中心几乎相同，但行号不同，必须保持两行
	assert.Len(t, lines, 2)
}
