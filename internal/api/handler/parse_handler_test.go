package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/pipeline"
	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline = config.PipelineConfig{
		BBoxScale:        1000,
		MaxColumns:       3,
		ColumnGap:        120,
		EdgeRegionHeight: 80,
		EdgeMinRepeats:   2,
	}
	cfg.Segmenter = config.SegmenterConfig{
		HeadingThreshold: 0.75,
		ShortLineBonus:   0.35,
		EmphasisBonus:    0.25,
		TopContactBonus:  0.3,
		TopRegionLines:   5,
		MaxHeadingTokens: 4,
	}
	cfg.ActiveParserVersion = "heuristic-v1"
	return cfg
}

func tokensFromLines(lines ...string) []types.Token {
	var tokens []types.Token
	y := 50
	for _, line := range lines {
		x := 100
		for _, word := range strings.Fields(line) {
			tokens = append(tokens, types.Token{
				Text:   word,
				BBox:   types.BoundingBox{X0: x, Y0: y - 10, X1: x + len(word)*10, Y1: y + 10},
				Page:   1,
				LineID: -1,
			})
			x += len(word)*10 + 10
		}
		y += 40
	}
	return tokens
}

func newTestHandler(t *testing.T) *ParseHandler {
	t.Helper()
	cfg := testConfig()
	parser := pipeline.NewParser(cfg, nil, nil)
	return NewParseHandler(cfg, nil, parser)
}

// TestMD5HexPrefersRawText 原文非空时MD5基于原文，词元无关
func TestMD5HexPrefersRawText(t *testing.T) {
	tokens := tokensFromLines("Jane Doe")
	withTokens := md5Hex("hello world", tokens)
	withoutTokens := md5Hex("hello world", nil)
	assert.Equal(t, withoutTokens, withTokens)
	assert.Len(t, withTokens, 32)
}

// TestMD5HexFallsBackToTokens 原文为空时退化为词元文本拼接
func TestMD5HexFallsBackToTokens(t *testing.T) {
	tokens := tokensFromLines("Jane Doe")
	fromTokens := md5Hex("", tokens)
	assert.Equal(t, md5Hex("Jane Doe", nil), fromTokens)
	assert.NotEqual(t, md5Hex("", nil), fromTokens)
}

// TestSubmissionUUIDDeterministic 同一原文MD5生成同一提交UUID
func TestSubmissionUUIDDeterministic(t *testing.T) {
	md5sum := md5Hex("some resume text", nil)
	first := uuid.NewV5(SubmissionNamespace, md5sum)
	second := uuid.NewV5(SubmissionNamespace, md5sum)
	assert.Equal(t, first.String(), second.String())

	other := uuid.NewV5(SubmissionNamespace, md5Hex("different text", nil))
	assert.NotEqual(t, first.String(), other.String())
}

// TestHandleParseWithoutStorage 无存储后端时解析照常完成，持久化静默跳过
func TestHandleParseWithoutStorage(t *testing.T) {
	h := newTestHandler(t)

	lines := []string{
		"Jane Doe",
		"jane.doe@example.com",
		"Experience",
		"Acme Corp, Software Engineer",
		"March 2019 - March 2024",
	}
	req := &ParseRequest{
		Source:  "resume.pdf",
		RawText: strings.Join(lines, "\n"),
		Tokens:  tokensFromLines(lines...),
		Pages:   1,
	}

	resp, err := h.HandleParse(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Record)

	assert.Equal(t, constants.StatusParsed, resp.Status)
	assert.False(t, resp.Deduplicated)
	assert.Equal(t, "jane.doe@example.com", schema.Deref(resp.Record.Contact.Email))
	assert.Equal(t, uuid.NewV5(SubmissionNamespace, md5Hex(req.RawText, req.Tokens)).String(), resp.SubmissionUUID)
}

// TestHandleParseRejectsEmpty 词元与原文皆空的请求被拒绝
func TestHandleParseRejectsEmpty(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.HandleParse(context.Background(), &ParseRequest{Source: "empty.pdf"})
	assert.Error(t, err)

	_, err = h.HandleParse(context.Background(), nil)
	assert.Error(t, err)
}
