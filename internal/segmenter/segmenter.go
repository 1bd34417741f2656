package segmenter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"
)

// ErrSpanCoverage 分段结果违反覆盖不变量（拼接后无法还原原始行序列）
// 属于内部错误，必须中止解析，不可降级为告警
var ErrSpanCoverage = errors.New("章节区间未能完整覆盖行序列")

// Segmenter 词典驱动的章节分段器
// 将阅读顺序的行序列切分为带标签的连续区间。
// 评分常量为经验值；覆盖不变量与平局规则是硬性契约。
type Segmenter struct {
	cfg     config.SegmenterConfig
	lexicon map[types.SectionLabel][]config.KeywordRule
}

// New 创建分段器，词典为空时使用内置默认词典
func New(cfg config.SegmenterConfig) *Segmenter {
	lex := cfg.Lexicon
	if len(lex) == 0 {
		lex = config.DefaultLexicon()
	}
	compiled := make(map[types.SectionLabel][]config.KeywordRule, len(lex))
	for label, rules := range lex {
		compiled[types.SectionLabel(label)] = rules
	}
	return &Segmenter{cfg: cfg, lexicon: compiled}
}

// headingCandidate 一行上的标题候选
type headingCandidate struct {
	label   types.SectionLabel
	score   float64
	keyword string
	// closeness 关键词长度与行文本长度之差，越小匹配越精确
	closeness int
	// keywordTokens 关键词的词数，平局时词数多者优先
	keywordTokens int
}

// Segment 将行序列切分为章节区间
// 第一个识别出的标题之前的所有行归属contact。
// 返回前校验覆盖不变量，违反时返回 ErrSpanCoverage
func (s *Segmenter) Segment(lines []types.Line) ([]types.SectionSpan, error) {
	if len(lines) == 0 {
		return []types.SectionSpan{}, nil
	}

	medianHeight := medianLineHeight(lines)

	spans := make([]types.SectionSpan, 0, 8)
	current := types.SectionSpan{Label: types.SectionContact, Confidence: 0.5}

	for i, line := range lines {
		cand := s.scoreLine(line, i, medianHeight, current.Label)
		if cand != nil && cand.score > s.cfg.HeadingThreshold && cand.label != current.Label {
			if len(current.Lines) > 0 {
				spans = append(spans, current)
			}
			conf := cand.score
			if conf > 1.0 {
				conf = 1.0
			}
			current = types.SectionSpan{Label: cand.label, Confidence: conf}
			logger.Debug().
				Str("label", string(cand.label)).
				Str("keyword", cand.keyword).
				Float64("score", cand.score).
				Msg("识别到章节标题")
		}
		current.Lines = append(current.Lines, line)
	}
	if len(current.Lines) > 0 {
		spans = append(spans, current)
	}

	if err := validateCoverage(lines, spans); err != nil {
		return nil, err
	}
	return spans, nil
}

// scoreLine 对单行做标题评分，返回最优候选；非标题行返回nil
// 得分 = 词典匹配权重 + 短行加分 + 行高强调加分 + 顶部contact位置加分。
// 平局规则: 匹配更精确者 -> 关键词词数更多者 -> 保持当前标签
func (s *Segmenter) scoreLine(line types.Line, index, medianHeight int, currentLabel types.SectionLabel) *headingCandidate {
	if len(line.Tokens) == 0 || len(line.Tokens) > s.cfg.MaxHeadingTokens {
		return nil
	}
	text := normalizeHeading(line.Text())
	if text == "" {
		return nil
	}

	var bonus float64
	bonus += s.cfg.ShortLineBonus
	if medianHeight > 0 && line.Height > medianHeight {
		bonus += s.cfg.EmphasisBonus
	}

	var candidates []headingCandidate
	for label, rules := range s.lexicon {
		for _, rule := range rules {
			if !matchKeyword(text, rule.Keyword) {
				continue
			}
			score := rule.Weight + bonus
			if label == types.SectionContact && index < s.cfg.TopRegionLines {
				score += s.cfg.TopContactBonus
			}
			candidates = append(candidates, headingCandidate{
				label:         label,
				score:         score,
				keyword:       rule.Keyword,
				closeness:     absInt(len(text) - len(rule.Keyword)),
				keywordTokens: len(strings.Fields(rule.Keyword)),
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.score != cb.score {
			return ca.score > cb.score
		}
		if ca.closeness != cb.closeness {
			return ca.closeness < cb.closeness
		}
		if ca.keywordTokens != cb.keywordTokens {
			return ca.keywordTokens > cb.keywordTokens
		}
		// 全部平局时保持当前标签，避免无谓的章节切换
		return ca.label == currentLabel && cb.label != currentLabel
	})
	return &candidates[0]
}

// matchKeyword 标题文本与关键词的匹配判定
// 完全相等，或文本以关键词开头/结尾（词边界对齐）
func matchKeyword(text, keyword string) bool {
	if text == keyword {
		return true
	}
	if strings.HasPrefix(text, keyword+" ") || strings.HasSuffix(text, " "+keyword) {
		return true
	}
	return false
}

// normalizeHeading 标题文本归一化：小写、去两端空白、去尾部冒号等符号、压缩空白
func normalizeHeading(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimRight(text, ":：.-–—")
	return strings.Join(strings.Fields(text), " ")
}

// validateCoverage 校验覆盖不变量：区间顺序拼接必须恰好还原输入行序列
func validateCoverage(lines []types.Line, spans []types.SectionSpan) error {
	total := 0
	for _, span := range spans {
		total += len(span.Lines)
	}
	if total != len(lines) {
		return fmt.Errorf("%w: 输入%d行, 区间合计%d行", ErrSpanCoverage, len(lines), total)
	}
	idx := 0
	for _, span := range spans {
		for _, ln := range span.Lines {
			if ln.Page != lines[idx].Page || ln.YCenter != lines[idx].YCenter || ln.X0 != lines[idx].X0 {
				return fmt.Errorf("%w: 第%d行顺序不一致", ErrSpanCoverage, idx)
			}
			idx++
		}
	}
	return nil
}

// medianLineHeight 行高中位数，作为字号/强调信号的基准
func medianLineHeight(lines []types.Line) int {
	heights := make([]int, 0, len(lines))
	for _, ln := range lines {
		if ln.Height > 0 {
			heights = append(heights, ln.Height)
		}
	}
	if len(heights) == 0 {
		return 0
	}
	sort.Ints(heights)
	return heights[len(heights)/2]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
