package layout

import (
	"fmt"
	"sort"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"
)

// Normalizer 布局归一化器
// 接收上游嵌入阶段产出的词元流，输出稳定阅读顺序的行序列。
// 同一词元流重复归一化产出相同结果。
type Normalizer struct {
	cfg config.PipelineConfig
}

// NewNormalizer 创建布局归一化器
func NewNormalizer(cfg config.PipelineConfig) *Normalizer {
	if cfg.BBoxScale <= 0 {
		cfg.BBoxScale = types.BBoxScale
	}
	return &Normalizer{cfg: cfg}
}

// Normalize 执行完整的布局归一化流程
// 返回阅读顺序的行序列与过程中产生的告警
func (n *Normalizer) Normalize(doc *types.Document) ([]types.Line, []string, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("文档为空")
	}

	var warnings []string
	tokens, tokenWarnings := n.sanitizeTokens(doc.Tokens)
	warnings = append(warnings, tokenWarnings...)

	if len(tokens) == 0 {
		logger.Warn().Str("source", doc.Source).Msg("归一化后无有效词元")
		return []types.Line{}, warnings, nil
	}

	tokens = n.assignColumns(tokens)
	lines := n.buildLines(tokens)
	lines, edgeWarnings := n.stripRepeatedEdges(lines)
	warnings = append(warnings, edgeWarnings...)

	logger.Debug().
		Str("source", doc.Source).
		Int("tokens", len(tokens)).
		Int("lines", len(lines)).
		Msg("布局归一化完成")

	return lines, warnings, nil
}

// sanitizeTokens 坐标钳制与退化框剔除
// 反转坐标先交换修正，宽或高仍不为正的框视为退化，剔除并告警
func (n *Normalizer) sanitizeTokens(tokens []types.Token) ([]types.Token, []string) {
	scale := n.cfg.BBoxScale
	var warnings []string
	result := make([]types.Token, 0, len(tokens))

	for i, tok := range tokens {
		b := tok.BBox
		if b.X0 > b.X1 {
			b.X0, b.X1 = b.X1, b.X0
		}
		if b.Y0 > b.Y1 {
			b.Y0, b.Y1 = b.Y1, b.Y0
		}
		b.X0 = clamp(b.X0, 0, scale)
		b.Y0 = clamp(b.Y0, 0, scale)
		b.X1 = clamp(b.X1, 0, scale)
		b.Y1 = clamp(b.Y1, 0, scale)

		if b.Width() <= 0 || b.Height() <= 0 {
			warnings = append(warnings, fmt.Sprintf("词元[%d] %q 边界框退化，已剔除", i, tok.Text))
			continue
		}
		if tok.Text == "" {
			continue
		}
		tok.BBox = b
		result = append(result, tok)
	}
	return result, warnings
}

// assignColumns 按水平位置将每页词元聚类为列
// 词元按X0排序后，与当前列右边界的间距超过阈值时开启新列，
// 列数达到上限后归入最后一列
func (n *Normalizer) assignColumns(tokens []types.Token) []types.Token {
	byPage := make(map[int][]int)
	for i := range tokens {
		byPage[tokens[i].Page] = append(byPage[tokens[i].Page], i)
	}

	for _, idxs := range byPage {
		sort.SliceStable(idxs, func(a, b int) bool {
			return tokens[idxs[a]].BBox.X0 < tokens[idxs[b]].BBox.X0
		})

		column := 0
		rightEdge := -1
		for _, idx := range idxs {
			tok := &tokens[idx]
			if rightEdge >= 0 && tok.BBox.X0-rightEdge > n.cfg.ColumnGap && column < n.cfg.MaxColumns-1 {
				column++
				rightEdge = tok.BBox.X1
			} else if tok.BBox.X1 > rightEdge {
				rightEdge = tok.BBox.X1
			}
			tok.Column = column
		}
	}
	return tokens
}

// lineKey 行分组键
type lineKey struct {
	page   int
	column int
	lineID int
}

// buildLines 将词元聚合为行
// 上游给出行号时直接分组；未知行号按垂直中心近邻聚类。
// 行序: 页 -> 列 -> 垂直中心 -> 左边界，行内词元按X0排序
func (n *Normalizer) buildLines(tokens []types.Token) []types.Line {
	groups := make(map[lineKey][]types.Token)
	// 行号未知的词元按(页,列)分桶后做y聚类
	var unassigned []types.Token

	for _, tok := range tokens {
		if tok.LineID >= 0 {
			key := lineKey{page: tok.Page, column: tok.Column, lineID: tok.LineID}
			groups[key] = append(groups[key], tok)
		} else {
			unassigned = append(unassigned, tok)
		}
	}

	synthetic := n.clusterByYCenter(unassigned)
	lines := make([]types.Line, 0, len(groups)+len(synthetic))
	for _, toks := range groups {
		lines = append(lines, makeLine(toks))
	}
	lines = append(lines, synthetic...)

	sort.SliceStable(lines, func(a, b int) bool {
		if lines[a].Page != lines[b].Page {
			return lines[a].Page < lines[b].Page
		}
		if lines[a].Column != lines[b].Column {
			return lines[a].Column < lines[b].Column
		}
		if lines[a].YCenter != lines[b].YCenter {
			return lines[a].YCenter < lines[b].YCenter
		}
		return lines[a].X0 < lines[b].X0
	})
	return lines
}

// clusterByYCenter 对无行号词元做垂直中心近邻聚类
// 同(页,列)内垂直中心差小于词元高度一半的词元归入同一行
func (n *Normalizer) clusterByYCenter(tokens []types.Token) []types.Line {
	if len(tokens) == 0 {
		return nil
	}
	sort.SliceStable(tokens, func(a, b int) bool {
		if tokens[a].Page != tokens[b].Page {
			return tokens[a].Page < tokens[b].Page
		}
		if tokens[a].Column != tokens[b].Column {
			return tokens[a].Column < tokens[b].Column
		}
		return tokens[a].BBox.CenterY() < tokens[b].BBox.CenterY()
	})

	var lines []types.Line
	var current []types.Token
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, makeLine(current))
			current = nil
		}
	}

	for _, tok := range tokens {
		if len(current) == 0 {
			current = append(current, tok)
			continue
		}
		last := current[len(current)-1]
		sameGroup := tok.Page == last.Page && tok.Column == last.Column
		threshold := maxInt(tok.BBox.Height(), last.BBox.Height()) / 2
		if threshold < 1 {
			threshold = 1
		}
		if sameGroup && absInt(tok.BBox.CenterY()-last.BBox.CenterY()) <= threshold {
			current = append(current, tok)
		} else {
			flush()
			current = append(current, tok)
		}
	}
	flush()
	return lines
}

// makeLine 从词元组构建行，行内按X0排序
func makeLine(toks []types.Token) types.Line {
	sort.SliceStable(toks, func(a, b int) bool {
		return toks[a].BBox.X0 < toks[b].BBox.X0
	})
	ySum := 0
	height := 0
	x0 := toks[0].BBox.X0
	for _, t := range toks {
		ySum += t.BBox.CenterY()
		if h := t.BBox.Height(); h > height {
			height = h
		}
		if t.BBox.X0 < x0 {
			x0 = t.BBox.X0
		}
	}
	return types.Line{
		Tokens:  toks,
		Page:    toks[0].Page,
		Column:  toks[0].Column,
		YCenter: ySum / len(toks),
		X0:      x0,
		Height:  height,
	}
}

// stripRepeatedEdges 剔除跨页重复的页眉/页脚行
// 位于页面顶部或底部边缘区域、且相同文本在多页出现达到阈值的行被移除
func (n *Normalizer) stripRepeatedEdges(lines []types.Line) ([]types.Line, []string) {
	if n.cfg.EdgeMinRepeats <= 0 {
		return lines, nil
	}

	// 统计边缘区域行文本出现在多少个不同页面
	pagesByText := make(map[string]map[int]bool)
	for _, ln := range lines {
		if !n.inEdgeRegion(ln) {
			continue
		}
		text := ln.Text()
		if text == "" {
			continue
		}
		if pagesByText[text] == nil {
			pagesByText[text] = make(map[int]bool)
		}
		pagesByText[text][ln.Page] = true
	}

	var warnings []string
	result := make([]types.Line, 0, len(lines))
	removed := make(map[string]bool)
	for _, ln := range lines {
		text := ln.Text()
		if n.inEdgeRegion(ln) && len(pagesByText[text]) >= n.cfg.EdgeMinRepeats {
			if !removed[text] {
				warnings = append(warnings, fmt.Sprintf("页眉/页脚行已剔除: %q", text))
				removed[text] = true
			}
			continue
		}
		result = append(result, ln)
	}
	return result, warnings
}

// inEdgeRegion 判断行是否落在页面顶部或底部边缘区域
func (n *Normalizer) inEdgeRegion(ln types.Line) bool {
	edge := n.cfg.EdgeRegionHeight
	if edge <= 0 {
		return false
	}
	return ln.YCenter < edge || ln.YCenter > n.cfg.BBoxScale-edge
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
