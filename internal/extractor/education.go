package extractor

import (
	"regexp"
	"strings"
	"time"

	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// 教育经历抽取

var (
	// institutionRe 院校名特征词
	institutionRe = regexp.MustCompile(`(?i)\b(university|college|institute|school|academy|polytechnic)\b`)

	// degreeHeadRe 学位词汇表
	degreeHeadRe = regexp.MustCompile(`(?i)\b(bachelor(?:'s)?|master(?:'s)?|doctor(?:ate)?|ph\.?\s?d\.?|b\.?\s?sc\.?|m\.?\s?sc\.?|b\.?\s?a\.?|m\.?\s?a\.?|b\.?\s?eng\.?|m\.?\s?eng\.?|mba|b\.?\s?tech\.?|m\.?\s?tech\.?|associate|diploma)\b`)

	// gradeRe GPA/成绩，如 "GPA: 3.8/4.0"、"Grade: A"
	gradeRe = regexp.MustCompile(`(?i)\b(?:gpa|grade)\s*[:=]?\s*([0-9]\.?[0-9]*(?:\s*/\s*[0-9.]+)?|[A-F][+\-]?)`)

	// fieldSplitRe 学位与专业的分隔词
	fieldSplitRe = regexp.MustCompile(`(?i)\s+in\s+`)
)

// ExtractEducation 从教育章节抽取教育经历条目
// 以院校行为条目边界分组，字段用词法启发式填充。
// grade 未识别时保持nil，序列化为显式null
func ExtractEducation(span types.SectionSpan, ref time.Time) []schema.Education {
	span = stripHeading(span, isEducationHeading)
	groups := groupEntryLines(span, func(text string) bool {
		return institutionRe.MatchString(text)
	})

	entries := make([]schema.Education, 0, len(groups))
	for _, group := range groups {
		entry := schema.Education{}
		text := strings.Join(group, "\n")

		for _, line := range group {
			if entry.Institution == nil && institutionRe.MatchString(line) {
				entry.Institution = schema.Str(institutionSegment(line))
			}
			if entry.Degree == nil && degreeHeadRe.MatchString(line) {
				degree, field := parseDegreeLine(line)
				entry.Degree = schema.Str(degree)
				entry.FieldOfStudy = schema.Str(field)
			}
			if entry.Location == nil && locationRe.MatchString(strings.TrimSpace(line)) && !institutionRe.MatchString(line) {
				entry.Location = schema.Str(strings.TrimSpace(line))
			}
		}

		if start, end, ok := NormalizeDateRange(text, ref); ok {
			entry.StartDate = schema.Str(start)
			entry.EndDate = schema.Str(end)
		}
		if m := gradeRe.FindStringSubmatch(text); m != nil {
			grade := strings.TrimSpace(m[1])
			entry.Grade = &grade
		}

		if entry.Institution != nil || entry.Degree != nil || entry.StartDate != nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// institutionSegment 取行内包含院校特征词的逗号分段
func institutionSegment(line string) string {
	for _, segment := range strings.Split(line, ",") {
		if institutionRe.MatchString(segment) {
			return strings.TrimSpace(stripDates(segment))
		}
	}
	return strings.TrimSpace(stripDates(line))
}

// parseDegreeLine 从学位行拆出学位与专业
// "Bachelor of Science in Computer Science, State University" ->
// ("Bachelor of Science", "Computer Science")
func parseDegreeLine(line string) (degree, field string) {
	loc := degreeHeadRe.FindStringIndex(line)
	if loc == nil {
		return "", ""
	}
	rest := line[loc[0]:]
	// 先截掉院校等逗号后缀，再按 " in " 拆分专业
	if parts := fieldSplitRe.Split(rest, 2); len(parts) == 2 {
		degree = strings.TrimSpace(strings.TrimRight(parts[0], ",. "))
		field = strings.TrimSpace(firstCommaSegment(stripDates(parts[1])))
		return degree, field
	}
	degree = strings.TrimSpace(strings.TrimRight(firstCommaSegment(stripDates(rest)), ",. "))
	return degree, ""
}

func firstCommaSegment(s string) string {
	return strings.TrimSpace(strings.SplitN(s, ",", 2)[0])
}

// stripDates 去除文本中的日期表达式，避免其混入名称字段
func stripDates(s string) string {
	s = dateMentionRe.ReplaceAllString(s, "")
	return strings.Trim(strings.TrimSpace(s), ",-–— ")
}

func isEducationHeading(text string) bool {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ":："))
	switch norm {
	case "education", "academic background", "academics", "education & training":
		return true
	}
	return false
}

// stripHeading 去掉章节首行的标题行（若识别为标题）
func stripHeading(span types.SectionSpan, isHeading func(string) bool) types.SectionSpan {
	if len(span.Lines) > 1 && len(span.Lines[0].Tokens) <= 4 && isHeading(span.Lines[0].Text()) {
		return types.SectionSpan{Label: span.Label, Lines: span.Lines[1:], Confidence: span.Confidence}
	}
	return span
}

// groupEntryLines 按空行与条目边界谓词将章节行分组
func groupEntryLines(span types.SectionSpan, isBoundary func(text string) bool) [][]string {
	var groups [][]string
	var current []string

	for _, line := range span.Lines {
		text := strings.TrimSpace(line.Text())
		if text == "" {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			continue
		}
		if len(current) > 0 && isBoundary(text) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, text)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
