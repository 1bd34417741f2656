package extractor

import (
	"regexp"
	"strings"
	"time"

	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// 证书、项目、出版物、语言及兜底章节的抽取

// issuerSepRe 证书名与颁发机构的分隔
var issuerSepRe = regexp.MustCompile(`\s+[\-–—|]\s+|,\s+|(?i)\s+by\s+`)

// ExtractCertifications 从证书章节抽取条目，一行一个证书
func ExtractCertifications(span types.SectionSpan, ref time.Time) []schema.Certification {
	span = stripHeading(span, isCertificationsHeading)

	var entries []schema.Certification
	for _, line := range span.Lines {
		text := strings.TrimSpace(bulletPrefixRe.ReplaceAllString(line.Text(), ""))
		if text == "" {
			continue
		}

		entry := schema.Certification{}
		if dates := ExtractDates(text, ref); len(dates) > 0 {
			entry.Date = schema.Str(dates[0])
		}
		text = stripDates(text)
		parts := issuerSepRe.Split(text, 2)
		entry.Name = schema.Str(strings.TrimSpace(parts[0]))
		if len(parts) == 2 {
			entry.Issuer = schema.Str(strings.TrimSpace(parts[1]))
		}
		if entry.Name != nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

func isCertificationsHeading(text string) bool {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ":："))
	switch norm {
	case "certifications", "certification", "licenses", "licenses & certifications", "certificates":
		return true
	}
	return false
}

// techLineRe 项目技术栈行，如 "Technologies: Go, Redis"
var techLineRe = regexp.MustCompile(`(?i)^(?:technologies|tech stack|stack|tech|built with)\s*[:：]\s*(.+)$`)

// nameRoleSepRe 项目名与角色的分隔符
var nameRoleSepRe = regexp.MustCompile(`\s+[\-–—|]\s+`)

// ExtractProjects 从项目章节抽取条目
// 以非列表符号的标题行分组；组内首行为项目名，技术栈行单独解析，
// 其余行合并为描述
func ExtractProjects(span types.SectionSpan, ref time.Time) []schema.Project {
	span = stripHeading(span, isProjectsHeading)
	groups := groupEntryLines(span, func(text string) bool {
		return !bulletPrefixRe.MatchString(text) && !techLineRe.MatchString(text)
	})

	entries := make([]schema.Project, 0, len(groups))
	for _, group := range groups {
		entry := schema.Project{Technologies: []string{}}
		var description []string

		for i, raw := range group {
			text := strings.TrimSpace(raw)
			if m := techLineRe.FindStringSubmatch(text); m != nil {
				for _, frag := range skillSplitRe.Split(m[1], -1) {
					if item := strings.TrimSpace(frag); item != "" {
						entry.Technologies = append(entry.Technologies, item)
					}
				}
				continue
			}
			if i == 0 {
				if start, end, ok := NormalizeDateRange(text, ref); ok {
					entry.StartDate = schema.Str(start)
					entry.EndDate = schema.Str(end)
				}
				name := stripDates(bulletPrefixRe.ReplaceAllString(text, ""))
				// "名称 — 角色" 形式
				if parts := nameRoleSepRe.Split(name, 2); len(parts) == 2 {
					entry.Name = schema.Str(strings.TrimSpace(parts[0]))
					entry.Role = schema.Str(strings.TrimSpace(parts[1]))
				} else {
					entry.Name = schema.Str(strings.TrimSpace(name))
				}
				continue
			}
			item := strings.TrimSpace(bulletPrefixRe.ReplaceAllString(text, ""))
			if item != "" {
				description = append(description, item)
			}
		}

		if len(description) > 0 {
			entry.Description = schema.Str(strings.Join(description, " "))
		}
		if entry.Name != nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

func isProjectsHeading(text string) bool {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ":："))
	switch norm {
	case "projects", "personal projects", "selected projects", "portfolio":
		return true
	}
	return false
}

// venueRe 出版物载体特征词
var venueRe = regexp.MustCompile(`(?i)\b(journal|proceedings|conference|transactions|ieee|acm|arxiv|press|review)\b`)

// quotedTitleRe 引号括起的出版物标题
var quotedTitleRe = regexp.MustCompile(`["“]([^"”]+)["”]`)

// ExtractPublications 从出版物章节抽取条目，一行一条
func ExtractPublications(span types.SectionSpan, ref time.Time) []schema.Publication {
	span = stripHeading(span, isPublicationsHeading)

	var entries []schema.Publication
	for _, line := range span.Lines {
		text := strings.TrimSpace(bulletPrefixRe.ReplaceAllString(line.Text(), ""))
		if text == "" {
			continue
		}

		entry := schema.Publication{}
		if dates := ExtractDates(text, ref); len(dates) > 0 {
			entry.Date = schema.Str(dates[0])
		}
		text = stripDates(text)

		// 引号内为标题；否则首个逗号分段为标题
		if m := quotedTitleRe.FindStringSubmatch(text); m != nil {
			entry.Title = schema.Str(strings.TrimSpace(m[1]))
			text = strings.Replace(text, m[0], "", 1)
		} else {
			segments := strings.SplitN(text, ",", 2)
			entry.Title = schema.Str(strings.TrimSpace(segments[0]))
			if len(segments) == 2 {
				text = segments[1]
			} else {
				text = ""
			}
		}
		for _, segment := range strings.Split(text, ",") {
			if venueRe.MatchString(segment) {
				entry.Venue = schema.Str(strings.Trim(strings.TrimSpace(segment), ".,"))
				break
			}
		}
		if entry.Title != nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

func isPublicationsHeading(text string) bool {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ":："))
	switch norm {
	case "publications", "publication", "papers", "articles", "selected publications":
		return true
	}
	return false
}

// proficiencyRe 语言熟练度词汇
var proficiencyRe = regexp.MustCompile(`(?i)\b(native|fluent|professional|advanced|intermediate|conversational|basic|beginner|bilingual)\b`)

// ExtractLanguages 从语言章节抽取条目
// 支持 "English (fluent)"、"Spanish - native" 及纯语言名形式
func ExtractLanguages(span types.SectionSpan) []schema.Language {
	span = stripHeading(span, isLanguagesHeading)

	var entries []schema.Language
	for _, line := range span.Lines {
		text := strings.TrimSpace(line.Text())
		if text == "" {
			continue
		}
		for _, frag := range skillSplitRe.Split(text, -1) {
			item := strings.Trim(strings.TrimSpace(frag), "•-–· ")
			if item == "" {
				continue
			}
			entry := schema.Language{}
			if m := parentheticalRe.FindStringSubmatch(item); m != nil && strings.TrimSpace(m[1]) != "" {
				entry.Name = schema.Str(strings.TrimSpace(m[1]))
				entry.Proficiency = schema.Str(strings.TrimSpace(m[2]))
			} else if m := proficiencyRe.FindStringSubmatch(item); m != nil {
				entry.Proficiency = schema.Str(m[1])
				name := strings.Trim(strings.TrimSpace(proficiencyRe.ReplaceAllString(item, "")), ":-–— ")
				entry.Name = schema.Str(name)
			} else {
				entry.Name = schema.Str(item)
			}
			if entry.Name != nil {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

func isLanguagesHeading(text string) bool {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ":："))
	return norm == "languages" || norm == "language"
}

// ExtractOther 未识别章节整体保留为兜底条目
// 首行视为标签，其余为内容；无法区分时标签为"other"
func ExtractOther(span types.SectionSpan) *schema.OtherSection {
	text := span.Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	label := "other"
	content := text
	if len(span.Lines) > 1 && len(span.Lines[0].Tokens) <= 4 {
		label = strings.TrimRight(strings.TrimSpace(span.Lines[0].Text()), ":：")
		rest := types.SectionSpan{Lines: span.Lines[1:]}
		content = rest.Text()
	}
	return &schema.OtherSection{Label: label, Content: content}
}
