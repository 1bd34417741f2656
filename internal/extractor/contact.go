package extractor

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// 联系方式抽取

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	urlRe   = regexp.MustCompile(`https?://\S+`)
)

// ExtractContact 从联系方式章节抽取联系信息
// 正则宽松优先，漏配字段保持缺失而非报错；章节原文整体保留在Raw
func ExtractContact(span types.SectionSpan) schema.Contact {
	raw := span.Text()
	contact := schema.Contact{Raw: schema.Str(raw)}

	if m := emailRe.FindString(raw); m != "" {
		contact.Email = schema.Str(m)
	}
	if m := urlRe.FindString(raw); m != "" {
		contact.Website = schema.Str(strings.TrimRight(m, ".,;"))
	}
	// 电话在剔除邮箱和URL后匹配，避免吃掉邮箱中的数字
	phoneSource := urlRe.ReplaceAllString(emailRe.ReplaceAllString(raw, " "), " ")
	if m := phoneRe.FindString(phoneSource); m != "" {
		contact.Phone = schema.Str(strings.TrimSpace(m))
	}

	contact.Name = extractName(span)
	contact.Location = extractLocation(span)
	return contact
}

// extractName 姓名启发式：前3行中首个2-5词、不含@/+/http的行
func extractName(span types.SectionSpan) *string {
	limit := 3
	for i, line := range span.Lines {
		if i >= limit {
			break
		}
		text := strings.TrimSpace(line.Text())
		if text == "" {
			limit++
			continue
		}
		if strings.ContainsAny(text, "@+") || strings.Contains(text, "http") {
			continue
		}
		words := strings.Fields(text)
		if len(words) < 2 || len(words) > 5 {
			continue
		}
		if strings.ContainsAny(text, "0123456789") {
			continue
		}
		return schema.Str(text)
	}
	return nil
}

// locationRe 地点行形态，如 "San Francisco, CA" 或 "Berlin, Germany 10115"
var locationRe = regexp.MustCompile(`^[A-Z][A-Za-z .'\-]+,\s*[A-Za-z .'\-]+(?:\s+\d{4,6})?$`)

// extractLocation 取章节中最后一个形如地点的行
func extractLocation(span types.SectionSpan) *string {
	var location string
	for _, line := range span.Lines {
		text := strings.TrimSpace(line.Text())
		if text == "" || strings.ContainsAny(text, "@") || strings.Contains(text, "http") {
			continue
		}
		if locationRe.MatchString(text) {
			location = text
		}
	}
	return schema.Str(location)
}
