package extractor

import (
	"regexp"
	"strings"
	"time"

	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// 工作经历抽取
// 条目以含日期的行为锚点；公司/职位从锚点行或其前一行按
// " at "/逗号/竖线拆分；其余行进入职责描述

var (
	// companySuffixRe 公司名后缀特征词
	companySuffixRe = regexp.MustCompile(`(?i)\b(inc|corp|corporation|llc|ltd|limited|gmbh|co|company|technologies|labs|group|solutions|systems|software)\b\.?`)

	// bulletPrefixRe 职责条目的列表符号前缀
	bulletPrefixRe = regexp.MustCompile(`^[\s•·\-–—*>]+`)

	// splitSepRe 公司与职位的分隔符
	splitSepRe = regexp.MustCompile(`\s+[|\-–—]\s+|,\s+`)

	atSepRe = regexp.MustCompile(`(?i)\s+at\s+`)

	// roughDateRe 形似时间却无法归一化的口语短语，如 "sometime last year"
	roughDateRe = regexp.MustCompile(`(?i)^(?:sometime|recently|around|circa|since|early|late|mid|last|this|next)\b[\w\s'’-]*\b(?:year|month|week|spring|summer|autumn|fall|winter|decade)s?$`)
)

// ExtractExperience 从工作经历章节抽取条目
// present/current/ongoing 终点归一化为处理时刻的YYYY-MM；
// duration_months 为起止日历月差，下限0
func ExtractExperience(span types.SectionSpan, ref time.Time) []schema.WorkExperience {
	span = stripHeading(span, isExperienceHeading)

	var entries []schema.WorkExperience
	var current *schema.WorkExperience
	pendingHeader := ""

	flush := func() {
		if current != nil {
			entries = append(entries, *current)
			current = nil
		}
	}

	for _, line := range span.Lines {
		text := strings.TrimSpace(line.Text())
		if text == "" {
			continue
		}

		dates := ExtractDates(text, ref)
		if len(dates) > 0 {
			flush()
			current = &schema.WorkExperience{Description: []string{}}
			current.StartDate = schema.Str(dates[0])
			if len(dates) > 1 {
				current.EndDate = schema.Str(dates[len(dates)-1])
				if months, ok := MonthsBetween(dates[0], dates[len(dates)-1]); ok {
					current.DurationMonths = schema.Int(months)
				}
			}

			header := stripDates(text)
			if header == "" {
				header = pendingHeader
			}
			pendingHeader = ""
			if header != "" {
				company, position := splitCompanyPosition(header)
				current.Company = schema.Str(company)
				current.Position = schema.Str(position)
			}
			continue
		}

		if header, rough := splitRoughDate(text); rough != "" {
			flush()
			current = &schema.WorkExperience{Description: []string{}}
			// 口语时间短语原样传递，由schema校验置空并记录告警
			current.StartDate = schema.Str(rough)
			if header == "" {
				header = pendingHeader
			}
			pendingHeader = ""
			if header != "" {
				company, position := splitCompanyPosition(header)
				current.Company = schema.Str(company)
				current.Position = schema.Str(position)
			}
			continue
		}

		if current == nil {
			// 日期行之前的标题行暂存，供下一个条目使用
			pendingHeader = text
			continue
		}

		if locationRe.MatchString(text) && current.Location == nil {
			current.Location = schema.Str(text)
			continue
		}
		if bulletPrefixRe.MatchString(text) || current.Company != nil || current.Position != nil {
			item := strings.TrimSpace(bulletPrefixRe.ReplaceAllString(text, ""))
			if item != "" {
				current.Description = append(current.Description, item)
			}
			continue
		}
		// 条目尚无公司/职位信息时，首个普通行按标题拆分
		company, position := splitCompanyPosition(text)
		current.Company = schema.Str(company)
		current.Position = schema.Str(position)
	}
	flush()
	return entries
}

func isExperienceHeading(text string) bool {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ":："))
	switch norm {
	case "experience", "work experience", "employment history", "work history", "employment", "professional experience":
		return true
	}
	return false
}

// splitCompanyPosition 拆分公司与职位
// " at " 形式固定为 职位 at 公司；逗号/竖线/破折号形式
// 按公司后缀特征词判定方向，无特征词时默认 职位, 公司
func splitCompanyPosition(text string) (company, position string) {
	text = strings.Trim(strings.TrimSpace(text), ",|-–— ")
	if text == "" {
		return "", ""
	}

	if parts := atSepRe.Split(text, 2); len(parts) == 2 {
		return cleanHeaderPart(parts[1]), cleanHeaderPart(parts[0])
	}

	if parts := splitSepRe.Split(text, 2); len(parts) == 2 {
		left, right := cleanHeaderPart(parts[0]), cleanHeaderPart(parts[1])
		if companySuffixRe.MatchString(left) && !companySuffixRe.MatchString(right) {
			return left, right
		}
		return right, left
	}

	if companySuffixRe.MatchString(text) {
		return cleanHeaderPart(text), ""
	}
	return "", cleanHeaderPart(text)
}

// splitRoughDate 识别行尾的口语时间短语
// 命中时返回去掉短语的标题与原始短语，未命中时 rough 为空
func splitRoughDate(text string) (header, rough string) {
	if idx := strings.LastIndex(text, ","); idx >= 0 {
		tail := strings.TrimSpace(text[idx+1:])
		if roughDateRe.MatchString(tail) {
			return strings.TrimSpace(text[:idx]), tail
		}
		return text, ""
	}
	if roughDateRe.MatchString(text) {
		return "", text
	}
	return text, ""
}

func cleanHeaderPart(s string) string {
	return strings.Trim(strings.TrimSpace(s), ",|-–—() ")
}
