package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// canonicalDateRe 规范日期格式 YYYY 或 YYYY-MM
var canonicalDateRe = regexp.MustCompile(`^(\d{4})(?:-(\d{2}))?$`)

// IsCanonicalDate 判断是否为规范日期（YYYY 或 YYYY-MM，月份01-12）
func IsCanonicalDate(s string) bool {
	m := canonicalDateRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	if m[2] != "" {
		month, err := strconv.Atoi(m[2])
		if err != nil || month < 1 || month > 12 {
			return false
		}
	}
	return true
}

// Coerce 对记录做宽容校验与修正
// 单字段异常降级处理并记录告警，而非使整条记录失败：
//   - 非规范格式的日期字段置nil
//   - 负的持续月数置nil
//   - 空白技能名条目移除
//   - nil数组补为空数组
//
// 返回修正过程中产生的告警，同时追加到 record.Meta.Warnings
func Coerce(record *ResumeRecord) []string {
	if record == nil {
		return nil
	}
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	record.EnsureArrays()

	for i := range record.Education {
		edu := &record.Education[i]
		coerceDateField(&edu.StartDate, fmt.Sprintf("education[%d].start_date", i), warn)
		coerceDateField(&edu.EndDate, fmt.Sprintf("education[%d].end_date", i), warn)
	}

	for i := range record.WorkExperience {
		exp := &record.WorkExperience[i]
		coerceDateField(&exp.StartDate, fmt.Sprintf("work_experience[%d].start_date", i), warn)
		coerceDateField(&exp.EndDate, fmt.Sprintf("work_experience[%d].end_date", i), warn)
		if exp.DurationMonths != nil && *exp.DurationMonths < 0 {
			warn("work_experience[%d].duration_months 为负值 %d，已置空", i, *exp.DurationMonths)
			exp.DurationMonths = nil
		}
		exp.Description = cleanStrings(exp.Description)
	}

	kept := record.Skills[:0]
	for i, skill := range record.Skills {
		name := strings.TrimSpace(skill.Name)
		if name == "" {
			warn("skills[%d] 名称为空，已移除", i)
			continue
		}
		skill.Name = name
		kept = append(kept, skill)
	}
	record.Skills = kept

	for i := range record.Certifications {
		coerceDateField(&record.Certifications[i].Date, fmt.Sprintf("certifications[%d].date", i), warn)
	}
	for i := range record.Projects {
		prj := &record.Projects[i]
		coerceDateField(&prj.StartDate, fmt.Sprintf("projects[%d].start_date", i), warn)
		coerceDateField(&prj.EndDate, fmt.Sprintf("projects[%d].end_date", i), warn)
		prj.Technologies = cleanStrings(prj.Technologies)
	}
	for i := range record.Publications {
		coerceDateField(&record.Publications[i].Date, fmt.Sprintf("publications[%d].date", i), warn)
	}

	record.Meta.Warnings = append(record.Meta.Warnings, warnings...)
	return warnings
}

// coerceDateField 非规范日期降级为nil并告警
func coerceDateField(field **string, name string, warn func(string, ...interface{})) {
	if *field == nil {
		return
	}
	value := strings.TrimSpace(**field)
	if value == "" {
		*field = nil
		return
	}
	if !IsCanonicalDate(value) {
		warn("%s 日期格式非规范: %q，已置空", name, value)
		*field = nil
		return
	}
	**field = value
}

// cleanStrings 去除数组中的空白项并裁剪两端空白
func cleanStrings(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
