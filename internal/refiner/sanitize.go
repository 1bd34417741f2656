package refiner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"resume-parser-go/internal/schema"
)

// 模型输出的提取与净化
// 模型输出不可信：可能带代码围栏、解释文字、未知键或走样的字段形态。
// 先提取JSON，再按实体白名单逐字段重建记录

// codeFenceRe ```json ... ``` 代码块
var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON 从模型输出中提取JSON对象
// 优先匹配代码围栏，回退到花括号配对扫描
func extractJSON(text string) string {
	if matches := codeFenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

// sanitizePayload 将模型输出的JSON重建为仅含白名单字段的记录
// 容忍走样形态：技能/语言条目可以是裸字符串，描述可以是字符串或数组
func sanitizePayload(jsonStr string) (*schema.ResumeRecord, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("解析精修输出失败: %w", err)
	}

	record := schema.NewResumeRecord("")

	if contact, ok := raw["contact"].(map[string]interface{}); ok {
		record.Contact = schema.Contact{
			Name:     getStr(contact, "name"),
			Email:    getStr(contact, "email"),
			Phone:    getStr(contact, "phone"),
			Website:  getStr(contact, "website"),
			Location: getStr(contact, "location"),
			Raw:      getStr(contact, "raw"),
		}
	}

	for _, item := range getList(raw, "education") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		record.Education = append(record.Education, schema.Education{
			Institution:  getStr(m, "institution"),
			Degree:       getStr(m, "degree"),
			FieldOfStudy: getStr(m, "field_of_study"),
			StartDate:    getStr(m, "start_date"),
			EndDate:      getStr(m, "end_date"),
			Grade:        getStr(m, "grade"),
			Location:     getStr(m, "location"),
		})
	}

	for _, item := range getList(raw, "work_experience") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := schema.WorkExperience{
			Company:     getStr(m, "company"),
			Position:    getStr(m, "position"),
			StartDate:   getStr(m, "start_date"),
			EndDate:     getStr(m, "end_date"),
			Location:    getStr(m, "location"),
			Description: getStrList(m, "description"),
		}
		if v, ok := m["duration_months"].(float64); ok && v >= 0 {
			entry.DurationMonths = schema.Int(int(v))
		}
		record.WorkExperience = append(record.WorkExperience, entry)
	}

	for _, item := range getList(raw, "skills") {
		switch v := item.(type) {
		case string:
			if name := strings.TrimSpace(v); name != "" {
				record.Skills = append(record.Skills, schema.Skill{Name: name})
			}
		case map[string]interface{}:
			name := strings.TrimSpace(schema.Deref(getStr(v, "name")))
			if name == "" {
				continue
			}
			record.Skills = append(record.Skills, schema.Skill{
				Name:        name,
				Category:    getStr(v, "category"),
				Proficiency: getStr(v, "proficiency"),
			})
		}
	}

	for _, item := range getList(raw, "certifications") {
		switch v := item.(type) {
		case string:
			record.Certifications = append(record.Certifications, schema.Certification{Name: schema.Str(strings.TrimSpace(v))})
		case map[string]interface{}:
			record.Certifications = append(record.Certifications, schema.Certification{
				Name:   getStr(v, "name"),
				Issuer: getStr(v, "issuer"),
				Date:   getStr(v, "date"),
			})
		}
	}

	for _, item := range getList(raw, "projects") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := schema.Project{
			Name:         getStr(m, "name"),
			Role:         getStr(m, "role"),
			StartDate:    getStr(m, "start_date"),
			EndDate:      getStr(m, "end_date"),
			Technologies: getStrList(m, "technologies"),
		}
		if desc := getStrList(m, "description"); len(desc) > 0 {
			entry.Description = schema.Str(strings.Join(desc, " "))
		}
		record.Projects = append(record.Projects, entry)
	}

	for _, item := range getList(raw, "publications") {
		switch v := item.(type) {
		case string:
			record.Publications = append(record.Publications, schema.Publication{Title: schema.Str(strings.TrimSpace(v))})
		case map[string]interface{}:
			record.Publications = append(record.Publications, schema.Publication{
				Title:       getStr(v, "title"),
				Venue:       getStr(v, "venue"),
				Date:        getStr(v, "date"),
				Description: getStr(v, "description"),
			})
		}
	}

	for _, item := range getList(raw, "languages") {
		switch v := item.(type) {
		case string:
			record.Languages = append(record.Languages, schema.Language{Name: schema.Str(strings.TrimSpace(v))})
		case map[string]interface{}:
			record.Languages = append(record.Languages, schema.Language{
				Name:        getStr(v, "name"),
				Proficiency: getStr(v, "proficiency"),
			})
		}
	}

	for _, item := range getList(raw, "other_sections") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		label := schema.Deref(getStr(m, "label"))
		content := schema.Deref(getStr(m, "content"))
		if label == "" && content == "" {
			continue
		}
		if label == "" {
			label = "other"
		}
		record.OtherSections = append(record.OtherSections, schema.OtherSection{Label: label, Content: content})
	}

	return record, nil
}

func getStr(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return &trimmed
		}
	}
	return nil
}

func getList(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key].([]interface{}); ok {
		return v
	}
	return nil
}

// getStrList 字符串数组，容忍单个字符串形态
func getStrList(m map[string]interface{}, key string) []string {
	var result []string
	switch v := m[key].(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
	}
	return result
}
