package extractor

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// 技能抽取与去重

// skillSplitRe 技能列表分隔符
var skillSplitRe = regexp.MustCompile(`[,;/\n|•]`)

// categoryLineRe 带类别前缀的技能行，如 "Programming: Python, Go"
var categoryLineRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 .&+\-]{0,40}):\s*(.+)$`)

// parentheticalRe 技能名尾部的括号类别，如 "Python (Scripting)"
var parentheticalRe = regexp.MustCompile(`^(.*?)\s*\(([^)]{1,40})\)\s*$`)

// maxSkillLength 超过该长度的片段视为句子而非技能名
const maxSkillLength = 60

// ExtractSkills 从技能章节抽取技能条目列表（未去重）
func ExtractSkills(span types.SectionSpan) []schema.Skill {
	span = stripHeading(span, isSkillsHeading)

	var skills []schema.Skill
	for _, line := range span.Lines {
		text := strings.TrimSpace(line.Text())
		if text == "" {
			continue
		}

		category := ""
		if m := categoryLineRe.FindStringSubmatch(text); m != nil {
			category = strings.TrimSpace(m[1])
			text = m[2]
		}

		for _, fragment := range skillSplitRe.Split(text, -1) {
			name := strings.Trim(strings.TrimSpace(fragment), "•-–· \t")
			if name == "" || len(name) > maxSkillLength {
				continue
			}
			itemCategory := category
			if m := parentheticalRe.FindStringSubmatch(name); m != nil && strings.TrimSpace(m[1]) != "" {
				name = strings.TrimSpace(m[1])
				itemCategory = strings.TrimSpace(m[2])
			}
			skills = append(skills, schema.Skill{
				Name:     name,
				Category: schema.Str(itemCategory),
			})
		}
	}
	return skills
}

// isSkillsHeading 判断是否为技能章节的标题行
func isSkillsHeading(text string) bool {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ":："))
	switch norm {
	case "skills", "technical skills", "skills & tools", "technologies", "core skills":
		return true
	}
	return false
}

// skillKey 技能比较键：大小写折叠、空白压缩
func skillKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DedupSkills 技能去重
// 比较键为大小写折叠、空白压缩后的名称。展示写法与顺序以首次出现为准；
// 后续重复项携带类别时补全空类别。收敛：对已去重列表再次去重是恒等操作
func DedupSkills(skills []schema.Skill) []schema.Skill {
	result := make([]schema.Skill, 0, len(skills))
	index := make(map[string]int, len(skills))

	for _, skill := range skills {
		key := skillKey(skill.Name)
		if key == "" {
			continue
		}
		if pos, seen := index[key]; seen {
			// 带类别的条目优先补全无类别的首见条目
			if result[pos].Category == nil && skill.Category != nil {
				result[pos].Category = skill.Category
			}
			if result[pos].Proficiency == nil && skill.Proficiency != nil {
				result[pos].Proficiency = skill.Proficiency
			}
			continue
		}
		index[key] = len(result)
		result = append(result, skill)
	}
	return result
}
