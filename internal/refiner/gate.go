package refiner

import (
	"strings"

	"resume-parser-go/internal/schema"
)

// 无新事实门控
// 精修记录的每个叶子字符串必须等于某个基线叶子值，
// 或是原文的空白归一化子串；任一叶子违规则整体拒绝

// checkNoNewFacts 校验候选记录未引入新事实
// 返回首个违规叶子，全部通过时 ok=true
func checkNoNewFacts(candidate, baseline *schema.ResumeRecord, rawText string) (offending string, ok bool) {
	baselineLeaves := make(map[string]bool)
	for _, leaf := range collectLeaves(baseline) {
		baselineLeaves[normalizeLeaf(leaf)] = true
	}
	rawNorm := normalizeLeaf(rawText)

	for _, leaf := range collectLeaves(candidate) {
		norm := normalizeLeaf(leaf)
		if norm == "" {
			continue
		}
		if baselineLeaves[norm] {
			continue
		}
		if strings.Contains(rawNorm, norm) {
			continue
		}
		return leaf, false
	}
	return "", true
}

// normalizeLeaf 叶子比较形态：小写 + 空白压缩
func normalizeLeaf(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// collectLeaves 收集记录中的全部叶子字符串（不含meta）
func collectLeaves(r *schema.ResumeRecord) []string {
	var leaves []string
	add := func(values ...*string) {
		for _, v := range values {
			if v != nil {
				leaves = append(leaves, *v)
			}
		}
	}

	add(r.Contact.Name, r.Contact.Email, r.Contact.Phone, r.Contact.Website, r.Contact.Location, r.Contact.Raw)

	for _, e := range r.Education {
		add(e.Institution, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate, e.Grade, e.Location)
	}
	for _, e := range r.WorkExperience {
		add(e.Company, e.Position, e.StartDate, e.EndDate, e.Location)
		for i := range e.Description {
			leaves = append(leaves, e.Description[i])
		}
	}
	for _, s := range r.Skills {
		leaves = append(leaves, s.Name)
		add(s.Category, s.Proficiency)
	}
	for _, c := range r.Certifications {
		add(c.Name, c.Issuer, c.Date)
	}
	for _, p := range r.Projects {
		add(p.Name, p.Role, p.StartDate, p.EndDate, p.Description)
		leaves = append(leaves, p.Technologies...)
	}
	for _, p := range r.Publications {
		add(p.Title, p.Venue, p.Date, p.Description)
	}
	for _, l := range r.Languages {
		add(l.Name, l.Proficiency)
	}
	for _, o := range r.OtherSections {
		leaves = append(leaves, o.Label, o.Content)
	}
	return leaves
}
