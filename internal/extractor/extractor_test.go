package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// TestExtractContact 联系方式字段抽取
func TestExtractContact(t *testing.T) {
	span := spanFromLines(types.SectionContact,
		"Jane Doe",
		"jane.doe@example.com +1 (555) 010-4477",
		"https://janedoe.dev",
		"San Francisco, CA",
	)
	contact := ExtractContact(span)

	assert.Equal(t, "Jane Doe", schema.Deref(contact.Name))
	assert.Equal(t, "jane.doe@example.com", schema.Deref(contact.Email))
	assert.Equal(t, "+1 (555) 010-4477", schema.Deref(contact.Phone))
	assert.Equal(t, "https://janedoe.dev", schema.Deref(contact.Website))
	assert.Equal(t, "San Francisco, CA", schema.Deref(contact.Location))
	require.NotNil(t, contact.Raw)
	assert.Contains(t, *contact.Raw, "Jane Doe")
}

// TestExtractContactMissingFields 字段缺失时保持nil而非报错
func TestExtractContactMissingFields(t *testing.T) {
	span := spanFromLines(types.SectionContact, "Jane Doe")
	contact := ExtractContact(span)

	assert.Equal(t, "Jane Doe", schema.Deref(contact.Name))
	assert.Nil(t, contact.Email)
	assert.Nil(t, contact.Phone)
	assert.Nil(t, contact.Website)
	assert.Nil(t, contact.Location)
}

// TestExtractContactNameHeuristic 含@/数字的行不作为姓名
func TestExtractContactNameHeuristic(t *testing.T) {
	span := spanFromLines(types.SectionContact,
		"jane@example.com",
		"Jane Marie Doe",
	)
	contact := ExtractContact(span)
	assert.Equal(t, "Jane Marie Doe", schema.Deref(contact.Name))
}

// TestExtractEducation 教育经历条目抽取
func TestExtractEducation(t *testing.T) {
	span := spanFromLines(types.SectionEducation,
		"Education",
		"State University",
		"Bachelor of Science in Computer Science, 2015 - 2019",
		"GPA: 3.8/4.0",
	)
	entries := ExtractEducation(span, testRef)

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "State University", schema.Deref(entry.Institution))
	assert.Equal(t, "Bachelor of Science", schema.Deref(entry.Degree))
	assert.Equal(t, "Computer Science", schema.Deref(entry.FieldOfStudy))
	assert.Equal(t, "2015", schema.Deref(entry.StartDate))
	assert.Equal(t, "2019", schema.Deref(entry.EndDate))
	require.NotNil(t, entry.Grade)
	assert.Equal(t, "3.8/4.0", *entry.Grade)
}

// TestExtractEducationGradeAbsent 无成绩时grade保持nil（序列化为显式null）
func TestExtractEducationGradeAbsent(t *testing.T) {
	span := spanFromLines(types.SectionEducation,
		"Education",
		"M.Sc in Data Engineering, Tech University, 2020 - 2022",
	)
	entries := ExtractEducation(span, testRef)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Grade)
	assert.Equal(t, "M.Sc", schema.Deref(entries[0].Degree))
	assert.Equal(t, "Data Engineering", schema.Deref(entries[0].FieldOfStudy))
}

// TestExtractExperienceAtForm "职位 at 公司"形式与持续时长计算
func TestExtractExperienceAtForm(t *testing.T) {
	span := spanFromLines(types.SectionExperience,
		"Experience",
		"Software Engineer at Acme Corp, March 2019 - Present",
		"• Built data pipelines",
		"• Led a team of four",
	)
	entries := ExtractExperience(span, testRef)

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Acme Corp", schema.Deref(entry.Company))
	assert.Equal(t, "Software Engineer", schema.Deref(entry.Position))
	assert.Equal(t, "2019-03", schema.Deref(entry.StartDate))
	// present归一化为处理时刻2024-03，时长恰为60个月
	assert.Equal(t, "2024-03", schema.Deref(entry.EndDate))
	require.NotNil(t, entry.DurationMonths)
	assert.Equal(t, 60, *entry.DurationMonths)
	assert.Equal(t, []string{"Built data pipelines", "Led a team of four"}, entry.Description)
}

// TestExtractExperienceHeaderBeforeDates 标题行在日期行之前的形式
func TestExtractExperienceHeaderBeforeDates(t *testing.T) {
	span := spanFromLines(types.SectionExperience,
		"Experience",
		"Acme Corp | Staff Engineer",
		"2020-01 - 2022-06",
		"• Ran the platform team",
	)
	entries := ExtractExperience(span, testRef)

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Acme Corp", schema.Deref(entry.Company))
	assert.Equal(t, "Staff Engineer", schema.Deref(entry.Position))
	require.NotNil(t, entry.DurationMonths)
	assert.Equal(t, 29, *entry.DurationMonths)
}

// TestExtractExperienceRoughDatePassedThrough 无法归一化的口语时间短语
// 原样写入start_date，条目不丢失，留待schema校验降级
func TestExtractExperienceRoughDatePassedThrough(t *testing.T) {
	span := spanFromLines(types.SectionExperience,
		"Experience",
		"Consultant at Acme Corp, sometime last year",
	)
	entries := ExtractExperience(span, testRef)

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Acme Corp", schema.Deref(entry.Company))
	assert.Equal(t, "Consultant", schema.Deref(entry.Position))
	assert.Equal(t, "sometime last year", schema.Deref(entry.StartDate))
	assert.Nil(t, entry.EndDate)
	assert.Nil(t, entry.DurationMonths)
}

// TestExtractExperienceMultipleEntries 多个日期锚点切分出多个条目
func TestExtractExperienceMultipleEntries(t *testing.T) {
	span := spanFromLines(types.SectionExperience,
		"Experience",
		"Engineer at Acme Corp, 2019-03 - 2021-03",
		"• Shipped the v2 API",
		"Analyst at Beta LLC, 2017-01 - 2019-02",
	)
	entries := ExtractExperience(span, testRef)

	require.Len(t, entries, 2)
	assert.Equal(t, "Acme Corp", schema.Deref(entries[0].Company))
	assert.Equal(t, "Beta LLC", schema.Deref(entries[1].Company))
}

// TestExtractCertifications 证书条目抽取
func TestExtractCertifications(t *testing.T) {
	span := spanFromLines(types.SectionCertifications,
		"Certifications",
		"AWS Solutions Architect - Amazon, 2021",
	)
	entries := ExtractCertifications(span, testRef)

	require.Len(t, entries, 1)
	assert.Equal(t, "AWS Solutions Architect", schema.Deref(entries[0].Name))
	assert.Equal(t, "Amazon", schema.Deref(entries[0].Issuer))
	assert.Equal(t, "2021", schema.Deref(entries[0].Date))
}

// TestExtractLanguages 语言与熟练度抽取
func TestExtractLanguages(t *testing.T) {
	span := spanFromLines(types.SectionLanguages,
		"Languages",
		"English (fluent), Spanish - native, Mandarin",
	)
	entries := ExtractLanguages(span)

	require.Len(t, entries, 3)
	assert.Equal(t, "English", schema.Deref(entries[0].Name))
	assert.Equal(t, "fluent", schema.Deref(entries[0].Proficiency))
	assert.Equal(t, "Spanish", schema.Deref(entries[1].Name))
	assert.Equal(t, "native", schema.Deref(entries[1].Proficiency))
	assert.Equal(t, "Mandarin", schema.Deref(entries[2].Name))
	assert.Nil(t, entries[2].Proficiency)
}

// TestExtractProjects 项目条目抽取
func TestExtractProjects(t *testing.T) {
	span := spanFromLines(types.SectionProjects,
		"Projects",
		"Flowmeter - Maintainer, 2022 - 2023",
		"• Open source traffic shaping daemon",
		"Technologies: Go, Redis",
	)
	entries := ExtractProjects(span, testRef)

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Flowmeter", schema.Deref(entry.Name))
	assert.Equal(t, "Maintainer", schema.Deref(entry.Role))
	assert.Equal(t, "2022", schema.Deref(entry.StartDate))
	assert.Equal(t, []string{"Go", "Redis"}, entry.Technologies)
	assert.Contains(t, schema.Deref(entry.Description), "traffic shaping")
}

// TestExtractOtherFallback 未识别章节保留标签与内容
func TestExtractOtherFallback(t *testing.T) {
	span := spanFromLines(types.SectionOther,
		"Volunteering",
		"Food bank coordinator since 2018",
	)
	other := ExtractOther(span)

	require.NotNil(t, other)
	assert.Equal(t, "Volunteering", other.Label)
	assert.Contains(t, other.Content, "Food bank")
}

// TestApplyDispatch 分发器将各章节写入记录并完成技能去重
func TestApplyDispatch(t *testing.T) {
	record := schema.NewResumeRecord("test.pdf")
	spans := []types.SectionSpan{
		spanFromLines(types.SectionContact, "Jane Doe", "jane@example.com"),
		spanFromLines(types.SectionSkills, "Skills", "Python, PYTHON"),
	}

	Apply(record, spans, testRef)

	assert.Equal(t, "Jane Doe", schema.Deref(record.Contact.Name))
	require.Len(t, record.Skills, 1)
	assert.Equal(t, "Python", record.Skills[0].Name)
}
