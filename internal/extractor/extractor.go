package extractor

import (
	"time"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/schema"
	"resume-parser-go/internal/types"
)

// Apply 将分段结果逐个送入对应章节的抽取器并写入记录
// 抽取器全部无状态，对畸形输入降级为字段缺失，从不返回错误。
// ref 为处理时刻，用于日期解释
func Apply(record *schema.ResumeRecord, spans []types.SectionSpan, ref time.Time) {
	var rawSkills []schema.Skill

	for _, span := range spans {
		switch span.Label {
		case types.SectionContact:
			mergeContact(&record.Contact, ExtractContact(span))
		case types.SectionEducation:
			record.Education = append(record.Education, ExtractEducation(span, ref)...)
		case types.SectionExperience:
			record.WorkExperience = append(record.WorkExperience, ExtractExperience(span, ref)...)
		case types.SectionSkills:
			rawSkills = append(rawSkills, ExtractSkills(span)...)
		case types.SectionCertifications:
			record.Certifications = append(record.Certifications, ExtractCertifications(span, ref)...)
		case types.SectionProjects:
			record.Projects = append(record.Projects, ExtractProjects(span, ref)...)
		case types.SectionPublications:
			record.Publications = append(record.Publications, ExtractPublications(span, ref)...)
		case types.SectionLanguages:
			record.Languages = append(record.Languages, ExtractLanguages(span)...)
		default:
			if other := ExtractOther(span); other != nil {
				record.OtherSections = append(record.OtherSections, *other)
			}
		}
	}

	record.Skills = DedupSkills(append(record.Skills, rawSkills...))

	logger.Debug().
		Int("education", len(record.Education)).
		Int("experience", len(record.WorkExperience)).
		Int("skills", len(record.Skills)).
		Msg("章节抽取完成")
}

// mergeContact 多个contact区间时，后续区间只补全缺失字段
func mergeContact(dst *schema.Contact, src schema.Contact) {
	if dst.Name == nil {
		dst.Name = src.Name
	}
	if dst.Email == nil {
		dst.Email = src.Email
	}
	if dst.Phone == nil {
		dst.Phone = src.Phone
	}
	if dst.Website == nil {
		dst.Website = src.Website
	}
	if dst.Location == nil {
		dst.Location = src.Location
	}
	if dst.Raw == nil {
		dst.Raw = src.Raw
	} else if src.Raw != nil {
		merged := *dst.Raw + "\n" + *src.Raw
		dst.Raw = &merged
	}
}
