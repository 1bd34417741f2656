package schema

import (
	"encoding/json"
	"fmt"
)

// Contact 联系方式
type Contact struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Website  *string `json:"website,omitempty"`
	Location *string `json:"location,omitempty"`
	// Raw 联系方式章节原文
	Raw *string `json:"raw,omitempty"`
}

// Education 教育经历条目
type Education struct {
	Institution  *string `json:"institution,omitempty"`
	Degree       *string `json:"degree,omitempty"`
	FieldOfStudy *string `json:"field_of_study,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`
	// Grade 成绩/GPA。未知时序列化为显式null而非省略，
	// 用于区分"模式中存在但未知"与"不适用"
	Grade    *string `json:"grade"`
	Location *string `json:"location,omitempty"`
}

// WorkExperience 工作经历条目
type WorkExperience struct {
	Company        *string `json:"company,omitempty"`
	Position       *string `json:"position,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	DurationMonths *int    `json:"duration_months,omitempty"`
	Location       *string `json:"location,omitempty"`
	// Description 逐条保留的职责描述，始终为数组
	Description []string `json:"description"`
}

// Skill 技能条目
// Name比较时大小写不敏感、空白归一化，展示形式保留首次出现的写法
type Skill struct {
	Name        string  `json:"name"`
	Category    *string `json:"category,omitempty"`
	Proficiency *string `json:"proficiency,omitempty"`
}

// Certification 证书/执照条目
type Certification struct {
	Name   *string `json:"name,omitempty"`
	Issuer *string `json:"issuer,omitempty"`
	Date   *string `json:"date,omitempty"`
}

// Project 项目经历条目
type Project struct {
	Name         *string  `json:"name,omitempty"`
	Role         *string  `json:"role,omitempty"`
	StartDate    *string  `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Technologies []string `json:"technologies"`
}

// Publication 论文/出版物条目
type Publication struct {
	Title       *string `json:"title,omitempty"`
	Venue       *string `json:"venue,omitempty"`
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Language 语言能力条目
type Language struct {
	Name        *string `json:"name,omitempty"`
	Proficiency *string `json:"proficiency,omitempty"`
}

// OtherSection 未识别章节的兜底条目
type OtherSection struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// Meta 解析过程的元信息
type Meta struct {
	// Source 文档来源标识，始终存在
	Source string `json:"source"`
	// Notes 诊断信息，例如词元数、嵌入数、告警数
	Notes string `json:"notes,omitempty"`
	// Warnings 宽容校验过程中记录的降级告警
	Warnings []string `json:"warnings,omitempty"`
}

// AppendNote 以分号分隔追加一条诊断信息
func (m *Meta) AppendNote(note string) {
	if note == "" {
		return
	}
	if m.Notes == "" {
		m.Notes = note
		return
	}
	m.Notes = m.Notes + "; " + note
}

// ResumeRecord 最终的结构化简历记录
// 数组字段始终存在（可能为空）；校验通过后整体不可变，
// 精修门控只能整体替换，不能原地修改
type ResumeRecord struct {
	Contact        Contact          `json:"contact"`
	Education      []Education      `json:"education"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Skills         []Skill          `json:"skills"`
	Certifications []Certification  `json:"certifications"`
	Projects       []Project        `json:"projects"`
	Publications   []Publication    `json:"publications"`
	Languages      []Language       `json:"languages"`
	OtherSections  []OtherSection   `json:"other_sections"`
	Meta           Meta             `json:"meta"`
}

// NewResumeRecord 创建数组字段均已初始化的空记录
func NewResumeRecord(source string) *ResumeRecord {
	return &ResumeRecord{
		Education:      []Education{},
		WorkExperience: []WorkExperience{},
		Skills:         []Skill{},
		Certifications: []Certification{},
		Projects:       []Project{},
		Publications:   []Publication{},
		Languages:      []Language{},
		OtherSections:  []OtherSection{},
		Meta:           Meta{Source: source},
	}
}

// EnsureArrays 将nil数组字段替换为空数组，保证序列化总包含全部数组键
func (r *ResumeRecord) EnsureArrays() {
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.WorkExperience == nil {
		r.WorkExperience = []WorkExperience{}
	}
	if r.Skills == nil {
		r.Skills = []Skill{}
	}
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	if r.Publications == nil {
		r.Publications = []Publication{}
	}
	if r.Languages == nil {
		r.Languages = []Language{}
	}
	if r.OtherSections == nil {
		r.OtherSections = []OtherSection{}
	}
	for i := range r.WorkExperience {
		if r.WorkExperience[i].Description == nil {
			r.WorkExperience[i].Description = []string{}
		}
	}
	for i := range r.Projects {
		if r.Projects[i].Technologies == nil {
			r.Projects[i].Technologies = []string{}
		}
	}
}

// ToJSON 序列化为缩进JSON
func (r *ResumeRecord) ToJSON() ([]byte, error) {
	r.EnsureArrays()
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化简历记录失败: %w", err)
	}
	return data, nil
}

// FromJSON 从JSON反序列化记录，未知键被忽略
func FromJSON(data []byte) (*ResumeRecord, error) {
	var record ResumeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("反序列化简历记录失败: %w", err)
	}
	record.EnsureArrays()
	return &record, nil
}

// Str 返回字符串指针，空串视为缺失返回nil
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Int 返回整数指针
func Int(v int) *int {
	return &v
}

// Deref 解引用字符串指针，nil时返回空串
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
