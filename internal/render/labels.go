package render

// Language selects the section header labels.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// DetectLanguage returns Chinese when name contains a CJK Unified Ideograph
// (U+4E00 to U+9FFF) and English otherwise. The whole document follows the
// name; sections are not detected individually.
func DetectLanguage(name string) Language {
	for _, r := range name {
		if r >= 0x4E00 && r <= 0x9FFF {
			return Chinese
		}
	}
	return English
}

// Section identifies one titled block of the output.
type Section string

const (
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
	SectionLanguages      Section = "languages"
)

// SectionOrder is the fixed order of titled sections after the header.
var SectionOrder = []Section{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionLanguages,
}

var sectionLabels = map[Section][2]string{
	SectionSummary:        {"Summary", "专业概述"},
	SectionExperience:     {"Experience", "工作经历"},
	SectionEducation:      {"Education", "教育背景"},
	SectionSkills:         {"Skills", "专业技能"},
	SectionProjects:       {"Projects", "项目经验"},
	SectionCertifications: {"Certifications", "专业认证"},
	SectionLanguages:      {"Languages", "语言能力"},
}

// Label returns the header text of the section in lang.
func (s Section) Label(lang Language) string {
	labels, ok := sectionLabels[s]
	if !ok {
		return string(s)
	}
	if lang == Chinese {
		return labels[1]
	}
	return labels[0]
}
