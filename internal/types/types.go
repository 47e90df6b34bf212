package types

// ResumeDocument is the structured input describing a person's resume.
// Every section is optional; empty sections are not rendered.
type ResumeDocument struct {
	Style          string          `json:"style,omitempty" yaml:"style,omitempty"`
	Header         Header          `json:"header,omitempty" yaml:"header,omitempty"`
	Summary        string          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Experience     []Job           `json:"experience,omitempty" yaml:"experience,omitempty"`
	Education      []Degree        `json:"education,omitempty" yaml:"education,omitempty"`
	Skills         Skills          `json:"skills,omitempty" yaml:"skills,omitempty"`
	Projects       []Project       `json:"projects,omitempty" yaml:"projects,omitempty"`
	Certifications []Certification `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	Languages      []Language      `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// Header holds the name line and contact details.
type Header struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Email    string   `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
	LinkedIn string   `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	GitHub   string   `json:"github,omitempty" yaml:"github,omitempty"`
	Website  string   `json:"website,omitempty" yaml:"website,omitempty"`
	Links    []string `json:"links,omitempty" yaml:"links,omitempty"`
}

// ContactParts returns email, phone and location in display order, skipping blanks.
func (h Header) ContactParts() []string {
	return nonEmpty(h.Email, h.Phone, h.Location)
}

// LinkParts returns the profile links in display order, skipping blanks.
func (h Header) LinkParts() []string {
	return nonEmpty(append([]string{h.LinkedIn, h.GitHub, h.Website}, h.Links...)...)
}

// Job is one entry of the experience section.
type Job struct {
	Company    string   `json:"company,omitempty" yaml:"company,omitempty"`
	Location   string   `json:"location,omitempty" yaml:"location,omitempty"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	StartDate  string   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// Degree is one entry of the education section.
type Degree struct {
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
	Degree      string `json:"degree,omitempty" yaml:"degree,omitempty"`
	GPA         string `json:"gpa,omitempty" yaml:"gpa,omitempty"`
	StartDate   string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

type Project struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	Highlights  []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

type Certification struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Issuer string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
}

type Language struct {
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	Proficiency string `json:"proficiency,omitempty" yaml:"proficiency,omitempty"`
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ValidationReport is the outcome of checking a document without rendering it.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
