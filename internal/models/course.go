package models

// Author represents a course author
type Author struct {
	Name string `json:"name"`
}

// Lecture represents a single lecture inside a course section
type Lecture struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

// Section represents an ordered group of lectures
type Section struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Lectures []Lecture `json:"lectures"`
}

// Course represents a course loaded from the catalog.
// Section and lecture order is significant and stable.
type Course struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Language string    `json:"language,omitempty"`
	Authors  []Author  `json:"authors,omitempty"`
	Free     bool      `json:"free"`
	Price    int       `json:"price"`
	Sections []Section `json:"sections"`
}

// FindLecture returns the section and lecture with the given lecture ID
func (c *Course) FindLecture(lectureID string) (*Section, *Lecture, bool) {
	for si := range c.Sections {
		section := &c.Sections[si]
		for li := range section.Lectures {
			if section.Lectures[li].ID == lectureID {
				return section, &section.Lectures[li], true
			}
		}
	}
	return nil, nil, false
}

// LectureSummary is a lecture with per-user completion state.
// Completed is nil for anonymous requests.
type LectureSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Duration  int    `json:"duration"`
	Completed *bool  `json:"completed,omitempty"`
}

// SectionSummary is a section with per-user lecture completion state
type SectionSummary struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Lectures []LectureSummary `json:"lectures"`
}

// CourseSummary is the client-facing view of a course
type CourseSummary struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Language string           `json:"language,omitempty"`
	Authors  []Author         `json:"authors,omitempty"`
	Free     bool             `json:"free"`
	Price    int              `json:"price"`
	Sections []SectionSummary `json:"sections"`
}

// Summary builds a CourseSummary with completion marks from the given
// set of completed lecture IDs. A nil set means an anonymous request
// and leaves the Completed flags unset.
func (c *Course) Summary(completed map[string]struct{}) *CourseSummary {
	summary := &CourseSummary{
		ID:       c.ID,
		Title:    c.Title,
		Language: c.Language,
		Authors:  c.Authors,
		Free:     c.Free,
		Price:    c.Price,
		Sections: make([]SectionSummary, 0, len(c.Sections)),
	}

	for _, section := range c.Sections {
		lectures := make([]LectureSummary, 0, len(section.Lectures))
		for _, lecture := range section.Lectures {
			ls := LectureSummary{
				ID:       lecture.ID,
				Title:    lecture.Title,
				Type:     lecture.Type,
				Duration: lecture.Duration,
			}
			if completed != nil {
				_, done := completed[lecture.ID]
				ls.Completed = &done
			}
			lectures = append(lectures, ls)
		}
		summary.Sections = append(summary.Sections, SectionSummary{
			ID:       section.ID,
			Title:    section.Title,
			Lectures: lectures,
		})
	}

	return summary
}

// NextUnseenResponse points the client at the next lecture to watch
type NextUnseenResponse struct {
	Section Section `json:"section"`
	Lecture Lecture `json:"lecture"`
}
