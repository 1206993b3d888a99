package models

// ViewTimeLecture is one completed lecture's contribution to viewtime
type ViewTimeLecture struct {
	LectureName string `json:"lectureName"`
	Time        int    `json:"time"`
}

// ViewTimeSection aggregates lecture viewtime within a section.
// Sections with a zero total are omitted from responses.
type ViewTimeSection struct {
	SectionName string            `json:"sectionName"`
	TotalTime   int               `json:"totalTime"`
	Lectures    []ViewTimeLecture `json:"lectures"`
}

// ViewTimeCourse aggregates section viewtime within a course
type ViewTimeCourse struct {
	CourseID   string            `json:"courseId"`
	CourseName string            `json:"courseName"`
	TotalTime  int               `json:"totalTime"`
	Sections   []ViewTimeSection `json:"sections"`
}

// ViewTime is the full course viewtime breakdown for a user
type ViewTime struct {
	TotalTime int              `json:"totalTime"`
	Courses   []ViewTimeCourse `json:"courses"`
}

// TotalTime carries a single aggregated duration in seconds
type TotalTime struct {
	TotalTime int `json:"totalTime"`
}
