package models

// Subtask type constants used for viewtime estimates
const (
	SubtaskTypeMultipleChoice  = "MULTIPLE_CHOICE_QUESTION"
	SubtaskTypeMatching        = "MATCHING"
	SubtaskTypeCodingChallenge = "CODING_CHALLENGE"
)

// Subtask is a solved challenge subtask returned by the challenges service
type Subtask struct {
	ID                string `json:"id"`
	TaskID            string `json:"task_id"`
	Type              string `json:"type"`
	Creator           string `json:"creator"`
	CreationTimestamp string `json:"creation_timestamp"`
	XP                int    `json:"xp"`
	Coins             int    `json:"coins"`
	Solved            bool   `json:"solved"`
	Rated             bool   `json:"rated"`
	Enabled           bool   `json:"enabled"`
	Retired           bool   `json:"retired"`
}
