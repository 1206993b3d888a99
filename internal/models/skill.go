package models

// RootSkill represents a top-level node of the skill taxonomy
type RootSkill struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	SubSkills []SubSkill `json:"subSkills,omitempty"`
}

// SubSkill represents a child node of a root skill
type SubSkill struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	Name     string `json:"name"`
}

// SubSkillBookmark links a user to a sub skill they bookmarked
type SubSkillBookmark struct {
	BookmarkID  int    `json:"bookmarkId"`
	UserID      string `json:"userId"`
	RootSkillID string `json:"rootSkillId"`
	SubSkillID  string `json:"subSkillId"`
}
