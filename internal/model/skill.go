package model

// Skill is one item of the swimming progression catalog.
type Skill struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	CategoryLabel *string `json:"category_label"`
	DisplayOrder  int     `json:"display_order"`
}

// MemberSkill records that a member has mastered a skill.
type MemberSkill struct {
	ID         uint64  `json:"id"`
	MemberID   uint64  `json:"member_id"`
	SkillID    uint64  `json:"skill_id"`
	AcquiredAt Date    `json:"acquired_at"`
	CoachID    *uint64 `json:"coach_id"`
}

// SkillStatus is a catalog entry flagged with whether a member has it.
type SkillStatus struct {
	SkillID    uint64 `json:"skill_id"`
	SkillName  string `json:"skill_name"`
	IsMastered bool   `json:"is_mastered"`
}
