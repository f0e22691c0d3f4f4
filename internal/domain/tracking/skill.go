package tracking

import (
	"time"

	"gorm.io/gorm"
)

// Skill is a registry entry for a trackable skill. Reference data, rarely mutated.
type Skill struct {
	SkillID     string `gorm:"column:skill_id;primaryKey" json:"skill_id"`
	SkillName   string `gorm:"column:skill_name;not null" json:"skill_name"`
	Subject     string `gorm:"column:subject;index" json:"subject,omitempty"`
	GradeLevel  string `gorm:"column:grade_level;index" json:"grade_level,omitempty"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Skill) TableName() string { return "skill" }
