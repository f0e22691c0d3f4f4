package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventTypeStudentAction = "STUDENT_ACTION"
	EventTypeAgentAction   = "AGENT_ACTION"
)

// LearningEvent is one recorded practice attempt. Append-only: the sole
// source of truth for mastery derivations, never updated or deleted.
type LearningEvent struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_learning_event_user_skill,priority:1" json:"user_id"`
	SkillID string    `gorm:"column:skill_id;not null;index:idx_learning_event_user_skill,priority:2" json:"skill_id"`

	IsCorrect        bool `gorm:"column:is_correct;not null" json:"is_correct"`
	Attempts         int  `gorm:"column:attempts;not null;default:1" json:"attempts"`
	TimeSpentSeconds int  `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`

	EventType  string         `gorm:"column:event_type;not null;default:STUDENT_ACTION" json:"event_type"`
	SourceText string         `gorm:"column:source_text;type:text" json:"source_text,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	Timestamp time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LearningEvent) TableName() string { return "learning_event" }
