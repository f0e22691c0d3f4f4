package tracking

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusMastered   = "MASTERED"
	StatusLearning   = "LEARNING"
	StatusStruggling = "STRUGGLING"
)

// StudentSkillState is the materialized mastery projection for one
// (user, skill) pair. Created lazily on the first event, mutated on every
// event after that, always re-derivable by replaying the event log.
//
// Invariants: ProbabilityMastery stays in [0,1]; CorrectAttempts never
// exceeds TotalAttempts; at most one of the consecutive counters is nonzero.
type StudentSkillState struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_student_skill_state,unique,priority:1" json:"user_id"`
	SkillID string    `gorm:"column:skill_id;not null;index:idx_student_skill_state,unique,priority:2" json:"skill_id"`

	ProbabilityMastery float64 `gorm:"column:probability_mastery;not null;default:0.5" json:"probability_mastery"`

	TotalAttempts        int `gorm:"column:total_attempts;not null;default:0" json:"total_attempts"`
	CorrectAttempts      int `gorm:"column:correct_attempts;not null;default:0" json:"correct_attempts"`
	ConsecutiveCorrect   int `gorm:"column:consecutive_correct;not null;default:0" json:"consecutive_correct"`
	ConsecutiveIncorrect int `gorm:"column:consecutive_incorrect;not null;default:0" json:"consecutive_incorrect"`

	LastAttemptAt *time.Time `gorm:"column:last_attempt_at" json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (StudentSkillState) TableName() string { return "student_skill_state" }
