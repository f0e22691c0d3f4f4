package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chunk is a retrievable fragment of source text with its embedding.
// Rows are written once by the ingestion pipeline and never updated.
type Chunk struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChapterID string    `gorm:"column:chapter_id;index" json:"chapter_id,omitempty"`
	SectionID string    `gorm:"column:section_id;index" json:"section_id,omitempty"`

	Content   string         `gorm:"column:content;type:text;not null" json:"content"`
	Embedding datatypes.JSON `gorm:"type:jsonb;column:embedding" json:"embedding,omitempty"`

	GradeLevel string `gorm:"column:grade_level;index" json:"grade_level,omitempty"`
	Subject    string `gorm:"column:subject;index" json:"subject,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Chunk) TableName() string { return "chunk" }
