package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConceptNode is a labeled node in a named concept graph. Labels join
// lookups to chunks and queries; the Domain column qualifies labels so two
// unrelated concepts sharing a label in different domains stay separate.
type ConceptNode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GraphName string    `gorm:"column:graph_name;not null;index:idx_concept_node,unique,priority:1" json:"graph_name"`
	NodeID    string    `gorm:"column:node_id;not null;index:idx_concept_node,unique,priority:2" json:"node_id"`

	Label  string `gorm:"column:label;not null;index" json:"label"`
	Domain string `gorm:"column:domain;index" json:"domain,omitempty"`

	Properties datatypes.JSON `gorm:"type:jsonb;column:properties" json:"properties,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptNode) TableName() string { return "concept_node" }

// ConceptEdge is a directed, typed relationship between two nodes of the
// same graph. Cycles are allowed; traversal is one-hop only.
type ConceptEdge struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GraphName string    `gorm:"column:graph_name;not null;index:idx_concept_edge,unique,priority:1" json:"graph_name"`
	EdgeID    string    `gorm:"column:edge_id;not null;index:idx_concept_edge,unique,priority:2" json:"edge_id"`

	StartNodeID string `gorm:"column:start_node_id;not null;index" json:"start_node_id"`
	EndNodeID   string `gorm:"column:end_node_id;not null;index" json:"end_node_id"`
	EdgeLabel   string `gorm:"column:edge_label;not null" json:"edge_label"`

	Properties datatypes.JSON `gorm:"type:jsonb;column:properties" json:"properties,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptEdge) TableName() string { return "concept_edge" }

// ChunkConceptLink ties a chunk to a concept node with a relevance score,
// letting hybrid queries walk chunk→concept and concept→chunk.
type ChunkConceptLink struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChunkID uuid.UUID `gorm:"type:uuid;not null;index:idx_chunk_concept,unique,priority:1" json:"chunk_id"`
	NodeID  string    `gorm:"column:node_id;not null;index:idx_chunk_concept,unique,priority:2" json:"node_id"`

	RelevanceScore float64 `gorm:"column:relevance_score;not null;default:0" json:"relevance_score"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ChunkConceptLink) TableName() string { return "chunk_concept_link" }
