package domain

import (
	"github.com/lumenlearn/lumen-backend/internal/domain/knowledge"
	"github.com/lumenlearn/lumen-backend/internal/domain/tracking"
)

// Aliases so callers can import a single `domain` package.

type (
	Chunk            = knowledge.Chunk
	ConceptNode      = knowledge.ConceptNode
	ConceptEdge      = knowledge.ConceptEdge
	ChunkConceptLink = knowledge.ChunkConceptLink

	Skill             = tracking.Skill
	LearningEvent     = tracking.LearningEvent
	StudentSkillState = tracking.StudentSkillState
)

const (
	EventTypeStudentAction = tracking.EventTypeStudentAction
	EventTypeAgentAction   = tracking.EventTypeAgentAction

	StatusMastered   = tracking.StatusMastered
	StatusLearning   = tracking.StatusLearning
	StatusStruggling = tracking.StatusStruggling
)
