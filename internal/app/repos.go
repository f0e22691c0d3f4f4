package app

import (
	"gorm.io/gorm"

	knowledgerepos "github.com/lumenlearn/lumen-backend/internal/data/repos/knowledge"
	trackingrepos "github.com/lumenlearn/lumen-backend/internal/data/repos/tracking"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type Repos struct {
	Chunk            knowledgerepos.ChunkRepo
	ConceptNode      knowledgerepos.ConceptNodeRepo
	ConceptEdge      knowledgerepos.ConceptEdgeRepo
	ChunkConceptLink knowledgerepos.ChunkConceptLinkRepo

	Skill             trackingrepos.SkillRepo
	LearningEvent     trackingrepos.LearningEventRepo
	StudentSkillState trackingrepos.StudentSkillStateRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Chunk:            knowledgerepos.NewChunkRepo(db, log),
		ConceptNode:      knowledgerepos.NewConceptNodeRepo(db, log),
		ConceptEdge:      knowledgerepos.NewConceptEdgeRepo(db, log),
		ChunkConceptLink: knowledgerepos.NewChunkConceptLinkRepo(db, log),

		Skill:             trackingrepos.NewSkillRepo(db, log),
		LearningEvent:     trackingrepos.NewLearningEventRepo(db, log),
		StudentSkillState: trackingrepos.NewStudentSkillStateRepo(db, log),
	}
}
