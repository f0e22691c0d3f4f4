package app

import (
	"gorm.io/gorm"

	"github.com/lumenlearn/lumen-backend/internal/clients/redis"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/platform/neo4jdb"
	"github.com/lumenlearn/lumen-backend/internal/platform/openai"
	"github.com/lumenlearn/lumen-backend/internal/platform/qdrant"
	"github.com/lumenlearn/lumen-backend/internal/platform/vectorindex"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type Services struct {
	Retrieval services.RetrievalService
	Grounding services.GroundingService
	Knowledge services.KnowledgeService
	Mastery   services.MasteryService
	Insights  services.InsightsService
	Registry  services.SkillRegistryService
}

// wireServices builds the service graph. Qdrant, Neo4j, Redis and the
// language model are all optional: each degrades to a warn-and-continue
// when its environment is absent, so a bare Postgres is enough to boot.
func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, *neo4jdb.Client, redis.MasteryBus, error) {
	log.Info("Wiring services...")

	var vectors vectorindex.Store
	if qcfg, err := qdrant.ResolveConfigFromEnv(cfg.Retrieval.EmbeddingDim); err != nil {
		log.Warn("Qdrant disabled, falling back to exact search", "reason", err.Error())
	} else {
		store, err := qdrant.NewVectorStore(log, qcfg)
		if err != nil {
			return Services{}, nil, nil, err
		}
		vectors = store
	}

	neo, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j disabled", "reason", err.Error())
		neo = nil
	}

	bus, err := redis.NewMasteryBus(log)
	if err != nil {
		log.Warn("Redis mastery bus disabled", "reason", err.Error())
		bus = nil
	}

	var ai openai.Client
	if client, err := openai.NewClient(log); err != nil {
		log.Warn("Language model disabled, /api/answer unavailable", "reason", err.Error())
	} else {
		ai = client
	}

	retrieval := services.NewRetrievalService(log, repos.Chunk, repos.ConceptNode, repos.ConceptEdge, vectors, cfg.Retrieval)

	var grounding services.GroundingService
	if ai != nil {
		grounding = services.NewGroundingService(log, ai, retrieval, repos.ConceptNode, repos.ChunkConceptLink, cfg.Retrieval)
	}

	knowledge := services.NewKnowledgeService(db, log, repos.Chunk, repos.ConceptNode, repos.ConceptEdge, repos.ChunkConceptLink, vectors, neo, cfg.Retrieval)
	mastery := services.NewMasteryService(db, log, repos.Skill, repos.LearningEvent, repos.StudentSkillState, bus, cfg.Mastery)
	insights := services.NewInsightsService(log, repos.Skill, repos.StudentSkillState, cfg.Mastery)
	registry := services.NewSkillRegistryService(log, repos.Skill, repos.LearningEvent)

	return Services{
		Retrieval: retrieval,
		Grounding: grounding,
		Knowledge: knowledge,
		Mastery:   mastery,
		Insights:  insights,
		Registry:  registry,
	}, neo, bus, nil
}
