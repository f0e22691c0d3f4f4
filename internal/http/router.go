package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/lumenlearn/lumen-backend/internal/http/handlers"
	httpMW "github.com/lumenlearn/lumen-backend/internal/http/middleware"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler    *httpH.HealthHandler
	RetrievalHandler *httpH.RetrievalHandler
	AnswerHandler    *httpH.AnswerHandler
	KnowledgeHandler *httpH.KnowledgeHandler
	SkillHandler     *httpH.SkillHandler
	EventHandler     *httpH.EventHandler
	InsightsHandler  *httpH.InsightsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Retrieval
		if cfg.RetrievalHandler != nil {
			api.POST("/search", cfg.RetrievalHandler.Search)
			api.GET("/concepts/:label/context", cfg.RetrievalHandler.ConceptContext)
		}

		// Grounded answering
		if cfg.AnswerHandler != nil {
			api.POST("/answer", cfg.AnswerHandler.Answer)
		}

		// Knowledge ingestion
		if cfg.KnowledgeHandler != nil {
			api.POST("/chunks", cfg.KnowledgeHandler.IngestChunks)
			api.POST("/concepts", cfg.KnowledgeHandler.UpsertConceptGraph)
		}

		// Skill registry
		if cfg.SkillHandler != nil {
			api.POST("/skills", cfg.SkillHandler.Upsert)
			api.GET("/skills", cfg.SkillHandler.List)
		}

		// Mastery tracking
		if cfg.EventHandler != nil {
			api.POST("/events", cfg.EventHandler.Record)
			api.GET("/learners/:id/events", cfg.EventHandler.ListByUser)
		}

		// Insights
		if cfg.InsightsHandler != nil {
			api.GET("/learners/:id/state", cfg.InsightsHandler.LearnerState)
			api.GET("/class/overview", cfg.InsightsHandler.ClassOverview)
		}
	}

	return r
}
