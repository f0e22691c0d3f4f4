package app

import (
	httpH "github.com/lumenlearn/lumen-backend/internal/http/handlers"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Retrieval *httpH.RetrievalHandler
	Answer    *httpH.AnswerHandler
	Knowledge *httpH.KnowledgeHandler
	Skill     *httpH.SkillHandler
	Event     *httpH.EventHandler
	Insights  *httpH.InsightsHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Retrieval: httpH.NewRetrievalHandler(svcs.Retrieval),
		Answer:    httpH.NewAnswerHandler(svcs.Grounding),
		Knowledge: httpH.NewKnowledgeHandler(svcs.Knowledge),
		Skill:     httpH.NewSkillHandler(svcs.Registry),
		Event:     httpH.NewEventHandler(svcs.Mastery, svcs.Registry),
		Insights:  httpH.NewInsightsHandler(svcs.Insights),
	}
}
