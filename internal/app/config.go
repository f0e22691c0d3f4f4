package app

import (
	"github.com/lumenlearn/lumen-backend/internal/platform/envutil"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type Config struct {
	Port      string
	Retrieval services.RetrievalParams
	Mastery   services.MasteryParams
}

func LoadConfig(log *logger.Logger) Config {
	rp := services.DefaultRetrievalParams()
	rp.EmbeddingDim = envutil.GetEnvAsInt("EMBEDDING_DIM", rp.EmbeddingDim, log)
	rp.DefaultThreshold = envutil.GetEnvAsFloat("SIMILARITY_THRESHOLD", rp.DefaultThreshold, log)
	rp.DefaultLimit = envutil.GetEnvAsInt("SEARCH_LIMIT", rp.DefaultLimit, log)

	mp := services.DefaultMasteryParams()
	mp.StepCorrect = envutil.GetEnvAsFloat("MASTERY_STEP_CORRECT", mp.StepCorrect, log)
	mp.StepIncorrect = envutil.GetEnvAsFloat("MASTERY_STEP_INCORRECT", mp.StepIncorrect, log)
	mp.SeedProbability = envutil.GetEnvAsFloat("MASTERY_SEED_PROBABILITY", mp.SeedProbability, log)
	mp.MasteredAbove = envutil.GetEnvAsFloat("MASTERY_MASTERED_ABOVE", mp.MasteredAbove, log)
	mp.StrugglingBelow = envutil.GetEnvAsFloat("MASTERY_STRUGGLING_BELOW", mp.StrugglingBelow, log)
	mp.StrugglingMinAttempts = envutil.GetEnvAsInt("MASTERY_STRUGGLING_MIN_ATTEMPTS", mp.StrugglingMinAttempts, log)
	mp.RetryBudget = envutil.GetEnvAsInt("MASTERY_RETRY_BUDGET", mp.RetryBudget, log)

	return Config{
		Port:      envutil.GetEnv("PORT", "8080", log),
		Retrieval: rp,
		Mastery:   mp,
	}
}
