package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/lumenlearn/lumen-backend/internal/clients/redis"
	"github.com/lumenlearn/lumen-backend/internal/data/db"
	lhttp "github.com/lumenlearn/lumen-backend/internal/http"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/platform/neo4jdb"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *lhttp.Server
	Cfg      Config
	Repos    Repos
	Services Services

	neo *neo4jdb.Client
	bus redis.MasteryBus
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbs, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbs.DB()

	reposet := wireRepos(theDB, log)

	serviceset, neo, bus, err := wireServices(theDB, log, cfg, reposet)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	server := lhttp.NewServer(lhttp.RouterConfig{
		Log:              log,
		HealthHandler:    handlerset.Health,
		RetrievalHandler: handlerset.Retrieval,
		AnswerHandler:    handlerset.Answer,
		KnowledgeHandler: handlerset.Knowledge,
		SkillHandler:     handlerset.Skill,
		EventHandler:     handlerset.Event,
		InsightsHandler:  handlerset.Insights,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Server:   server,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		neo:      neo,
		bus:      bus,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.bus != nil {
		_ = a.bus.Close()
	}
	if a.neo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.neo.Close(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
