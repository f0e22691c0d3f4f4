package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/platform/envutil"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the configured database. DB_DRIVER=sqlite uses a local file
// (single-process deployments); anything else connects to Postgres.
func New(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	driver := envutil.GetEnv("DB_DRIVER", "postgres", logg)
	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := envutil.GetEnv("SQLITE_PATH", "lumen.db", logg)
		gdb, err = gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
		}
	default:
		host := envutil.GetEnv("POSTGRES_HOST", "localhost", logg)
		port := envutil.GetEnv("POSTGRES_PORT", "5432", logg)
		user := envutil.GetEnv("POSTGRES_USER", "postgres", logg)
		password := envutil.GetEnv("POSTGRES_PASSWORD", "", logg)
		name := envutil.GetEnv("POSTGRES_NAME", "lumen", logg)

		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			user, password, host, port, name,
		)
		gdb, err = gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrateAll() error {
	return AutoMigrate(s.db)
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Chunk{},
		&types.ConceptNode{},
		&types.ConceptEdge{},
		&types.ChunkConceptLink{},

		&types.Skill{},
		&types.LearningEvent{},
		&types.StudentSkillState{},
	)
}
