package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/annothub/annothub-backend/internal/db"
	"github.com/annothub/annothub-backend/internal/ingest"
	"github.com/annothub/annothub-backend/internal/observability"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/scheduler"
)

type App struct {
	Log          *logger.Logger
	DB           *gorm.DB
	Router       *gin.Engine
	Cfg          Config
	Repos        Repos
	Services     Services
	Orchestrator *ingest.Orchestrator
	Scheduler    *scheduler.Scheduler
	Metrics      *observability.Metrics
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

	cfg, err := LoadConfig()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.AnnotationsRoot, 0o755); err != nil {
		log.Sync()
		return nil, fmt.Errorf("create annotations root: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	metrics := observability.NewMetrics()
	reposet := wireRepos(theDB, log)
	orchestrator, counts := wirePipeline(cfg, reposet, metrics, log)
	serviceset := wireServices(cfg, reposet, orchestrator, counts, metrics, log)
	handlerset := wireHandlers(serviceset, log)
	router := wireRouter(cfg, handlerset, metrics, log)
	sched := scheduler.New(orchestrator, cfg.DownloadsCacheDir, cfg.DownloadsCacheTTL, log)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Orchestrator: orchestrator,
		Scheduler:    sched,
		Metrics:      metrics,
	}, nil
}
