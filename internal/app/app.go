// Package app assembles the site's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/myproject/website/internal/api"
	"github.com/myproject/website/internal/api/handlers"
	"github.com/myproject/website/internal/backend"
	"github.com/myproject/website/internal/config"
	"github.com/myproject/website/internal/database"
	"github.com/myproject/website/internal/health"
	"github.com/myproject/website/internal/middleware"
	"github.com/myproject/website/internal/migration"
	"github.com/myproject/website/internal/repository"
	"github.com/myproject/website/internal/services"
	"github.com/sirupsen/logrus"
)

type App struct {
	Config *config.Config
	DB     *database.Manager
	Repos  *repository.RepositoryManager
	Engine *backend.Engine
	Cache  *database.Cache // nil without redis
	Logger *logrus.Logger
}

// Open connects to the database (and redis when configured) and builds the
// configured search backend.
func Open(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	dbManager, err := database.NewManager(&database.Config{
		Driver:      cfg.Database.Driver,
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Log.Level,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database manager: %w", err)
	}

	repos := repository.NewRepositoryManager(dbManager.DB)

	engine, err := backend.New(cfg, dbManager.DB, repos.Page, logger)
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to initialize %s search backend: %w", cfg.Search.Backend, err)
	}

	a := &App{
		Config: cfg,
		DB:     dbManager,
		Repos:  repos,
		Engine: engine,
		Logger: logger,
	}
	if dbManager.Redis != nil {
		a.Cache = database.NewCache(dbManager.Redis, logger)
	}

	logger.WithFields(logrus.Fields{
		"driver":  cfg.Database.Driver,
		"backend": engine.Name,
		"redis":   dbManager.Redis != nil,
	}).Info("Application initialized")
	return a, nil
}

// Migrate brings the schema up to date.
func (a *App) Migrate() error {
	return migration.NewRunner(a.DB.DB, a.Logger).RunMigrations(a.Config.Migrations.Path)
}

func (a *App) SearchService() *services.SearchService {
	return services.NewSearchService(a.Engine.Searcher, a.Logger)
}

func (a *App) IndexService() *services.IndexService {
	return services.NewIndexService(a.Repos.Page, a.Engine.Indexer, a.Logger)
}

// QueryLog returns the query-hit log, or nil without redis.
func (a *App) QueryLog() handlers.QueryLog {
	if a.Cache == nil {
		return nil
	}
	return a.Cache
}

// Server holds the HTTP-facing parts that the server process manages.
type Server struct {
	Router  *gin.Engine
	Search  *handlers.SearchHandler
	Checker *health.HealthChecker
}

// Server builds the router. The rate limiter may be nil.
func (a *App) Server(limiter *middleware.RateLimiter) (*Server, error) {
	settings := handlers.NewSEOSiteSettings(a.Repos.SEOSettings, a.Config.IsTest(), a.Logger)
	searchHandler := handlers.NewSearchHandler(a.SearchService(), settings, a.QueryLog(), a.Engine.Name, a.Logger)
	checker := health.NewHealthChecker(a.DB, a.Logger)

	router, err := api.NewRouter(api.Handlers{
		Search: searchHandler,
		Health: handlers.NewHealthHandler(checker),
		Pages:  handlers.NewPageHandler(a.Repos.Page, settings, a.Logger),
	}, api.RouterConfig{
		Mode:        a.Config.Server.Mode,
		RateLimiter: limiter,
		Settings:    settings,
		Logger:      a.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Server{Router: router, Search: searchHandler, Checker: checker}, nil
}

// Reindex rebuilds the backend index from the page store.
func (a *App) Reindex(ctx context.Context) (int, error) {
	return a.IndexService().Rebuild(ctx)
}

func (a *App) Close() error {
	return errors.Join(a.Engine.Close(), a.DB.Close())
}
