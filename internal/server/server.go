package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dutoan_backend/internal/config"
	"dutoan_backend/internal/database"
	"dutoan_backend/internal/handlers"
	"dutoan_backend/internal/middlewares"
	"dutoan_backend/internal/repositories"
	"dutoan_backend/internal/routes"
	"dutoan_backend/internal/services"
)

// NewServer opens the configured project store and returns the HTTP
// server together with a function releasing the store's connections.
func NewServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*http.Server, func(), error) {
	store, closeStore, err := NewProjectStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(cfg, log, store),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server, closeStore, nil
}

// NewProjectStore connects the driver named in cfg and makes sure the
// backing document exists.
func NewProjectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.ProjectStore, func(), error) {
	var (
		store   repositories.ProjectStore
		cleanup = func() {}
	)

	switch cfg.Storage.Driver {
	case config.DriverFile:
		store = repositories.NewFileProjectRepository(cfg.Storage.ProjectsFile)

	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store = repositories.NewProjectRepository(pool)
		cleanup = pool.Close

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr), zap.String("key", cfg.Redis.Key))

		store = repositories.NewRedisRepository(rdb, cfg.Redis.Key)
		cleanup = func() { rdb.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Storage.Driver)
	}

	if err := store.Ensure(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize %s store: %w", store.Driver(), err)
	}
	log.Info("Project store ready", zap.String("driver", store.Driver()))

	return store, cleanup, nil
}

// NewRouter wires services, handlers and middleware over store.
func NewRouter(cfg *config.Config, log *zap.Logger, store repositories.ProjectStore) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Dependency injection
	projectService := services.NewProjectService(store, log)
	statisticsService := services.NewStatisticsService(projectService)
	exportService := services.NewExportService(projectService, cfg.Storage.ExportDir, log)
	masterDataService := services.NewMasterDataService(cfg.Storage.MasterDataFile)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.FrontendURL)))
	router.Use(middlewares.RequestID(log))
	router.Use(middlewares.AccessLog(log))
	router.Use(middlewares.Metrics())

	routes.RegisterRoutes(router, routes.Handlers{
		Project:    handlers.NewProjectHandler(projectService, log),
		Statistics: handlers.NewStatisticsHandler(statisticsService),
		Export:     handlers.NewExportHandler(exportService, log),
		MasterData: handlers.NewMasterDataHandler(masterDataService, log),
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store.Driver()),
	})

	return router
}

// corsConfig allows every origin for "*", otherwise the comma separated
// list in frontendURL.
func corsConfig(frontendURL string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middlewares.RequestIDHeader}
	c.ExposeHeaders = []string{"Content-Disposition", middlewares.RequestIDHeader}
	c.AllowCredentials = true

	var origins []string
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
