package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"admissions-service/common/logger"
	"admissions-service/common/telemetry"
	"admissions-service/internal/catalog"
	"admissions-service/internal/config"
	"admissions-service/internal/db"
	"admissions-service/internal/events"
	"admissions-service/internal/health"
	"admissions-service/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	redis     *redis.Client
	publisher events.Publisher
	telemetry *telemetry.Telemetry
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", BuildAttrs()...)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Log.Level != "" || cfg.Log.Format != "" {
		slogLogger = logger.NewWithOptions(logger.Options{Format: cfg.Log.Format, Level: cfg.Log.Level}).With(
			slog.String("service", ServiceName),
			slog.String("version", Version),
			slog.String("environment", cfg.Env),
		)
		slog.SetDefault(slogLogger)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	ctx := context.Background()

	tel, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Env:            cfg.Env,
		Exporter:       cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		Interval:       time.Duration(cfg.Telemetry.IntervalSeconds) * time.Second,
	}, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}

	domainMetrics, err := metrics.New(tel.Metrics.Meter())
	if err != nil {
		log.Fatalf("failed to initialize domain metrics: %v", err)
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := tel.Metrics.Database.RegisterDB(database.DB, tel.Metrics.Meter()); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, Models()...); err != nil {
		log.Fatal("failed to run migrations:", err)
	}
	if err := db.SeedCatalog(ctx, database, cfg.Seed.CatalogFile); err != nil {
		log.Fatal("failed to seed catalog:", err)
	}

	app := &App{
		config:    cfg,
		logger:    slogLogger,
		db:        database,
		telemetry: tel,
	}

	checks := map[string]health.Check{
		"postgres": database.PingContext,
	}

	cache := app.openCache(checks)

	publisher, err := events.Open(cfg.Events, slogLogger, tel.Metrics)
	if err != nil {
		slogLogger.Warn("failed to initialize event publisher, events disabled", "driver", cfg.Events.Driver, "error", err)
		publisher = events.NewNoop()
	} else {
		slogLogger.Info("event publisher initialized", "driver", cfg.Events.Driver)
	}
	app.publisher = publisher

	router := NewRouter(Components{
		Config:         cfg,
		DB:             database,
		Cache:          cache,
		Publisher:      publisher,
		Metrics:        tel.Metrics,
		Domain:         domainMetrics,
		Checks:         checks,
		MetricsHandler: tel.Handler(),
		Logger:         slogLogger,
	})

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) openCache(checks map[string]health.Check) catalog.Cache {
	switch a.config.Cache.Driver {
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.config.Cache.Redis.Address,
			Password: a.config.Cache.Redis.Password,
			DB:       a.config.Cache.Redis.DB,
		})
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
		a.logger.Info("catalog cache initialized", "driver", "redis", "address", a.config.Cache.Redis.Address)
		return catalog.NewRedisCache(a.redis, a.config.Cache.TTL())
	case "none":
		return catalog.NewNoopCache()
	}
	a.logger.Info("catalog cache initialized", "driver", "memory", "ttl", a.config.Cache.TTL())
	return catalog.NewMemoryCache(a.config.Cache.TTL())
}

func (a *App) Run() error {
	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	err := a.server.Shutdown(ctx)

	if a.publisher != nil {
		if cerr := a.publisher.Close(); cerr != nil {
			a.logger.Error("event publisher close error", "error", cerr)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	db.Close(a.db)
	if terr := a.telemetry.Shutdown(ctx, a.logger); terr != nil {
		a.logger.Error("telemetry shutdown error", "error", terr)
	}

	return err
}
