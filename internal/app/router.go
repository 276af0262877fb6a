package app

import (
	"log/slog"
	"net/http"

	commonmetrics "admissions-service/common/metrics"
	"admissions-service/internal/admission"
	"admissions-service/internal/applicant"
	"admissions-service/internal/catalog"
	"admissions-service/internal/config"
	"admissions-service/internal/document"
	"admissions-service/internal/events"
	"admissions-service/internal/health"
	"admissions-service/internal/metrics"
	"admissions-service/internal/middleware"
	"admissions-service/internal/scholarship"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
)

// Components are the collaborators the HTTP surface is assembled from.
type Components struct {
	Config         *config.Config
	DB             bun.IDB
	Cache          catalog.Cache
	Publisher      events.Publisher
	Metrics        *commonmetrics.Metrics
	Domain         *metrics.Metrics
	Checks         map[string]health.Check
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// Models lists every table in migration order. Referenced tables come first.
func Models() []any {
	return append(catalog.Models(),
		(*applicant.Applicant)(nil),
		(*admission.Request)(nil),
		(*document.SubmittedDocument)(nil),
		(*scholarship.Assignment)(nil),
	)
}

// NewRouter wires repositories, services and handlers under /api.
func NewRouter(c Components) *gin.Engine {
	cfg := c.Config
	debug := cfg.IsDevelopment()

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(c.Logger, "/health", "/ready", "/metrics"))
	router.MaxMultipartMemory = cfg.Storage.MaxFileSize() * 4

	health.NewHandler(c.Checks, c.Metrics.Health).RegisterRoutes(router)
	if c.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(c.MetricsHandler))
	}

	catalogRepo := catalog.NewRepository(c.DB, c.Metrics)
	catalogService := catalog.NewService(catalogRepo, c.Cache, c.Logger)

	staging := document.NewStaging(cfg.Storage, c.Logger)
	placement := document.NewPlacement(cfg.Storage, staging)

	applicantRepo := applicant.NewRepository(c.DB, c.Metrics)
	applicantService := applicant.NewService(applicantRepo, placement, c.Publisher, c.Logger, c.Domain)

	admissionRepo := admission.NewRepository(c.DB, c.Metrics)
	admissionService := admission.NewService(admissionRepo, applicantService, c.Publisher, c.Logger, c.Domain)

	documentService := document.NewService(document.Dependencies{
		Repository: document.NewRepository(c.DB, c.Metrics),
		Staging:    staging,
		Placement:  placement,
		Catalog:    catalogService,
		Applicants: applicantService,
		Requests:   admissionService,
		Publisher:  c.Publisher,
		Logger:     c.Logger,
		Metrics:    c.Domain,
	})

	scholarshipRepo := scholarship.NewRepository(c.DB, c.Metrics)
	scholarshipService := scholarship.NewService(scholarshipRepo, admissionService, catalogService, c.Publisher, c.Logger, c.Domain)

	api := router.Group("/api")
	catalog.NewHandler(catalogService, c.Logger, debug).RegisterRoutes(api)
	applicant.NewHandler(applicantService, c.Logger, debug).RegisterRoutes(api)
	admission.NewHandler(admissionService, c.Logger, debug).RegisterRoutes(api)
	document.NewHandler(documentService, c.Logger, debug).RegisterRoutes(api)
	scholarship.NewHandler(scholarshipService, c.Logger, debug).RegisterRoutes(api)

	return router
}
