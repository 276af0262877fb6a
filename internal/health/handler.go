package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"admissions-service/common/metrics"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Check probes a single dependency.
type Check func(ctx context.Context) error

type Handler struct {
	checks  map[string]Check
	metrics *metrics.HealthMetrics
}

func NewHandler(checks map[string]Check, m *metrics.HealthMetrics) *Handler {
	if checks == nil {
		checks = map[string]Check{}
	}
	return &Handler{
		checks:  checks,
		metrics: m,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ready", Dependencies: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		start := time.Now()
		err := h.checks[name](ctx)
		cancel()

		h.metrics.RecordDependencyCheck(c.Request.Context(), name, time.Since(start), err)
		if err != nil {
			resp.Dependencies[name] = err.Error()
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[name] = "up"
	}

	c.JSON(code, resp)
}
