package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"admissions-service/common/apperror"
	"admissions-service/common/httputil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	debug   bool
}

func NewHandler(service Service, logger *slog.Logger, debug bool) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		debug:   debug,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/careers", h.ListCareers)
	router.GET("/modalities", h.ListModalities)
	router.GET("/required-documents", h.ListRequiredDocuments)
	router.GET("/scholarships", h.ListScholarships)
	router.GET("/scholarships/:id", h.GetScholarship)
}

func (h *Handler) ListCareers(c *gin.Context) {
	careers, err := h.service.Careers(c.Request.Context())
	h.respond(c, careers, err)
}

func (h *Handler) ListModalities(c *gin.Context) {
	modalities, err := h.service.Modalities(c.Request.Context())
	h.respond(c, modalities, err)
}

// ListRequiredDocuments returns every document type; ?mandatory=true keeps
// only the mandatory ones.
func (h *Handler) ListRequiredDocuments(c *gin.Context) {
	mandatoryOnly, _ := strconv.ParseBool(c.Query("mandatory"))
	docs, err := h.service.RequiredDocuments(c.Request.Context(), mandatoryOnly)
	h.respond(c, docs, err)
}

func (h *Handler) ListScholarships(c *gin.Context) {
	scholarships, err := h.service.Scholarships(c.Request.Context())
	h.respond(c, scholarships, err)
}

func (h *Handler) GetScholarship(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid scholarship id"), h.debug)
		return
	}

	scholarship, err := h.service.Scholarship(c.Request.Context(), id)
	h.respond(c, scholarship, err)
}

func (h *Handler) respond(c *gin.Context, payload any, err error) {
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "catalog lookup failed", "path", c.FullPath(), "error", err)
		httputil.AbortWithAppError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, payload)
}
