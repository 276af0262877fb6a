package applicant

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
	router.POST("/applicants", h.CreateApplicant)
	router.DELETE("/applicants/:id", h.DeleteApplicant)
}

func (h *Handler) CreateApplicant(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid request body", err.Error()), h.debug)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "creating applicant", "email", req.Email)
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "applicant created", "applicant_id", created.ID)
	c.JSON(http.StatusCreated, CreateResponse{ID: created.ID})
}

func (h *Handler) DeleteApplicant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid applicant id"), h.debug)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "deleting applicant", "applicant_id", id)
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindNotFound:
		h.logger.InfoContext(c.Request.Context(), "applicant request rejected", "error", err)
	default:
		h.logger.ErrorContext(c.Request.Context(), "applicant request failed", "error", err)
	}
	httputil.AbortWithAppError(c, err, h.debug)
}
