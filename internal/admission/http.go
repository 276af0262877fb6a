package admission

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
	router.POST("/admission-requests", h.CreateRequest)
	router.DELETE("/admission-requests/:id", h.DeleteRequest)
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid request body", err.Error()), h.debug)
		return
	}

	created, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.logger.InfoContext(c.Request.Context(), "admission request rejected", "applicant_id", in.ApplicantID, "error", err)
		httputil.AbortWithAppError(c, err, h.debug)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "admission request created", "request_id", created.ID, "applicant_id", created.ApplicantID)
	c.JSON(http.StatusCreated, CreateResponse{
		ID:      created.ID,
		Message: "admission request registered",
	})
}

func (h *Handler) DeleteRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid admission request id"), h.debug)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.logger.WarnContext(c.Request.Context(), "admission request delete failed", "request_id", id, "error", err)
		httputil.AbortWithAppError(c, err, h.debug)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "admission request deleted", "request_id", id)
	c.Status(http.StatusNoContent)
}
