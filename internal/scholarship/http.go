package scholarship

import (
	"log/slog"
	"net/http"

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
	router.POST("/register-scholarship", h.RegisterScholarship)
}

func (h *Handler) RegisterScholarship(c *gin.Context) {
	var in AssignInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid request body", err.Error()), h.debug)
		return
	}

	a, err := h.service.Assign(c.Request.Context(), in)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "scholarship registration failed", "request_id", in.RequestID, "error", err)
		httputil.AbortWithAppError(c, err, h.debug)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "scholarship assigned", "request_id", a.AdmissionRequestID, "scholarship_id", a.ScholarshipID)
	c.JSON(http.StatusCreated, AssignResponse{
		ID:      a.ID,
		Message: "scholarship registered",
	})
}
