package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"admissions-service/common/apperror"
	"admissions-service/common/httputil"

	"github.com/gin-gonic/gin"
)

const taggedPartPrefix = "document_"

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
	router.POST("/upload-documents", h.UploadDocuments)
	router.POST("/register-documents", h.RegisterDocuments)
}

func (h *Handler) UploadDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid multipart form", err.Error()), h.debug)
		return
	}
	defer func() { _ = form.RemoveAll() }()

	in := UploadInput{
		ApplicantID: firstValue(form.Value["applicantId"]),
		DocumentIDs: ParseDocumentIDs(firstValue(form.Value["documentIds"])),
	}
	for _, fh := range form.File["documents"] {
		in.Documents = append(in.Documents, fromFileHeader(fh))
	}

	tagged := make([]string, 0, len(form.File))
	for name := range form.File {
		if strings.HasPrefix(name, taggedPartPrefix) {
			tagged = append(tagged, name)
		}
	}
	sort.Strings(tagged)
	for _, name := range tagged {
		for _, fh := range form.File[name] {
			in.Tagged = append(in.Tagged, TaggedUpload{
				Upload:             fromFileHeader(fh),
				RequiredDocumentID: strings.TrimPrefix(name, taggedPartPrefix),
			})
		}
	}

	result, err := h.service.Upload(c.Request.Context(), in)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "document upload failed", "applicant_id", in.ApplicantID, "error", err)
		httputil.AbortWithAppError(c, err, h.debug)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "documents placed", "applicant_id", in.ApplicantID, "count", len(result.Documents))
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RegisterDocuments(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.AbortWithAppError(c, apperror.Validation("", "invalid request body", err.Error()), h.debug)
		return
	}

	result, err := h.service.Register(c.Request.Context(), in)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "document registration failed", "request_id", in.RequestID, "error", err)
		httputil.AbortWithAppError(c, err, h.debug)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "documents registered", "request_id", in.RequestID, "count", result.DocumentsRegistered)
	c.JSON(http.StatusOK, result)
}

// ParseDocumentIDs decodes the positional documentIds field. Anything that
// is not a JSON array yields an empty list.
func ParseDocumentIDs(raw string) []string {
	ids := []string{}
	if strings.TrimSpace(raw) == "" {
		return ids
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var values []any
	if err := dec.Decode(&values); err != nil {
		return ids
	}

	for _, v := range values {
		switch id := v.(type) {
		case string:
			ids = append(ids, id)
		case json.Number:
			ids = append(ids, numberID(id))
		case nil:
			ids = append(ids, "")
		default:
			ids = append(ids, fmt.Sprint(id))
		}
	}
	return ids
}

// numberID renders whole numbers such as 3.0 or 3e0 the way catalog ids
// are written.
func numberID(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func fromFileHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
