package intake_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/logger"
	"admissions-service/internal/admission"
	"admissions-service/internal/applicant"
	"admissions-service/internal/document"
	"admissions-service/internal/intake"
	"admissions-service/internal/scholarship"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T, register func(r gin.IRouter)) *intake.HTTPClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	register(router.Group("/api"))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return intake.NewHTTPClient(srv.URL+"/api/", 5*time.Second, logger.Discard())
}

func TestHTTPClient_JSONCalls(t *testing.T) {
	var gotApplicant applicant.CreateRequest
	var gotRequest admission.CreateInput
	var gotRegister document.RegisterInput
	var gotScholarship scholarship.AssignInput
	var deleted []string

	client := setupServer(t, func(r gin.IRouter) {
		r.POST("/applicants", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&gotApplicant))
			c.JSON(http.StatusCreated, gin.H{"id": 10})
		})
		r.POST("/admission-requests", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&gotRequest))
			c.JSON(http.StatusCreated, gin.H{"id": 20, "message": "admission request registered"})
		})
		r.POST("/register-documents", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&gotRegister))
			c.JSON(http.StatusOK, gin.H{"success": true, "documentsRegistered": len(gotRegister.Documents)})
		})
		r.POST("/register-scholarship", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&gotScholarship))
			c.JSON(http.StatusCreated, gin.H{"id": 30, "message": "scholarship registered"})
		})
		r.DELETE("/admission-requests/:id", func(c *gin.Context) {
			deleted = append(deleted, "request-"+c.Param("id"))
			c.Status(http.StatusNoContent)
		})
		r.DELETE("/applicants/:id", func(c *gin.Context) {
			deleted = append(deleted, "applicant-"+c.Param("id"))
			c.Status(http.StatusNoContent)
		})
	})
	ctx := context.Background()

	id, err := client.CreateApplicant(ctx, anaSession().Applicant)
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)
	assert.Equal(t, "Pérez", gotApplicant.LastName)

	id, err = client.CreateAdmissionRequest(ctx, admission.CreateInput{Date: "2026-10-14", Status: admission.StatusPending, ApplicantID: 10, CareerID: 1, ModalityID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(20), id)
	assert.Equal(t, admission.StatusPending, gotRequest.Status)

	n, err := client.RegisterDocuments(ctx, document.RegisterInput{
		Documents:   []document.RegisterEntry{{RequiredDocumentID: 1, Path: "uploads/applicant-10/a.pdf"}},
		RequestID:   20,
		ApplicantID: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(20), gotRegister.RequestID)

	id, err = client.RegisterScholarship(ctx, scholarship.AssignInput{RequestID: 20, ScholarshipID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(30), id)
	assert.Equal(t, int64(2), gotScholarship.ScholarshipID)

	require.NoError(t, client.DeleteAdmissionRequest(ctx, 20))
	require.NoError(t, client.DeleteApplicant(ctx, 10))
	assert.Equal(t, []string{"request-20", "applicant-10"}, deleted)
}

func TestHTTPClient_UploadDocuments(t *testing.T) {
	client := setupServer(t, func(r gin.IRouter) {
		r.POST("/upload-documents", func(c *gin.Context) {
			form, err := c.MultipartForm()
			require.NoError(t, err)

			assert.Equal(t, []string{"10"}, form.Value["applicantId"])
			var ids []string
			require.NoError(t, json.Unmarshal([]byte(form.Value["documentIds"][0]), &ids))
			assert.Equal(t, []string{"1", "2"}, ids)

			files := form.File["documents"]
			require.Len(t, files, 2)
			assert.Equal(t, "acta.pdf", files[0].Filename)

			f, err := files[1].Open()
			require.NoError(t, err)
			content, err := io.ReadAll(f)
			require.NoError(t, err)
			_ = f.Close()
			assert.Equal(t, "%PDF-1.4", string(content))

			c.JSON(http.StatusOK, document.UploadResult{
				Success:     true,
				DocumentIDs: ids,
				Documents: []document.PlacedDocument{
					{OriginalName: "acta.pdf", FinalPath: "uploads/applicant-10/x.pdf", Extension: ".pdf", RequiredDocumentID: "1"},
					{OriginalName: "curp.pdf", FinalPath: "uploads/applicant-10/y.pdf", Extension: ".pdf", RequiredDocumentID: "2"},
				},
			})
		})
	})

	res, err := client.UploadDocuments(context.Background(), 10, []intake.File{pdf(1, "acta.pdf"), pdf(2, "curp.pdf")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, "2", res.Documents[1].RequiredDocumentID)
}

func TestHTTPClient_Errors(t *testing.T) {
	client := setupServer(t, func(r gin.IRouter) {
		r.POST("/upload-documents", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "missing mandatory documents",
				"code":    apperror.CodeMissingMandatory,
				"details": []string{"CURP"},
			})
		})
		r.GET("/scholarships/:id", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scholarship not found", "code": apperror.CodeNotFound})
		})
		r.POST("/register-documents", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": apperror.CodeQueryFailed})
		})
		r.DELETE("/applicants/:id", func(c *gin.Context) {
			c.String(http.StatusBadGateway, "upstream down")
		})
	})
	ctx := context.Background()

	t.Run("Validation", func(t *testing.T) {
		_, err := client.UploadDocuments(ctx, 1, []intake.File{pdf(1, "a.pdf")})
		assert.ErrorIs(t, err, &apperror.Error{Kind: apperror.KindValidation, Code: apperror.CodeMissingMandatory})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, []string{"CURP"}, appErr.Details)
		assert.Equal(t, "missing mandatory documents", appErr.Message)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := client.Scholarship(ctx, 99)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("ServerFailure", func(t *testing.T) {
		_, err := client.RegisterDocuments(ctx, document.RegisterInput{})
		assert.ErrorIs(t, err, apperror.ErrQuery)
	})

	t.Run("NonJSONBody", func(t *testing.T) {
		err := client.DeleteApplicant(ctx, 1)
		require.Error(t, err)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, "upstream down", appErr.Message)
		assert.Equal(t, apperror.CodeUnexpectedFailure, appErr.Code)
	})

	t.Run("Unreachable", func(t *testing.T) {
		dead := intake.NewHTTPClient("http://127.0.0.1:1/api", time.Second, logger.Discard())
		_, err := dead.Careers(ctx)
		require.Error(t, err)
		_, ok := apperror.As(err)
		assert.False(t, ok)
	})
}
