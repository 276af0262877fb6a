package applicant_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"admissions-service/common/httputil"
	"admissions-service/common/logger"
	"admissions-service/internal/applicant"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(repo applicant.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := applicant.NewHandler(newService(repo, nil), logger.Discard(), false)
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))
	return router
}

func TestHandler_CreateApplicant(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		router := setupRouter(newMemoryRepo())

		body, _ := json.Marshal(validRequest())
		req := httptest.NewRequest(http.MethodPost, "/api/applicants", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp applicant.CreateResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, int64(1), resp.ID)
	})

	t.Run("MissingField", func(t *testing.T) {
		repo := newMemoryRepo()
		router := setupRouter(repo)

		payload := validRequest()
		payload.Email = ""
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/applicants", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp httputil.ErrorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Contains(t, resp.Details, "email is required")
		assert.Empty(t, repo.rows)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		router := setupRouter(newMemoryRepo())

		req := httptest.NewRequest(http.MethodPost, "/api/applicants", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_DeleteApplicant(t *testing.T) {
	repo := newMemoryRepo()
	router := setupRouter(repo)

	body, _ := json.Marshal(validRequest())
	req := httptest.NewRequest(http.MethodPost, "/api/applicants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)
	require.Len(t, repo.rows, 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/applicants/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/applicants/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/applicants/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
