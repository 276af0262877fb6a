package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"admissions-service/common/logger"
	"admissions-service/internal/catalog"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := catalog.NewService(newFakeRepo(), nil, logger.Discard())
	handler := catalog.NewHandler(svc, logger.Discard(), false)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))
	return router
}

func TestHandler(t *testing.T) {
	router := setupRouter(t)

	t.Run("RequiredDocuments", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/required-documents", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var docs []catalog.RequiredDocument
		require.NoError(t, json.NewDecoder(w.Body).Decode(&docs))
		assert.Len(t, docs, 3)
	})

	t.Run("RequiredDocumentsMandatoryOnly", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/required-documents?mandatory=true", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var docs []catalog.RequiredDocument
		require.NoError(t, json.NewDecoder(w.Body).Decode(&docs))
		assert.Len(t, docs, 2)
		for _, d := range docs {
			assert.True(t, d.Mandatory)
		}
	})

	t.Run("Careers", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/careers", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":3,"name":"Software Engineering"}]`, w.Body.String())
	})

	t.Run("ScholarshipByID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scholarships/2", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var s catalog.Scholarship
		require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
		assert.Equal(t, int64(2), s.ID)
		assert.Equal(t, 9600.0, s.AnnualAmount)
	})

	t.Run("ScholarshipNotFound", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scholarships/99", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "scholarship not found")
	})

	t.Run("ScholarshipInvalidID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scholarships/abc", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
