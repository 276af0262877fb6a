package scholarship_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"admissions-service/common/logger"
	"admissions-service/internal/scholarship"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_RegisterScholarship(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &memoryRepo{}
	router := gin.New()
	scholarship.NewHandler(newService(repo), logger.Discard(), false).RegisterRoutes(router.Group("/api"))

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/register-scholarship", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := post(`{"requestId": 11, "scholarshipId": 2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp scholarship.AssignResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.NotEmpty(t, resp.Message)

	assert.Equal(t, http.StatusBadRequest, post(`{"requestId": 11}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
	assert.Len(t, repo.rows, 1)
}
