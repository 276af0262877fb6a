package httputil_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"admissions-service/common/apperror"
	"admissions-service/common/httputil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorBody(t *testing.T) {
	t.Run("ValidationKeepsMessageAndDetails", func(t *testing.T) {
		status, body := httputil.NewErrorBody(apperror.Validation("", "invalid input", "applicantId is required"), false)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid input", body.Error)
		assert.Equal(t, []string{"applicantId is required"}, body.Details)
		assert.Empty(t, body.Detail)
	})

	t.Run("QueryIsGenericInProduction", func(t *testing.T) {
		err := apperror.Query("insert applicant failed", errors.New("duplicate key"))
		status, body := httputil.NewErrorBody(err, false)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "internal server error", body.Error)
		assert.Empty(t, body.Detail)
	})

	t.Run("QueryIncludesDetailInDevelopment", func(t *testing.T) {
		err := apperror.Query("insert applicant failed", errors.New("duplicate key"))
		_, body := httputil.NewErrorBody(err, true)
		assert.Equal(t, "insert applicant failed", body.Error)
		assert.Contains(t, body.Detail, "duplicate key")
	})

	t.Run("PlacementKeepsCode", func(t *testing.T) {
		_, body := httputil.NewErrorBody(apperror.Placement("could not move document", errors.New("EXDEV")), false)
		assert.Equal(t, apperror.CodePlacementFailed, body.Code)
		assert.Equal(t, "could not move document", body.Error)
	})

	t.Run("ForeignError", func(t *testing.T) {
		status, body := httputil.NewErrorBody(errors.New("boom"), false)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, apperror.CodeUnexpectedFailure, body.Code)
	})
}

func TestAbortWithAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/missing", func(c *gin.Context) {
		httputil.AbortWithAppError(c, apperror.NotFound("scholarship not found"), false)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body httputil.ErrorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "scholarship not found", body.Error)
	assert.Equal(t, apperror.CodeNotFound, body.Code)
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.RespondWithJSON(w, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}
