package httputil

import (
	"encoding/json"
	"net/http"

	"admissions-service/common/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every error response the API writes.
type ErrorBody struct {
	Error   string        `json:"error"`
	Code    apperror.Code `json:"code,omitempty"`
	Details []string      `json:"details,omitempty"`
	Detail  string        `json:"detail,omitempty"`
}

// RespondWithError writes an error response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorBody{Error: message})
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// NewErrorBody builds the response for err. Query and storage failures get
// a generic message unless debug is set, in which case the cause chain is
// included as detail.
func NewErrorBody(err error, debug bool) (int, ErrorBody) {
	status := apperror.StatusCode(err)

	appErr, ok := apperror.As(err)
	if !ok {
		body := ErrorBody{Error: "internal server error", Code: apperror.CodeUnexpectedFailure}
		if debug {
			body.Detail = err.Error()
		}
		return status, body
	}

	body := ErrorBody{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}
	if status >= http.StatusInternalServerError {
		if debug {
			body.Detail = err.Error()
		} else if appErr.Kind == apperror.KindQuery {
			body.Error = "internal server error"
		}
	}
	return status, body
}

// AbortWithAppError writes err as JSON and stops the gin handler chain.
func AbortWithAppError(c *gin.Context, err error, debug bool) {
	status, body := NewErrorBody(err, debug)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
