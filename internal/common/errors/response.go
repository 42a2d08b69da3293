// internal/common/errors/response.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"
)

// DetailResponse is the body written for every failed request.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Logger is the subset of the logger the response writer needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ResponseWriter turns errors into {detail} JSON responses.
type ResponseWriter struct {
	logger Logger
}

func NewResponseWriter(logger Logger) *ResponseWriter {
	return &ResponseWriter{logger: logger}
}

// Normalize converts any error into a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// Write normalizes err and writes its status and detail body.
func (rw *ResponseWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	status := stdErr.HTTPStatus()

	if status >= http.StatusInternalServerError && rw.logger != nil {
		rw.logger.Error("request failed", map[string]interface{}{
			"method":        r.Method,
			"path":          r.URL.Path,
			"errorCode":     string(stdErr.Code),
			"details":       stdErr.Details,
			"errorCategory": GetErrorCategory(stdErr.Code),
		})
	}

	WriteJSON(w, status, DetailResponse{Detail: stdErr.Message})
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
