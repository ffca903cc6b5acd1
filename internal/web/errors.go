package web

// errors.go provides unified error response handling for the API.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err)
//  3. The error is mapped via workflow.MapError to a user-facing message
//  4. The technical error is logged with the request ID for correlation
//  5. The user message is returned as JSON with a status from statusFor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/history"
	"github.com/feedflow/feedflow/internal/mapping"
	"github.com/feedflow/feedflow/internal/schema"
	"github.com/feedflow/feedflow/internal/workflow"
)

// ErrorResponse is the JSON structure for API error responses. Code is
// machine-readable; Message and Action are for people.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and returns the mapped user
// message with an appropriate status code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := workflow.MapError(err)
	statusCode := statusFor(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, statusCode)
}

// statusFor picks the HTTP status for a pipeline error. Unknown errors are
// treated as client mistakes rather than server faults; the pipeline does
// not produce internal errors from valid requests.
func statusFor(err error) int {
	var tooLarge *feed.FileTooLargeError
	var missing *mapping.MissingRequiredFieldsError

	switch {
	case errors.Is(err, workflow.ErrSessionNotFound),
		errors.Is(err, history.ErrNotFound),
		errors.Is(err, mapping.ErrCustomFieldNotFound),
		errors.Is(err, schema.ErrFieldNotFound),
		errors.Is(err, schema.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrNoDataset),
		errors.Is(err, workflow.ErrNotValidated),
		errors.Is(err, workflow.ErrSchemaNotGenerated),
		errors.Is(err, workflow.ErrNotFinalized):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg workflow.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// decodeJSON reads a request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
