package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical details and the request ID, then
// returned to the client as the user-facing message, action and support
// code produced by core.MapError.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errInvalidID    = errors.New("invalid id: record not found")
	errInvalidBody  = errors.New("invalid request body")
	errFileTooLarge = errors.New("file too large")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes the mapped
// user message as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, statusCode)
}

// fail responds with the status derived from err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, err, statusFor(err))
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case core.IsValidationError(err),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidSpreadsheet),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden), errors.Is(err, core.ErrFormNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrUnknownForm), errors.Is(err, errInvalidID):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNotRegistered):
		return http.StatusNotAcceptable
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyUploads), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
