package web

// errors.go provides unified error response handling for the web layer.
//
// Every error leaves the process in one JSON shape with a machine-readable
// code. Technical detail is logged server-side with the request ID for
// correlation; load failures map to coarse categories so filesystem paths
// never reach clients.

import (
	"errors"
	"log/slog"
	"net/http"

	"csvserve/internal/dataset"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs the underlying error and writes the client-safe body.
// For responses with no server-side cause worth recording, such as a
// not-ready 503, use writeError directly.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	slog.Error("request error", args...)

	writeError(w, status, code, message)
}

// loadFailure maps a load error to a client-safe code and message.
func loadFailure(err error) (code, message string) {
	switch {
	case errors.Is(err, dataset.ErrSourceUnavailable):
		return "SOURCE_UNAVAILABLE", "source file could not be read"
	case errors.Is(err, dataset.ErrMalformedRow):
		return "MALFORMED_SOURCE", "source file is malformed"
	default:
		return "LOAD_FAILED", "dataset load failed"
	}
}
