package web

// errors.go provides unified error response handling for the API.
//
// Handlers call respondError with whatever the pipeline returned; the
// sentinel errors decide the HTTP status and the technical detail is
// logged server-side with the request ID for correlation.

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/assetdesk/importer/internal/logging"
	"github.com/assetdesk/importer/internal/pipeline"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError maps an error to an HTTP status and writes the JSON
// response. Unknown errors become 500s with a generic message so
// internals never leak to the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	msg := "internal server error"

	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		status = http.StatusNotFound
		code = "not_found"
		msg = err.Error()
	case errors.Is(err, pipeline.ErrConflict):
		status = http.StatusConflict
		code = "conflict"
		msg = err.Error()
	case errors.Is(err, pipeline.ErrInvalidFile):
		status = http.StatusBadRequest
		code = "invalid_file"
		msg = err.Error()
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
		code = "bad_request"
		msg = err.Error()
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", chimw.GetReqID(r.Context()),
	)

	respondJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// errBadRequest marks errors caused by malformed client input.
var errBadRequest = errors.New("bad request")

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
