package httpapi

import (
	"encoding/json"
	"net/http"

	"orchd/internal/backend"
	"orchd/internal/orchestrator"
	"orchd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps orchestrator and backend errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case orchestrator.IsNotFound(err):
		return http.StatusNotFound
	case orchestrator.IsModelInUse(err), orchestrator.IsInvalidState(err):
		return http.StatusConflict
	case orchestrator.IsInsufficientVRAM(err),
		backend.IsLoadTimeout(err),
		backend.IsLoadRefused(err),
		backend.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case backend.IsGenerationTimeout(err):
		return http.StatusGatewayTimeout
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status and writes the JSON error payload.
func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusForError(err), err.Error())
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
