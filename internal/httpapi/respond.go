package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nikbrunner/bookmarkplus/internal/bookmarks"
	"github.com/nikbrunner/bookmarkplus/internal/logger"
)

const maxBodyBytes = 10 << 20

var errBadRequest = errors.New("malformed request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusOf maps manager errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, bookmarks.ErrMissingField), errors.Is(err, bookmarks.ErrInvalidImport):
		return http.StatusBadRequest
	case errors.Is(err, bookmarks.ErrDuplicateURL), errors.Is(err, bookmarks.ErrVersionTooNew):
		return http.StatusConflict
	case errors.Is(err, bookmarks.ErrBookmarkNotFound), errors.Is(err, bookmarks.ErrFolderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", logger.Error(err))
	}
	writeMessage(w, status, err.Error())
}

// decodeBody reads a JSON request body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
