package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/theLastOfCats/novel-library-server/internal/model"
)

const unexpectedError = "Unexpected error occurred."

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSONError writes a JSON error response
func JSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// WriteError translates err into a status code. Errors outside the model taxonomy are logged and
// answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		JSONError(w, model.Message(err, "Invalid request"), http.StatusBadRequest)
	case errors.Is(err, model.ErrDuplicate):
		JSONError(w, model.Message(err, "Novel already exists"), http.StatusConflict)
	case errors.Is(err, model.ErrNotFound):
		JSONError(w, model.Message(err, "Novel not found"), http.StatusNotFound)
	default:
		log.WithError(err).WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": RequestID(r),
		}).Error("request failed")
		JSONError(w, unexpectedError, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("error encoding response")
	}
}

func writeText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(s))
}
