package api

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"biodiversity/internal/db"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps store and parsing errors onto HTTP statuses. Anything
// unrecognized is logged and answered with a generic 500 carrying msg.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, db.ErrMalformedSampleName):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "BAD_REQUEST"})
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrUnknownSample):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	default:
		h.logger.Error(msg,
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msg, Code: "INTERNAL_ERROR"})
	}
}
