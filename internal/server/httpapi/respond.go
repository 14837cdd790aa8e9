package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lingvera/lingvera/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps service errors onto HTTP statuses. Validation messages are
// passed through; everything else gets a generic body so internals do not
// leak to the client.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrProjectState):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: "operation not allowed in the current project state"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, common.ErrDecryption):
		// The cause (tampering, key rotation) stays in the logs.
		s.logger.Error(r.Context(), "stored file unavailable", "error", err.Error())
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "file unavailable"})
	case errors.Is(err, common.ErrStorageUnavailable), errors.Is(err, common.ErrConfiguration):
		s.logger.Error(r.Context(), "service unavailable", "error", err.Error())
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service unavailable"})
	default:
		s.logger.Error(r.Context(), "internal error", "error", err.Error())
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
