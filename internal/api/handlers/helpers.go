package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dom/notes-api/internal/api/middleware"
	"github.com/dom/notes-api/internal/domain"
)

type MessageResponse struct {
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	return true
}

// writeServiceError writes the mapped error response. Only server-side
// failures are logged at error level; client errors are routine.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	apiErr := middleware.WriteServiceError(w, err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

func identityOrUnauthorized(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return nil, false
	}
	return identity, true
}
