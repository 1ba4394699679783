package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"wholesale-registration-app/internal/domain"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps a workflow error to its HTTP status and response body
func statusFor(err error) (int, errorResponse) {
	var (
		notFound *domain.SessionNotFoundError
		authErr  *domain.AdminAuthError
		gqlErr   *domain.GraphQLFailure
		rejected *domain.RejectedError
	)

	switch {
	case errors.Is(err, domain.ErrShopUnresolved):
		return http.StatusBadRequest, errorResponse{Error: "Shop parameter missing"}
	case errors.As(err, &notFound):
		return http.StatusUnauthorized, errorResponse{Error: "App not installed for this shop"}
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, errorResponse{Error: "Admin authentication failed"}
	case errors.As(err, &gqlErr):
		return http.StatusBadRequest, errorResponse{Error: gqlErr.Error(), Details: gqlErr.Errors}
	case errors.As(err, &rejected):
		return http.StatusBadRequest, errorResponse{Error: rejected.Message, Details: rejected.UserErrors}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Details: err.Error()}
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, body := statusFor(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Msg("Request failed")
	writeJSON(w, status, body)
}
