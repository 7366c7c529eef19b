package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/service"
)

// ErrorResponseBody is the JSON shape of every 4xx/5xx response.
type ErrorResponseBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError pairs an HTTP status with the body sent to the client.
type APIError struct {
	Status  int
	Code    string
	Message string
}

var (
	errInternal = APIError{http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"}

	errorTable = []struct {
		target error
		api    APIError
	}{
		{domain.ErrTokenExpired, APIError{http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired"}},
		{domain.ErrTokenRevoked, APIError{http.StatusUnauthorized, "TOKEN_REVOKED", "Token has been revoked. Please log in again."}},
		{domain.ErrMalformedClaims, APIError{http.StatusUnauthorized, "MALFORMED_CLAIMS", "Invalid token payload"}},
		{domain.ErrTokenInvalid, APIError{http.StatusUnauthorized, "TOKEN_INVALID", "Could not validate credentials"}},
		{domain.ErrUnknownSubject, APIError{http.StatusNotFound, "USER_NOT_FOUND", "User not found"}},
		{domain.ErrAlreadyRevoked, APIError{http.StatusBadRequest, "ALREADY_REVOKED", "Token is already revoked"}},
		{service.ErrUsernameTaken, APIError{http.StatusBadRequest, "USERNAME_TAKEN", "Username already registered"}},
		{service.ErrEmailTaken, APIError{http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered"}},
		{service.ErrInvalidCredentials, APIError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect username or password"}},
		{service.ErrUserNotFound, APIError{http.StatusNotFound, "USER_NOT_FOUND", "User not found"}},
		{service.ErrNoteNotFound, APIError{http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found"}},
		{domain.ErrStoreUnavailable, APIError{http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable"}},
	}

	validationErrors = []error{
		domain.ErrUsernameRequired,
		domain.ErrEmailRequired,
		domain.ErrInvalidEmail,
		domain.ErrPasswordRequired,
		domain.ErrPasswordTooLong,
		domain.ErrTitleRequired,
	}
)

// ErrorFor maps a service or session error to its HTTP representation.
// Unrecognized errors become a generic 500 so no store detail leaks.
func ErrorFor(err error) APIError {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return APIError{http.StatusBadRequest, "VALIDATION_ERROR", v.Error()}
		}
	}
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return e.api
		}
	}
	return errInternal
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, status, ErrorResponseBody{Code: code, Message: message})
}

// WriteServiceError writes the mapped response for err and returns it.
func WriteServiceError(w http.ResponseWriter, err error) APIError {
	apiErr := ErrorFor(err)
	WriteError(w, apiErr.Status, apiErr.Code, apiErr.Message)
	return apiErr
}

// ResultLabel is the short metrics label for err ("ok" for nil).
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrAlreadyRevoked):
		return "already_revoked"
	case errors.Is(err, domain.ErrMalformedClaims):
		return "malformed"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrUnknownSubject):
		return "unknown_subject"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
