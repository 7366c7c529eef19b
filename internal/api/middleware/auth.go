package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/metrics"
	"github.com/dom/notes-api/internal/service"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"
	TokenKey    contextKey = "token"
	holderKey   contextKey = "identityHolder"
)

// identityHolder carries the resolved user id back out to the logging
// middleware, which wraps the handler chain from outside the auth group.
type identityHolder struct {
	userID string
}

func withIdentityHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireToken only checks that a bearer token is present and stores it in
// the context. Logout uses it so that a token for a deleted user can still
// be revoked.
func RequireToken(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				logger.Warn("missing or malformed authorization header", slog.String("path", r.URL.Path))
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Auth resolves the bearer token to an identity and rejects the request
// when resolution fails.
func Auth(resolver *service.SessionResolver, recorder metrics.Recorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				recorder.RecordResolve("missing")
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
				return
			}

			identity, err := resolver.Resolve(r.Context(), token)
			recorder.RecordResolve(ResultLabel(err))
			if err != nil {
				apiErr := WriteServiceError(w, err)
				if apiErr.Status >= http.StatusInternalServerError {
					logger.Error("session resolution failed", slog.String("error", err.Error()))
				} else {
					logger.Debug("session rejected", slog.String("reason", apiErr.Code))
				}
				return
			}

			if holder, ok := r.Context().Value(holderKey).(*identityHolder); ok {
				holder.userID = identity.UserID.String()
			}

			ctx := context.WithValue(r.Context(), TokenKey, token)
			ctx = context.WithValue(ctx, IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetIdentity(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*domain.Identity)
	return identity, ok
}

func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
