package service

import (
	"context"
	"errors"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/repository"
)

// SessionResolver turns a bearer token into the identity of the caller.
type SessionResolver struct {
	tokens  *TokenService
	revoked repository.RevokedTokenRepository
	users   repository.UserRepository
}

func NewSessionResolver(tokens *TokenService, revoked repository.RevokedTokenRepository, users repository.UserRepository) *SessionResolver {
	return &SessionResolver{
		tokens:  tokens,
		revoked: revoked,
		users:   users,
	}
}

// Resolve checks, in order: revocation, signature and expiry, subject claim,
// and finally that the subject still names a user.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	revoked, err := r.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, domain.ErrMalformedClaims
	}

	user, err := r.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownSubject
		}
		return nil, err
	}

	return domain.IdentityOf(user), nil
}

// Logout revokes token. Logging out a token twice is rejected with
// domain.ErrAlreadyRevoked; expired or forged tokens are not recorded.
func (r *SessionResolver) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenInvalid
	}

	revoked, err := r.revoked.IsRevoked(ctx, token)
	if err != nil {
		return err
	}
	if revoked {
		return domain.ErrAlreadyRevoked
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return err
	}

	created, err := r.revoked.Revoke(ctx, token, claims.ExpiresAt)
	if err != nil {
		return err
	}
	if !created {
		// lost a race with a concurrent logout of the same token
		return domain.ErrAlreadyRevoked
	}
	return nil
}
