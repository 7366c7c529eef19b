package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies HMAC-signed session JWTs. It holds no
// mutable state and is safe for concurrent use.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret, algorithm string, defaultTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	if defaultTTL <= 0 {
		return nil, errors.New("default token ttl must be positive")
	}

	return &TokenService{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of the service that reads the time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs a token for subject that expires after ttl. A non-positive ttl
// selects the default. Every token carries a fresh jti, so two tokens issued
// within the same second still differ.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, algorithm and expiry. A token is expired from the
// instant now reaches its exp claim.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	expiresAt := claims.ExpiresAt.Time
	if !s.now().Before(expiresAt) {
		return nil, domain.ErrTokenExpired
	}

	out := &TokenClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		ExpiresAt: expiresAt,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
