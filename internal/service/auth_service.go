package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
	sessions *SessionResolver
}

func NewAuthService(userRepo repository.UserRepository, hasher *PasswordHasher, tokens *TokenService, sessions *SessionResolver) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
	}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	OtherInfo string
}

type LoginInput struct {
	Username string
	Password string
}

type UpdateProfileInput struct {
	Email     string
	OtherInfo *string
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, domain.ErrPasswordRequired
	}

	if taken, err := s.exists(ctx, s.userRepo.GetByUsername, username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.exists(ctx, s.userRepo.GetByEmail, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		OtherInfo:    input.OtherInfo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// a concurrent registration won; report which key collided
			if taken, _ := s.exists(ctx, s.userRepo.GetByUsername, username); taken {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// burn the same bcrypt time as a real comparison
			s.hasher.Verify(ctx, input.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(ctx, input.Password, user.PasswordHash) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout revokes the presented token. See SessionResolver.Logout.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Logout(ctx, token)
}

func (s *AuthService) GetProfile(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile replaces the email and, when given, the free-text profile info.
func (s *AuthService) UpdateProfile(ctx context.Context, identity *domain.Identity, input UpdateProfileInput) (*domain.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	current, err := s.GetProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	if email != current.Email {
		other, err := s.userRepo.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != current.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	otherInfo := current.OtherInfo
	if input.OtherInfo != nil {
		otherInfo = *input.OtherInfo
	}

	user, err := s.userRepo.UpdateProfile(ctx, current.ID, email, otherInfo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	ttl := s.tokens.DefaultTTL()
	token, err := s.tokens.Issue(user.Username, ttl)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(ttl),
	}, nil
}

func (s *AuthService) exists(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), key string) (bool, error) {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", domain.ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
