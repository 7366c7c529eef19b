package service

import (
	"github.com/dom/notes-api/internal/config"
	"github.com/dom/notes-api/internal/repository"
)

type Services struct {
	Tokens   *TokenService
	Hasher   *PasswordHasher
	Sessions *SessionResolver
	Auth     *AuthService
	Note     *NoteService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, publisher NoteEventPublisher) (*Services, error) {
	tokens, err := NewTokenService(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	hasher, err := NewPasswordHasher(cfg.BcryptCost, cfg.HashConcurrency)
	if err != nil {
		return nil, err
	}

	sessions := NewSessionResolver(tokens, repos.RevokedToken, repos.User)

	return &Services{
		Tokens:   tokens,
		Hasher:   hasher,
		Sessions: sessions,
		Auth:     NewAuthService(repos.User, hasher, tokens, sessions),
		Note:     NewNoteService(repos.Note, publisher),
	}, nil
}
