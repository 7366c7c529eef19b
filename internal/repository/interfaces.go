package repository

import (
	"context"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/google/uuid"
)

// UserRepository is the credential store. Username and email are unique;
// Create and Update return domain.ErrDuplicate on collision.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, email, otherInfo string) (*domain.User, error)
}

// RevokedTokenRepository is the persisted logout blacklist.
type RevokedTokenRepository interface {
	// Revoke records token as revoked. It is idempotent; the returned bool is
	// true only for the call that created the entry.
	Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// NoteRepository scopes every lookup and mutation by owner. A note owned by
// someone else yields domain.ErrNotFound.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Note, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Note, error)
	UpdateByIDAndUser(ctx context.Context, id, userID uuid.UUID, changes domain.NoteChanges) (*domain.Note, error)
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error
}

type Repositories struct {
	User         UserRepository
	RevokedToken RevokedTokenRepository
	Note         NoteRepository
}
