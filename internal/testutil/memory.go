package testutil

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/repository"
	"github.com/google/uuid"
)

// NewMemoryRepositories returns map-backed stores with the same contract as
// the postgres ones. They let service and handler tests run without docker.
func NewMemoryRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:         NewMemoryUserRepository(),
		RevokedToken: NewMemoryRevokedTokenRepository(),
		Note:         NewMemoryNoteRepository(),
	}
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]domain.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, email, otherInfo string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, u := range r.users {
		if u.ID != id && u.Email == email {
			return nil, domain.ErrDuplicate
		}
	}

	user.Email = email
	user.OtherInfo = otherInfo
	user.UpdatedAt = time.Now()
	r.users[id] = user

	updated := user
	return &updated, nil
}

type MemoryRevokedTokenRepository struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	Err     error
}

func NewMemoryRevokedTokenRepository() *MemoryRevokedTokenRepository {
	return &MemoryRevokedTokenRepository{entries: make(map[string]time.Time)}
}

func (r *MemoryRevokedTokenRepository) Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}

	hash := domain.HashToken(token)
	if _, ok := r.entries[hash]; ok {
		return false, nil
	}
	r.entries[hash] = expiresAt
	return true, nil
}

func (r *MemoryRevokedTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return false, r.Err
	}

	_, ok := r.entries[domain.HashToken(token)]
	return ok, nil
}

func (r *MemoryRevokedTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	var deleted int64
	for hash, exp := range r.entries {
		if exp.Before(before) {
			delete(r.entries, hash)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRevokedTokenRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

type MemoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]domain.Note
	Err   error
}

func NewMemoryNoteRepository() *MemoryNoteRepository {
	return &MemoryNoteRepository{notes: make(map[uuid.UUID]domain.Note)}
}

func (r *MemoryNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if _, ok := r.notes[note.ID]; ok {
		return domain.ErrDuplicate
	}
	r.notes[note.ID] = *note
	return nil
}

// owned must be called with r.mu held.
func (r *MemoryNoteRepository) owned(id, userID uuid.UUID) (domain.Note, bool) {
	note, ok := r.notes[id]
	if !ok || note.UserID != userID {
		return domain.Note{}, false
	}
	return note, true
}

func (r *MemoryNoteRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	note, ok := r.owned(id, userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

func (r *MemoryNoteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	notes := []*domain.Note{}
	for _, n := range r.notes {
		if n.UserID == userID {
			note := n
			notes = append(notes, &note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return bytes.Compare(notes[i].ID[:], notes[j].ID[:]) > 0
	})
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

func (r *MemoryNoteRepository) UpdateByIDAndUser(ctx context.Context, id, userID uuid.UUID, changes domain.NoteChanges) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	note, ok := r.owned(id, userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if changes.Title != nil {
		note.Title = *changes.Title
	}
	if changes.Content != nil {
		note.Content = *changes.Content
	}
	note.UpdatedAt = time.Now()
	r.notes[id] = note

	updated := note
	return &updated, nil
}

func (r *MemoryNoteRepository) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, ok := r.owned(id, userID); !ok {
		return domain.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}
