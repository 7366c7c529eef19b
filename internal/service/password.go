package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/notes-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher hashes and verifies passwords with bcrypt. At most
// `concurrency` hash operations run at once.
type PasswordHasher struct {
	cost      int
	sem       *semaphore.Weighted
	dummyHash []byte
}

func NewPasswordHasher(cost, concurrency int) (*PasswordHasher, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	// Compared against when the stored hash is unusable, so a malformed hash
	// or a missing user costs the same as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte("notes-api-timing-equalizer"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &PasswordHasher{
		cost:      cost,
		sem:       semaphore.NewWeighted(int64(concurrency)),
		dummyHash: dummy,
	}, nil
}

func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.ErrPasswordTooLong
		}
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password produced hash. Malformed hashes and a
// cancelled ctx both report false.
func (h *PasswordHasher) Verify(ctx context.Context, password, hash string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
