package postgres

import (
	"context"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	store
}

func NewUserRepository(db *gorm.DB, timeout time.Duration) *userRepository {
	return &userRepository{store: newStore(db, timeout)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db, cancel := r.session(ctx)
	defer cancel()

	return translateError(db.Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var user domain.User
	if err := db.First(&user, query, arg).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, email, otherInfo string) (*domain.User, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var user domain.User
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
			"email":      email,
			"other_info": otherInfo,
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}
