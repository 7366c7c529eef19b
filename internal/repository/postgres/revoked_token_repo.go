package postgres

import (
	"context"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type revokedTokenRepository struct {
	store
}

func NewRevokedTokenRepository(db *gorm.DB, timeout time.Duration) *revokedTokenRepository {
	return &revokedTokenRepository{store: newStore(db, timeout)}
}

func (r *revokedTokenRepository) Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	entry := &domain.RevokedToken{
		TokenHash: domain.HashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *revokedTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var count int64
	err := db.Model(&domain.RevokedToken{}).
		Where("token_hash = ?", domain.HashToken(token)).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (r *revokedTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Where("expires_at < ?", before).Delete(&domain.RevokedToken{})
	if res.Error != nil {
		return 0, translateError(res.Error)
	}
	return res.RowsAffected, nil
}
