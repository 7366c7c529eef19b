package postgres

import (
	"context"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type noteRepository struct {
	store
}

func NewNoteRepository(db *gorm.DB, timeout time.Duration) *noteRepository {
	return &noteRepository{store: newStore(db, timeout)}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	db, cancel := r.session(ctx)
	defer cancel()

	return translateError(db.Create(note).Error)
}

func (r *noteRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Note, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var note domain.Note
	if err := db.First(&note, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, translateError(err)
	}
	return &note, nil
}

func (r *noteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Note, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var notes []*domain.Note
	err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, translateError(err)
	}
	return notes, nil
}

func (r *noteRepository) UpdateByIDAndUser(ctx context.Context, id, userID uuid.UUID, changes domain.NoteChanges) (*domain.Note, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	updates := map[string]any{"updated_at": time.Now()}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Content != nil {
		updates["content"] = *changes.Content
	}

	var note domain.Note
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Note{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&note, "id = ? AND user_id = ?", id, userID).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &note, nil
}

func (r *noteRepository) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Note{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
