package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/repository"
	"github.com/google/uuid"
)

// MaxNotesPerList caps a single list response.
const MaxNotesPerList = 100

var ErrNoteNotFound = errors.New("note not found")

// NoteEventPublisher delivers note changes to the owner's live connections.
type NoteEventPublisher interface {
	PublishNoteEvent(userID uuid.UUID, event domain.NoteEvent)
}

type noopPublisher struct{}

func (noopPublisher) PublishNoteEvent(uuid.UUID, domain.NoteEvent) {}

type NoteService struct {
	noteRepo  repository.NoteRepository
	publisher NoteEventPublisher
}

func NewNoteService(noteRepo repository.NoteRepository, publisher NoteEventPublisher) *NoteService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &NoteService{
		noteRepo:  noteRepo,
		publisher: publisher,
	}
}

type CreateNoteInput struct {
	Title   string
	Content string
}

type UpdateNoteInput struct {
	Title   *string
	Content *string
}

func (s *NoteService) Create(ctx context.Context, identity *domain.Identity, input CreateNoteInput) (*domain.Note, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.ErrTitleRequired
	}

	now := time.Now()
	note := &domain.Note{
		ID:        uuid.New(),
		UserID:    identity.UserID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.publisher.PublishNoteEvent(identity.UserID, domain.NoteEvent{
		Type:   domain.NoteEventCreated,
		NoteID: note.ID,
		Note:   note,
	})
	return note, nil
}

func (s *NoteService) List(ctx context.Context, identity *domain.Identity) ([]*domain.Note, error) {
	return s.noteRepo.ListByUser(ctx, identity.UserID, MaxNotesPerList)
}

func (s *NoteService) Get(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.Note, error) {
	note, err := s.noteRepo.GetByIDAndUser(ctx, id, identity.UserID)
	if err != nil {
		return nil, notFound(err)
	}
	return note, nil
}

// Update merges the supplied fields into the note. Fields left nil keep their
// stored value.
func (s *NoteService) Update(ctx context.Context, identity *domain.Identity, id uuid.UUID, input UpdateNoteInput) (*domain.Note, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, domain.ErrTitleRequired
	}

	changes := domain.NoteChanges{Title: input.Title, Content: input.Content}
	if changes.IsEmpty() {
		return s.Get(ctx, identity, id)
	}

	note, err := s.noteRepo.UpdateByIDAndUser(ctx, id, identity.UserID, changes)
	if err != nil {
		return nil, notFound(err)
	}

	s.publisher.PublishNoteEvent(identity.UserID, domain.NoteEvent{
		Type:   domain.NoteEventUpdated,
		NoteID: note.ID,
		Note:   note,
	})
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	if err := s.noteRepo.DeleteByIDAndUser(ctx, id, identity.UserID); err != nil {
		return notFound(err)
	}

	s.publisher.PublishNoteEvent(identity.UserID, domain.NoteEvent{
		Type:   domain.NoteEventDeleted,
		NoteID: id,
	})
	return nil
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrNoteNotFound
	}
	return err
}
