package service_test

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/service"
	"github.com/dom/notes-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[uuid.UUID][]domain.NoteEvent
}

func (p *recordingPublisher) PublishNoteEvent(userID uuid.UUID, event domain.NoteEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[uuid.UUID][]domain.NoteEvent)
	}
	p.events[userID] = append(p.events[userID], event)
}

func (p *recordingPublisher) types(userID uuid.UUID) []domain.NoteEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.NoteEventType
	for _, e := range p.events[userID] {
		out = append(out, e.Type)
	}
	return out
}

func newNoteService(t *testing.T) (*service.NoteService, *testutil.MemoryNoteRepository, *recordingPublisher) {
	t.Helper()
	repo := testutil.NewMemoryNoteRepository()
	publisher := &recordingPublisher{}
	return service.NewNoteService(repo, publisher), repo, publisher
}

func identity() *domain.Identity {
	return &domain.Identity{UserID: uuid.New(), Username: uuid.NewString()[:8]}
}

func strPtr(s string) *string { return &s }

func TestNoteService_CreateAssignsOwner(t *testing.T) {
	notes, _, publisher := newNoteService(t)
	alice := identity()

	note, err := notes.Create(context.Background(), alice, service.CreateNoteInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, note.UserID)
	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.Equal(t, []domain.NoteEventType{domain.NoteEventCreated}, publisher.types(alice.UserID))
}

func TestNoteService_CreateRequiresTitle(t *testing.T) {
	notes, _, _ := newNoteService(t)

	_, err := notes.Create(context.Background(), identity(), service.CreateNoteInput{Title: "   ", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestNoteService_OwnershipIsolation(t *testing.T) {
	notes, _, publisher := newNoteService(t)
	ctx := context.Background()
	alice, bob := identity(), identity()

	note, err := notes.Create(ctx, alice, service.CreateNoteInput{Title: "mine", Content: "private"})
	require.NoError(t, err)

	_, err = notes.Get(ctx, bob, note.ID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	_, err = notes.Update(ctx, bob, note.ID, service.UpdateNoteInput{Title: strPtr("stolen")})
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	err = notes.Delete(ctx, bob, note.ID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	list, err := notes.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := notes.Get(ctx, alice, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)

	assert.Empty(t, publisher.types(bob.UserID))
}

func TestNoteService_PartialUpdate(t *testing.T) {
	notes, _, publisher := newNoteService(t)
	ctx := context.Background()
	alice := identity()

	note, err := notes.Create(ctx, alice, service.CreateNoteInput{Title: "title", Content: "content"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       service.UpdateNoteInput
		wantTitle   string
		wantContent string
		wantErr     error
	}{
		{"content only", service.UpdateNoteInput{Content: strPtr("new content")}, "title", "new content", nil},
		{"title only", service.UpdateNoteInput{Title: strPtr("new title")}, "new title", "new content", nil},
		{"empty content allowed", service.UpdateNoteInput{Content: strPtr("")}, "new title", "", nil},
		{"no fields", service.UpdateNoteInput{}, "new title", "", nil},
		{"blank title", service.UpdateNoteInput{Title: strPtr(" ")}, "", "", domain.ErrTitleRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := notes.Update(ctx, alice, note.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, updated.Title)
			assert.Equal(t, tt.wantContent, updated.Content)
		})
	}

	// create + three real updates; the empty update publishes nothing
	assert.Equal(t, []domain.NoteEventType{
		domain.NoteEventCreated,
		domain.NoteEventUpdated,
		domain.NoteEventUpdated,
		domain.NoteEventUpdated,
	}, publisher.types(alice.UserID))
}

func TestNoteService_ListNewestFirstAndCapped(t *testing.T) {
	_, repo, _ := newNoteService(t)
	notes := service.NewNoteService(repo, nil)
	ctx := context.Background()
	alice := identity()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < service.MaxNotesPerList+5; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Note{
			ID:        uuid.New(),
			UserID:    alice.UserID,
			Title:     "n",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := notes.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, service.MaxNotesPerList)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt))
	}
}

func TestNoteService_ListTieBreaksOnID(t *testing.T) {
	_, repo, _ := newNoteService(t)
	notes := service.NewNoteService(repo, nil)
	ctx := context.Background()
	alice := identity()

	created := time.Now().Add(-time.Minute)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		id := uuid.New()
		require.NoError(t, repo.Create(ctx, &domain.Note{
			ID:        id,
			UserID:    alice.UserID,
			Title:     "n",
			CreatedAt: created,
		}))
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) > 0
	})

	for attempt := 0; attempt < 3; attempt++ {
		list, err := notes.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, len(ids))
		for i, note := range list {
			assert.Equal(t, ids[i], note.ID)
		}
	}
}

func TestNoteService_DeletePublishes(t *testing.T) {
	notes, _, publisher := newNoteService(t)
	ctx := context.Background()
	alice := identity()

	note, err := notes.Create(ctx, alice, service.CreateNoteInput{Title: "bye"})
	require.NoError(t, err)

	require.NoError(t, notes.Delete(ctx, alice, note.ID))
	_, err = notes.Get(ctx, alice, note.ID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	assert.ErrorIs(t, notes.Delete(ctx, alice, note.ID), service.ErrNoteNotFound)
	assert.Equal(t, []domain.NoteEventType{domain.NoteEventCreated, domain.NoteEventDeleted}, publisher.types(alice.UserID))
}

func TestNoteService_StoreErrorsPassThrough(t *testing.T) {
	notes, repo, _ := newNoteService(t)
	repo.Err = domain.ErrStoreUnavailable

	_, err := notes.List(context.Background(), identity())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, service.ErrNoteNotFound)
}
