package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/notes-api/internal/api/middleware"
	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/metrics"
	"github.com/dom/notes-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type NoteHandler struct {
	noteService *service.NoteService
	recorder    metrics.Recorder
	logger      *slog.Logger
}

func NewNoteHandler(noteService *service.NoteService, recorder metrics.Recorder, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		recorder:    recorder,
		logger:      logger,
	}
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type NoteResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func toNoteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:      n.ID.String(),
		UserID:  n.UserID.String(),
		Title:   n.Title,
		Content: n.Content,
	}
}

// noteID parses the {id} URL parameter. An unparsable id cannot name any
// note, so it is reported as not found.
func noteID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, service.ErrNoteNotFound
	}
	return id, nil
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.noteService.Create(r.Context(), identity, service.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, h.logger, "create note", err)
		return
	}

	h.recorder.RecordNoteOp("create")
	middleware.WriteJSON(w, http.StatusOK, toNoteResponse(note))
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	notes, err := h.noteService.List(r.Context(), identity)
	if err != nil {
		writeServiceError(w, h.logger, "list notes", err)
		return
	}

	resp := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}

	h.recorder.RecordNoteOp("list")
	middleware.WriteJSON(w, http.StatusOK, resp)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	id, err := noteID(r)
	if err != nil {
		writeServiceError(w, h.logger, "get note", err)
		return
	}

	note, err := h.noteService.Get(r.Context(), identity, id)
	if err != nil {
		writeServiceError(w, h.logger, "get note", err)
		return
	}

	h.recorder.RecordNoteOp("get")
	middleware.WriteJSON(w, http.StatusOK, toNoteResponse(note))
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	id, err := noteID(r)
	if err != nil {
		writeServiceError(w, h.logger, "update note", err)
		return
	}

	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.noteService.Update(r.Context(), identity, id, service.UpdateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, h.logger, "update note", err)
		return
	}

	h.recorder.RecordNoteOp("update")
	middleware.WriteJSON(w, http.StatusOK, toNoteResponse(note))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	id, err := noteID(r)
	if err != nil {
		writeServiceError(w, h.logger, "delete note", err)
		return
	}

	if err := h.noteService.Delete(r.Context(), identity, id); err != nil {
		writeServiceError(w, h.logger, "delete note", err)
		return
	}

	h.recorder.RecordNoteOp("delete")
	middleware.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Note deleted successfully"})
}
