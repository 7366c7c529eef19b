package websocket

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dom/notes-api/internal/domain"
	"github.com/google/uuid"
)

// Hub tracks live websocket clients per user and fans note events out to
// them. It implements service.NoteEventPublisher.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	started    atomic.Bool
	stopped    bool
	logger     *slog.Logger
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	h.started.Store(true)
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, set := range h.clients {
				for client := range set {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.stopped {
				client.Close()
			} else {
				set, ok := h.clients[client.userID]
				if !ok {
					set = make(map[*Client]bool)
					h.clients[client.userID] = set
				}
				set[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and blocks until Run has exited. It is safe to
// call more than once and from several goroutines. If Run was never started
// Stop returns immediately.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	if h.started.Load() {
		<-h.done
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	client.Close()
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) PublishNoteEvent(userID uuid.UUID, event domain.NoteEvent) {
	msg, err := noteEventMessage(event)
	if err != nil {
		h.logger.Error("failed to build note event", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[userID] {
		if !client.Send(msg) {
			h.logger.Warn("dropping slow websocket client", slog.String("user_id", userID.String()))
			h.remove(client)
		}
	}
}

// DisconnectToken closes every connection opened with token. It returns the
// number of connections closed.
func (h *Hub) DisconnectToken(token string) int {
	hash := domain.HashToken(token)

	h.mu.Lock()
	defer h.mu.Unlock()

	closed := 0
	for _, set := range h.clients {
		for client := range set {
			if client.tokenHash == hash {
				h.remove(client)
				closed++
			}
		}
	}
	return closed
}

func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
