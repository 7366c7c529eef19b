package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/dom/notes-api/internal/api/middleware"
	"github.com/dom/notes-api/internal/metrics"
	"github.com/dom/notes-api/internal/service"
	"github.com/dom/notes-api/internal/websocket"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *websocket.Hub
	sessions *service.SessionResolver
	tokens   *service.TokenService
	recorder metrics.Recorder
	logger   *slog.Logger
	upgrader ws.Upgrader
}

func NewWebSocketHandler(hub *websocket.Hub, sessions *service.SessionResolver, tokens *service.TokenService, allowedOrigins []string, recorder metrics.Recorder, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		sessions: sessions,
		tokens:   tokens,
		recorder: recorder,
		logger:   logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients), same-host origins and the configured allowlist.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// Handle upgrades an authenticated request. Browsers cannot set headers on
// websocket requests, so the token comes from the query string.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		middleware.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token required")
		return
	}

	identity, err := h.sessions.Resolve(r.Context(), token)
	h.recorder.RecordResolve(middleware.ResultLabel(err))
	if err != nil {
		writeServiceError(w, h.logger, "websocket resolve", err)
		return
	}

	// Resolve has already verified the token; this only reads its expiry.
	claims, err := h.tokens.Verify(token)
	if err != nil {
		writeServiceError(w, h.logger, "websocket resolve", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := websocket.NewClient(h.hub, conn, identity.UserID, token, claims.ExpiresAt)

	if msg, err := websocket.NewMessage(websocket.MessageTypeConnected, websocket.ConnectedPayload{
		Username:  identity.Username,
		ExpiresAt: claims.ExpiresAt.UnixMilli(),
	}); err == nil {
		client.Send(msg)
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
