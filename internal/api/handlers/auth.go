package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/notes-api/internal/api/middleware"
	"github.com/dom/notes-api/internal/metrics"
	"github.com/dom/notes-api/internal/service"
)

const tokenType = "bearer"

// SessionDisconnector closes live connections opened with a token.
type SessionDisconnector interface {
	DisconnectToken(token string) int
}

type AuthHandler struct {
	authService  *service.AuthService
	disconnector SessionDisconnector
	recorder     metrics.Recorder
	logger       *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, disconnector SessionDisconnector, recorder metrics.Recorder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		disconnector: disconnector,
		recorder:     recorder,
		logger:       logger,
	}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	OtherInfo string `json:"other_info"`
}

type RegisterResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	OtherInfo   string `json:"other_info"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		OtherInfo: req.OtherInfo,
	})
	if err != nil {
		writeServiceError(w, h.logger, "register", err)
		return
	}

	h.logger.Info("user registered", slog.String("user_id", result.User.ID.String()))

	middleware.WriteJSON(w, http.StatusOK, RegisterResponse{
		Username:    result.User.Username,
		Email:       result.User.Email,
		OtherInfo:   result.User.OtherInfo,
		AccessToken: result.AccessToken,
		TokenType:   tokenType,
	})
}

// Login takes an OAuth2 password-style form: username and password fields.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: username,
		Password: password,
	})
	h.recorder.RecordLogin(middleware.ResultLabel(err))
	if err != nil {
		writeServiceError(w, h.logger, "login", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   tokenType,
		Email:       result.User.Email,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return
	}

	err := h.authService.Logout(r.Context(), token)
	h.recorder.RecordLogout(middleware.ResultLabel(err))
	if err != nil {
		writeServiceError(w, h.logger, "logout", err)
		return
	}

	if closed := h.disconnector.DisconnectToken(token); closed > 0 {
		h.logger.Debug("closed websocket sessions on logout", slog.Int("count", closed))
	}

	middleware.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}
