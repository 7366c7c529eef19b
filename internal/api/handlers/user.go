package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/notes-api/internal/api/middleware"
	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/service"
)

type UserHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewUserHandler(authService *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		logger:      logger,
	}
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	OtherInfo string `json:"other_info"`
}

type UpdateUserRequest struct {
	Email     string  `json:"email"`
	OtherInfo *string `json:"other_info"`
}

type UpdateUserResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		OtherInfo: u.OtherInfo,
	}
}

// Me returns the caller as resolved from the token, without another lookup.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	middleware.WriteJSON(w, http.StatusOK, UserResponse{
		Username:  identity.Username,
		Email:     identity.Email,
		OtherInfo: identity.OtherInfo,
	})
}

// Profile reads the stored profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(r.Context(), identity)
	if err != nil {
		writeServiceError(w, h.logger, "get profile", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), identity, service.UpdateProfileInput{
		Email:     req.Email,
		OtherInfo: req.OtherInfo,
	})
	if err != nil {
		writeServiceError(w, h.logger, "update profile", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, UpdateUserResponse{
		Message: "User information updated successfully",
		User:    toUserResponse(user),
	})
}
