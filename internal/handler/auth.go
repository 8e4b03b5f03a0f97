package handler

import (
	"log/slog"
	"net/http"

	"storyloom/internal/domain/services"
	"storyloom/internal/httputil"
)

// AuthHandler serves local accounts. Only mounted when AUTH_MODE=local.
type AuthHandler struct {
	accountService services.AccountService
	logger         *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accountService services.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Register creates an account
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !parseBody(w, r, &req) {
		return
	}

	user, err := h.accountService.Register(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("account registered", "user_id", user.ID)
	httputil.RespondJSON(w, http.StatusCreated, user)
}

// Login exchanges credentials for a token pair
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !parseBody(w, r, &req) {
		return
	}

	pair, err := h.accountService.Login(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, pair)
}

// Refresh rotates the refresh token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req services.RefreshRequest
	if !parseBody(w, r, &req) {
		return
	}

	pair, err := h.accountService.Refresh(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, pair)
}

// Logout revokes the given refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req services.RefreshRequest
	if !parseBody(w, r, &req) {
		return
	}

	if err := h.accountService.Logout(r.Context(), req.RefreshToken); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.accountService.Me(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}
