package handler

import (
	"log/slog"
	"net/http"

	"terraai/internal/domain/services"
	"terraai/internal/httputil"
)

// UserHandler serves the signed-in user's profile
type UserHandler struct {
	accounts services.AccountService
	logger   *slog.Logger
}

func NewUserHandler(accounts services.AccountService, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

// GetUser returns the profile, with an expired plan already downgraded
// GET /api/user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.GetUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// UpdateTheme switches between dark and light
// PATCH /api/user/theme
func (h *UserHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req themeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	user, err := h.accounts.UpdateTheme(r.Context(), userID, req.Theme)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}
