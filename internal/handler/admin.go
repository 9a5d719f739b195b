package handler

import (
	"log/slog"
	"net/http"

	"terraai/internal/domain/services"
	"terraai/internal/httputil"
)

// AdminHandler serves the dashboard listings. Routes are wrapped in
// middleware.RequireAdmin.
type AdminHandler struct {
	admin  services.AdminService
	logger *slog.Logger
}

func NewAdminHandler(admin services.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, users)
}

// GET /api/admin/projects
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.admin.ListProjects(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, projects)
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}
