package handler

import (
	"log/slog"
	"net/http"

	"terraai/internal/domain/models"
	"terraai/internal/domain/services"
	"terraai/internal/httputil"
)

// DevOpsHandler serves the DevOps project catalog
type DevOpsHandler struct {
	catalog  services.CatalogService
	sessions services.SessionService
	logger   *slog.Logger
}

func NewDevOpsHandler(catalog services.CatalogService, sessions services.SessionService, logger *slog.Logger) *DevOpsHandler {
	return &DevOpsHandler{catalog: catalog, sessions: sessions, logger: logger}
}

// List returns the whole catalog
// GET /api/devops-projects
func (h *DevOpsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// POST /api/devops-projects (admin)
func (h *DevOpsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.DevOpsProjectInput
	if err := httputil.ParseJSON(w, r, &in); err != nil {
		handleError(w, err)
		return
	}

	item, err := h.catalog.Create(r.Context(), &in)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, item)
}

// PUT /api/devops-projects/{id} (admin)
func (h *DevOpsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in services.DevOpsProjectInput
	if err := httputil.ParseJSON(w, r, &in); err != nil {
		handleError(w, err)
		return
	}

	item, err := h.catalog.Update(r.Context(), id, &in)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

// DELETE /api/devops-projects/{id} (admin)
func (h *DevOpsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importRequest struct {
	SessionID string `json:"session_id"`
}

type importResponse struct {
	*services.DevOpsImport
	Session *models.Session `json:"session,omitempty"`
}

// Import checks the caller's import allowance. When a session_id is
// given, that session is renamed after the catalog entry.
// POST /api/devops-projects/{id}/import
func (h *DevOpsHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req importRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleError(w, err)
			return
		}
	}

	imp, err := h.catalog.Import(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	resp := importResponse{DevOpsImport: imp}
	if req.SessionID != "" {
		sess, err := h.sessions.Rename(r.Context(), userID, req.SessionID, imp.Title)
		if err != nil {
			handleError(w, err)
			return
		}
		resp.Session = sess
	}

	h.logger.Info("devops project imported", "devops_id", id, "user_id", userID)
	httputil.RespondJSON(w, http.StatusOK, resp)
}
