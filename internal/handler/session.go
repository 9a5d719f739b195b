package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"terraai/internal/config"
	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/services"
	"terraai/internal/handler/sse"
	"terraai/internal/httputil"
	"terraai/internal/service/blueprint"
)

// SessionHandler serves the in-memory generation sessions
type SessionHandler struct {
	sessions services.SessionService
	sseCfg   *sse.Config
	logger   *slog.Logger
}

func NewSessionHandler(sessions services.SessionService, sseCfg *sse.Config, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, sseCfg: sseCfg, logger: logger}
}

type createSessionRequest struct {
	ProjectID string `json:"project_id"`
}

// CreateSession opens a chat, optionally loaded from a saved project
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleError(w, err)
			return
		}
	}

	sess, err := h.sessions.Create(r.Context(), userID, req.ProjectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, sess)
}

// GetSession returns the current snapshot
// GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, sess)
}

type renameRequest struct {
	Title httputil.OptionalString `json:"title"`
}

// RenameSession sets the title; null restores the default
// PATCH /api/sessions/{id}
func (h *SessionHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	title := req.Title.Resolve(models.DefaultTitle)
	if title == nil {
		httputil.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	sess, err := h.sessions.Rename(r.Context(), userID, id, *title)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

// DeleteSession drops the session and cancels its generation
// DELETE /api/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Discard(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession starts a new chat in the session
// POST /api/sessions/{id}/reset
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sess, err := h.sessions.Reset(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, sess)
}

// ExportSession downloads the session's files as a zip
// GET /api/sessions/{id}/export
func (h *SessionHandler) ExportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondArchive(w, sess.Title, sess.Files)
}

// BundleSession returns every file concatenated as plain text
// GET /api/sessions/{id}/bundle
func (h *SessionHandler) BundleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, blueprint.Bundle(sess.Files))
}

// ImportSession replaces the session's files from an uploaded zip
// POST /api/sessions/{id}/import (multipart field "file")
func (h *SessionHandler) ImportSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxArchiveSize+(1<<20))
	file, _, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "archive too large")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, config.MaxArchiveSize+1))
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.sessions.ImportArchive(r.Context(), userID, id, data)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("archive imported",
		"session_id", id,
		"user_id", userID,
		"files", len(result.Session.Files),
		"skipped", len(result.Skipped),
	)
	httputil.RespondJSON(w, http.StatusOK, result)
}

// ValidateSession runs the structural checks on every file
// GET /api/sessions/{id}/validate
func (h *SessionHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	results, err := h.sessions.Validate(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate streams one generation as server-sent events: snapshot while
// the model writes, then done or error, then saved or limit_reached once
// the idle-save has run.
// POST /api/sessions/{id}/generate
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	stream := sse.NewWriter(w, h.sseCfg, h.logger)
	defer stream.Close()

	sink := func(ev services.GenerationEvent) error {
		return stream.WriteEvent(ev.Type, ev.Data)
	}

	err := h.sessions.Generate(r.Context(), userID, id, req.Prompt, sink)
	if err == nil {
		return
	}

	if !stream.Started() {
		handleError(w, err)
		return
	}

	if errors.Is(err, r.Context().Err()) {
		h.logger.Debug("client left before the idle-save", "session_id", id, "user_id", userID)
		return
	}

	h.logger.Error("generation stream failed", "session_id", id, "user_id", userID, "error", err)
	stream.WriteEvent(services.EventError, services.ErrorPayload{Message: domain.ErrGeneration.Error()})
}

// StreamSession re-attaches to the session's running generation after a
// dropped connection: a snapshot of the session, then the remaining
// events of the turn. With nothing running the stream carries only the
// snapshot.
// GET /api/sessions/{id}/stream
func (h *SessionHandler) StreamSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	stream := sse.NewWriter(w, h.sseCfg, h.logger)
	defer stream.Close()

	err := h.sessions.Watch(r.Context(), userID, id, func(ev services.GenerationEvent) error {
		return stream.WriteEvent(ev.Type, ev.Data)
	})
	if err == nil {
		return
	}

	if !stream.Started() {
		handleError(w, err)
		return
	}
	if errors.Is(err, r.Context().Err()) {
		h.logger.Debug("client left the session stream", "session_id", id, "user_id", userID)
		return
	}
	h.logger.Error("session stream failed", "session_id", id, "user_id", userID, "error", err)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	sess, err := h.sessions.Get(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return sess, true
}
