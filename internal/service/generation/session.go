package generation

import (
	"sync"
	"time"

	"terraai/internal/domain/models"
	"terraai/internal/service/blueprint"
	"terraai/internal/service/llm"
)

// pendingSave is an idle-save waiting for its timer.
type pendingSave struct {
	timer    *time.Timer
	finished chan struct{}
}

// session is the server-side state of one chat. All fields are guarded
// by mu.
type session struct {
	mu sync.Mutex

	id        string
	userID    string
	title     string
	projectID string

	state   blueprint.State
	history llm.History
	status  models.SessionStatus

	// streamID is the registry id of the running generation, empty when idle.
	streamID string
	// feed carries the current turn's events until its idle-save is done.
	feed *feed
	// epoch changes on every reset so late writers can tell the chat is gone.
	epoch   uint64
	saveSeq uint64
	pending *pendingSave

	updatedAt  time.Time
	lastActive time.Time
}

func newSession(id, userID string, now time.Time) *session {
	return &session{
		id:         id,
		userID:     userID,
		title:      DefaultTitle,
		state:      blueprint.NewState(),
		status:     models.SessionIdle,
		updatedAt:  now,
		lastActive: now,
	}
}

// snapshotLocked copies the session. Callers must hold mu.
func (s *session) snapshotLocked() *models.Session {
	snap := &models.Session{
		ID:        s.id,
		Title:     s.title,
		Status:    s.status,
		Files:     s.state.Files.Clone(),
		Messages:  append([]models.ConversationMessage(nil), s.state.Messages...),
		UpdatedAt: s.updatedAt,
	}
	if snap.Messages == nil {
		snap.Messages = []models.ConversationMessage{}
	}
	if s.projectID != "" {
		id := s.projectID
		snap.ProjectID = &id
	}
	return snap
}

// cancelSaveLocked stops a pending idle-save. Callers must hold mu.
func (s *session) cancelSaveLocked() {
	s.saveSeq++
	if s.pending == nil {
		return
	}
	if s.pending.timer.Stop() {
		// the timer func will never run, so release waiters here
		close(s.pending.finished)
	}
	s.pending = nil
}

// resetLocked turns the session into a new chat. Callers must hold mu.
func (s *session) resetLocked(now time.Time) {
	s.cancelSaveLocked()
	s.epoch++
	s.title = DefaultTitle
	s.projectID = ""
	s.state = blueprint.NewState()
	s.history = llm.History{}
	s.status = models.SessionIdle
	s.streamID = ""
	s.updatedAt = now
}
