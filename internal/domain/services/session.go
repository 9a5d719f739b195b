package services

import (
	"context"

	"terraai/internal/domain/models"
)

// Generation event types sent to the client.
const (
	EventSnapshot     = "snapshot"
	EventDone         = "done"
	EventError        = "error"
	EventSaved        = "saved"
	EventLimitReached = "limit_reached"
)

// GenerationEvent is one server-sent event of a generation.
type GenerationEvent struct {
	Type string
	Data any
}

// EventSink receives generation events. Implementations must be safe for
// use from more than one goroutine.
type EventSink func(GenerationEvent) error

// ErrorPayload is the data of an error event.
type ErrorPayload struct {
	Message string          `json:"message"`
	Session *models.Session `json:"session"`
}

// SavedPayload is the data of a saved event.
type SavedPayload struct {
	ProjectID string          `json:"project_id"`
	Session   *models.Session `json:"session"`
}

// LimitPayload is the data of a limit_reached event. Session is the fresh
// chat the old one was reset to.
type LimitPayload struct {
	Message string          `json:"message"`
	Plan    string          `json:"plan"`
	Limit   int             `json:"limit"`
	Session *models.Session `json:"session"`
}

// ArchiveImport reports the result of replacing a session's files from a
// zip archive.
type ArchiveImport struct {
	Session *models.Session `json:"session"`
	Skipped []string        `json:"skipped"`
}

// SessionService manages in-memory generation sessions.
type SessionService interface {
	// Create opens a session, optionally loaded from a saved project
	Create(ctx context.Context, userID, fromProjectID string) (*models.Session, error)
	Get(ctx context.Context, userID, id string) (*models.Session, error)
	Rename(ctx context.Context, userID, id, title string) (*models.Session, error)

	// Reset starts a new chat in the same session, cancelling any generation
	Reset(ctx context.Context, userID, id string) (*models.Session, error)
	Discard(ctx context.Context, userID, id string) error

	// Generate streams one generation and the idle-save that follows it.
	// It returns once both are finished or ctx is done; the generation
	// itself keeps running if the caller goes away.
	Generate(ctx context.Context, userID, id, prompt string, sink EventSink) error

	// Watch re-attaches a client to the running turn: a snapshot of the
	// session first, then live events until the turn ends or ctx is done
	Watch(ctx context.Context, userID, id string, sink EventSink) error

	ImportArchive(ctx context.Context, userID, id string, data []byte) (*ArchiveImport, error)
	Validate(ctx context.Context, userID, id string) (map[string]models.FileValidation, error)
}
