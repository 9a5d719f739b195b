package models

import "time"

// DefaultTitle names a chat or project until the user renames it.
const DefaultTitle = "Cloud Stack"

// SessionStatus reports whether a session is generating.
type SessionStatus string

const (
	SessionIdle      SessionStatus = "idle"
	SessionStreaming SessionStatus = "streaming"
	SessionError     SessionStatus = "error"
)

// Session is a point-in-time copy of an in-memory chat. ProjectID is nil
// until the first idle-save.
type Session struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	ProjectID *string               `json:"project_id"`
	Status    SessionStatus         `json:"status"`
	Files     FileSet               `json:"files"`
	Messages  []ConversationMessage `json:"messages"`
	UpdatedAt time.Time             `json:"updated_at"`
}
