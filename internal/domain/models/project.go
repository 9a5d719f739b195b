package models

import (
	"sort"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one chat turn. Assistant messages are replaced,
// never mutated in place, while they stream.
type ConversationMessage struct {
	Role        Role     `json:"role"`
	Text        string   `json:"text"`
	Streaming   bool     `json:"streaming,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// FileSet maps a generated file name to its content.
type FileSet map[string]string

// Clone returns an independent copy.
func (f FileSet) Clone() FileSet {
	out := make(FileSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Names returns the file names in sorted order.
func (f FileSet) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Project is a saved chat with its generated files.
type Project struct {
	ID         string                `json:"id" db:"id"`
	UserID     string                `json:"user_id" db:"user_id"`
	Title      string                `json:"title" db:"title"`
	Files      FileSet               `json:"files" db:"files"`
	Messages   []ConversationMessage `json:"messages" db:"messages"`
	IsFavorite bool                  `json:"is_favorite" db:"is_favorite"`
	CreatedAt  time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at" db:"updated_at"`
}

// ProjectSummary is a project row enriched with its owner for the admin
// listing.
type ProjectSummary struct {
	Project
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// FileValidation lists the structural problems found in one file.
type FileValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
