package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrQuotaExceeded      = errors.New("daily project limit reached")
	ErrUpgradeRequired    = errors.New("upgrade required")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrGeneration         = errors.New("generation failed")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// QuotaExceededError is returned when a user has used up the daily
// allowance of their plan. It is a distinct 403 so clients can prompt
// for an upgrade instead of treating it as a permission failure.
type QuotaExceededError struct {
	Plan  string
	Limit int
	Kind  string // "projects" or "devops_imports"
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily %s limit of %d reached for %s plan", e.kind(), e.Limit, e.Plan)
}

func (e *QuotaExceededError) StatusCode() int { return http.StatusForbidden }

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

func (e *QuotaExceededError) kind() string {
	if e.Kind == "" {
		return "projects"
	}
	return e.Kind
}

// GenerationError wraps an upstream LLM failure.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Cause)
}

func (e *GenerationError) StatusCode() int { return http.StatusBadGateway }

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}
