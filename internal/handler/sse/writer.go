package sse

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("sse stream closed")

// Writer writes server-sent events. Headers are sent with the first event,
// so a handler can still answer with a plain error response if the work
// fails before producing anything. Safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	w         http.ResponseWriter
	rc        *http.ResponseController
	cfg       *Config
	logger    *slog.Logger
	keepAlive *TickerKeepAlive
	started   bool
	closed    bool
}

// NewWriter wraps w. A nil cfg uses DefaultConfig.
func NewWriter(w http.ResponseWriter, cfg *Config, logger *slog.Logger) *Writer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Writer{
		w:      w,
		rc:     http.NewResponseController(w),
		cfg:    cfg,
		logger: logger,
	}
}

// Started reports whether the event stream headers were sent.
func (s *Writer) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// WriteEvent sends `event: <name>` with data encoded as JSON.
func (s *Writer) WriteEvent(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.started {
		s.startLocked()
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return fmt.Errorf("write %s event: %w", name, err)
	}
	return s.rc.Flush()
}

// WriteKeepAlive sends an SSE comment line.
func (s *Writer) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.started {
		return ErrClosed
	}
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	return s.rc.Flush()
}

// Close stops the keep-alive and rejects further writes.
func (s *Writer) Close() {
	s.mu.Lock()
	s.closed = true
	ka := s.keepAlive
	s.mu.Unlock()

	if ka != nil {
		ka.Stop()
	}
}

func (s *Writer) startLocked() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.started = true

	s.keepAlive = NewTickerKeepAlive(s.cfg.KeepAliveInterval)
	s.keepAlive.Start(s, s.logger)
}
