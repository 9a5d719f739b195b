package sse

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriter_LazyStart(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec, &Config{}, testLogger())
	defer w.Close()

	if w.Started() {
		t.Fatal("started before first event")
	}

	if err := w.WriteEvent("snapshot", map[string]string{"title": "Cloud Stack"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if !w.Started() {
		t.Error("not started after first event")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	want := "event: snapshot\ndata: {\"title\":\"Cloud Stack\"}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestWriter_Closed(t *testing.T) {
	w := NewWriter(httptest.NewRecorder(), &Config{}, testLogger())
	w.Close()

	if err := w.WriteEvent("done", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestWriter_KeepAliveRequiresStart(t *testing.T) {
	w := NewWriter(httptest.NewRecorder(), &Config{}, testLogger())
	if err := w.WriteKeepAlive(); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

type countingWriter struct {
	n    atomic.Int32
	fail int32
}

func (c *countingWriter) WriteKeepAlive() error {
	if c.n.Add(1) >= c.fail {
		return errors.New("broken pipe")
	}
	return nil
}

func TestTickerKeepAlive_StopsOnWriteError(t *testing.T) {
	cw := &countingWriter{fail: 3}
	k := NewTickerKeepAlive(time.Millisecond)
	exited := k.Start(cw, testLogger())

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop after write error")
	}
	if cw.n.Load() != 3 {
		t.Errorf("writes = %d, want 3", cw.n.Load())
	}
	k.Stop()
	k.Stop()
}

func TestWriter_KeepAliveComment(t *testing.T) {
	rec := &lockedRecorder{header: http.Header{}}
	w := NewWriter(rec, &Config{KeepAliveInterval: time.Millisecond}, testLogger())
	if err := w.WriteEvent("snapshot", 1); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(rec.String(), ": keepalive") {
		if time.Now().After(deadline) {
			t.Fatal("no keepalive written")
		}
		time.Sleep(time.Millisecond)
	}
	w.Close()
}

// lockedRecorder lets the test read the body while the keep-alive
// goroutine writes to it.
type lockedRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    strings.Builder
}

func (l *lockedRecorder) Header() http.Header { return l.header }
func (l *lockedRecorder) WriteHeader(int)     {}
func (l *lockedRecorder) Flush()              {}

func (l *lockedRecorder) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(b)
}

func (l *lockedRecorder) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}
