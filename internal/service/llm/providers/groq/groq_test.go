package groq

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	domainllm "terraai/internal/domain/services/llm"
)

func collect(t *testing.T, ch <-chan domainllm.StreamChunk) (string, error) {
	t.Helper()
	var sb strings.Builder
	var streamErr error
	for c := range ch {
		if c.Err != nil {
			streamErr = c.Err
			continue
		}
		sb.WriteString(c.Text)
	}
	return sb.String(), streamErr
}

func TestStreamResponse_DecodesUntilDone(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, ": keepalive\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"Hello "}}]}`+"\n\n")
		io.WriteString(w, "data: not-json\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"[FILE: main.tf]"}}]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"after done"}}]}`+"\n\n")
	}))
	defer srv.Close()

	p := NewProvider("key", srv.URL, srv.Client())
	ch, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{
		Model:       "llama-3.3-70b-versatile",
		System:      "be terse",
		Messages:    []domainllm.Message{{Role: domainllm.RoleUser, Content: "vpc"}},
		Temperature: 0.1,
		MaxTokens:   8000,
	})
	if err != nil {
		t.Fatalf("StreamResponse: %v", err)
	}

	text, streamErr := collect(t, ch)
	if streamErr != nil {
		t.Fatalf("stream error: %v", streamErr)
	}
	if text != "Hello [FILE: main.tf]" {
		t.Errorf("text = %q", text)
	}

	if !got.Stream || got.MaxTokens != 8000 || got.Temperature != 0.1 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "vpc" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestStreamResponse_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid key"}`)
	}))
	defer srv.Close()

	p := NewProvider("key", srv.URL, srv.Client())
	_, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid key") {
		t.Errorf("error = %v, want status and body", err)
	}
}

func TestStreamResponse_MissingKey(t *testing.T) {
	p := NewProvider("", "http://unused", nil)
	_, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
	if err.Error() != "GROQ_API_KEY is not defined" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestStreamResponse_EOFWithoutDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"partial"}}]}`+"\n")
	}))
	defer srv.Close()

	p := NewProvider("key", srv.URL, srv.Client())
	ch, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{})
	if err != nil {
		t.Fatalf("StreamResponse: %v", err)
	}
	text, streamErr := collect(t, ch)
	if streamErr != nil || text != "partial" {
		t.Errorf("got %q, %v", text, streamErr)
	}
}

func TestStreamResponse_HeaderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewProvider("key", srv.URL, NewHTTPClient(20*time.Millisecond))
	start := time.Now()
	_, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{})
	if err == nil {
		t.Fatal("expected an error when the upstream never answers")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("gave up after %s", elapsed)
	}
}

func TestNewProvider_DefaultClientBoundsHeaders(t *testing.T) {
	p := NewProvider("key", "http://unused", nil)
	transport, ok := p.client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T, want *http.Transport", p.client.Transport)
	}
	if transport.ResponseHeaderTimeout != DefaultHeaderTimeout {
		t.Errorf("ResponseHeaderTimeout = %s, want %s", transport.ResponseHeaderTimeout, DefaultHeaderTimeout)
	}
	if p.client == http.DefaultClient {
		t.Error("nil client fell back to http.DefaultClient")
	}
}
