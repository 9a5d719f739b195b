// Package groq streams chat completions from Groq's OpenAI-compatible endpoint.
package groq

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	domainllm "terraai/internal/domain/services/llm"
)

// ErrMissingAPIKey is returned at stream start when no key is configured.
var ErrMissingAPIKey = errors.New("GROQ_API_KEY is not defined")

const (
	dataPrefix  = "data: "
	doneMarker  = "[DONE]"
	maxLineSize = 1 << 20
	maxErrBody  = 64 << 10

	// DefaultHeaderTimeout bounds the wait for the upstream's response
	// headers. The body may stream for as long as the request context allows.
	DefaultHeaderTimeout = time.Minute
)

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []domainllm.Message `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Stream      bool                `json:"stream"`
}

type chunkEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Provider implements domainllm.Provider against an OpenAI-compatible SSE API.
type Provider struct {
	apiKey string
	url    string
	client *http.Client
}

// NewHTTPClient returns a client suited to streamed completions: no
// overall timeout, but the response headers must arrive within
// headerTimeout.
func NewHTTPClient(headerTimeout time.Duration) *http.Client {
	if headerTimeout <= 0 {
		headerTimeout = DefaultHeaderTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

// NewProvider creates a Groq provider. A nil client means
// NewHTTPClient(DefaultHeaderTimeout).
func NewProvider(apiKey, url string, client *http.Client) *Provider {
	if client == nil {
		client = NewHTTPClient(DefaultHeaderTimeout)
	}
	return &Provider{apiKey: apiKey, url: url, client: client}
}

func (p *Provider) Name() string { return "groq" }

// StreamResponse posts the request and yields content deltas until [DONE].
func (p *Provider) StreamResponse(ctx context.Context, req *domainllm.GenerateRequest) (<-chan domainllm.StreamChunk, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	messages := make([]domainllm.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, domainllm.Message{Role: domainllm.RoleSystem, Content: req.System})
	}
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return nil, fmt.Errorf("API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	out := make(chan domainllm.StreamChunk, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		if err := readEvents(ctx, resp.Body, out); err != nil && ctx.Err() == nil {
			select {
			case out <- domainllm.StreamChunk{Err: fmt.Errorf("read stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

// readEvents decodes `data: ` lines. Lines that are not valid JSON are skipped.
func readEvents(ctx context.Context, r io.Reader, out chan<- domainllm.StreamChunk) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(line[len(dataPrefix):])
		if data == doneMarker {
			return nil
		}

		var ev chunkEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}
		if len(ev.Choices) == 0 || ev.Choices[0].Delta.Content == "" {
			continue
		}

		select {
		case out <- domainllm.StreamChunk{Text: ev.Choices[0].Delta.Content}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return scanner.Err()
}
