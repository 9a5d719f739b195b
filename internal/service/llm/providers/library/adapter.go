// Package library adapts meridian-llm-go providers to the generation gateway.
package library

import (
	"context"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/lorem"
	"github.com/haowjy/meridian-llm-go/providers/openrouter"

	domainllm "terraai/internal/domain/services/llm"
)

const (
	blockTypeText = "text"
	deltaTypeText = "text_delta"
)

// Adapter wraps a library provider and exposes only text deltas.
type Adapter struct {
	provider llmprovider.Provider
}

// NewOpenRouterAdapter creates an adapter backed by the library's OpenRouter provider.
func NewOpenRouterAdapter(apiKey string) (*Adapter, error) {
	provider, err := openrouter.NewProvider(apiKey)
	if err != nil {
		return nil, err
	}
	return &Adapter{provider: provider}, nil
}

// NewLoremAdapter creates an adapter backed by the offline lorem provider.
func NewLoremAdapter() *Adapter {
	return &Adapter{provider: lorem.NewProvider()}
}

// NewAdapterWithProvider wraps an existing provider.
func NewAdapterWithProvider(provider llmprovider.Provider) *Adapter {
	return &Adapter{provider: provider}
}

func (a *Adapter) Name() string {
	return a.provider.Name().String()
}

// StreamResponse converts the request, starts the library stream and
// forwards text deltas. Thinking and tool deltas are dropped.
func (a *Adapter) StreamResponse(ctx context.Context, req *domainllm.GenerateRequest) (<-chan domainllm.StreamChunk, error) {
	libEvents, err := a.provider.StreamResponse(ctx, toLibraryRequest(req))
	if err != nil {
		return nil, err
	}

	out := make(chan domainllm.StreamChunk)
	go func() {
		defer close(out)
		for ev := range libEvents {
			chunk, ok := fromLibraryEvent(ev)
			if !ok {
				continue
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				// drain so the library goroutine can exit
				for range libEvents {
				}
				return
			}
		}
	}()

	return out, nil
}

// toLibraryRequest folds the system instruction into the first user message.
// Sampling parameters are left to the provider defaults.
func toLibraryRequest(req *domainllm.GenerateRequest) *llmprovider.GenerateRequest {
	messages := make([]llmprovider.Message, 0, len(req.Messages))
	systemPending := req.System != ""

	for _, m := range req.Messages {
		text := m.Content
		if systemPending && m.Role == domainllm.RoleUser {
			text = req.System + "\n\n" + text
			systemPending = false
		}
		messages = append(messages, llmprovider.Message{
			Role: m.Role,
			Blocks: []*llmprovider.Block{{
				BlockType:   blockTypeText,
				Sequence:    0,
				TextContent: &text,
			}},
		})
	}

	return &llmprovider.GenerateRequest{
		Messages: messages,
		Model:    req.Model,
	}
}

func fromLibraryEvent(ev llmprovider.StreamEvent) (domainllm.StreamChunk, bool) {
	if ev.Error != nil {
		return domainllm.StreamChunk{Err: ev.Error}, true
	}
	if ev.Delta == nil || ev.Delta.TextDelta == nil || ev.Delta.DeltaType != deltaTypeText {
		return domainllm.StreamChunk{}, false
	}
	if *ev.Delta.TextDelta == "" {
		return domainllm.StreamChunk{}, false
	}
	return domainllm.StreamChunk{Text: *ev.Delta.TextDelta}, true
}
