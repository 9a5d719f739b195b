package llm

import "context"

// Message roles understood by chat-completion providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is a provider-agnostic streaming request.
type GenerateRequest struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// StreamChunk carries either a text delta or the terminal error of a stream.
// The channel is closed after the last chunk.
type StreamChunk struct {
	Text string
	Err  error
}

// Provider streams chat completions.
type Provider interface {
	Name() string
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamChunk, error)
}
