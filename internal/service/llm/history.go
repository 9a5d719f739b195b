package llm

import domainllm "terraai/internal/domain/services/llm"

// maxStoredHistory bounds what a session keeps between turns.
const maxStoredHistory = 32

// History is the chat-completion history of one session. Methods return a
// new value and never modify the receiver.
type History struct {
	messages []domainllm.Message
}

// WithUser appends a user prompt.
func (h History) WithUser(prompt string) History {
	return h.with(domainllm.Message{Role: domainllm.RoleUser, Content: prompt})
}

// WithAssistant appends a completed assistant reply.
func (h History) WithAssistant(text string) History {
	return h.with(domainllm.Message{Role: domainllm.RoleAssistant, Content: text})
}

func (h History) with(m domainllm.Message) History {
	start := 0
	if n := len(h.messages) + 1; n > maxStoredHistory {
		start = n - maxStoredHistory
	}
	next := make([]domainllm.Message, 0, len(h.messages)-start+1)
	next = append(next, h.messages[start:]...)
	next = append(next, m)
	return History{messages: next}
}

// Recent returns a copy of the last n messages.
func (h History) Recent(n int) []domainllm.Message {
	start := 0
	if n >= 0 && len(h.messages) > n {
		start = len(h.messages) - n
	}
	out := make([]domainllm.Message, len(h.messages)-start)
	copy(out, h.messages[start:])
	return out
}

// Len returns the number of stored messages.
func (h History) Len() int { return len(h.messages) }
