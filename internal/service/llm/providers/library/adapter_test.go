package library

import (
	"errors"
	"testing"

	llmprovider "github.com/haowjy/meridian-llm-go"

	domainllm "terraai/internal/domain/services/llm"
)

func TestToLibraryRequest_FoldsSystemIntoFirstUserMessage(t *testing.T) {
	req := &domainllm.GenerateRequest{
		Model:  "meta-llama/llama-3.3-70b-instruct",
		System: "SYS",
		Messages: []domainllm.Message{
			{Role: domainllm.RoleAssistant, Content: "earlier answer"},
			{Role: domainllm.RoleUser, Content: "first"},
			{Role: domainllm.RoleUser, Content: "second"},
		},
	}

	got := toLibraryRequest(req)

	if got.Model != req.Model {
		t.Errorf("Model = %q", got.Model)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("got %d messages", len(got.Messages))
	}
	if txt := *got.Messages[0].Blocks[0].TextContent; txt != "earlier answer" {
		t.Errorf("assistant text = %q", txt)
	}
	if txt := *got.Messages[1].Blocks[0].TextContent; txt != "SYS\n\nfirst" {
		t.Errorf("first user text = %q", txt)
	}
	if txt := *got.Messages[2].Blocks[0].TextContent; txt != "second" {
		t.Errorf("second user text = %q", txt)
	}
}

func TestFromLibraryEvent(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		event  llmprovider.StreamEvent
		wantOK bool
		want   domainllm.StreamChunk
	}{
		{"error", llmprovider.StreamEvent{Error: boom}, true, domainllm.StreamChunk{Err: boom}},
		{"no delta", llmprovider.StreamEvent{}, false, domainllm.StreamChunk{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fromLibraryEvent(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Text != tt.want.Text || got.Err != tt.want.Err {
				t.Errorf("chunk = %+v, want %+v", got, tt.want)
			}
		})
	}
}
