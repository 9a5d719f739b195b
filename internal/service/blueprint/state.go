package blueprint

import "terraai/internal/domain/models"

const (
	// StreamingPlaceholder is shown while the model has produced no
	// conversation text yet.
	StreamingPlaceholder = "Architecting Zero-Error Blueprint..."

	// FinalPlaceholder replaces an empty conversation once the stream ends.
	FinalPlaceholder = "Architecture logic validated and finalized."

	// ErrorMessage is appended to the chat when generation fails.
	ErrorMessage = "Blueprint engine error. Ensure your API key is correctly configured for reasoning-heavy models."
)

// State is an immutable snapshot of a chat: its messages and the files
// generated so far. Every method returns a new State and leaves the
// receiver untouched, so snapshots can be handed to other goroutines.
type State struct {
	Files    models.FileSet
	Messages []models.ConversationMessage
}

// NewState returns an empty snapshot.
func NewState() State {
	return State{Files: models.FileSet{}}
}

// WithPrompt appends the user's prompt and an empty streaming assistant
// message.
func (s State) WithPrompt(prompt string) State {
	msgs := s.copyMessages(2)
	msgs = append(msgs,
		models.ConversationMessage{Role: models.RoleUser, Text: prompt},
		models.ConversationMessage{Role: models.RoleAssistant, Text: StreamingPlaceholder, Streaming: true},
	)
	return State{Files: s.Files, Messages: msgs}
}

// Apply re-parses the accumulated text, overlays the files it contains on
// the existing ones and replaces the trailing assistant message.
func (s State) Apply(text string, streaming bool) State {
	res := Parse(text, streaming)

	files := s.Files.Clone()
	for name, content := range res.Files {
		files[name] = content
	}

	reply := res.Conversation
	if reply == "" {
		if streaming {
			reply = StreamingPlaceholder
		} else {
			reply = FinalPlaceholder
		}
	}
	msg := models.ConversationMessage{
		Role:        models.RoleAssistant,
		Text:        reply,
		Streaming:   streaming,
		Suggestions: res.Suggestions,
	}

	msgs := s.copyMessages(1)
	if n := len(msgs); n > 0 && msgs[n-1].Role == models.RoleAssistant && msgs[n-1].Streaming {
		msgs[n-1] = msg
	} else {
		msgs = append(msgs, msg)
	}
	return State{Files: files, Messages: msgs}
}

// Fail closes the in-flight assistant message and appends the error
// message. Files parsed before the failure are kept. A placeholder that
// never received text is dropped so the chat shows a single error.
func (s State) Fail() State {
	msgs := s.copyMessages(1)
	if n := len(msgs); n > 0 && msgs[n-1].Role == models.RoleAssistant && msgs[n-1].Streaming {
		if msgs[n-1].Text == StreamingPlaceholder {
			msgs = msgs[:n-1]
		} else {
			msgs[n-1].Streaming = false
		}
	}
	msgs = append(msgs, models.ConversationMessage{Role: models.RoleAssistant, Text: ErrorMessage})
	return State{Files: s.Files, Messages: msgs}
}

// WithFiles replaces the file set wholesale, as an archive import does.
func (s State) WithFiles(files models.FileSet) State {
	return State{Files: files.Clone(), Messages: s.copyMessages(0)}
}

// LastAssistant returns the trailing assistant message, if any.
func (s State) LastAssistant() (models.ConversationMessage, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == models.RoleAssistant {
			return s.Messages[i], true
		}
	}
	return models.ConversationMessage{}, false
}

func (s State) copyMessages(extra int) []models.ConversationMessage {
	out := make([]models.ConversationMessage, len(s.Messages), len(s.Messages)+extra)
	copy(out, s.Messages)
	return out
}
