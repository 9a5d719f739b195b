// Package blueprint turns the free text streamed by the model into the
// generated file set, the chat-visible conversation and suggestion chips.
package blueprint

import (
	"regexp"
	"strings"

	"terraai/internal/domain/models"
)

const (
	fileMarkerPrefix        = "[FILE:"
	suggestionsMarkerPrefix = "[SUGGESTIONS:"
)

var (
	// fileMarker matches a complete [FILE: name] marker.
	fileMarker = regexp.MustCompile(`\[FILE:\s*([A-Za-z0-9_.-]+)\]`)

	// suggestionsMarker matches a complete [SUGGESTIONS: ...] marker. The
	// body may span lines and ends at the first closing bracket.
	suggestionsMarker = regexp.MustCompile(`(?s)\[SUGGESTIONS:\s*(.*?)\]`)

	// fileFragment matches any closed [FILE: ...] bracket, valid name or not.
	fileFragment = regexp.MustCompile(`\[FILE:[^\]]*\]`)

	// FileNamePattern is the set of names a [FILE: ...] marker accepts.
	FileNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// Result is everything derivable from one accumulated text.
type Result struct {
	// Files holds only the blocks present in this text; callers overlay it
	// on the files they already have.
	Files        models.FileSet
	Conversation string
	Suggestions  []string
}

// Parse derives files, conversation and suggestions from the full text
// accumulated so far. It is pure and never fails: text without markers is
// all conversation, and bracketed text that is not a marker stays in the
// conversation. While streaming, a trailing fragment that may still grow
// into a marker is hidden until it completes.
//
// Literal "[FILE:" text inside a generated file is indistinguishable from a
// marker and will split that file.
func Parse(text string, streaming bool) Result {
	res := Result{Files: models.FileSet{}}

	locs := fileMarker.FindAllStringSubmatchIndex(text, -1)

	head := text
	if len(locs) > 0 {
		head = text[:locs[0][0]]
	}
	res.Conversation = cleanConversation(head, streaming && len(locs) == 0)

	for i, loc := range locs {
		name := text[loc[2]:loc[3]]
		end := len(text)
		last := i+1 == len(locs)
		if !last {
			end = locs[i+1][0]
		}
		res.Files[name] = cleanBlock(text[loc[1]:end], streaming && last)
	}

	if m := suggestionsMarker.FindStringSubmatch(text); m != nil {
		res.Suggestions = splitSuggestions(m[1])
	}

	return res
}

// cleanConversation strips complete suggestion markers and bracketed
// [FILE: ...] fragments whose name is not a valid file name, then drops a
// trailing marker that was never closed. tail is true when s ends the
// text of a response that is still streaming.
func cleanConversation(s string, tail bool) string {
	s = suggestionsMarker.ReplaceAllString(s, "")
	s = fileFragment.ReplaceAllString(s, "")
	s = cutUnclosed(s, fileMarkerPrefix)
	s = cutUnclosed(s, suggestionsMarkerPrefix)
	if tail {
		s = trimPartialMarker(s)
	}
	return strings.TrimSpace(s)
}

// trimPartialMarker drops a trailing "[FIL" or "[SUGG" that may become a
// marker once the next chunk arrives.
func trimPartialMarker(s string) string {
	i := strings.LastIndexByte(s, '[')
	if i < 0 {
		return s
	}
	tail := s[i:]
	if strings.HasPrefix(fileMarkerPrefix, tail) || strings.HasPrefix(suggestionsMarkerPrefix, tail) {
		return s[:i]
	}
	return s
}

// cleanBlock ends a file body at a suggestions marker and drops a trailing
// file marker that was never closed.
func cleanBlock(s string, tail bool) string {
	s = cutAt(s, suggestionsMarkerPrefix)
	s = cutUnclosed(s, fileMarkerPrefix)
	if tail {
		s = trimPartialMarker(s)
	}
	return strings.TrimSpace(s)
}

func cutAt(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}

// cutUnclosed cuts s at the last marker prefix when no closing bracket
// follows it.
func cutUnclosed(s, prefix string) string {
	i := strings.LastIndex(s, prefix)
	if i < 0 || strings.IndexByte(s[i:], ']') >= 0 {
		return s
	}
	return s[:i]
}

func splitSuggestions(body string) []string {
	parts := strings.Split(body, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
