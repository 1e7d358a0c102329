package threshold

import (
	"fmt"
	"strings"
)

const (
	// MaxNoteLines and MaxNoteLineLength bound what fits in a deck's note
	// box; enforced before persistence, not at render time.
	MaxNoteLines      = 3
	MaxNoteLineLength = 70
)

// NoteSet holds free-text notes per classification. The note shown on a
// report section is the one for the section's resolved tier.
type NoteSet map[Classification]string

// NoteLimitError reports which note broke which limit.
type NoteLimitError struct {
	Classification Classification
	Line           int
	LineCount      int
	LineLength     int
}

func (e *NoteLimitError) Error() string {
	if e.LineCount > 0 {
		return fmt.Sprintf("'%s' has %d lines (max %d allowed)", e.Classification, e.LineCount, MaxNoteLines)
	}
	return fmt.Sprintf("'%s' line %d is %d chars (max %d)", e.Classification, e.Line, e.LineLength, MaxNoteLineLength)
}

// ParseNoteSet parses a note payload such as
// {"color1": "all good", "color2": "", "color3": "", "invalid": ""}.
func ParseNoteSet(payload string) (NoteSet, error) {
	raw := map[string]string{}
	if err := strictUnmarshal(payload, &raw); err != nil {
		return nil, err
	}
	notes := make(NoteSet, len(raw))
	for key, value := range raw {
		notes[canonicalClassification(key)] = value
	}
	return notes, nil
}

// Validate enforces the per-note line-count and line-length limits.
func (n NoteSet) Validate() error {
	for _, tier := range []Classification{Color1, Color2, Color3, Invalid} {
		value, ok := n[tier]
		if !ok || value == "" {
			continue
		}
		lines := splitNoteLines(value)
		if len(lines) > MaxNoteLines {
			return &NoteLimitError{Classification: tier, LineCount: len(lines)}
		}
		for idx, line := range lines {
			if len([]rune(line)) > MaxNoteLineLength {
				return &NoteLimitError{Classification: tier, Line: idx + 1, LineLength: len([]rune(line))}
			}
		}
	}
	return nil
}

// Reflow prepares the note for one classification for rendering: escaped
// newlines become real line breaks, surrounding whitespace is trimmed and
// blank lines are dropped.
func (n NoteSet) Reflow(tier Classification) []string {
	value := strings.TrimSpace(n[tier])
	if value == "" {
		return nil
	}
	value = strings.ReplaceAll(value, `\n`, "\n")
	var lines []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitNoteLines counts lines the way the UI writes them: both literal
// newlines and the escaped "\n" the text inputs produce.
func splitNoteLines(value string) []string {
	value = strings.ReplaceAll(value, `\n`, "\n")
	return strings.Split(value, "\n")
}
