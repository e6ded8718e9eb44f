// Package mood defines the fixed mood taxonomy shared by emotion detection
// and playlist resolution, along with the static per-mood query profiles.
package mood

import (
	"errors"
	"fmt"
	"strings"
)

// Label is one of the six coarse moods used to select music.
type Label string

const (
	Happy    Label = "happy"
	Sad      Label = "sad"
	Neutral  Label = "neutral"
	Angry    Label = "angry"
	Surprise Label = "surprise"
	Fear     Label = "fear"
)

// Default is the mood used whenever detection cannot decide.
const Default = Neutral

// ErrInvalidMood is matched by InvalidMoodError via errors.Is.
var ErrInvalidMood = errors.New("invalid mood")

// labels is the canonical iteration order. Ties are broken by position here.
var labels = [...]Label{Happy, Sad, Neutral, Angry, Surprise, Fear}

// Labels returns all moods in canonical order.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels[:])
	return out
}

// Names returns the mood labels as plain strings in canonical order.
func Names() []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

// InvalidMoodError reports a mood string outside the taxonomy.
type InvalidMoodError struct {
	Value string
}

func (e InvalidMoodError) Error() string {
	return fmt.Sprintf("mood must be one of: %s", strings.Join(Names(), ", "))
}

func (e InvalidMoodError) Is(target error) bool {
	return target == ErrInvalidMood
}

// Parse converts a caller-supplied string into a Label.
// Matching is case-insensitive and ignores surrounding whitespace.
func Parse(s string) (Label, error) {
	candidate := Label(strings.ToLower(strings.TrimSpace(s)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", InvalidMoodError{Value: s}
}

// Valid reports whether l is part of the taxonomy.
func (l Label) Valid() bool {
	for _, known := range labels {
		if l == known {
			return true
		}
	}
	return false
}

// Index returns the canonical position of l, or -1.
func (l Label) Index() int {
	for i, known := range labels {
		if l == known {
			return i
		}
	}
	return -1
}

// Title returns the label with its first letter upper-cased ("happy" -> "Happy").
func (l Label) Title() string {
	if l == "" {
		return ""
	}
	s := string(l)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (l Label) String() string {
	return string(l)
}
