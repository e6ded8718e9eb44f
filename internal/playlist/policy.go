package playlist

import (
	"fmt"
	"strings"
)

// Policy decides what happens to successful searches when another fails.
type Policy int

const (
	// PartialSuccess keeps tracks from searches that succeeded.
	PartialSuccess Policy = iota
	// AllOrNothing discards everything if any search fails.
	AllOrNothing
)

func (p Policy) String() string {
	switch p {
	case AllOrNothing:
		return "all-or-nothing"
	default:
		return "partial"
	}
}

// ParsePolicy parses "partial" or "all-or-nothing". Empty means partial.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "partial":
		return PartialSuccess, nil
	case "all-or-nothing", "strict":
		return AllOrNothing, nil
	default:
		return PartialSuccess, fmt.Errorf("unknown search policy %q", s)
	}
}
