package emotion

import (
	"strings"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

// labelMap folds the model's seven raw labels into the six moods.
// Anything not listed here folds into mood.Neutral.
var labelMap = map[string]mood.Label{
	"happy":    mood.Happy,
	"sad":      mood.Sad,
	"angry":    mood.Angry,
	"surprise": mood.Surprise,
	"fear":     mood.Fear,
	"disgust":  mood.Angry,
	"neutral":  mood.Neutral,
}

// MapLabel returns the mood a raw emotion label aggregates into.
func MapLabel(raw string) mood.Label {
	if l, ok := labelMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return l
	}
	return mood.Neutral
}
