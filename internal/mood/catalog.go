package mood

// Info is display metadata for a mood.
type Info struct {
	Emoji         string `json:"emoji"`
	Description   string `json:"description"`
	PlaylistStyle string `json:"playlist_style"`
}

var supported = map[Label]Info{
	Happy: {
		Emoji:         "😊",
		Description:   "Joyful, upbeat, positive",
		PlaylistStyle: "Upbeat pop, dance, feel-good hits",
	},
	Sad: {
		Emoji:         "😢",
		Description:   "Melancholic, down, emotional",
		PlaylistStyle: "Slow ballads, emotional songs, indie",
	},
	Neutral: {
		Emoji:         "😐",
		Description:   "Calm, balanced, relaxed",
		PlaylistStyle: "Chill, ambient, easy listening",
	},
	Angry: {
		Emoji:         "😠",
		Description:   "Intense, aggressive, frustrated",
		PlaylistStyle: "Rock, metal, high-energy",
	},
	Surprise: {
		Emoji:         "😲",
		Description:   "Excited, amazed, energetic",
		PlaylistStyle: "Eclectic, upbeat, varied genres",
	},
	Fear: {
		Emoji:         "😨",
		Description:   "Anxious, tense, uncertain",
		PlaylistStyle: "Calming, soothing, reassuring",
	},
}

// Supported returns display metadata for every mood keyed by label name.
func Supported() map[string]Info {
	out := make(map[string]Info, len(supported))
	for l, info := range supported {
		out[string(l)] = info
	}
	return out
}
