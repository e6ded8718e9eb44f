package mood

// Track is a catalog track normalized for clients. Identity is ID.
type Track struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"` // Comma-separated artist names
	Album       string  `json:"album"`
	DurationMs  int     `json:"duration_ms"`
	Explicit    bool    `json:"explicit"`
	Popularity  int     `json:"popularity"`
	PreviewURL  *string `json:"preview_url"`
	ExternalURL string  `json:"external_url"`
	URI         string  `json:"uri"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// Classification is the outcome of classifying one image.
type Classification struct {
	Mood          Label             `json:"mood"`
	Confidence    float64           `json:"confidence"`
	Emotions      map[Label]float64 `json:"emotions"`
	LowConfidence bool              `json:"low_confidence,omitempty"`
	Error         bool              `json:"error"`
	Message       string            `json:"message"`
}

// PlaylistResult bundles the resolved tracks for one mood.
type PlaylistResult struct {
	Mood         Label   `json:"mood"`
	Tracks       []Track `json:"tracks"`
	TotalTracks  int     `json:"total_tracks"`
	PlaylistName string  `json:"playlist_name,omitempty"`
	Description  string  `json:"description,omitempty"`
	Error        bool    `json:"error"`
	Message      string  `json:"message,omitempty"`
}

// UserProfile is the normalized catalog account of the caller.
type UserProfile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Followers   int    `json:"followers"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// RemotePlaylist identifies a playlist created in the catalog service.
type RemotePlaylist struct {
	ID   string `json:"playlist_id"`
	URL  string `json:"playlist_url"`
	Name string `json:"playlist_name"`
}
