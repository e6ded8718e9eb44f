package mood

// Profile describes how to search the catalog for a mood.
type Profile struct {
	Genres             []string
	AudioFeatureTarget map[string]float64
	Keywords           []string
}

// Audio feature names used in profile targets.
const (
	FeatureValence      = "valence"
	FeatureEnergy       = "energy"
	FeatureDanceability = "danceability"
	FeatureAcousticness = "acousticness"
	FeatureLoudness     = "loudness"
)

var profiles = map[Label]Profile{
	Happy: {
		Genres: []string{"pop", "dance", "funk", "disco", "soul"},
		AudioFeatureTarget: map[string]float64{
			FeatureValence:      0.8,
			FeatureEnergy:       0.8,
			FeatureDanceability: 0.7,
		},
		Keywords: []string{"happy", "upbeat", "feel good", "party", "celebration"},
	},
	Sad: {
		Genres: []string{"indie", "alternative", "folk", "blues", "country"},
		AudioFeatureTarget: map[string]float64{
			FeatureValence:      0.2,
			FeatureEnergy:       0.3,
			FeatureAcousticness: 0.7,
		},
		Keywords: []string{"sad", "melancholy", "heartbreak", "emotional", "ballad"},
	},
	Neutral: {
		Genres: []string{"chill", "ambient", "lo-fi", "jazz", "classical"},
		AudioFeatureTarget: map[string]float64{
			FeatureValence:      0.5,
			FeatureEnergy:       0.4,
			FeatureAcousticness: 0.5,
		},
		Keywords: []string{"chill", "relaxing", "calm", "peaceful", "mellow"},
	},
	Angry: {
		Genres: []string{"rock", "metal", "punk", "hardcore", "grunge"},
		AudioFeatureTarget: map[string]float64{
			FeatureValence:  0.3,
			FeatureEnergy:   0.9,
			FeatureLoudness: -5,
		},
		Keywords: []string{"aggressive", "intense", "powerful", "heavy", "energetic"},
	},
	Surprise: {
		Genres: []string{"electronic", "experimental", "world", "reggae", "latin"},
		AudioFeatureTarget: map[string]float64{
			FeatureValence:      0.7,
			FeatureEnergy:       0.6,
			FeatureDanceability: 0.8,
		},
		Keywords: []string{"eclectic", "unique", "diverse", "world music", "fusion"},
	},
	Fear: {
		Genres: []string{"ambient", "new age", "meditation", "soft rock", "acoustic"},
		AudioFeatureTarget: map[string]float64{
			FeatureValence:      0.6,
			FeatureEnergy:       0.2,
			FeatureAcousticness: 0.8,
		},
		Keywords: []string{"calming", "soothing", "peaceful", "healing", "comfort"},
	},
}

// ProfileFor returns a copy of the query profile for l.
// Unknown labels get the neutral profile.
func ProfileFor(l Label) Profile {
	p, ok := profiles[l]
	if !ok {
		p = profiles[Default]
	}

	targets := make(map[string]float64, len(p.AudioFeatureTarget))
	for k, v := range p.AudioFeatureTarget {
		targets[k] = v
	}

	return Profile{
		Genres:             append([]string(nil), p.Genres...),
		AudioFeatureTarget: targets,
		Keywords:           append([]string(nil), p.Keywords...),
	}
}
