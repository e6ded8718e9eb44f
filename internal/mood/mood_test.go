package mood

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Label
		wantErr bool
	}{
		{"happy", Happy, false},
		{"HAPPY", Happy, false},
		{"  sad ", Sad, false},
		{"neutral", Neutral, false},
		{"angry", Angry, false},
		{"surprise", Surprise, false},
		{"fear", Fear, false},
		{"glee", "", true},
		{"disgust", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInvalidMoodErrorListsValidMoods(t *testing.T) {
	_, err := Parse("glee")
	if !errors.Is(err, ErrInvalidMood) {
		t.Fatalf("errors.Is(err, ErrInvalidMood) = false, err = %v", err)
	}

	var invalid InvalidMoodError
	if !errors.As(err, &invalid) {
		t.Fatalf("errors.As InvalidMoodError failed for %v", err)
	}
	if invalid.Value != "glee" {
		t.Errorf("Value = %q, want %q", invalid.Value, "glee")
	}

	msg := err.Error()
	for _, name := range Names() {
		if !strings.Contains(msg, name) {
			t.Errorf("message %q does not mention %q", msg, name)
		}
	}
}

func TestLabelsOrder(t *testing.T) {
	want := []Label{Happy, Sad, Neutral, Angry, Surprise, Fear}
	got := Labels()
	if len(got) != len(want) {
		t.Fatalf("len(Labels()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, got[i], want[i])
		}
		if got[i].Index() != i {
			t.Errorf("%q.Index() = %d, want %d", got[i], got[i].Index(), i)
		}
	}

	// Mutating the returned slice must not affect the canonical order.
	got[0] = Fear
	if Labels()[0] != Happy {
		t.Error("Labels() returned a shared slice")
	}
}

func TestTitle(t *testing.T) {
	if got := Surprise.Title(); got != "Surprise" {
		t.Errorf("Title() = %q, want %q", got, "Surprise")
	}
	if got := Label("").Title(); got != "" {
		t.Errorf("empty Title() = %q, want empty", got)
	}
}

func TestProfileForEveryLabel(t *testing.T) {
	for _, l := range Labels() {
		p := ProfileFor(l)
		if len(p.Genres) < 2 {
			t.Errorf("%s: %d genres, want at least 2", l, len(p.Genres))
		}
		if len(p.Keywords) < 2 {
			t.Errorf("%s: %d keywords, want at least 2", l, len(p.Keywords))
		}
		if _, ok := p.AudioFeatureTarget[FeatureValence]; !ok {
			t.Errorf("%s: missing valence target", l)
		}
		if _, ok := p.AudioFeatureTarget[FeatureEnergy]; !ok {
			t.Errorf("%s: missing energy target", l)
		}
	}
}

func TestProfileForReturnsCopy(t *testing.T) {
	p := ProfileFor(Happy)
	p.Genres[0] = "mutated"
	p.AudioFeatureTarget[FeatureValence] = -1

	fresh := ProfileFor(Happy)
	if fresh.Genres[0] != "pop" {
		t.Errorf("Genres[0] = %q, want %q", fresh.Genres[0], "pop")
	}
	if fresh.AudioFeatureTarget[FeatureValence] != 0.8 {
		t.Errorf("valence = %v, want 0.8", fresh.AudioFeatureTarget[FeatureValence])
	}
}

func TestProfileForUnknownFallsBackToNeutral(t *testing.T) {
	p := ProfileFor(Label("glee"))
	if p.Genres[0] != "chill" {
		t.Errorf("Genres[0] = %q, want %q", p.Genres[0], "chill")
	}
}

func TestSupported(t *testing.T) {
	moods := Supported()
	if len(moods) != 6 {
		t.Fatalf("len(Supported()) = %d, want 6", len(moods))
	}
	for _, name := range Names() {
		info, ok := moods[name]
		if !ok {
			t.Errorf("missing mood %q", name)
			continue
		}
		if info.Emoji == "" || info.Description == "" || info.PlaylistStyle == "" {
			t.Errorf("%s: incomplete info %+v", name, info)
		}
	}
}

func TestNearestLabel(t *testing.T) {
	tests := []struct {
		name     string
		features AudioFeatures
		want     Label
	}{
		{"exact happy target", AudioFeatures{Valence: 0.8, Energy: 0.8}, Happy},
		{"exact sad target", AudioFeatures{Valence: 0.2, Energy: 0.3}, Sad},
		{"loud and dark", AudioFeatures{Valence: 0.25, Energy: 0.95}, Angry},
		{"quiet and warm", AudioFeatures{Valence: 0.6, Energy: 0.15}, Fear},
		{"middle of the road", AudioFeatures{Valence: 0.5, Energy: 0.45}, Neutral},
		{"bright and lively", AudioFeatures{Valence: 0.7, Energy: 0.6}, Surprise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearestLabel(tt.features); got != tt.want {
				t.Errorf("NearestLabel(%+v) = %q, want %q", tt.features, got, tt.want)
			}
		})
	}
}
