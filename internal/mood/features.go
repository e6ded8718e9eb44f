package mood

import (
	"github.com/muesli/clusters"
)

// featureAxes are the audio features every profile defines a target for.
var featureAxes = []string{FeatureValence, FeatureEnergy}

// AudioFeatures holds the catalog audio analysis values used for mood lookup.
type AudioFeatures struct {
	Valence float64
	Energy  float64
}

// coordinates projects a feature map onto featureAxes.
func coordinates(features map[string]float64) clusters.Coordinates {
	coords := make(clusters.Coordinates, len(featureAxes))
	for i, name := range featureAxes {
		coords[i] = features[name]
	}
	return coords
}

// NearestLabel returns the mood whose profile target lies closest to the
// given audio features in valence/energy space. Ties resolve to the label
// that comes first in canonical order.
func NearestLabel(f AudioFeatures) Label {
	point := clusters.Coordinates{f.Valence, f.Energy}

	best := Default
	bestDist := -1.0
	for _, l := range labels {
		target := coordinates(profiles[l].AudioFeatureTarget)
		d := target.Distance(point)
		if bestDist < 0 || d < bestDist {
			best = l
			bestDist = d
		}
	}
	return best
}
