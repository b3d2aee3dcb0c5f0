package verify

import (
	"math"
	"strings"

	"idverify/internal/ocr"
)

// MergeLines reconstructs logical text lines from recognized fragments.
//
// Fragments below confidenceFloor are discarded. The rest are sorted by
// vertical center and grouped into a line while the vertical-center delta
// to the previous fragment is strictly less than yThreshold; a delta at or
// above the threshold starts a new line. Fragments within a line are joined
// with a single space in sorted order.
//
// Only vertical position feeds the grouping, so within-line ordering is
// whatever the provider returned. Multi-column layouts may interleave; that
// matches the deployed behavior and stays until product confirms a change.
func MergeLines(fragments []ocr.Fragment, confidenceFloor, yThreshold float64) []string {
	kept := ocr.FilterByConfidence(fragments, confidenceFloor)
	ocr.SortByVerticalCenter(kept)

	var merged []string
	var current []string
	prevY := math.NaN()

	for _, f := range kept {
		center := f.VerticalCenter()
		if math.IsNaN(prevY) || math.Abs(center-prevY) < yThreshold {
			current = append(current, f.Text)
		} else {
			merged = append(merged, strings.Join(current, " "))
			current = []string{f.Text}
		}
		prevY = center
	}
	if len(current) > 0 {
		merged = append(merged, strings.Join(current, " "))
	}
	return merged
}

// textDensity sums the bounding-box areas of all fragments. Used by the
// card-shape heuristic as a proxy for how much of the image is covered by
// recognized text.
func textDensity(fragments []ocr.Fragment) float64 {
	var total float64
	for _, f := range fragments {
		total += f.BoxArea()
	}
	return total
}
