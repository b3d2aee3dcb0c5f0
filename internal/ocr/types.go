package ocr

import "sort"

// Point is a pixel coordinate with the origin in the upper-left corner of
// the image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad is the four-vertex bounding polygon of a recognized text span,
// ordered top-left, top-right, bottom-right, bottom-left as reported by the
// provider.
type Quad [4]Point

// Fragment is one OCR-recognized text span with its bounding polygon and
// confidence. Fragments arrive in whatever order the provider returned them.
type Fragment struct {
	Quad       Quad    `json:"quad"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// VerticalCenter is the midpoint of the top and bottom edge y-coordinates,
// taking the first and third polygon vertices as the top-left and
// bottom-right reference corners.
func (f Fragment) VerticalCenter() float64 {
	return (f.Quad[0].Y + f.Quad[2].Y) / 2
}

// BoxArea approximates the area covered by the fragment's bounding polygon
// as the axis-aligned rectangle between the top-left and bottom-right
// vertices.
func (f Fragment) BoxArea() float64 {
	w := f.Quad[2].X - f.Quad[0].X
	h := f.Quad[2].Y - f.Quad[0].Y
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	return w * h
}

// FilterByConfidence returns the fragments whose confidence is at or above
// floor, preserving input order.
func FilterByConfidence(fragments []Fragment, floor float64) []Fragment {
	out := make([]Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f.Confidence >= floor {
			out = append(out, f)
		}
	}
	return out
}

// SortByVerticalCenter orders fragments by ascending vertical center. The
// sort is stable so fragments sharing a row keep provider order.
func SortByVerticalCenter(fragments []Fragment) {
	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].VerticalCenter() < fragments[j].VerticalCenter()
	})
}

// LinesFromFragments filters fragments below minConfidence, sorts the rest
// by vertical center and returns one string per fragment. This is the cheap
// probing form; logical line merging happens in the verification layer.
func LinesFromFragments(fragments []Fragment, minConfidence float64) []string {
	kept := FilterByConfidence(fragments, minConfidence)
	SortByVerticalCenter(kept)
	lines := make([]string, 0, len(kept))
	for _, f := range kept {
		lines = append(lines, f.Text)
	}
	return lines
}
