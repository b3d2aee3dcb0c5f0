package verify

import (
	"reflect"
	"testing"

	"idverify/internal/ocr"
)

func frag(text string, top, bottom, conf float64) ocr.Fragment {
	return ocr.Fragment{
		Quad:       ocr.Quad{{X: 0, Y: top}, {X: 100, Y: top}, {X: 100, Y: bottom}, {X: 0, Y: bottom}},
		Text:       text,
		Confidence: conf,
	}
}

func TestMergeLines(t *testing.T) {
	tests := []struct {
		name      string
		fragments []ocr.Fragment
		want      []string
	}{
		{
			name: "same row merges",
			fragments: []ocr.Fragment{
				frag("서울대학교", 10, 30, 0.9),
				frag("학생증", 12, 32, 0.9),
				frag("홍길동", 60, 80, 0.9),
			},
			want: []string{"서울대학교 학생증", "홍길동"},
		},
		{
			name: "delta at threshold starts a new line",
			fragments: []ocr.Fragment{
				frag("첫줄", 10, 30, 0.9),
				frag("둘째줄", 25, 45, 0.9),
			},
			want: []string{"첫줄", "둘째줄"},
		},
		{
			name: "delta just below threshold stays",
			fragments: []ocr.Fragment{
				frag("한", 10, 30, 0.9),
				frag("줄", 24, 44, 0.9),
			},
			want: []string{"한 줄"},
		},
		{
			name: "low confidence dropped",
			fragments: []ocr.Fragment{
				frag("남음", 10, 30, 0.85),
				frag("버려짐", 12, 32, 0.5),
			},
			want: []string{"남음"},
		},
		{
			name:      "empty input",
			fragments: nil,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeLines(tt.fragments, 0.8, 15)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeLines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeLinesChainsByPreviousFragment(t *testing.T) {
	// Each step is under the threshold even though the line's total span is
	// not; chaining keeps them on one line.
	fragments := []ocr.Fragment{
		frag("a", 10, 30, 0.9),
		frag("b", 20, 40, 0.9),
		frag("c", 30, 50, 0.9),
	}
	got := MergeLines(fragments, 0.8, 15)
	if !reflect.DeepEqual(got, []string{"a b c"}) {
		t.Errorf("MergeLines() = %v, want one chained line", got)
	}
}

func TestMergeLinesIdempotent(t *testing.T) {
	// Feeding merged lines back in, one fragment per line at that line's
	// starting position, must not split or join anything further.
	fragments := []ocr.Fragment{
		frag("서울대학교", 10, 30, 0.9),
		frag("학생증", 14, 34, 0.9),
		frag("약학대학", 60, 80, 0.9),
		frag("약학과", 66, 86, 0.9),
		frag("홍길동", 120, 140, 0.9),
	}
	first := MergeLines(fragments, 0.8, 15)
	if len(first) != 3 {
		t.Fatalf("MergeLines() = %v, want 3 lines", first)
	}

	lineStarts := []ocr.Fragment{fragments[0], fragments[2], fragments[4]}
	refed := make([]ocr.Fragment, len(first))
	for i, line := range first {
		refed[i] = frag(line, lineStarts[i].Quad[0].Y, lineStarts[i].Quad[2].Y, 0.9)
	}

	second := MergeLines(refed, 0.8, 15)
	if !reflect.DeepEqual(second, first) {
		t.Errorf("re-merged lines = %v, want %v unchanged", second, first)
	}
}

func TestTextDensity(t *testing.T) {
	fragments := []ocr.Fragment{
		frag("a", 0, 10, 0.9),  // 100 x 10
		frag("b", 20, 40, 0.9), // 100 x 20
	}
	if got := textDensity(fragments); got != 3000 {
		t.Errorf("textDensity() = %v, want 3000", got)
	}
	if got := textDensity(nil); got != 0 {
		t.Errorf("textDensity(nil) = %v, want 0", got)
	}
}
