package ocr

import (
	"reflect"
	"testing"
)

func frag(text string, top, bottom, conf float64) Fragment {
	return Fragment{
		Quad:       Quad{{0, top}, {100, top}, {100, bottom}, {0, bottom}},
		Text:       text,
		Confidence: conf,
	}
}

func TestFilterByConfidence(t *testing.T) {
	fragments := []Fragment{
		frag("a", 0, 10, 0.95),
		frag("b", 0, 10, 0.80),
		frag("c", 0, 10, 0.79),
		frag("d", 0, 10, 0.0),
	}

	kept := FilterByConfidence(fragments, 0.80)
	if len(kept) != 2 || kept[0].Text != "a" || kept[1].Text != "b" {
		t.Fatalf("FilterByConfidence(0.80) = %+v", kept)
	}

	// Raising the floor can only shrink the survivor set.
	prev := len(fragments)
	for _, floor := range []float64{0.0, 0.5, 0.8, 0.9, 1.0} {
		n := len(FilterByConfidence(fragments, floor))
		if n > prev {
			t.Errorf("floor %v kept %d fragments, more than %d at a lower floor", floor, n, prev)
		}
		prev = n
	}
}

func TestLinesFromFragments(t *testing.T) {
	fragments := []Fragment{
		frag("세번째", 200, 220, 0.9),
		frag("첫번째", 10, 30, 0.9),
		frag("버려짐", 100, 120, 0.2),
		frag("두번째", 100, 120, 0.9),
	}

	got := LinesFromFragments(fragments, 0.5)
	want := []string{"첫번째", "두번째", "세번째"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LinesFromFragments() = %v, want %v", got, want)
	}
}

func TestSortByVerticalCenterStable(t *testing.T) {
	fragments := []Fragment{
		frag("왼쪽", 10, 30, 0.9),
		frag("오른쪽", 10, 30, 0.9),
	}
	SortByVerticalCenter(fragments)
	if fragments[0].Text != "왼쪽" || fragments[1].Text != "오른쪽" {
		t.Errorf("equal centers must keep provider order, got %v then %v",
			fragments[0].Text, fragments[1].Text)
	}
}
