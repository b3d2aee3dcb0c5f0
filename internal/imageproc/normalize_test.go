package imageproc

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writeTestImage(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	img := imaging.New(width, height, color.White)
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScoreLines(t *testing.T) {
	keywords := []string{"면허증", "보건복지부"}
	score := ScoreLines([]string{"약사면허증", "hello", "보건복지부 장관"}, keywords)
	if score.KeywordMatches != 2 {
		t.Errorf("KeywordMatches = %d, want 2", score.KeywordMatches)
	}
	// 약사면허증(5) + 보건복지부(5) + 장관(2)
	if score.HangulChars != 12 {
		t.Errorf("HangulChars = %d, want 12", score.HangulChars)
	}
}

func TestProbeScoreBetter(t *testing.T) {
	tests := []struct {
		name   string
		a, b   ProbeScore
		better bool
	}{
		{"keywords dominate hangul", ProbeScore{1, 0}, ProbeScore{0, 50}, true},
		{"hangul breaks keyword ties", ProbeScore{1, 10}, ProbeScore{1, 5}, true},
		{"exact tie loses", ProbeScore{1, 5}, ProbeScore{1, 5}, false},
		{"worse loses", ProbeScore{0, 3}, ProbeScore{2, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Better(tt.b); got != tt.better {
				t.Errorf("Better() = %v, want %v", got, tt.better)
			}
		})
	}
}

func TestEnsureUprightPicksRotatedCandidate(t *testing.T) {
	input := writeTestImage(t, 100, 160)

	// Score by shape: the +90 rotation of a portrait image is landscape.
	probe := func(ctx context.Context, imagePath string) ([]string, error) {
		w, h, err := Dimensions(imagePath)
		if err != nil {
			return nil, err
		}
		if w > h {
			return []string{"면허증 보건복지부"}, nil
		}
		return []string{"noise"}, nil
	}

	out, err := EnsureUpright(context.Background(), input, probe, []string{"면허증"})
	if err != nil {
		t.Fatal(err)
	}
	defer Cleanup(out)

	if out == input {
		t.Fatal("expected a rotated artifact to win")
	}
	w, h, err := Dimensions(out)
	if err != nil {
		t.Fatal(err)
	}
	if w <= h {
		t.Errorf("winner is %dx%d, want landscape", w, h)
	}
}

func TestEnsureUprightTieKeepsInput(t *testing.T) {
	input := writeTestImage(t, 100, 160)
	probe := func(ctx context.Context, imagePath string) ([]string, error) {
		return []string{"같은 점수"}, nil
	}

	out, err := EnsureUpright(context.Background(), input, probe, []string{"면허증"})
	if err != nil {
		t.Fatal(err)
	}
	if out != input {
		Cleanup(out)
		t.Errorf("tied probes must keep the unrotated input, got %s", out)
	}
}

func TestEnsureUprightSurvivesProbeFailures(t *testing.T) {
	input := writeTestImage(t, 100, 160)
	probe := func(ctx context.Context, imagePath string) ([]string, error) {
		return nil, errors.New("ocr down")
	}

	out, err := EnsureUpright(context.Background(), input, probe, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != input {
		Cleanup(out)
		t.Errorf("all-failing probes must keep the input, got %s", out)
	}
}

func TestEnsureLandscapeShortCircuit(t *testing.T) {
	input := writeTestImage(t, 160, 100)
	probeCalled := false
	probe := func(ctx context.Context, imagePath string) ([]string, error) {
		probeCalled = true
		return nil, nil
	}

	out, err := EnsureLandscape(context.Background(), input, probe, nil, 1.4)
	if err != nil {
		t.Fatal(err)
	}
	if out != input {
		t.Errorf("landscape input must pass through, got %s", out)
	}
	if probeCalled {
		t.Error("aspect shortcut must not spend OCR probes")
	}
}

func TestAspectRatio(t *testing.T) {
	input := writeTestImage(t, 160, 100)
	ratio, err := AspectRatio(input)
	if err != nil {
		t.Fatal(err)
	}
	if ratio != 1.6 {
		t.Errorf("AspectRatio() = %v, want 1.6", ratio)
	}
}
