package imageproc

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writeGrayImage(t *testing.T, width, height int, value uint8) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.png")
	img := imaging.New(width, height, color.Gray{Y: value})
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEnhanceLevels(t *testing.T) {
	input := writeGrayImage(t, 60, 40, 128)

	for _, level := range FallbackLevels() {
		t.Run(string(level), func(t *testing.T) {
			out, err := Enhance(input, level)
			if err != nil {
				t.Fatal(err)
			}
			defer Cleanup(out)

			if out == input {
				t.Fatal("enhancement must write a derived artifact")
			}
			if _, err := imaging.Open(out); err != nil {
				t.Fatalf("derived artifact not decodable: %v", err)
			}
		})
	}
}

func TestEnhanceNoneReturnsInput(t *testing.T) {
	input := writeGrayImage(t, 60, 40, 128)
	out, err := Enhance(input, LevelNone)
	if err != nil {
		t.Fatal(err)
	}
	if out != input {
		t.Errorf("LevelNone returned %q, want the input path", out)
	}
}

func TestEnhanceUnknownLevel(t *testing.T) {
	input := writeGrayImage(t, 60, 40, 128)
	if _, err := Enhance(input, Level("extreme")); err == nil {
		t.Fatal("unknown level must fail")
	}
}

func TestComputeStats(t *testing.T) {
	input := writeGrayImage(t, 30, 30, 200)
	stats, err := ComputeStats(input)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(stats.Brightness-200) > 1 {
		t.Errorf("brightness = %v, want ~200", stats.Brightness)
	}
	if stats.Contrast > 1 {
		t.Errorf("contrast = %v, want ~0 for a flat image", stats.Contrast)
	}
}

func TestChooseLevel(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  Level
	}{
		{"dark image", Stats{Brightness: 60, Contrast: 80}, LevelAggressive},
		{"flat image", Stats{Brightness: 150, Contrast: 20}, LevelMedium},
		{"normal image", Stats{Brightness: 150, Contrast: 80}, LevelMild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseLevel(tt.stats); got != tt.want {
				t.Errorf("ChooseLevel(%+v) = %v, want %v", tt.stats, got, tt.want)
			}
		})
	}
}

func TestCleanupRemovesFiles(t *testing.T) {
	input := writeGrayImage(t, 20, 20, 128)
	out, err := Enhance(input, LevelMild)
	if err != nil {
		t.Fatal(err)
	}
	Cleanup(out)
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("artifact %s still exists after Cleanup", out)
	}

	// Missing paths and blanks are ignored.
	Cleanup(out, "", filepath.Join(t.TempDir(), "never-existed.png"))
}
