package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/disintegration/imaging"

	"idverify/internal/logger"
)

// Level is an image enhancement level tried when direct OCR yields too
// little text.
type Level string

const (
	// LevelNone runs OCR on the unmodified image.
	LevelNone Level = "none"

	// LevelMild applies a detail filter: slight smoothing followed by
	// sharpening.
	LevelMild Level = "mild"

	// LevelMedium equalizes the grayscale histogram.
	LevelMedium Level = "medium"

	// LevelAggressive applies clip-limited equalization, blur and Otsu
	// binarization.
	LevelAggressive Level = "aggressive"

	// LevelDenoiseLine masks thin vertical ruling lines that confuse
	// character segmentation.
	LevelDenoiseLine Level = "denoise_line"
)

// FallbackLevels is the fixed enumeration order tried by the best-of-N
// search. Ties in the selection rule break toward the earlier level.
func FallbackLevels() []Level {
	return []Level{LevelMild, LevelMedium, LevelAggressive, LevelDenoiseLine}
}

// Enhance applies the given level to the image and writes the result to a
// temp artifact owned by the caller. LevelNone returns the input path
// unchanged.
func Enhance(imagePath string, level Level) (string, error) {
	const op = "Enhance"

	if level == LevelNone {
		return imagePath, nil
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("imageproc: %s: decode %s: %w", op, imagePath, err)
	}

	var out image.Image
	switch level {
	case LevelMild:
		out = imaging.Sharpen(imaging.Blur(img, 0.4), 1.0)
	case LevelMedium:
		out = equalize(toGray(img), 0)
	case LevelAggressive:
		eq := equalize(toGray(img), 4)
		blurred := toGray(imaging.Blur(eq, 1.0))
		out = binarizeOtsu(blurred)
	case LevelDenoiseLine:
		out = maskVerticalLines(toGray(img))
	default:
		return "", fmt.Errorf("imageproc: %s: unknown level %q", op, level)
	}

	return saveDerived(out, string(level))
}

// Stats summarizes the grayscale intensity distribution of an image.
type Stats struct {
	// Brightness is the mean intensity in [0,255].
	Brightness float64

	// Contrast is the intensity standard deviation.
	Contrast float64
}

// ComputeStats measures brightness and contrast for deterministic level
// selection.
func ComputeStats(imagePath string) (Stats, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return Stats{}, fmt.Errorf("imageproc: decode %s: %w", imagePath, err)
	}

	gray := toGray(img)
	bounds := gray.Bounds()
	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return Stats{}, fmt.Errorf("imageproc: %s is empty", imagePath)
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(gray.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
		}
	}

	mean := sum / total
	variance := sumSq/total - mean*mean
	if variance < 0 {
		variance = 0
	}
	return Stats{Brightness: mean, Contrast: math.Sqrt(variance)}, nil
}

const (
	darkBrightnessThreshold = 100.0
	flatContrastThreshold   = 40.0
)

// ChooseLevel picks a single enhancement level from image statistics: dark
// images get the aggressive treatment, low-contrast images the medium one,
// everything else the mild one.
func ChooseLevel(s Stats) Level {
	switch {
	case s.Brightness < darkBrightnessThreshold:
		return LevelAggressive
	case s.Contrast < flatContrastThreshold:
		return LevelMedium
	default:
		return LevelMild
	}
}

// toGray converts any image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// equalize spreads the grayscale histogram over the full range. A non-zero
// clipLimit caps each histogram bin at clipLimit times the mean bin count
// before equalizing, which limits contrast amplification the way CLAHE
// does globally.
func equalize(gray *image.Gray, clipLimit float64) *image.Gray {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return gray
	}

	var hist [256]float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	if clipLimit > 0 {
		limit := clipLimit * float64(total) / 256
		var excess float64
		for i := range hist {
			if hist[i] > limit {
				excess += hist[i] - limit
				hist[i] = limit
			}
		}
		// Redistribute the clipped mass evenly.
		share := excess / 256
		for i := range hist {
			hist[i] += share
		}
	}

	var cdf [256]float64
	var running float64
	for i := range hist {
		running += hist[i]
		cdf[i] = running
	}

	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(cdf[i] / running * 255)
	}

	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: lut[gray.GrayAt(x, y).Y]})
		}
	}
	return out
}

// binarizeOtsu thresholds a grayscale image at the Otsu optimum.
func binarizeOtsu(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return gray
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var maxVariance float64
	threshold := uint8(127)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		variance := wB * wF * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(t)
		}
	}

	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if gray.GrayAt(x, y).Y > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

const (
	lineDarkThreshold = 96
	lineMinRun        = 12
	lineMaxWidth      = 3
)

// maskVerticalLines whitens thin dark vertical runs: pixels that continue
// darkly for at least lineMinRun rows but whose dark horizontal extent is
// at most lineMaxWidth columns. Text strokes are wider or shorter than
// ruling lines and survive the mask.
func maskVerticalLines(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	copy(out.Pix, gray.Pix)

	dark := func(x, y int) bool {
		if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
			return false
		}
		return gray.GrayAt(x, y).Y < lineDarkThreshold
	}

	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		runStart := -1
		for y := bounds.Min.Y; y <= bounds.Max.Y; y++ {
			if y < bounds.Max.Y && dark(x, y) {
				if runStart < 0 {
					runStart = y
				}
				continue
			}
			if runStart >= 0 && y-runStart >= lineMinRun {
				for ry := runStart; ry < y; ry++ {
					width := 1
					for dx := 1; dx <= lineMaxWidth; dx++ {
						if dark(x-dx, ry) || dark(x+dx, ry) {
							width++
						}
					}
					if width <= lineMaxWidth {
						out.SetGray(x, ry, color.Gray{Y: 255})
					}
				}
			}
			runStart = -1
		}
	}
	return out
}

// saveDerived writes a derived image to a temp PNG artifact and returns its
// path. The caller owns the artifact.
func saveDerived(img image.Image, tag string) (string, error) {
	f, err := os.CreateTemp("", "idverify-"+tag+"-*.png")
	if err != nil {
		return "", fmt.Errorf("imageproc: create temp artifact: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("imageproc: close temp artifact: %w", err)
	}

	if err := imaging.Save(img, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("imageproc: save derived image: %w", err)
	}
	return path, nil
}

// Cleanup removes derived artifacts best-effort. Failures are logged, never
// raised.
func Cleanup(paths ...string) {
	log := logger.WithComponent("imageproc")
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Could not remove derived artifact")
		}
	}
}
