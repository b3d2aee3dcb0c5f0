// Package imageproc prepares document photos for OCR: orientation
// correction, enhancement levels for low-yield images, and the temp-file
// bookkeeping for every derived artifact. All image operations build on
// github.com/disintegration/imaging.
package imageproc

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"idverify/internal/logger"
)

// LineProbe is a cheap low-confidence-threshold OCR line extraction used to
// score orientation candidates.
type LineProbe func(ctx context.Context, imagePath string) ([]string, error)

// ProbeScore ranks an orientation candidate: count of required-keyword
// matches first, recognized Hangul characters second.
type ProbeScore struct {
	KeywordMatches int
	HangulChars    int
}

// Better reports whether s beats other. Ties lose, so the earlier
// enumeration candidate wins.
func (s ProbeScore) Better(other ProbeScore) bool {
	if s.KeywordMatches != other.KeywordMatches {
		return s.KeywordMatches > other.KeywordMatches
	}
	return s.HangulChars > other.HangulChars
}

// ScoreLines computes the probe score for a candidate's recognized lines.
func ScoreLines(lines []string, keywords []string) ProbeScore {
	joined := strings.Join(lines, " ")

	var score ProbeScore
	for _, kw := range keywords {
		if strings.Contains(joined, kw) {
			score.KeywordMatches++
		}
	}
	for _, r := range joined {
		if unicode.Is(unicode.Hangul, r) {
			score.HangulChars++
		}
	}
	return score
}

// NormalizeEXIF decodes the image honoring its stored camera orientation and
// writes the upright copy to a temp artifact. The returned path is owned by
// the caller.
func NormalizeEXIF(imagePath string) (string, error) {
	const op = "NormalizeEXIF"

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("imageproc: %s: decode %s: %w", op, imagePath, err)
	}
	return saveDerived(img, "upright")
}

// EnsureUpright resolves the 90-degree rotation ambiguity by trial OCR: the
// unrotated image and both 90-degree rotations are probed, and the candidate
// with the best (keyword matches, Hangul chars) score wins. Losing derived
// artifacts are deleted immediately. The returned path is the input path
// when the unrotated candidate wins; otherwise it is a temp artifact owned
// by the caller.
//
// A probe failure scores the candidate (0,0) instead of aborting the
// normalization.
func EnsureUpright(ctx context.Context, imagePath string, probe LineProbe, keywords []string) (string, error) {
	const op = "EnsureUpright"
	log := logger.WithComponent("imageproc")

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("imageproc: %s: decode %s: %w", op, imagePath, err)
	}

	type candidate struct {
		rotation string
		path     string
		derived  bool
	}

	candidates := []candidate{{rotation: "0", path: imagePath}}

	for _, rot := range []struct {
		name string
		img  image.Image
	}{
		{"+90", imaging.Rotate90(img)},
		{"-90", imaging.Rotate270(img)},
	} {
		path, err := saveDerived(rot.img, "rot"+rot.name)
		if err != nil {
			log.Warn().Err(err).Str("rotation", rot.name).Msg("Could not materialize rotation candidate")
			continue
		}
		candidates = append(candidates, candidate{rotation: rot.name, path: path, derived: true})
	}

	best := candidates[0]
	bestScore := probeCandidate(ctx, probe, best.path, keywords, log)

	for _, cand := range candidates[1:] {
		score := probeCandidate(ctx, probe, cand.path, keywords, log)
		if score.Better(bestScore) {
			if best.derived {
				Cleanup(best.path)
			}
			best, bestScore = cand, score
		} else if cand.derived {
			Cleanup(cand.path)
		}
	}

	log.Debug().
		Str("rotation", best.rotation).
		Int("keyword_matches", bestScore.KeywordMatches).
		Int("hangul_chars", bestScore.HangulChars).
		Msg("Orientation selected")

	return best.path, nil
}

// EnsureLandscape checks a document with a known landscape shape: when the
// aspect ratio already clears minRatio the input is used as-is, otherwise
// the rotation candidates are probed the same way EnsureUpright does.
func EnsureLandscape(ctx context.Context, imagePath string, probe LineProbe, keywords []string, minRatio float64) (string, error) {
	ratio, err := AspectRatio(imagePath)
	if err != nil {
		return "", err
	}
	if ratio >= minRatio {
		return imagePath, nil
	}
	return EnsureUpright(ctx, imagePath, probe, keywords)
}

func probeCandidate(ctx context.Context, probe LineProbe, path string, keywords []string, log zerolog.Logger) ProbeScore {
	lines, err := probe(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("candidate", path).Msg("Orientation probe failed, scoring zero")
		return ProbeScore{}
	}
	return ScoreLines(lines, keywords)
}

// Dimensions returns the pixel width and height of the image file.
func Dimensions(imagePath string) (int, int, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return 0, 0, fmt.Errorf("imageproc: open %s: %w", imagePath, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("imageproc: decode config %s: %w", imagePath, err)
	}
	return cfg.Width, cfg.Height, nil
}

// AspectRatio returns width divided by height.
func AspectRatio(imagePath string) (float64, error) {
	w, h, err := Dimensions(imagePath)
	if err != nil {
		return 0, err
	}
	if h == 0 {
		return 0, fmt.Errorf("imageproc: %s has zero height", imagePath)
	}
	return float64(w) / float64(h), nil
}
