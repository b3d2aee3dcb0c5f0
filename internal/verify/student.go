package verify

import (
	"context"
	"strings"

	"idverify/internal/imageproc"
)

// verifyStudentAttempt runs one full student-card pipeline pass over a
// single image file. Derived image artifacts created during the pass are
// deleted before it returns.
func (s *Service) verifyStudentAttempt(ctx context.Context, imagePath string) (*ValidationResult, error) {
	upright, err := imageproc.NormalizeEXIF(imagePath)
	if err != nil {
		return nil, err
	}
	defer imageproc.Cleanup(upright)

	oriented, err := imageproc.EnsureLandscape(ctx, upright, s.probe, StudentCardKeywords, s.cfg.CardMinAspectRatio)
	if err != nil {
		return nil, err
	}
	if oriented != upright {
		defer imageproc.Cleanup(oriented)
	}

	fragments, err := s.recognizer.Recognize(ctx, oriented)
	if err != nil {
		return nil, err
	}

	lines := MergeLines(fragments, s.cfg.StudentConfidenceFloor, s.cfg.LineMergeThreshold)
	fullText := CorrectTypos(strings.Join(lines, " "))

	isStudent := IsLikelyStudentCard(fullText)
	hasPharmacy := HasPharmacyMajor(fullText) || strings.Contains(fullText, "약학")

	aspect, err := imageproc.AspectRatio(oriented)
	if err != nil {
		return nil, err
	}
	density := textDensity(fragments)
	looksLikeCard := aspect >= s.cfg.CardMinAspectRatio || density > s.cfg.TextDensityThreshold

	fields := extractStudentFields(lines)
	valid := isStudent && hasPharmacy && looksLikeCard

	s.log.Debug().
		Bool("is_student_card", isStudent).
		Bool("has_pharmacy", hasPharmacy).
		Bool("looks_like_card", looksLikeCard).
		Float64("aspect_ratio", aspect).
		Float64("text_density", density).
		Int("text_length", len([]rune(fullText))).
		Msg("Student card rules evaluated")

	return &ValidationResult{
		Valid:        valid,
		DocumentType: DocumentTypeStudent,
		Text:         fullText,
		Fields:       fields,
		Diagnostics: map[string]any{
			"is_student_card": isStudent,
			"has_pharmacy":    hasPharmacy,
			"looks_like_card": looksLikeCard,
			"text_length":     len([]rune(fullText)),
		},
		OCREngine: s.recognizer.Name(),
	}, nil
}
