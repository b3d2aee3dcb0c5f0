package verify

import (
	"context"
	"strings"

	"idverify/internal/imageproc"
)

// verifyLicenseAttempt runs one pharmacist-license pipeline pass over a
// single image file. Licenses are portrait documents, so orientation is
// resolved purely by trial OCR rather than an aspect-ratio shortcut.
func (s *Service) verifyLicenseAttempt(ctx context.Context, imagePath string) (*ValidationResult, error) {
	upright, err := imageproc.NormalizeEXIF(imagePath)
	if err != nil {
		return nil, err
	}
	defer imageproc.Cleanup(upright)

	oriented, err := imageproc.EnsureUpright(ctx, upright, s.probe, licenseOrientationKeywords)
	if err != nil {
		return nil, err
	}
	if oriented != upright {
		defer imageproc.Cleanup(oriented)
	}

	lines, err := s.recognizer.RecognizeLines(ctx, oriented, s.cfg.LicenseConfidenceFloor)
	if err != nil {
		return nil, err
	}
	fullText := strings.Join(lines, " ")

	fields := ExtractLicenseFields(fullText)

	hasRequiredKeywords := containsAll(fullText, LicenseRequiredKeywords)
	hasRequiredFields := fields[FieldName] != "" &&
		fields[FieldLicenseNumber] != "" &&
		fields[FieldIssueDate] != ""
	keywordScore := countContained(fullText, LicenseNiceKeywords)

	valid := hasRequiredKeywords && hasRequiredFields

	s.log.Debug().
		Bool("has_required_keywords", hasRequiredKeywords).
		Bool("has_required_fields", hasRequiredFields).
		Int("keyword_score", keywordScore).
		Msg("License rules evaluated")

	return &ValidationResult{
		Valid:        valid,
		DocumentType: DocumentTypeLicense,
		Text:         fullText,
		Fields:       fields,
		Diagnostics: map[string]any{
			"has_required_keywords": hasRequiredKeywords,
			"has_required_fields":   hasRequiredFields,
			"keyword_score":         keywordScore,
		},
		OCREngine: s.recognizer.Name(),
	}, nil
}
