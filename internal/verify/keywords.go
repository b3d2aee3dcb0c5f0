package verify

import "strings"

// Keyword vocabularies for the two document types. The pharmacy list and
// the typo table cover the OCR misreadings observed on real uploads.
var (
	// PharmacyKeywords mark a pharmacy program affiliation.
	PharmacyKeywords = []string{"약학과", "약학대학", "약대", "약학", "PHARMACY"}

	// StudentCardKeywords mark a student identification card.
	StudentCardKeywords = []string{"학생증", "학번", "대학교", "Student ID", "학과", "STUDENT", "ID CARD"}

	// LicenseRequiredKeywords must all appear for a pharmacist license to
	// pass the keyword gate.
	LicenseRequiredKeywords = []string{"면허증", "보건복지부"}

	// LicenseNiceKeywords strengthen confidence but are not required; their
	// hit count is reported as the keyword score diagnostic.
	LicenseNiceKeywords = []string{"약사법", "제3조", "장관", "의약"}
)

// licenseOrientationKeywords score orientation-trial candidates for license
// scans.
var licenseOrientationKeywords = append(append([]string{}, LicenseRequiredKeywords...), LicenseNiceKeywords...)

// typoTable lists known OCR misreadings of pharmacy vocabulary, applied in
// order before keyword matching. Order matters: earlier entries may produce
// substrings later entries rewrite again.
var typoTable = []struct{ from, to string }{
	{"약차과", "약학과"},
	{"약차대점", "약학대학"},
	{"양한대", "약학대학"},
	{"약학과대", "약학과"},
	{"약학대", "약학대학"},
	{"약학대학학", "약학대학"},
}

// CorrectTypos rewrites known OCR misreadings of pharmacy vocabulary.
func CorrectTypos(text string) string {
	for _, sub := range typoTable {
		text = strings.ReplaceAll(text, sub.from, sub.to)
	}
	return text
}

// IsLikelyStudentCard reports whether the text contains at least one
// student-card keyword, case-insensitively.
func IsLikelyStudentCard(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range StudentCardKeywords {
		if strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// HasPharmacyMajor reports whether the typo-corrected text contains a
// pharmacy-program keyword.
func HasPharmacyMajor(text string) bool {
	t := strings.ToLower(CorrectTypos(text))
	for _, kw := range PharmacyKeywords {
		if strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// containsAll reports whether every keyword appears in the text.
func containsAll(text string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// countContained counts how many keywords appear in the text.
func countContained(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
