package verify

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	hangulTokenPattern = regexp.MustCompile(`[가-힣]{2,4}`)
	orgSuffixPattern   = regexp.MustCompile(`(대학교|대학원|대학|학과|학부)$`)
	studentIDPattern   = regexp.MustCompile(`20[0-9]{6,8}`)
	universityPattern  = regexp.MustCompile(`(?i)[가-힣]{2,10}대학교|[A-Z]{2,}\s+UNIVERSITY`)
	departmentPattern  = regexp.MustCompile(`[가-힣A-Za-z]{2,30}(학과|전공|학부|대학원|대학)`)
	englishDeptPattern = regexp.MustCompile(`(?i)(College|School|Faculty)\s+of\s+(Pharmacy|Pharmaceutical\w*)`)
	graduatePattern    = regexp.MustCompile(`(?i)Graduate|Postgraduate`)
	pharmacyWord       = regexp.MustCompile(`(?i)\bPHARMACY\b`)
)

// nameStopwords are institutional and administrative terms that can never
// be a person's name.
var nameStopwords = map[string]struct{}{
	"학생증": {}, "학번": {}, "대학교": {}, "대학": {}, "학과": {},
	"단과대학": {}, "학부": {}, "총장": {}, "교수": {}, "성명": {}, "이름": {},
	"School": {}, "University": {}, "UNIVERSITY": {}, "College": {}, "Department": {},
}

// genericDepartments are department names that double as common tokens and
// get penalized as name candidates.
var genericDepartments = map[string]struct{}{
	"약학대학": {}, "약학과": {},
}

var (
	nameNegativeKeywords = []string{"학생증", "대학교", "대학", "학과", "총장", "UNIVERSITY", "College", "Department"}
	namePositiveKeywords = []string{"성명", "이름"}
)

const (
	nameBaseScore        = 1.0
	nameBrevityBonus     = 1.5
	nameLabelBonus       = 1.0
	nameInstitutionMalus = 1.5
	nameUniquenessBonus  = 0.7
	nameGenericMalus     = 1.2
	nameBriefLineRunes   = 8
)

func isBadNameToken(token string) bool {
	if _, ok := nameStopwords[token]; ok {
		return true
	}
	return orgSuffixPattern.MatchString(token)
}

// ExtractStudentName scores every 2-4 character Hangul token across all
// lines and returns the best-scoring survivor, or "" when nothing passes
// the stopword and suffix filters.
//
// The score favors tokens on short lines and lines carrying a name label,
// punishes lines with institutional vocabulary, rewards tokens unique in
// the whole document, and penalizes tokens that double as generic
// department names.
func ExtractStudentName(lines []string) string {
	tokenCounts := make(map[string]int)
	for _, line := range lines {
		for _, cand := range hangulTokenPattern.FindAllString(line, -1) {
			tokenCounts[cand]++
		}
	}

	type scored struct {
		token string
		score float64
	}
	var candidates []scored

	for _, line := range lines {
		lineScore := 0.0
		if utf8.RuneCountInString(line) <= nameBriefLineRunes {
			lineScore += nameBrevityBonus
		}
		for _, kw := range namePositiveKeywords {
			if strings.Contains(line, kw) {
				lineScore += nameLabelBonus
				break
			}
		}
		for _, kw := range nameNegativeKeywords {
			if strings.Contains(line, kw) {
				lineScore -= nameInstitutionMalus
				break
			}
		}

		for _, cand := range hangulTokenPattern.FindAllString(line, -1) {
			if isBadNameToken(cand) {
				continue
			}
			score := nameBaseScore + lineScore
			if tokenCounts[cand] == 1 {
				score += nameUniquenessBonus
			}
			if _, ok := genericDepartments[cand]; ok {
				score -= nameGenericMalus
			}
			candidates = append(candidates, scored{token: cand, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0].token
}

// studentIDCleaner undoes the digit/letter confusions OCR makes inside
// numeric runs and strips spaces plus a stray particle that tends to attach
// to IDs.
var studentIDCleaner = strings.NewReplacer(
	" ", "",
	"O", "0",
	"I", "1",
	"L", "1",
	"B", "8",
	"S", "5",
	"Z", "2",
	"에", "",
)

// ExtractStudentID normalizes OCR confusions and matches an 8-10 digit
// token starting with a 2000s year-like prefix.
func ExtractStudentID(text string) string {
	cleaned := studentIDCleaner.Replace(strings.ToUpper(text))
	return studentIDPattern.FindString(cleaned)
}

// ExtractUniversity matches a Hangul token followed by the university
// suffix, or an all-caps Latin token followed by UNIVERSITY.
func ExtractUniversity(text string) string {
	return universityPattern.FindString(text)
}

// deptDetail ranks suffix specificity: department/major beats faculty beats
// college/graduate school.
func deptDetail(dep string) int {
	switch {
	case strings.HasSuffix(dep, "학과"), strings.HasSuffix(dep, "전공"):
		return 0
	case strings.HasSuffix(dep, "학부"):
		return 1
	default:
		return 2
	}
}

// ExtractDepartment collects department-suffixed tokens and ranks them by
// pharmacy affinity, suffix specificity and length. The candidate pattern
// requires at least two characters before the suffix, so a bare short name
// like 약학과 only arrives through the fallbacks. When no Hangul candidate
// exists it maps English College/School/Faculty-of-Pharmacy phrases to the
// canonical Korean term, then falls back to bare keyword checks.
func ExtractDepartment(text string) string {
	t := CorrectTypos(text)

	cands := departmentPattern.FindAllString(t, -1)
	if len(cands) > 0 {
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := cands[i], cands[j]
			aPharm, bPharm := strings.Contains(a, "약학"), strings.Contains(b, "약학")
			if aPharm != bPharm {
				return aPharm
			}
			aDetail, bDetail := deptDetail(a), deptDetail(b)
			if aDetail != bDetail {
				return aDetail < bDetail
			}
			return utf8.RuneCountInString(a) > utf8.RuneCountInString(b)
		})
		return cands[0]
	}

	if englishDeptPattern.MatchString(t) {
		if graduatePattern.MatchString(t) {
			return "약학대학원"
		}
		return "약학대학"
	}

	if strings.Contains(t, "약학대학") {
		return "약학대학"
	}
	if pharmacyWord.MatchString(t) {
		return "약학과"
	}
	if HasPharmacyMajor(t) {
		return "약학과"
	}
	return ""
}

// extractStudentFields runs every student-card heuristic over the merged
// lines.
func extractStudentFields(lines []string) Fields {
	fullText := strings.Join(lines, " ")
	return Fields{
		FieldName:       ExtractStudentName(lines),
		FieldStudentID:  ExtractStudentID(fullText),
		FieldUniversity: ExtractUniversity(fullText),
		FieldDepartment: ExtractDepartment(fullText),
	}
}
