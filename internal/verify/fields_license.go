package verify

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// nameBlocklist holds institutional and legal terms a license name can
// never be; nameBlockSubstrings reject anything containing ministry
// vocabulary even partially.
var (
	nameBlocklist = map[string]struct{}{
		"보건복지부": {}, "면허증": {}, "약사법": {}, "장관": {},
		"MINISTRY": {}, "HEALTH": {}, "WELFARE": {},
	}
	nameBlockSubstrings = []string{"보건복지", "보건", "복지"}
	nameTrailingNoise   = map[rune]struct{}{'명': {}, '성': {}}
)

func isBlockedName(token string) bool {
	if _, ok := nameBlocklist[token]; ok {
		return true
	}
	for _, sub := range nameBlockSubstrings {
		if strings.Contains(token, sub) {
			return true
		}
	}
	return false
}

var nonHangulPattern = regexp.MustCompile(`[^가-힣]`)

// CleanPersonName strips non-Hangul characters, drops a single trailing
// label-noise character (성/명 bleeding in from an adjacent field) when the
// token is long enough, and requires a final length of 2-4 characters.
// Returns "" when the token cannot be a person's name.
func CleanPersonName(name string) string {
	n := nonHangulPattern.ReplaceAllString(name, "")
	runes := []rune(n)
	if len(runes) >= 3 {
		if _, ok := nameTrailingNoise[runes[len(runes)-1]]; ok {
			runes = runes[:len(runes)-1]
		}
	}
	if len(runes) < 2 || len(runes) > 4 {
		return ""
	}
	return string(runes)
}

// CollapseSpacedHangul joins 2-4 space-separated single Hangul characters
// into one token; anything else passes through unchanged. OCR often splits
// a stamped name into isolated characters.
func CollapseSpacedHangul(seq string) string {
	tokens := strings.Fields(strings.TrimSpace(seq))
	if len(tokens) < 2 || len(tokens) > 4 {
		return seq
	}
	for _, t := range tokens {
		r, size := utf8.DecodeRuneInString(t)
		if size != len(t) || r < '가' || r > '힣' {
			return seq
		}
	}
	return strings.Join(tokens, "")
}

// licenseNameSources is the ordered candidate table: text after the
// professional title, text after a name label, spaced single characters,
// then any bare 2-4 character Hangul run. Higher priority sources outrank
// lower ones before positional and length bonuses apply.
var licenseNameSources = []struct {
	pattern  *regexp.Regexp
	group    int
	priority float64
}{
	{regexp.MustCompile(`약사\s+([가-힣]{2,4})`), 1, 2.0},
	{regexp.MustCompile(`성명[:\s]*([가-힣]{2,4})`), 1, 1.5},
	{regexp.MustCompile(`(?:^|\s)([가-힣](?:\s[가-힣]){1,3})(?:\s|$)`), 1, 1.0},
	{regexp.MustCompile(`[가-힣]{2,4}`), 0, 0.8},
}

const (
	namePositionBonus = 0.3
	namePositionLimit = 80
	nameLengthBonus   = 0.2
)

// pickLicenseNameCandidates returns cleaned, deduplicated name candidates
// ordered best-first.
func pickLicenseNameCandidates(text string) []string {
	type cand struct {
		name string
		base float64
	}
	var raw []cand

	for _, src := range licenseNameSources {
		for _, m := range src.pattern.FindAllStringSubmatch(text, -1) {
			collapsed := CollapseSpacedHangul(m[src.group])
			c := CleanPersonName(collapsed)
			if c == "" || isBlockedName(c) {
				continue
			}
			raw = append(raw, cand{name: c, base: src.priority})
		}
	}

	seen := make(map[string]struct{})
	type scored struct {
		name  string
		score float64
	}
	var candidates []scored

	for _, c := range raw {
		if _, dup := seen[c.name]; dup {
			continue
		}
		seen[c.name] = struct{}{}

		score := c.base
		if idx := strings.Index(text, c.name); idx >= 0 &&
			utf8.RuneCountInString(text[:idx]) <= namePositionLimit {
			score += namePositionBonus
		}
		if utf8.RuneCountInString(c.name) >= 3 {
			score += nameLengthBonus
		}
		candidates = append(candidates, scored{name: c.name, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.name)
	}
	return names
}

// licenseNumberPatterns is the ordered pattern table for license numbers: a
// digit run with the registration-number suffix first, then a bare 4-7
// digit run.
var licenseNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`제?\s*(\d{4,7})\s*호`),
	regexp.MustCompile(`\b(\d{4,7})[-]?\d{0,3}\b`),
}

// issueDateLabelPattern captures the date expression after an explicit
// issue-date label.
var issueDateLabelPattern = regexp.MustCompile(`(발급일|발행일|교부일|일자)[:\s]*([0-9.\-\s년월일]+)`)

// ExtractLicenseFields pulls name, license number and issue date out of a
// license document's full text. Every field degrades to "" when its
// fallback chain is exhausted.
func ExtractLicenseFields(text string) Fields {
	out := Fields{FieldName: "", FieldLicenseNumber: "", FieldIssueDate: ""}

	if cands := pickLicenseNameCandidates(text); len(cands) > 0 {
		out[FieldName] = cands[0]
	}

	for _, pat := range licenseNumberPatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			out[FieldLicenseNumber] = m[1]
			break
		}
	}

	if m := issueDateLabelPattern.FindStringSubmatch(text); m != nil {
		out[FieldIssueDate] = NormalizeDate(m[2])
	}
	if out[FieldIssueDate] == "" {
		out[FieldIssueDate] = latestDate(findAllDates(text))
	}

	// Final safety net: an already-accepted name must still clean and pass
	// the blocklist; otherwise blank it so the completeness gate fails.
	if out[FieldName] != "" {
		out[FieldName] = CleanPersonName(out[FieldName])
	}
	if out[FieldName] != "" && isBlockedName(out[FieldName]) {
		out[FieldName] = ""
	}

	return out
}
