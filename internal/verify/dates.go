package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Date expressions accepted by the normalizer, in the order they are tried:
// Korean year-month-day, Korean month-day-year, and numeric-separator form.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(20\d{2})\s*년\s*(0?[1-9]|1[0-2])\s*월\s*(0?[1-9]|[12]\d|3[01])\s*일`),
	regexp.MustCompile(`(0?[1-9]|1[0-2])\s*월\s*(0?[1-9]|[12]\d|3[01])\s*일\s*(20\d{2})\s*년`),
	regexp.MustCompile(`(20\d{2})[.\-/](0?[1-9]|1[0-2])[.\-/](0?[1-9]|[12]\d|3[01])`),
}

// monthFirst marks which pattern indexes carry (month, day, year) group
// order instead of (year, month, day).
var monthFirst = map[int]bool{1: true}

// NormalizeDate converts a recognized date expression to YYYY-MM-DD. It is
// total: anything that matches none of the accepted forms yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for i, pat := range datePatterns {
		m := pat.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if monthFirst[i] {
			return formatDate(m[3], m[1], m[2])
		}
		return formatDate(m[1], m[2], m[3])
	}
	return ""
}

// findAllDates collects every normalized date expression in the text, in
// pattern order then match order.
func findAllDates(text string) []string {
	var dates []string
	for i, pat := range datePatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			var iso string
			if monthFirst[i] {
				iso = formatDate(m[3], m[1], m[2])
			} else {
				iso = formatDate(m[1], m[2], m[3])
			}
			if iso != "" {
				dates = append(dates, iso)
			}
		}
	}
	return dates
}

// latestDate picks the candidate with the greatest year; earlier candidates
// win ties. Issue dates are the most recent date on a license, so when a
// document carries several dates the latest year is the safest pick.
func latestDate(dates []string) string {
	best := ""
	bestYear := -1
	for _, d := range dates {
		year, err := strconv.Atoi(d[:4])
		if err != nil {
			continue
		}
		if year > bestYear {
			best, bestYear = d, year
		}
	}
	return best
}

func formatDate(year, month, day string) string {
	mo, err := strconv.Atoi(month)
	if err != nil {
		return ""
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s-%02d-%02d", year, mo, d)
}
