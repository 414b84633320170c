// Package classifier maps free-text queries onto one of the supported intents.
package classifier

import (
	"regexp"
	"strings"

	"LookupBot/internal/domain"
)

// Comparison phrasings. Order matters: the first match wins.
var differencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`разница между (.+) и (.+)`),
	regexp.MustCompile(`чем отличается (.+) от (.+)`),
	regexp.MustCompile(`отличие (.+) от (.+)`),
	regexp.MustCompile(`сравнение (.+) и (.+)`),
	regexp.MustCompile(`difference between (.+) and (.+)`),
	regexp.MustCompile(`(.+) vs (.+)`),
	regexp.MustCompile(`(.+) или (.+)`),
}

// History phrasings, consulted only when no comparison matched.
var historyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`история (.+)`),
	regexp.MustCompile(`когда появил(?:ся|ась|ось|ись) (.+)`),
	regexp.MustCompile(`основани[ея] (.+)`),
	regexp.MustCompile(`создани[ея] (.+)`),
	regexp.MustCompile(`history of (.+)`),
	regexp.MustCompile(`when was (.+) (?:founded|created)`),
}

const termCutset = " \t\r\n?!.,;:\"'«»"

// Classify never fails: text that matches no pattern becomes a general lookup of the whole input.
func Classify(text string) domain.Intent {
	lower := strings.ToLower(text)

	for _, expr := range differencePatterns {
		m := expr.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		a, b := trimTerm(m[1]), trimTerm(m[2])
		if a == "" || b == "" {
			continue
		}
		return domain.DifferenceIntent(a, b, text)
	}

	for _, expr := range historyPatterns {
		m := expr.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if term := trimTerm(m[len(m)-1]); term != "" {
			return domain.HistoryIntent(term, text)
		}
	}

	return domain.GeneralIntent(strings.TrimSpace(text), text)
}

func trimTerm(s string) string {
	return strings.Trim(s, termCutset)
}
