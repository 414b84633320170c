// Package textnorm condenses encyclopedia prose into short chat-sized answers.
package textnorm

import (
	"regexp"
	"strings"
)

const (
	// MaxSentences is how many sentences a normalized answer keeps.
	MaxSentences = 6
	// MaxLength bounds a normalized answer, in characters.
	MaxLength = 900

	sentenceSep = ". "
)

var (
	parenExpr    = regexp.MustCompile(`\s*\([^()]*\)`)
	citationExpr = regexp.MustCompile(`\[\d+\]`)
)

// Normalize strips asides and citation markers and keeps at most six sentences
// within 900 characters. The result always ends with a period.
func Normalize(raw string) string {
	return Condense(raw, MaxSentences, MaxLength)
}

// Condense is Normalize with explicit limits. maxSentences or maxLen <= 0 disable that limit.
func Condense(raw string, maxSentences, maxLen int) string {
	sentences := Sentences(strings.TrimSpace(Clean(raw)))
	if maxSentences > 0 && len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}
	return Truncate(closeSentence(strings.Join(sentences, sentenceSep)), maxLen)
}

// Clean removes parenthesized asides (with the whitespace before them) and [n] citation markers.
func Clean(raw string) string {
	text := raw
	for {
		// innermost first, so nested asides disappear completely
		next := parenExpr.ReplaceAllString(text, "")
		if next == text {
			break
		}
		text = next
	}
	return citationExpr.ReplaceAllString(text, "")
}

// Sentences splits text on the ". " sentence separator.
func Sentences(text string) []string {
	return strings.Split(text, sentenceSep)
}

// Join rejoins sentences and closes the result with a single period.
func Join(sentences []string) string {
	return closeSentence(strings.Join(sentences, sentenceSep))
}

// KeepMatching returns up to limit sentences of text that contain any keyword, case-insensitively.
func KeepMatching(text string, keywords []string, limit int) []string {
	var kept []string
	for _, sentence := range Sentences(text) {
		if limit > 0 && len(kept) >= limit {
			break
		}
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				kept = append(kept, sentence)
				break
			}
		}
	}
	return kept
}

// Blank reports whether normalized text has nothing left but punctuation.
func Blank(s string) bool {
	return strings.Trim(s, ". \t\n") == ""
}

// Truncate cuts s to maxLen characters, backing up to the last sentence end so the
// output never stops mid-sentence. Without any period it backs up to a word boundary.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}

	cut := string(runes[:maxLen])
	if idx := strings.LastIndex(cut, sentenceSep); idx > 0 {
		return closeSentence(cut[:idx])
	}
	if idx := strings.LastIndex(cut, "."); idx > 0 {
		return closeSentence(cut[:idx])
	}

	cut = string(runes[:maxLen-1])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return closeSentence(cut)
}

func closeSentence(s string) string {
	return strings.TrimRight(s, " \t\r\n.") + "."
}
