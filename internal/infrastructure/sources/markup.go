package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripMarkup turns an HTML-ish snippet into plain text with collapsed whitespace.
func stripMarkup(s string) string {
	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
