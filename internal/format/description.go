package format

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSentences is how many sentences of a coin description are shown.
const DefaultSentences = 3

// Description converts an HTML description to plain text and keeps the
// first n sentences, splitting on '.'.
func Description(html string, n int) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	if n <= 0 {
		n = DefaultSentences
	}

	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	parts := strings.Split(text, ".")
	if len(parts) > n {
		parts = parts[:n]
	}
	out := strings.TrimSpace(strings.Join(parts, "."))
	if out == "" {
		return ""
	}
	return strings.TrimSuffix(out, ".") + "."
}
