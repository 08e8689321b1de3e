package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
)

// DescriptionText renders a possibly HTML description as plain text.
// Block elements and <br> end a line, whitespace inside a line is collapsed
// and empty lines are dropped.
func DescriptionText(s string) (string, error) {
	if !strings.ContainsRune(s, '<') {
		return normalizeLines(s), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").AppendHtml("\n")

	return normalizeLines(doc.Text()), nil
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
