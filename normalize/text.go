package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text strips HTML markup and entities that extraction sometimes leaves in
// free-text fields. Line breaks survive as "\n"; runs of spaces collapse.
func Text(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseLines(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseLines(s)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	doc.Find("script, style").Remove()

	return collapseLines(doc.Text())
}

func collapseLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Texts applies Text to each element and drops the ones that end up empty.
func Texts(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := Text(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
