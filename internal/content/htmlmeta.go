package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractPreviewImage scans HTML for a social preview image. Open Graph is
// preferred over Twitter; the first match wins. Parsing via goquery keeps the
// scan tolerant of attribute order, quote style and case, which ad hoc regex
// matching gets wrong on real pages.
func ExtractPreviewImage(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, selector := range []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}

	return ""
}

// ExtractText strips markup from HTML and returns a rough text corpus for
// analysis. Script and style bodies are dropped; remaining text is collapsed
// to single spaces. Rendering fidelity is not a goal, the model only needs a
// usable corpus.
func ExtractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
