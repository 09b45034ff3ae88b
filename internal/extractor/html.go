package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements whose text forms readable paragraphs.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre"

// htmlContent extracts the title and main text body from an HTML page,
// discarding scripts, styles and navigation chrome.
func htmlContent(body []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	meta := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	title = firstNonEmpty(
		meta(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
		strings.TrimSpace(doc.Find("h1").First().Text()),
	)

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	container := doc.Find("article").First()
	if container.Length() == 0 {
		container = doc.Find("main").First()
	}
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		return title, "", nil
	}

	var blocks []string
	container.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		// Skip nodes that nest other blocks so text is not duplicated.
		if sel.Find(blockSelector).Length() > 0 {
			return
		}
		if t := strings.TrimSpace(sel.Text()); t != "" {
			blocks = append(blocks, t)
		}
	})

	if len(blocks) == 0 {
		return title, strings.TrimSpace(container.Text()), nil
	}
	return title, strings.Join(blocks, "\n\n"), nil
}
