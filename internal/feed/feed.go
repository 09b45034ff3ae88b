package feed

import (
	"errors"
	"net/url"
	"strings"

	"github.com/boris-k201/capsule-to-epub/internal/domain"
)

// Feed is the parsed result of one feed document.
type Feed struct {
	// Title is the feed's own title, when the document declares one.
	Title string
	// Entries lists the discovered chapters in document order.
	Entries []domain.FeedEntry
	// NextPage is the absolute URL of the next feed page, or empty when
	// the document is the last page.
	NextPage string
}

// Parse extracts feed entries from a raw feed document. Documents starting
// with an XML marker are parsed as Atom; everything else as gemfeed
// gemtext. Entries with empty or unresolvable URLs are skipped; a
// ParseError is returned only when the document as a whole is not feed
// content.
func Parse(data []byte, baseURL string) (Feed, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return Feed{}, &domain.ParseError{URL: baseURL, Err: errors.New("empty feed document")}
	}

	if strings.HasPrefix(trimmed, "<") {
		return parseAtom(data, baseURL)
	}
	return parseGemfeed(trimmed, baseURL)
}

// resolveURL resolves a possibly relative link against the feed URL.
// Returns empty when the link cannot be made absolute.
func resolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}

	baseU, err := url.Parse(base)
	if err != nil || !baseU.IsAbs() {
		return ""
	}
	return baseU.ResolveReference(ref).String()
}
