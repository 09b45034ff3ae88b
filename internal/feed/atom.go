package feed

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/boris-k201/capsule-to-epub/internal/domain"
)

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// parseAtom extracts entries from an Atom XML feed document.
func parseAtom(data []byte, baseURL string) (Feed, error) {
	var af atomFeed
	if err := xml.Unmarshal(data, &af); err != nil {
		return Feed{}, &domain.ParseError{URL: baseURL, Err: err}
	}

	out := Feed{Title: strings.TrimSpace(af.Title)}

	for _, entry := range af.Entries {
		target := resolveURL(entryLink(entry.Links), baseURL)
		if target == "" {
			continue
		}

		fe := domain.FeedEntry{
			Title:       strings.TrimSpace(entry.Title),
			URL:         target,
			Order:       len(out.Entries),
			PublishedAt: parseAtomTime(entry.Published, entry.Updated),
		}
		if fe.Title == "" {
			fe.Title = target
		}

		out.Entries = append(out.Entries, fe)
	}

	return out, nil
}

// entryLink picks the alternate link of an Atom entry, falling back to the
// first link carrying any href.
func entryLink(links []atomLink) string {
	for _, l := range links {
		if (l.Rel == "" || l.Rel == "alternate") && strings.TrimSpace(l.Href) != "" {
			return l.Href
		}
	}
	for _, l := range links {
		if strings.TrimSpace(l.Href) != "" {
			return l.Href
		}
	}
	return ""
}

func parseAtomTime(values ...string) time.Time {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
