package feed

import (
	"strings"
	"time"

	"github.com/boris-k201/capsule-to-epub/internal/domain"
)

// nextPageMarker is the link label capsules conventionally use for the
// older-posts page of a paginated gemfeed.
const nextPageMarker = "Older posts"

const dateLayout = "2006-01-02"

// parseGemfeed extracts entries from a gemtext feed page. Every "=>" link
// line in document order becomes an entry; a leading YYYY-MM-DD label token
// becomes the publication date. The first "# " heading names the feed.
func parseGemfeed(body, baseURL string) (Feed, error) {
	out := Feed{}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")

		if out.Title == "" && strings.HasPrefix(line, "# ") {
			out.Title = strings.TrimSpace(line[2:])
			continue
		}

		if !strings.HasPrefix(line, "=>") {
			continue
		}

		rawURL, label := splitLinkLine(line)
		target := resolveURL(rawURL, baseURL)
		if target == "" {
			continue
		}

		if strings.Contains(label, nextPageMarker) {
			out.NextPage = target
			continue
		}

		entry := domain.FeedEntry{
			URL:   target,
			Order: len(out.Entries),
		}
		entry.PublishedAt, entry.Title = splitDateLabel(label)
		if entry.Title == "" {
			entry.Title = target
		}

		out.Entries = append(out.Entries, entry)
	}

	return out, nil
}

// splitLinkLine splits a "=> url label" gemtext line into its URL and label.
func splitLinkLine(line string) (rawURL, label string) {
	rest := strings.TrimSpace(line[len("=>"):])
	if rest == "" {
		return "", ""
	}
	fields := strings.Fields(rest)
	return fields[0], strings.Join(fields[1:], " ")
}

// splitDateLabel strips a leading ISO date token off a link label.
func splitDateLabel(label string) (time.Time, string) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return time.Time{}, ""
	}
	if t, err := time.Parse(dateLayout, fields[0]); err == nil {
		return t, strings.Join(fields[1:], " ")
	}
	return time.Time{}, strings.Join(fields, " ")
}
