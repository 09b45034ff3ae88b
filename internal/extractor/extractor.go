package extractor

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/boris-k201/capsule-to-epub/internal/domain"
	"github.com/boris-k201/capsule-to-epub/internal/fetcher"
	"github.com/boris-k201/capsule-to-epub/internal/logger"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Extractor fetches a feed entry's page and reduces it to a plain-text
// chapter.
type Extractor struct {
	fetch fetcher.Fetcher
	log   logger.Logger
}

// New creates an Extractor on the given fetcher and logger.
func New(fetch fetcher.Fetcher, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Extractor{fetch: fetch, log: log}
}

// Extract retrieves the entry's URL and converts the payload to a chapter.
// The chapter title comes from the page's own heading metadata, falling
// back to the feed entry title. Calling twice re-fetches; nothing is
// cached.
func (e *Extractor) Extract(ctx context.Context, entry domain.FeedEntry) (domain.Chapter, error) {
	page, err := e.fetch.Fetch(ctx, entry.URL)
	if err != nil {
		return domain.Chapter{}, err
	}

	body := page.Body
	if len(body) > maxBodyBytes {
		cut := maxBodyBytes
		// Back off to a rune boundary so no partial character survives.
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		e.log.InfoObj("page body truncated", "truncation", map[string]any{
			"url":      entry.URL,
			"original": len(body),
			"kept":     cut,
		})
		body = body[:cut]
	}

	var title, text string
	switch {
	case page.MediaType == "text/gemini":
		title, text = gemtextContent(string(body))
	case page.MediaType == "text/html" || page.MediaType == "application/xhtml+xml":
		title, text, err = htmlContent(body)
		if err != nil {
			return domain.Chapter{}, &domain.ExtractError{URL: entry.URL, Err: err}
		}
	case strings.HasPrefix(page.MediaType, "text/"):
		text = strings.TrimSpace(string(body))
	default:
		return domain.Chapter{}, &domain.ExtractError{
			URL: entry.URL,
			Err: errors.New("unsupported media type " + page.MediaType),
		}
	}

	if strings.TrimSpace(text) == "" {
		return domain.Chapter{}, &domain.ExtractError{
			URL: entry.URL,
			Err: errors.New("no text content found"),
		}
	}

	ch := domain.Chapter{
		Title: firstNonEmpty(title, entry.Title, entry.URL),
		Body:  strings.TrimSpace(text),
	}

	e.log.DebugObj("chapter extracted", "extract_done", map[string]any{
		"url":   entry.URL,
		"title": ch.Title,
		"bytes": len(ch.Body),
	})

	return ch, nil
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
