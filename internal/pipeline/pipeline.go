package pipeline

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/boris-k201/capsule-to-epub/internal/assembler"
	"github.com/boris-k201/capsule-to-epub/internal/domain"
	"github.com/boris-k201/capsule-to-epub/internal/extractor"
	"github.com/boris-k201/capsule-to-epub/internal/feed"
	"github.com/boris-k201/capsule-to-epub/internal/fetcher"
	"github.com/boris-k201/capsule-to-epub/internal/logger"
)

// Options tune one conversion run.
type Options struct {
	// Title overrides the feed's own title when set.
	Title string
	// Author is written into the book metadata when set.
	Author string
	// Language is the book language code; defaults to "en".
	Language string
	// MaxPages bounds how many feed pages are followed through next-page
	// links. 1 reads only the starting page; 0 follows them all.
	MaxPages int
}

// Pipeline runs the linear conversion: fetch feed, parse entries, fetch and
// extract each entry in order, assemble, write. Strictly sequential and
// fail-fast: the first failing step aborts the run and nothing is written.
type Pipeline struct {
	fetch    fetcher.Fetcher
	extract  *extractor.Extractor
	assemble *assembler.Assembler
	log      logger.Logger
	opts     Options
}

// New wires a Pipeline from its collaborators.
func New(fetch fetcher.Fetcher, extract *extractor.Extractor, assemble *assembler.Assembler, log logger.Logger, opts Options) *Pipeline {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{
		fetch:    fetch,
		extract:  extract,
		assemble: assemble,
		log:      log,
		opts:     opts,
	}
}

// Run converts the feed at feedURL into an EPUB file at outputPath.
func (p *Pipeline) Run(ctx context.Context, feedURL, outputPath string) error {
	feedTitle, entries, err := p.collectEntries(ctx, feedURL)
	if err != nil {
		return err
	}

	p.log.InfoObj("feed parsed", "entries_parsed", map[string]any{
		"feed_url": feedURL,
		"entries":  len(entries),
		"title":    feedTitle,
	})

	chapters := make([]domain.Chapter, 0, len(entries))
	for _, entry := range entries {
		p.log.InfoObj("fetching chapter", "chapter_fetch", map[string]any{
			"order": entry.Order,
			"url":   entry.URL,
			"title": entry.Title,
		})

		ch, err := p.extract.Extract(ctx, entry)
		if err != nil {
			return err
		}
		chapters = append(chapters, ch)
	}

	md := domain.BookMetadata{
		Title:    p.bookTitle(feedTitle, feedURL),
		Author:   p.opts.Author,
		Language: p.opts.Language,
	}

	book, err := p.assemble.Assemble(md, chapters)
	if err != nil {
		return err
	}

	if err := p.assemble.Serialize(book, outputPath); err != nil {
		return err
	}

	p.log.InfoObj("conversion finished", "done", map[string]any{
		"feed_url": feedURL,
		"output":   outputPath,
		"chapters": len(book.Chapters),
	})

	return nil
}

// collectEntries fetches and parses the feed, following next-page links up
// to the configured page budget. Entries keep feed order across pages.
func (p *Pipeline) collectEntries(ctx context.Context, feedURL string) (string, []domain.FeedEntry, error) {
	var (
		title   string
		entries []domain.FeedEntry
	)
	visited := make(map[string]struct{})

	pageURL := feedURL
	for pageCount := 0; pageURL != ""; pageCount++ {
		if p.opts.MaxPages > 0 && pageCount >= p.opts.MaxPages {
			break
		}
		if _, seen := visited[pageURL]; seen {
			break
		}
		visited[pageURL] = struct{}{}

		p.log.DebugObj("fetching feed page", "feed_fetch", map[string]any{
			"url":  pageURL,
			"page": pageCount,
		})

		page, err := p.fetch.Fetch(ctx, pageURL)
		if err != nil {
			return "", nil, err
		}
		if !textDocument(page.MediaType) {
			return "", nil, &domain.ParseError{
				URL: pageURL,
				Err: errors.New("document is not text content: " + page.MediaType),
			}
		}

		parsed, err := feed.Parse(page.Body, pageURL)
		if err != nil {
			return "", nil, err
		}

		if title == "" {
			title = parsed.Title
		}
		for _, entry := range parsed.Entries {
			entry.Order = len(entries)
			entries = append(entries, entry)
		}

		pageURL = parsed.NextPage
	}

	return title, entries, nil
}

// bookTitle resolves the book title: explicit override, then the feed's own
// title, then the feed host.
func (p *Pipeline) bookTitle(feedTitle, feedURL string) string {
	if p.opts.Title != "" {
		return p.opts.Title
	}
	if feedTitle != "" {
		return feedTitle
	}
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		return u.Host
	}
	return feedURL
}

// textDocument reports whether a media type can hold feed content.
func textDocument(mediaType string) bool {
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case mediaType == "application/xml",
		mediaType == "application/atom+xml",
		mediaType == "application/xhtml+xml":
		return true
	}
	return false
}
