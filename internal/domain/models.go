package domain

import "time"

// Domain contains the core models passed between pipeline stages.

// FeedEntry is one titled link discovered in the source feed.
// Order reflects the entry's position in the feed document.
type FeedEntry struct {
	Title       string
	URL         string
	Order       int
	PublishedAt time.Time
}

// Chapter is the extracted plain-text content of one feed entry.
type Chapter struct {
	Title string
	Body  string
}

// BookMetadata holds the book-level fields written into the output archive.
// Author may be empty.
type BookMetadata struct {
	Title    string
	Author   string
	Language string
}

// Book is the assembled output: metadata plus chapters in feed order.
type Book struct {
	Metadata BookMetadata
	Chapters []Chapter
}

// Page is the raw result of fetching a single URL.
type Page struct {
	URL       string
	MediaType string
	Body      []byte
}
