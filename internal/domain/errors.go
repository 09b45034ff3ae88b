package domain

import (
	"errors"
	"fmt"
)

// FetchError reports that a URL could not be retrieved: transport failure,
// timeout, or a non-success status. Status holds the protocol status line
// when one was received, e.g. "HTTP 404" or "gemini 51 not found".
type FetchError struct {
	URL    string
	Status string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports that a feed document is not recognizable feed content.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractError reports that a fetched page has no identifiable text content.
type ExtractError struct {
	URL string
	Err error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ErrNoChapters is the cause carried by an AssemblyError when the chapter
// sequence is empty.
var ErrNoChapters = errors.New("no chapters to package")

// AssemblyError reports that no book could be assembled.
type AssemblyError struct {
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble book: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// WriteError reports that the output file could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
