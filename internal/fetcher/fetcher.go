package fetcher

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/boris-k201/capsule-to-epub/internal/domain"
	"github.com/boris-k201/capsule-to-epub/pkg/gemini"
	"github.com/boris-k201/capsule-to-epub/pkg/httpclient"
	"github.com/boris-k201/capsule-to-epub/pkg/textenc"
)

// Fetcher retrieves the raw content of a single URL. Every call performs a
// network request; nothing is cached.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (domain.Page, error)
}

type registry struct {
	fetchers map[string]Fetcher
	mu       sync.RWMutex
}

// NewRegistry builds a Fetcher that dispatches on URL scheme.
func NewRegistry(bySchemes map[string]Fetcher) Fetcher {
	reg := &registry{
		fetchers: make(map[string]Fetcher, len(bySchemes)),
	}
	for scheme, f := range bySchemes {
		if f == nil {
			continue
		}
		reg.fetchers[strings.ToLower(strings.TrimSpace(scheme))] = f
	}
	return reg
}

// Default wires the http(s) and gemini fetchers with a shared timeout.
func Default(timeout time.Duration, userAgent string) Fetcher {
	httpF := NewHTTPFetcher(httpclient.NewRestyClientWithUserAgent(timeout, userAgent))
	geminiF := NewGeminiFetcher(gemini.NewClient(timeout))
	return NewRegistry(map[string]Fetcher{
		"http":   httpF,
		"https":  httpF,
		"gemini": geminiF,
	})
}

func (r *registry) Fetch(ctx context.Context, rawURL string) (domain.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.Page{}, &domain.FetchError{URL: rawURL, Err: err}
	}

	r.mu.RLock()
	f, ok := r.fetchers[strings.ToLower(u.Scheme)]
	r.mu.RUnlock()
	if !ok {
		return domain.Page{}, &domain.FetchError{
			URL: rawURL,
			Err: fmt.Errorf("no fetcher registered for scheme %q", u.Scheme),
		}
	}
	return f.Fetch(ctx, rawURL)
}

// httpFetcher retrieves http and https URLs.
type httpFetcher struct {
	client httpclient.Client
}

// NewHTTPFetcher builds a Fetcher for http(s) URLs on the given client.
func NewHTTPFetcher(client httpclient.Client) Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	return &httpFetcher{client: client}
}

func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) (domain.Page, error) {
	resp, err := f.client.Get(ctx, rawURL, nil)
	if err != nil {
		return domain.Page{}, &domain.FetchError{URL: rawURL, Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return domain.Page{}, &domain.FetchError{
			URL:    rawURL,
			Status: fmt.Sprintf("HTTP %d", resp.StatusCode()),
			Err:    errors.New(responseSnippet(resp.Body())),
		}
	}

	mediaType, charset := mediaTypeOf(resp.Header(), rawURL)
	body := resp.Body()
	if strings.HasPrefix(mediaType, "text/") {
		body, err = textenc.Decode(body, charset)
		if err != nil {
			return domain.Page{}, &domain.FetchError{URL: rawURL, Err: err}
		}
	}

	return domain.Page{
		URL:       rawURL,
		MediaType: mediaType,
		Body:      body,
	}, nil
}

// mediaTypeOf derives the page media type and charset from the Content-Type
// header, falling back to the URL extension for servers that omit it.
func mediaTypeOf(header http.Header, rawURL string) (mediaType, charset string) {
	if ct := header.Get("Content-Type"); ct != "" {
		if mt, params, err := mime.ParseMediaType(ct); err == nil {
			return mt, params["charset"]
		}
	}
	if strings.HasSuffix(strings.ToLower(rawURL), ".gmi") {
		return "text/gemini", ""
	}
	return "text/plain", ""
}

// geminiFetcher retrieves gemini URLs.
type geminiFetcher struct {
	client *gemini.Client
}

// NewGeminiFetcher builds a Fetcher for gemini URLs on the given client.
func NewGeminiFetcher(client *gemini.Client) Fetcher {
	if client == nil {
		client = gemini.NewClient(15 * time.Second)
	}
	return &geminiFetcher{client: client}
}

func (f *geminiFetcher) Fetch(ctx context.Context, rawURL string) (domain.Page, error) {
	resp, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return domain.Page{}, &domain.FetchError{URL: rawURL, Err: err}
	}

	if !resp.Success() {
		status := fmt.Sprintf("gemini %d %s", resp.Status, resp.Meta)
		var cause error
		if resp.Status/10 == gemini.StatusClassInput {
			cause = errors.New("server requested input, not supported")
		} else {
			cause = errors.New("request failed")
		}
		return domain.Page{}, &domain.FetchError{
			URL:    rawURL,
			Status: strings.TrimSpace(status),
			Err:    cause,
		}
	}

	return domain.Page{
		URL:       resp.URL,
		MediaType: resp.MediaType,
		Body:      resp.Body,
	}, nil
}

// responseSnippet trims an error body down to a loggable size.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
