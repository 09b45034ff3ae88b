package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boris-k201/capsule-to-epub/internal/domain"
	"github.com/boris-k201/capsule-to-epub/internal/logger"
)

// stubFetcher serves canned pages keyed by URL.
type stubFetcher struct {
	pages map[string]domain.Page
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (domain.Page, error) {
	page, ok := s.pages[rawURL]
	if !ok {
		return domain.Page{}, &domain.FetchError{URL: rawURL, Err: errors.New("connection refused")}
	}
	return page, nil
}

func newExtractor(pages map[string]domain.Page) *Extractor {
	return New(&stubFetcher{pages: pages}, logger.NopLogger{})
}

func TestExtractGemtext(t *testing.T) {
	t.Run("HeadingBecomesTitle", func(t *testing.T) {
		body := "# A fine post\n\nHello world\n\nMore text here.\n"
		ex := newExtractor(map[string]domain.Page{
			"gemini://example.org/p1.gmi": {URL: "gemini://example.org/p1.gmi", MediaType: "text/gemini", Body: []byte(body)},
		})

		ch, err := ex.Extract(context.Background(), domain.FeedEntry{Title: "Entry 1", URL: "gemini://example.org/p1.gmi"})
		require.NoError(t, err)

		assert.Equal(t, "A fine post", ch.Title)
		assert.Contains(t, ch.Body, "Hello world")
		assert.Contains(t, ch.Body, "More text here.")
		assert.NotContains(t, ch.Body, "# A fine post")
	})

	t.Run("FallsBackToEntryTitle", func(t *testing.T) {
		ex := newExtractor(map[string]domain.Page{
			"gemini://example.org/p.gmi": {MediaType: "text/gemini", Body: []byte("Hello world\n")},
		})

		ch, err := ex.Extract(context.Background(), domain.FeedEntry{Title: "Entry 1", URL: "gemini://example.org/p.gmi"})
		require.NoError(t, err)
		assert.Equal(t, "Entry 1", ch.Title)
		assert.Equal(t, "Hello world", ch.Body)
	})

	t.Run("StripsMarkupAndFooter", func(t *testing.T) {
		body := "# Title\n" +
			"## Section\n" +
			"=> /other.gmi A link label\n" +
			"> quoted words\n" +
			"```\npre  formatted\n```\n" +
			"plain line\n" +
			"\n\nEOT\nfooter navigation\n"
		ex := newExtractor(map[string]domain.Page{
			"gemini://example.org/p.gmi": {MediaType: "text/gemini", Body: []byte(body)},
		})

		ch, err := ex.Extract(context.Background(), domain.FeedEntry{URL: "gemini://example.org/p.gmi"})
		require.NoError(t, err)

		assert.Equal(t, "Title", ch.Title)
		assert.Contains(t, ch.Body, "Section")
		assert.NotContains(t, ch.Body, "## Section")
		assert.Contains(t, ch.Body, "A link label")
		assert.NotContains(t, ch.Body, "=>")
		assert.Contains(t, ch.Body, "quoted words")
		assert.Contains(t, ch.Body, "pre  formatted")
		assert.NotContains(t, ch.Body, "```")
		assert.NotContains(t, ch.Body, "footer navigation")
	})
}

func TestExtractHTML(t *testing.T) {
	t.Run("TitleFromOpenGraph", func(t *testing.T) {
		body := `<html><head>
<title>doc title</title>
<meta property="og:title" content="og title"/>
</head><body><article><p>First paragraph.</p><p>Second paragraph.</p></article></body></html>`
		ex := newExtractor(map[string]domain.Page{
			"https://example.org/p": {MediaType: "text/html", Body: []byte(body)},
		})

		ch, err := ex.Extract(context.Background(), domain.FeedEntry{URL: "https://example.org/p"})
		require.NoError(t, err)

		assert.Equal(t, "og title", ch.Title)
		assert.Equal(t, "First paragraph.\n\nSecond paragraph.", ch.Body)
	})

	t.Run("DropsNavigationChrome", func(t *testing.T) {
		body := `<html><head><title>t</title><script>evil()</script></head>
<body><nav><p>menu</p></nav><main><p>the content</p></main><footer><p>copyright</p></footer></body></html>`
		ex := newExtractor(map[string]domain.Page{
			"https://example.org/p": {MediaType: "text/html", Body: []byte(body)},
		})

		ch, err := ex.Extract(context.Background(), domain.FeedEntry{URL: "https://example.org/p"})
		require.NoError(t, err)

		assert.Contains(t, ch.Body, "the content")
		assert.NotContains(t, ch.Body, "menu")
		assert.NotContains(t, ch.Body, "copyright")
		assert.NotContains(t, ch.Body, "evil")
	})
}

func TestExtractErrors(t *testing.T) {
	t.Run("FetchFailurePropagates", func(t *testing.T) {
		ex := newExtractor(nil)

		_, err := ex.Extract(context.Background(), domain.FeedEntry{URL: "gemini://down.example/p.gmi"})

		var ferr *domain.FetchError
		require.True(t, errors.As(err, &ferr))
		assert.Equal(t, "gemini://down.example/p.gmi", ferr.URL)
	})

	t.Run("EmptyBodyIsExtractError", func(t *testing.T) {
		ex := newExtractor(map[string]domain.Page{
			"gemini://example.org/empty.gmi": {MediaType: "text/gemini", Body: []byte("   \n")},
		})

		_, err := ex.Extract(context.Background(), domain.FeedEntry{URL: "gemini://example.org/empty.gmi"})

		var xerr *domain.ExtractError
		require.True(t, errors.As(err, &xerr))
		assert.Equal(t, "gemini://example.org/empty.gmi", xerr.URL)
	})

	t.Run("UnsupportedMediaTypeIsExtractError", func(t *testing.T) {
		ex := newExtractor(map[string]domain.Page{
			"https://example.org/img.png": {MediaType: "image/png", Body: []byte{0x89, 0x50}},
		})

		_, err := ex.Extract(context.Background(), domain.FeedEntry{URL: "https://example.org/img.png"})

		var xerr *domain.ExtractError
		require.True(t, errors.As(err, &xerr))
	})

	t.Run("TruncationKeepsValidUTF8", func(t *testing.T) {
		// Oversized body whose byte limit lands in the middle of a
		// two-byte rune.
		body := strings.Repeat("a", maxBodyBytes-1) + "é" + strings.Repeat("b", 64)
		ex := newExtractor(map[string]domain.Page{
			"https://example.org/big.txt": {MediaType: "text/plain", Body: []byte(body)},
		})

		ch, err := ex.Extract(context.Background(), domain.FeedEntry{Title: "Big", URL: "https://example.org/big.txt"})
		require.NoError(t, err)

		assert.True(t, utf8.ValidString(ch.Body))
		assert.True(t, strings.HasSuffix(ch.Body, "a"))
		assert.Len(t, ch.Body, maxBodyBytes-1)
	})

	t.Run("PlainTextPassesThrough", func(t *testing.T) {
		ex := newExtractor(map[string]domain.Page{
			"https://example.org/p.txt": {MediaType: "text/plain", Body: []byte("Goodbye\n")},
		})

		ch, err := ex.Extract(context.Background(), domain.FeedEntry{Title: "Entry 2", URL: "https://example.org/p.txt"})
		require.NoError(t, err)
		assert.Equal(t, "Entry 2", ch.Title)
		assert.Equal(t, "Goodbye", ch.Body)
	})
}
