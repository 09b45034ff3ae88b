package assembler

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	epub "github.com/bmaupin/go-epub"

	"github.com/boris-k201/capsule-to-epub/internal/domain"
	"github.com/boris-k201/capsule-to-epub/internal/logger"
)

// Assembler packages extracted chapters into a single EPUB file.
type Assembler struct {
	log logger.Logger
}

// New creates an Assembler with the given logger.
func New(log logger.Logger) *Assembler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Assembler{log: log}
}

// Assemble builds a Book from metadata and chapters. The chapter order is
// taken as given; an empty sequence fails with AssemblyError.
func (a *Assembler) Assemble(md domain.BookMetadata, chapters []domain.Chapter) (domain.Book, error) {
	if len(chapters) == 0 {
		return domain.Book{}, &domain.AssemblyError{Err: domain.ErrNoChapters}
	}
	if md.Language == "" {
		md.Language = "en"
	}

	book := domain.Book{
		Metadata: md,
		Chapters: make([]domain.Chapter, len(chapters)),
	}
	copy(book.Chapters, chapters)
	return book, nil
}

// Serialize writes the book to a single EPUB file at path, overwriting any
// existing file. The archive is built in a temporary file in the
// destination directory and renamed into place, so a failed run never
// leaves a partial file behind.
func (a *Assembler) Serialize(book domain.Book, path string) error {
	if len(book.Chapters) == 0 {
		return &domain.AssemblyError{Err: domain.ErrNoChapters}
	}

	e := epub.NewEpub(book.Metadata.Title)
	e.SetLang(book.Metadata.Language)
	if book.Metadata.Author != "" {
		e.SetAuthor(book.Metadata.Author)
	}
	e.SetIdentifier("urn:capsule-to-epub:" + bookDigest(book))

	for i, ch := range book.Chapters {
		filename := fmt.Sprintf("chapter-%04d.xhtml", i+1)
		if _, err := e.AddSection(chapterXHTML(ch), ch.Title, filename, ""); err != nil {
			return &domain.AssemblyError{Err: fmt.Errorf("add chapter %q: %w", ch.Title, err)}
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".epub-*")
	if err != nil {
		return &domain.WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := e.Write(tmpPath); err != nil {
		os.Remove(tmpPath)
		return &domain.WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &domain.WriteError{Path: path, Err: err}
	}

	a.log.InfoObj("book written", "serialize_done", map[string]any{
		"path":     path,
		"chapters": len(book.Chapters),
		"title":    book.Metadata.Title,
	})

	return nil
}

// chapterXHTML wraps a plain-text chapter body in the minimal markup the
// archive format expects: a heading plus one paragraph per blank-separated
// text block.
func chapterXHTML(ch domain.Chapter) string {
	var b strings.Builder
	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(ch.Title))
	b.WriteString("</h1>\n")

	for _, para := range strings.Split(ch.Body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteString("<br/>")
			}
			b.WriteString(html.EscapeString(line))
		}
		b.WriteString("</p>\n")
	}

	return b.String()
}

// bookDigest derives a stable identifier from the book content so that
// unchanged inputs produce a structurally identical archive.
func bookDigest(book domain.Book) string {
	h := sha1.New() //nolint:gosec // identity, not security
	h.Write([]byte(book.Metadata.Title))
	h.Write([]byte(book.Metadata.Author))
	h.Write([]byte(book.Metadata.Language))
	for _, ch := range book.Chapters {
		h.Write([]byte(ch.Title))
		h.Write([]byte(ch.Body))
	}
	return hex.EncodeToString(h.Sum(nil))
}
