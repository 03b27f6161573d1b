package pdf

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/finsight/finserv-docs/pkg/logger"
)

// DefaultMinChars is the usable-content threshold: direct extraction that
// yields fewer non-whitespace characters than this counts as insufficient
// and the caller falls back to OCR. Scanned PDFs routinely produce a handful
// of stray glyphs, so zero is too lenient a cutoff.
const DefaultMinChars = 20

type Extractor struct {
	logger     logger.Logger
	minChars   int
	maxWorkers int
}

type Option func(*Extractor)

func WithMinChars(n int) Option {
	return func(e *Extractor) { e.minChars = n }
}

func WithMaxWorkers(n int) Option {
	return func(e *Extractor) { e.maxWorkers = n }
}

func NewExtractor(log logger.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		logger:     log,
		minChars:   DefaultMinChars,
		maxWorkers: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract attempts structural text extraction from a digitally authored PDF.
// ok is false when the document is malformed, encrypted, image-only or the
// recovered text falls below the usable-content threshold. A scanned PDF is
// an expected input, not an exception, so Extract never returns an error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, ok bool) {
	reader := bytes.NewReader(data)

	pdfReader, err := newReader(reader, reader.Size())
	if err != nil {
		e.logger.Info("Structural PDF parse failed, treating as insufficient",
			logger.Error(err),
		)
		return "", false
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, numPages)

	// pages are independent; extract them concurrently with a bounded pool
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.maxWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			pages[pageNum-1] = e.pageText(pdfReader, pageNum)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", false
	}

	text = strings.TrimSpace(strings.Join(pages, "\n"))
	return text, usable(text, e.minChars)
}

// pageText recovers one page, absorbing both errors and parser panics into an
// empty contribution.
func (e *Extractor) pageText(r *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("PDF parser panicked on page",
				logger.Int("page", pageNum),
				logger.Any("panic", rec),
			)
			text = ""
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		e.logger.Warn("Failed to get text from page",
			logger.Int("page", pageNum),
			logger.Error(err),
		)
		return ""
	}
	return content
}

// newReader wraps pdf.NewReader because it panics on some malformed inputs
// instead of returning an error.
func newReader(r *bytes.Reader, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader = nil
			err = &parseError{rec}
		}
	}()
	return pdf.NewReader(r, size)
}

type parseError struct {
	cause interface{}
}

func (e *parseError) Error() string { return "pdf: parser panic" }

// usable reports whether text carries at least min non-whitespace characters.
func usable(text string, min int) bool {
	count := 0
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			count++
			if count >= min {
				return true
			}
		}
	}
	return false
}
