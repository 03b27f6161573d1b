package ocr

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finsight/finserv-docs/pkg/logger"
)

// PageSeparator joins recognized pages in document order. The form feed keeps
// page boundaries recoverable from the stored text.
const PageSeparator = "\n\f\n"

// PageImage is one raster image lifted from a PDF page.
type PageImage struct {
	Page int
	Data []byte
}

// pageSource lifts page images out of a PDF. Swappable in tests.
type pageSource func(data []byte) (pageCount int, images []PageImage, err error)

// Recognizer runs the OCR fallback: rasterized page images through a
// per-page recognition engine, reassembled in page order. It is invoked at
// most once per ingestion attempt and absorbs per-page failures into empty
// contributions; a partial result beats no result.
type Recognizer struct {
	engine     Engine
	logger     logger.Logger
	maxWorkers int
	source     pageSource
}

type Option func(*Recognizer)

func WithMaxWorkers(n int) Option {
	return func(r *Recognizer) { r.maxWorkers = n }
}

func NewRecognizer(engine Engine, log logger.Logger, opts ...Option) *Recognizer {
	r := &Recognizer{
		engine:     engine,
		logger:     log,
		maxWorkers: 4,
		source:     pdfPageImages,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize OCRs every page of the given PDF and returns the concatenated
// text. Failures never propagate: an unreadable document yields "", a failed
// page yields an empty segment, and the surviving pages keep their order.
func (r *Recognizer) Recognize(ctx context.Context, data []byte) string {
	pageCount, images, err := r.source(data)
	if err != nil {
		r.logger.Warn("Failed to rasterize PDF for OCR", logger.Error(err))
		return ""
	}
	if pageCount == 0 {
		return ""
	}

	// group images by page so each page is assembled by a single goroutine
	byPage := make(map[int][]PageImage, pageCount)
	for _, img := range images {
		byPage[img.Page] = append(byPage[img.Page], img)
	}

	texts := make([]string, pageCount)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxWorkers)

	for page, pageImages := range byPage {
		page, pageImages := page, pageImages
		if page < 1 || page > pageCount {
			continue
		}
		g.Go(func() error {
			var parts []string
			for _, img := range pageImages {
				text, err := r.engine.RecognizePage(ctx, img.Data)
				if err != nil {
					// per-page failure degrades to an empty contribution
					r.logger.Warn("OCR failed on page",
						logger.Int("page", page),
						logger.String("engine", r.engine.Name()),
						logger.Error(err),
					)
					continue
				}
				if t := strings.TrimSpace(text); t != "" {
					parts = append(parts, t)
				}
			}
			mu.Lock()
			texts[page-1] = strings.Join(parts, "\n")
			mu.Unlock()
			return nil
		})
	}

	// errors are absorbed per page; Wait only reports ctx cancellation
	if err := g.Wait(); err != nil {
		r.logger.Warn("OCR cancelled", logger.Error(err))
	}

	return assemblePages(texts)
}

// assemblePages joins page texts in order, keeping empty segments so the
// separator count still reflects page boundaries, then trims the edges.
func assemblePages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, PageSeparator))
}
