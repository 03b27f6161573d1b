package document

import (
	"context"

	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/pkg/queue"
)

// Upload carries a validated PDF upload into the pipeline.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadResult is the outcome of an ingestion attempt. Duplicate uploads
// resolve to the existing document id and are a success, not an error.
type UploadResult struct {
	DocumentID       string
	Duplicate        bool
	ExtractionMethod models.ExtractionMethod
}

// Service is the ingestion and summarization pipeline.
type Service interface {
	// UploadPDF ingests a PDF: fingerprint, dedup, extraction with OCR
	// fallback, persistence, and a queued first summary.
	UploadPDF(ctx context.Context, upload *Upload) (*UploadResult, error)

	// UpdateSummary regenerates the summary from the stored text (falling
	// back to re-OCR of the stored artifact when the index holds none) and
	// returns the updated document.
	UpdateSummary(ctx context.Context, docID, question string) (*models.Document, error)

	// UpdateSummaryWithFile re-OCRs the supplied file, overwrites the stored
	// text, then regenerates the summary. The document id and fingerprint
	// never change.
	UpdateSummaryWithFile(ctx context.Context, docID string, upload *Upload) (*models.Document, error)

	// GetDocument returns the full document record.
	GetDocument(ctx context.Context, docID string) (*models.Document, error)

	// SummaryStatus reports the latest queued-summary outcome, or nil when
	// none is recorded. Best effort.
	SummaryStatus(ctx context.Context, docID string) (*queue.SummaryStatus, error)
}

// TextExtractor attempts direct structural extraction. ok is false when the
// yield is below the usable-content threshold.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (text string, ok bool)
}

// OCRRecognizer runs the OCR fallback. Failures degrade to "" rather than
// propagate; partial text is a valid outcome.
type OCRRecognizer interface {
	Recognize(ctx context.Context, data []byte) string
}

// Summarizer produces a summary of the given text, answering the optional
// custom question.
type Summarizer interface {
	Summarize(ctx context.Context, text, question string) (string, error)
}
