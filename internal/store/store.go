package store

import (
	"context"

	"github.com/finsight/finserv-docs/internal/models"
)

// DocumentStore persists document text, metadata and summaries in the search
// index. All operations are idempotent under retry: repeating a call after a
// timeout produces no side effect beyond the intended write.
type DocumentStore interface {
	// FindByFingerprint returns the document carrying the digest, or nil when
	// none exists. Absence is a normal outcome during dedup, not an error.
	FindByFingerprint(ctx context.Context, digest string) (*models.Document, error)

	// Create inserts a new document and returns its id. A concurrent create
	// with the same fingerprint fails with ErrDuplicateFingerprint; the
	// caller resolves the race by re-reading.
	Create(ctx context.Context, doc *models.Document) (string, error)

	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Document, error)

	// UpdateText overwrites the extracted text and its extraction method,
	// leaving every other field untouched.
	UpdateText(ctx context.Context, id, text string, method models.ExtractionMethod) error

	// UpdateSummary overwrites the summary, leaving every other field
	// untouched.
	UpdateSummary(ctx context.Context, id, summary string) error
}
