package models

import "errors"

// Boundary-facing error taxonomy. Handlers map these onto HTTP statuses with
// errors.Is; everything else stays an internal failure.
var (
    // ErrInvalidInput marks an unreadable, empty or non-PDF upload, or a
    // document with no extractable text. Rejected before any side effect.
    ErrInvalidInput = errors.New("invalid input")

    // ErrNotFound marks a lookup or update against an unknown document id.
    ErrNotFound = errors.New("document not found")

    // ErrDuplicateFingerprint marks a create that lost a race against a
    // concurrent ingestion of the same bytes. Never surfaced to callers; the
    // pipeline resolves it by re-reading the winner.
    ErrDuplicateFingerprint = errors.New("fingerprint already exists")

    // ErrStoreUnavailable marks an unreachable or failing search index.
    ErrStoreUnavailable = errors.New("document store unavailable")

    // ErrSummarizationUnavailable marks a failing AI service. Ingestion and
    // persisted text are unaffected; callers may retry summarization alone.
    ErrSummarizationUnavailable = errors.New("summarization service unavailable")
)
