package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/finsight/finserv-docs/config"
	"github.com/finsight/finserv-docs/internal/extract/ocr"
	"github.com/finsight/finserv-docs/internal/extract/pdf"
	"github.com/finsight/finserv-docs/internal/fingerprint"
	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/internal/store"
	"github.com/finsight/finserv-docs/internal/store/solr"
	"github.com/finsight/finserv-docs/internal/summarize"
	"github.com/finsight/finserv-docs/pkg/logger"
	"github.com/finsight/finserv-docs/pkg/queue"
	"github.com/finsight/finserv-docs/pkg/storage"
)

// ingestState names the stages an ingestion attempt moves through. Logged on
// every transition so a stuck or failed upload can be located in the flow.
type ingestState string

const (
	stateReceived       ingestState = "received"
	stateHashed         ingestState = "hashed"
	stateDuplicateFound ingestState = "duplicate_found"
	stateExtracting     ingestState = "extracting"
	stateExtracted      ingestState = "extracted"
	stateOcrRecognizing ingestState = "ocr_recognizing"
	stateOcrDone        ingestState = "ocr_done"
	stateStored         ingestState = "stored"
	stateSummarizing    ingestState = "summarizing"
	stateComplete       ingestState = "complete"
)

type DocumentService struct {
	store      store.DocumentStore
	extractor  TextExtractor
	recognizer OCRRecognizer
	summarizer Summarizer
	artifacts  storage.ArtifactStore
	queue      queue.Queue
	logger     logger.Logger
}

func NewService(
	docStore store.DocumentStore,
	extractor TextExtractor,
	recognizer OCRRecognizer,
	summarizer Summarizer,
	artifacts storage.ArtifactStore,
	q queue.Queue,
	log logger.Logger,
) Service {
	return &DocumentService{
		store:      docStore,
		extractor:  extractor,
		recognizer: recognizer,
		summarizer: summarizer,
		artifacts:  artifacts,
		queue:      q,
		logger:     log,
	}
}

// UploadPDF runs the ingestion state machine. Requests for different
// fingerprints proceed fully concurrently; two requests racing on the same
// fingerprint resolve to a single winner through the store's create
// conflict, and the loser adopts the winner's id.
func (s *DocumentService) UploadPDF(ctx context.Context, upload *Upload) (*UploadResult, error) {
	log := s.logger.With(
		logger.String("requestId", uuid.New().String()),
		logger.String("filename", upload.FileName),
	)
	log.Info("Ingestion started", logger.String("state", string(stateReceived)))

	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", models.ErrInvalidInput)
	}

	digest := fingerprint.Compute(upload.Data)
	log = log.With(logger.String("fingerprint", digest))
	log.Info("Fingerprint computed", logger.String("state", string(stateHashed)))

	// dedup short-circuit: byte-identical content resolves to the existing id
	existing, err := s.store.FindByFingerprint(ctx, digest)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Info("Duplicate content, returning existing document",
			logger.String("state", string(stateDuplicateFound)),
			logger.String("documentId", existing.ID),
		)
		return &UploadResult{
			DocumentID:       existing.ID,
			Duplicate:        true,
			ExtractionMethod: existing.ExtractionMethod,
		}, nil
	}

	log.Info("Extracting text", logger.String("state", string(stateExtracting)))
	text, ok := s.extractor.Extract(ctx, upload.Data)
	method := models.ExtractionDirect
	if ok {
		log.Info("Direct extraction succeeded",
			logger.String("state", string(stateExtracted)),
			logger.Int("chars", len(text)),
		)
	} else {
		// OCR runs exactly once and its yield is stored even when empty;
		// the document must remain referenceable either way.
		log.Info("Direct extraction insufficient, falling back to OCR",
			logger.String("state", string(stateOcrRecognizing)),
		)
		text = s.recognizer.Recognize(ctx, upload.Data)
		method = models.ExtractionOCR
		log.Info("OCR finished",
			logger.String("state", string(stateOcrDone)),
			logger.Int("chars", len(text)),
		)
	}

	locationURI := s.storeArtifact(ctx, log, digest, upload)

	doc := &models.Document{
		ID:          fingerprint.DocumentID(digest),
		Fingerprint: digest,
		Source: models.SourceInfo{
			FileName:    upload.FileName,
			ContentType: upload.ContentType,
			Size:        upload.Size,
			UploadedAt:  time.Now().UTC(),
		},
		Text:             text,
		LocationURI:      locationURI,
		ExtractionMethod: method,
	}

	docID, err := s.store.Create(ctx, doc)
	if errors.Is(err, models.ErrDuplicateFingerprint) {
		// lost the create race; adopt the winner instead of erroring
		winner, lookupErr := s.store.FindByFingerprint(ctx, digest)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if winner == nil {
			return nil, fmt.Errorf("%w: winner of create race not readable", models.ErrStoreUnavailable)
		}
		log.Info("Create race lost, adopting winner",
			logger.String("documentId", winner.ID),
		)
		return &UploadResult{
			DocumentID:       winner.ID,
			Duplicate:        true,
			ExtractionMethod: winner.ExtractionMethod,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	log.Info("Document stored",
		logger.String("state", string(stateStored)),
		logger.String("documentId", docID),
	)

	// first summary is generated in the background; its failure never
	// affects the stored document
	s.enqueueSummary(ctx, log, docID)

	log.Info("Ingestion complete", logger.String("state", string(stateComplete)))
	return &UploadResult{
		DocumentID:       docID,
		Duplicate:        false,
		ExtractionMethod: method,
	}, nil
}

// storeArtifact persists the original upload so later summary updates can
// re-OCR it. Best effort: a missing artifact only degrades the re-OCR path.
func (s *DocumentService) storeArtifact(ctx context.Context, log logger.Logger, digest string, upload *Upload) string {
	if s.artifacts == nil {
		return ""
	}
	key := storage.ArtifactKey(digest)
	uri, err := s.artifacts.Store(ctx, bytes.NewReader(upload.Data), key, upload.Size, upload.ContentType)
	if err != nil {
		log.Warn("Failed to store original artifact", logger.Error(err))
		return ""
	}
	return uri
}

func (s *DocumentService) enqueueSummary(ctx context.Context, log logger.Logger, docID string) {
	if s.queue == nil {
		return
	}
	err := s.queue.EnqueueSummary(ctx, &queue.SummaryTask{DocumentID: docID})
	if err != nil {
		log.Warn("Failed to enqueue summary task",
			logger.String("documentId", docID),
			logger.Error(err),
		)
		return
	}
	log.Info("Summary task enqueued",
		logger.String("state", string(stateSummarizing)),
		logger.String("documentId", docID),
	)
}

// UpdateSummary regenerates the document's summary from its stored text.
// When the index holds no text (OCR yielded nothing at ingestion), the
// original artifact is fetched and re-OCR'd first, and a non-empty yield is
// persisted before summarizing.
func (s *DocumentService) UpdateSummary(ctx context.Context, docID, question string) (*models.Document, error) {
	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		return nil, err
	}

	text := doc.Text
	if !usableText(text) {
		text = s.reRecognizeArtifact(ctx, doc)
		if usableText(text) {
			if err := s.store.UpdateText(ctx, docID, text, models.ExtractionOCR); err != nil {
				return nil, err
			}
			doc.Text = text
			doc.ExtractionMethod = models.ExtractionOCR
		}
	}
	if !usableText(text) {
		return nil, fmt.Errorf("%w: document %s has no extractable text", models.ErrInvalidInput, docID)
	}

	s.logger.Info("Regenerating summary",
		logger.String("state", string(stateSummarizing)),
		logger.String("documentId", docID),
	)

	// the summary is generated from exactly the text read (or persisted)
	// above; UpdateSummary touches no other field
	summary, err := s.summarizer.Summarize(ctx, text, question)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateSummary(ctx, docID, summary); err != nil {
		return nil, err
	}
	doc.Summary = summary
	return doc, nil
}

// UpdateSummaryWithFile overwrites the stored text with a fresh OCR pass
// over the supplied file, then regenerates the summary. Used when the
// original upload never produced text and the caller still has the file.
func (s *DocumentService) UpdateSummaryWithFile(ctx context.Context, docID string, upload *Upload) (*models.Document, error) {
	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		return nil, err
	}

	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", models.ErrInvalidInput)
	}

	s.logger.Info("Re-recognizing document from uploaded file",
		logger.String("state", string(stateOcrRecognizing)),
		logger.String("documentId", docID),
		logger.String("filename", upload.FileName),
	)
	text := s.recognizer.Recognize(ctx, upload.Data)
	if !usableText(text) {
		// prior text stays untouched: a failed OCR attempt never erases
		// what is already stored
		return nil, fmt.Errorf("%w: no text could be recognized in %s", models.ErrInvalidInput, upload.FileName)
	}

	if err := s.store.UpdateText(ctx, docID, text, models.ExtractionOCR); err != nil {
		return nil, err
	}
	doc.Text = text
	doc.ExtractionMethod = models.ExtractionOCR

	summary, err := s.summarizer.Summarize(ctx, text, "")
	if err != nil {
		// text is already persisted; the caller can retry summarization
		return nil, err
	}

	if err := s.store.UpdateSummary(ctx, docID, summary); err != nil {
		return nil, err
	}
	doc.Summary = summary
	return doc, nil
}

func (s *DocumentService) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	return s.store.Get(ctx, docID)
}

func (s *DocumentService) SummaryStatus(ctx context.Context, docID string) (*queue.SummaryStatus, error) {
	if s.queue == nil {
		return nil, nil
	}
	return s.queue.GetStatus(ctx, docID)
}

// reRecognizeArtifact fetches the original upload from artifact storage and
// runs OCR over it. Returns "" when the artifact is unavailable.
func (s *DocumentService) reRecognizeArtifact(ctx context.Context, doc *models.Document) string {
	if s.artifacts == nil || doc.Fingerprint == "" {
		return ""
	}

	rc, err := s.artifacts.Get(ctx, storage.ArtifactKey(doc.Fingerprint))
	if err != nil {
		s.logger.Warn("Original artifact unavailable for re-OCR",
			logger.String("documentId", doc.ID),
			logger.Error(err),
		)
		return ""
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		s.logger.Warn("Failed to read original artifact",
			logger.String("documentId", doc.ID),
			logger.Error(err),
		)
		return ""
	}

	return s.recognizer.Recognize(ctx, data)
}

func usableText(text string) bool {
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			return true
		}
	}
	return false
}

// GetService wires the pipeline from process configuration. The artifact
// store and the queue are optional collaborators: their backends being down
// degrades dedup-adjacent features but never blocks ingestion itself.
func GetService(ctx context.Context, log logger.Logger) (Service, error) {
	docStore := solr.NewClient(config.GetSolrConfig(), log)

	engine, err := ocr.NewEngine(ctx, config.GetOCRConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR engine: %w", err)
	}

	summarizer, err := summarize.NewGenerator(ctx, config.GetGeminiConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}

	artifacts, err := storage.NewArtifactStore(storage.StorageType(config.GetStorageConfig().Type), log)
	if err != nil {
		log.Warn("Artifact storage unavailable, continuing without it", logger.Error(err))
		artifacts = nil
	}

	q, err := queue.NewQueue(config.GetQueueConfig())
	if err != nil {
		log.Warn("Summary queue unavailable, continuing without it", logger.Error(err))
		q = nil
	}

	var qi queue.Queue
	if q != nil {
		qi = q
	}

	return NewService(
		docStore,
		pdf.NewExtractor(log),
		ocr.NewRecognizer(engine, log),
		summarizer,
		artifacts,
		qi,
		log,
	), nil
}
