package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finserv-docs/internal/fingerprint"
	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/pkg/logger"
	"github.com/finsight/finserv-docs/pkg/queue"
	"github.com/finsight/finserv-docs/pkg/storage"
)

// fakeStore is an in-memory DocumentStore with the same uniqueness semantics
// as the Solr client: one document per fingerprint, enforced at Create.
type fakeStore struct {
	docs map[string]*models.Document

	// raceOnCreate simulates a rival request winning the insert between
	// FindByFingerprint and Create.
	raceOnCreate *models.Document

	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*models.Document)}
}

func (s *fakeStore) FindByFingerprint(ctx context.Context, digest string) (*models.Document, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, d := range s.docs {
		if d.Fingerprint == digest {
			copy := *d
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Create(ctx context.Context, doc *models.Document) (string, error) {
	if s.raceOnCreate != nil {
		winner := s.raceOnCreate
		s.raceOnCreate = nil
		s.docs[winner.ID] = winner
		return "", fmt.Errorf("%w: %s", models.ErrDuplicateFingerprint, doc.Fingerprint)
	}
	for _, d := range s.docs {
		if d.Fingerprint == doc.Fingerprint {
			return "", fmt.Errorf("%w: %s", models.ErrDuplicateFingerprint, doc.Fingerprint)
		}
	}
	copy := *doc
	s.docs[doc.ID] = &copy
	return doc.ID, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*models.Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	copy := *d
	return &copy, nil
}

func (s *fakeStore) UpdateText(ctx context.Context, id, text string, method models.ExtractionMethod) error {
	d, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	d.Text = text
	d.ExtractionMethod = method
	return nil
}

func (s *fakeStore) UpdateSummary(ctx context.Context, id, summary string) error {
	d, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	d.Summary = summary
	return nil
}

type fakeExtractor struct {
	text  string
	ok    bool
	calls int
}

func (e *fakeExtractor) Extract(ctx context.Context, data []byte) (string, bool) {
	e.calls++
	return e.text, e.ok
}

type fakeRecognizer struct {
	text  string
	calls int
	seen  [][]byte
}

func (r *fakeRecognizer) Recognize(ctx context.Context, data []byte) string {
	r.calls++
	r.seen = append(r.seen, data)
	return r.text
}

type fakeSummarizer struct {
	summary   string
	err       error
	questions []string
	texts     []string
}

func (s *fakeSummarizer) Summarize(ctx context.Context, text, question string) (string, error) {
	s.texts = append(s.texts, text)
	s.questions = append(s.questions, question)
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

type fakeArtifacts struct {
	objects  map[string][]byte
	storeErr error
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{objects: make(map[string][]byte)}
}

func (a *fakeArtifacts) Store(ctx context.Context, reader io.Reader, key string, size int64, contentType string) (string, error) {
	if a.storeErr != nil {
		return "", a.storeErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	a.objects[key] = data
	return "minio://documents/" + key, nil
}

func (a *fakeArtifacts) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := a.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeQueue struct {
	enqueued []*queue.SummaryTask
	statuses map[string]*queue.SummaryStatus
	err      error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{statuses: make(map[string]*queue.SummaryStatus)}
}

func (q *fakeQueue) EnqueueSummary(ctx context.Context, task *queue.SummaryTask) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, task)
	return nil
}

func (q *fakeQueue) SaveStatus(ctx context.Context, status *queue.SummaryStatus) error {
	q.statuses[status.DocumentID] = status
	return nil
}

func (q *fakeQueue) GetStatus(ctx context.Context, documentID string) (*queue.SummaryStatus, error) {
	return q.statuses[documentID], nil
}

type fixture struct {
	store      *fakeStore
	extractor  *fakeExtractor
	recognizer *fakeRecognizer
	summarizer *fakeSummarizer
	artifacts  *fakeArtifacts
	queue      *fakeQueue
	svc        Service
}

func newFixture() *fixture {
	f := &fixture{
		store:      newFakeStore(),
		extractor:  &fakeExtractor{text: "extracted body text", ok: true},
		recognizer: &fakeRecognizer{text: "recognized body text"},
		summarizer: &fakeSummarizer{summary: "generated summary"},
		artifacts:  newFakeArtifacts(),
		queue:      newFakeQueue(),
	}
	f.svc = NewService(f.store, f.extractor, f.recognizer, f.summarizer, f.artifacts, f.queue, logger.NewTestLogger())
	return f
}

func pdfUpload(content string) *Upload {
	data := []byte(content)
	return &Upload{
		FileName:    "filing.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Data:        data,
	}
}

func TestUploadDirectExtraction(t *testing.T) {
	f := newFixture()

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- body"))
	require.NoError(t, err)

	digest := fingerprint.Compute([]byte("%PDF- body"))
	assert.Equal(t, "doc_"+digest, result.DocumentID)
	assert.False(t, result.Duplicate)
	assert.Equal(t, models.ExtractionDirect, result.ExtractionMethod)

	doc, err := f.store.Get(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "extracted body text", doc.Text)
	assert.Equal(t, digest, doc.Fingerprint)
	assert.Equal(t, "filing.pdf", doc.Source.FileName)

	// OCR never ran
	assert.Equal(t, 0, f.recognizer.calls)
}

func TestUploadFallsBackToOCRExactlyOnce(t *testing.T) {
	f := newFixture()
	f.extractor.ok = false
	f.extractor.text = ""

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- scanned"))
	require.NoError(t, err)
	assert.Equal(t, models.ExtractionOCR, result.ExtractionMethod)
	assert.Equal(t, 1, f.recognizer.calls)

	doc, _ := f.store.Get(context.Background(), result.DocumentID)
	assert.Equal(t, "recognized body text", doc.Text)
}

func TestUploadStoresEmptyTextWhenOCRYieldsNothing(t *testing.T) {
	f := newFixture()
	f.extractor.ok = false
	f.recognizer.text = ""

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- blank scan"))
	require.NoError(t, err)

	// the document is created and referenceable even with no text
	doc, err := f.store.Get(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
	assert.Equal(t, models.ExtractionOCR, doc.ExtractionMethod)
}

func TestUploadDuplicateShortCircuits(t *testing.T) {
	f := newFixture()

	first, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- same bytes"))
	require.NoError(t, err)

	extractions := f.extractor.calls

	second, err := f.svc.UploadPDF(context.Background(), &Upload{
		FileName: "renamed.pdf", // different name, same content
		Size:     int64(len("%PDF- same bytes")),
		Data:     []byte("%PDF- same bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.True(t, second.Duplicate)
	// the duplicate path does no extraction work at all
	assert.Equal(t, extractions, f.extractor.calls)
	assert.Equal(t, 0, f.recognizer.calls)
}

func TestUploadEmptyDataRejected(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UploadPDF(context.Background(), &Upload{FileName: "empty.pdf"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUploadAdoptsWinnerOnCreateRace(t *testing.T) {
	f := newFixture()

	data := []byte("%PDF- contested bytes")
	digest := fingerprint.Compute(data)
	winner := &models.Document{
		ID:               "doc_" + digest,
		Fingerprint:      digest,
		Text:             "winner text",
		ExtractionMethod: models.ExtractionDirect,
	}
	f.store.raceOnCreate = winner

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload(string(data)))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, winner.ID, result.DocumentID)
	assert.Equal(t, models.ExtractionDirect, result.ExtractionMethod)
}

func TestUploadSurvivesArtifactAndQueueOutages(t *testing.T) {
	f := newFixture()
	f.artifacts.storeErr = errors.New("bucket down")
	f.queue.err = errors.New("redis down")

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- resilient"))
	require.NoError(t, err)

	doc, err := f.store.Get(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, doc.LocationURI)
}

func TestUploadEnqueuesFirstSummary(t *testing.T) {
	f := newFixture()

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- fresh"))
	require.NoError(t, err)

	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, result.DocumentID, f.queue.enqueued[0].DocumentID)
}

func TestUpdateSummarySuccess(t *testing.T) {
	f := newFixture()
	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- act"))
	require.NoError(t, err)

	doc, err := f.svc.UpdateSummary(context.Background(), result.DocumentID, "which services?")
	require.NoError(t, err)
	assert.Equal(t, "generated summary", doc.Summary)

	// summary generated from exactly the stored text
	require.Len(t, f.summarizer.texts, 1)
	assert.Equal(t, "extracted body text", f.summarizer.texts[0])
	assert.Equal(t, "which services?", f.summarizer.questions[0])

	stored, _ := f.store.Get(context.Background(), result.DocumentID)
	assert.Equal(t, "generated summary", stored.Summary)
}

func TestUpdateSummaryUnknownDocument(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateSummary(context.Background(), "doc_missing", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateSummaryFailureIsNonDestructive(t *testing.T) {
	f := newFixture()
	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- act"))
	require.NoError(t, err)

	// first summary succeeds
	_, err = f.svc.UpdateSummary(context.Background(), result.DocumentID, "")
	require.NoError(t, err)

	// second attempt fails; nothing persisted changes
	f.summarizer.err = fmt.Errorf("%w: model overloaded", models.ErrSummarizationUnavailable)

	_, err = f.svc.UpdateSummary(context.Background(), result.DocumentID, "")
	assert.ErrorIs(t, err, models.ErrSummarizationUnavailable)

	stored, _ := f.store.Get(context.Background(), result.DocumentID)
	assert.Equal(t, "extracted body text", stored.Text)
	assert.Equal(t, "generated summary", stored.Summary)
}

func TestUpdateSummaryReRecognizesStoredArtifact(t *testing.T) {
	f := newFixture()
	f.extractor.ok = false
	f.recognizer.text = "" // first OCR pass yields nothing

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- bad scan"))
	require.NoError(t, err)

	// the OCR backend got better since ingestion
	f.recognizer.text = "recovered on retry"

	doc, err := f.svc.UpdateSummary(context.Background(), result.DocumentID, "")
	require.NoError(t, err)
	assert.Equal(t, "recovered on retry", doc.Text)
	assert.Equal(t, "generated summary", doc.Summary)

	// the re-OCR ran over the original stored bytes
	require.Equal(t, 2, f.recognizer.calls)
	assert.Equal(t, []byte("%PDF- bad scan"), f.recognizer.seen[1])

	stored, _ := f.store.Get(context.Background(), result.DocumentID)
	assert.Equal(t, "recovered on retry", stored.Text)
	assert.Equal(t, models.ExtractionOCR, stored.ExtractionMethod)
}

func TestUpdateSummaryNoTextNoArtifact(t *testing.T) {
	f := newFixture()
	f.extractor.ok = false
	f.recognizer.text = ""
	f.artifacts.storeErr = errors.New("bucket down") // nothing archived

	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- lost"))
	require.NoError(t, err)

	_, err = f.svc.UpdateSummary(context.Background(), result.DocumentID, "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateSummaryWithFileOverwritesText(t *testing.T) {
	f := newFixture()
	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- original"))
	require.NoError(t, err)

	before, _ := f.store.Get(context.Background(), result.DocumentID)

	f.recognizer.text = "rescanned text"
	doc, err := f.svc.UpdateSummaryWithFile(context.Background(), result.DocumentID, pdfUpload("%PDF- rescan"))
	require.NoError(t, err)

	// same identity, new text
	assert.Equal(t, before.ID, doc.ID)
	assert.Equal(t, before.Fingerprint, doc.Fingerprint)
	assert.Equal(t, "rescanned text", doc.Text)
	assert.Equal(t, models.ExtractionOCR, doc.ExtractionMethod)

	stored, _ := f.store.Get(context.Background(), result.DocumentID)
	assert.Equal(t, before.Fingerprint, stored.Fingerprint)
	assert.Equal(t, "rescanned text", stored.Text)
}

func TestUpdateSummaryWithFileEmptyOCRKeepsPriorText(t *testing.T) {
	f := newFixture()
	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- original"))
	require.NoError(t, err)

	f.recognizer.text = ""
	_, err = f.svc.UpdateSummaryWithFile(context.Background(), result.DocumentID, pdfUpload("%PDF- blank"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// failed OCR never erases stored text
	stored, _ := f.store.Get(context.Background(), result.DocumentID)
	assert.Equal(t, "extracted body text", stored.Text)
}

func TestUpdateSummaryWithFileUnknownDocument(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateSummaryWithFile(context.Background(), "doc_missing", pdfUpload("%PDF- x"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetDocumentPassthrough(t *testing.T) {
	f := newFixture()
	result, err := f.svc.UploadPDF(context.Background(), pdfUpload("%PDF- read me"))
	require.NoError(t, err)

	doc, err := f.svc.GetDocument(context.Background(), result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, result.DocumentID, doc.ID)

	_, err = f.svc.GetDocument(context.Background(), "doc_missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSummaryStatusWithoutQueue(t *testing.T) {
	f := newFixture()
	svc := NewService(f.store, f.extractor, f.recognizer, f.summarizer, f.artifacts, nil, logger.NewTestLogger())

	status, err := svc.SummaryStatus(context.Background(), "doc_x")
	assert.NoError(t, err)
	assert.Nil(t, status)
}

func TestArtifactStoredUnderFingerprintKey(t *testing.T) {
	f := newFixture()

	data := []byte("%PDF- archived")
	result, err := f.svc.UploadPDF(context.Background(), pdfUpload(string(data)))
	require.NoError(t, err)

	digest := fingerprint.Compute(data)
	assert.Equal(t, data, f.artifacts.objects[storage.ArtifactKey(digest)])

	doc, _ := f.store.Get(context.Background(), result.DocumentID)
	assert.Equal(t, "minio://documents/"+storage.ArtifactKey(digest), doc.LocationURI)
}
