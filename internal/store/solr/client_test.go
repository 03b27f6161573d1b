package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finserv-docs/config"
	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.SolrConfig{BaseURL: ts.URL, Collection: "finserv-docs"}
	return NewClient(cfg, logger.NewTestLogger()), ts
}

func sampleDoc() *models.Document {
	return &models.Document{
		ID:          "doc_abc123",
		Fingerprint: "abc123",
		Source: models.SourceInfo{
			FileName:    "act.pdf",
			ContentType: "application/pdf",
			Size:        2048,
			UploadedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Text:             "full act text",
		ExtractionMethod: models.ExtractionDirect,
	}
}

func TestFindByFingerprintHit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/finserv-docs/select", r.URL.Path)
		assert.Equal(t, `fingerprint_s:"abc123"`, r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("rows"))

		fmt.Fprint(w, `{"response":{"numFound":1,"docs":[
			{"id":"doc_abc123","fingerprint_s":"abc123","text_t":"full act text","extraction_method_s":"direct"}
		]}}`)
	})

	doc, err := client.FindByFingerprint(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "doc_abc123", doc.ID)
	assert.Equal(t, "abc123", doc.Fingerprint)
	assert.Equal(t, models.ExtractionDirect, doc.ExtractionMethod)
}

func TestFindByFingerprintMiss(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"numFound":0,"docs":[]}}`)
	})

	doc, err := client.FindByFingerprint(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestCreateSendsVersionGuard(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/finserv-docs/update", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("commit"))

		var records []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&records))
		require.Len(t, records, 1)
		assert.Equal(t, "doc_abc123", records[0]["id"])
		// -1 asserts the document must not already exist
		assert.Equal(t, float64(-1), records[0]["_version_"])

		fmt.Fprint(w, `{"responseHeader":{"status":0}}`)
	})

	id, err := client.Create(context.Background(), sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, "doc_abc123", id)
}

func TestCreateConflictIsDuplicate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":{"msg":"version conflict","code":409}}`)
	})

	_, err := client.Create(context.Background(), sampleDoc())
	assert.ErrorIs(t, err, models.ErrDuplicateFingerprint)
}

func TestGetHit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/finserv-docs/get", r.URL.Path)
		assert.Equal(t, "doc_abc123", r.URL.Query().Get("id"))

		fmt.Fprint(w, `{"doc":{"id":"doc_abc123","fingerprint_s":"abc123",
			"file_name_s":"act.pdf","file_size_l":2048,
			"text_t":"full act text","summary_t":"the summary",
			"extraction_method_s":"ocr"}}`)
	})

	doc, err := client.Get(context.Background(), "doc_abc123")
	require.NoError(t, err)
	assert.Equal(t, "act.pdf", doc.Source.FileName)
	assert.Equal(t, int64(2048), doc.Source.Size)
	assert.Equal(t, "the summary", doc.Summary)
	assert.Equal(t, models.ExtractionOCR, doc.ExtractionMethod)
}

func TestGetMiss(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"doc":null}`)
	})

	_, err := client.Get(context.Background(), "doc_missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateSummaryIsAtomic(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var records []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&records))
		require.Len(t, records, 1)

		// partial update: only id plus {"set": ...} fields, never the
		// whole document
		assert.Equal(t, "doc_abc123", records[0]["id"])
		assert.Equal(t, map[string]interface{}{"set": "new summary"}, records[0]["summary_t"])
		assert.NotContains(t, records[0], "text_t")

		fmt.Fprint(w, `{"responseHeader":{"status":0}}`)
	})

	err := client.UpdateSummary(context.Background(), "doc_abc123", "new summary")
	assert.NoError(t, err)
}

func TestUpdateTextSetsMethod(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var records []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&records))
		require.Len(t, records, 1)
		assert.Equal(t, map[string]interface{}{"set": "ocr text"}, records[0]["text_t"])
		assert.Equal(t, map[string]interface{}{"set": "ocr"}, records[0]["extraction_method_s"])

		fmt.Fprint(w, `{"responseHeader":{"status":0}}`)
	})

	err := client.UpdateText(context.Background(), "doc_abc123", "ocr text", models.ExtractionOCR)
	assert.NoError(t, err)
}

func TestServerErrorsMapToStoreUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FindByFingerprint(context.Background(), "x")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = client.Get(context.Background(), "doc_x")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	err = client.UpdateSummary(context.Background(), "doc_x", "s")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestConnectionFailureMapsToStoreUnavailable(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ts.Close()

	_, err := client.FindByFingerprint(context.Background(), "x")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
