package solr

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/finsight/finserv-docs/config"
	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/internal/store"
	"github.com/finsight/finserv-docs/pkg/logger"
)

// Client is the Solr-backed DocumentStore. Documents live in a single
// collection; field names use Solr's dynamic-field suffixes so no managed
// schema changes are needed.
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

var _ store.DocumentStore = (*Client)(nil)

func NewClient(cfg *config.SolrConfig, log logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.CollectionURL()).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		logger: log,
	}
}

// solrDocument is the index-side record shape.
type solrDocument struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint_s,omitempty"`
	FileName    string    `json:"file_name_s,omitempty"`
	ContentType string    `json:"content_type_s,omitempty"`
	FileSize    int64     `json:"file_size_l,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at_dt,omitempty"`
	Text        string    `json:"text_t,omitempty"`
	Summary     string    `json:"summary_t,omitempty"`
	LocationURI string    `json:"location_uri_s,omitempty"`
	Method      string    `json:"extraction_method_s,omitempty"`

	// Version carries Solr's optimistic-concurrency token. -1 asserts the
	// document must not already exist, which is what turns a create race
	// into a clean conflict instead of a silent overwrite.
	Version int64 `json:"_version_,omitempty"`
}

type selectResponse struct {
	Response struct {
		NumFound int            `json:"numFound"`
		Docs     []solrDocument `json:"docs"`
	} `json:"response"`
}

type getResponse struct {
	Doc *solrDocument `json:"doc"`
}

func (c *Client) FindByFingerprint(ctx context.Context, digest string) (*models.Document, error) {
	var out selectResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", fmt.Sprintf("fingerprint_s:%q", digest)).
		SetQueryParam("rows", "1").
		SetResult(&out).
		Get("/select")
	if err != nil {
		return nil, c.unavailable("select", err)
	}
	if resp.IsError() {
		return nil, c.unavailableStatus("select", resp)
	}

	if len(out.Response.Docs) == 0 {
		return nil, nil
	}
	return fromSolr(&out.Response.Docs[0]), nil
}

func (c *Client) Create(ctx context.Context, doc *models.Document) (string, error) {
	record := toSolr(doc)
	record.Version = -1

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("commit", "true").
		SetBody([]solrDocument{*record}).
		Post("/update")
	if err != nil {
		return "", c.unavailable("create", err)
	}
	if resp.StatusCode() == http.StatusConflict {
		return "", fmt.Errorf("%w: %s", models.ErrDuplicateFingerprint, doc.Fingerprint)
	}
	if resp.IsError() {
		return "", c.unavailableStatus("create", resp)
	}

	return doc.ID, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.Document, error) {
	var out getResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", id).
		SetResult(&out).
		Get("/get")
	if err != nil {
		return nil, c.unavailable("get", err)
	}
	if resp.IsError() {
		return nil, c.unavailableStatus("get", resp)
	}

	if out.Doc == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return fromSolr(out.Doc), nil
}

func (c *Client) UpdateText(ctx context.Context, id, text string, method models.ExtractionMethod) error {
	return c.atomicUpdate(ctx, id, map[string]interface{}{
		"text_t":              map[string]string{"set": text},
		"extraction_method_s": map[string]string{"set": string(method)},
	})
}

func (c *Client) UpdateSummary(ctx context.Context, id, summary string) error {
	return c.atomicUpdate(ctx, id, map[string]interface{}{
		"summary_t": map[string]string{"set": summary},
	})
}

// atomicUpdate issues a Solr partial update: only the named fields change,
// everything else on the document stays as stored.
func (c *Client) atomicUpdate(ctx context.Context, id string, fields map[string]interface{}) error {
	body := map[string]interface{}{"id": id}
	for k, v := range fields {
		body[k] = v
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("commit", "true").
		SetBody([]map[string]interface{}{body}).
		Post("/update")
	if err != nil {
		return c.unavailable("update", err)
	}
	if resp.IsError() {
		return c.unavailableStatus("update", resp)
	}
	return nil
}

func (c *Client) unavailable(op string, err error) error {
	c.logger.Error("Solr request failed",
		logger.String("op", op),
		logger.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, op, err)
}

func (c *Client) unavailableStatus(op string, resp *resty.Response) error {
	c.logger.Error("Solr returned an error status",
		logger.String("op", op),
		logger.Int("status", resp.StatusCode()),
	)
	return fmt.Errorf("%w: %s: status %d", models.ErrStoreUnavailable, op, resp.StatusCode())
}

func toSolr(d *models.Document) *solrDocument {
	return &solrDocument{
		ID:          d.ID,
		Fingerprint: d.Fingerprint,
		FileName:    d.Source.FileName,
		ContentType: d.Source.ContentType,
		FileSize:    d.Source.Size,
		UploadedAt:  d.Source.UploadedAt,
		Text:        d.Text,
		Summary:     d.Summary,
		LocationURI: d.LocationURI,
		Method:      string(d.ExtractionMethod),
	}
}

func fromSolr(s *solrDocument) *models.Document {
	return &models.Document{
		ID:          s.ID,
		Fingerprint: s.Fingerprint,
		Source: models.SourceInfo{
			FileName:    s.FileName,
			ContentType: s.ContentType,
			Size:        s.FileSize,
			UploadedAt:  s.UploadedAt,
		},
		Text:             s.Text,
		Summary:          s.Summary,
		LocationURI:      s.LocationURI,
		ExtractionMethod: models.ExtractionMethod(s.Method),
	}
}
