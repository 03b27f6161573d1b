package models

import (
    "time"
)

// ExtractionMethod records how a document's text was recovered.
type ExtractionMethod string

const (
    ExtractionDirect ExtractionMethod = "direct"
    ExtractionOCR    ExtractionMethod = "ocr"
)

// SourceInfo 上传时的文件元数据
type SourceInfo struct {
    FileName    string    `json:"fileName"`
    ContentType string    `json:"contentType"`
    Size        int64     `json:"size"`
    UploadedAt  time.Time `json:"uploadedAt"`
}

// Document is the persisted unit combining identity, fingerprint, source
// metadata, extracted text and the AI summary. The id is assigned at first
// successful ingestion and never changes; the fingerprint is the SHA-256
// digest of the raw uploaded bytes and is unique across documents.
type Document struct {
    ID               string           `json:"id"`
    Fingerprint      string           `json:"fingerprint"`
    Source           SourceInfo       `json:"source"`
    Text             string           `json:"text"`
    Summary          string           `json:"summary,omitempty"`
    LocationURI      string           `json:"locationUri,omitempty"`
    ExtractionMethod ExtractionMethod `json:"extractionMethod"`
}

// HasSummary reports whether a non-blank summary has been generated.
func (d *Document) HasSummary() bool {
    for _, r := range d.Summary {
        if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
            return true
        }
    }
    return false
}
