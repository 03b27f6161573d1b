package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/finsight/finserv-docs/pkg/logger"
	"github.com/finsight/finserv-docs/pkg/storage/minio"
	"github.com/finsight/finserv-docs/pkg/storage/s3"
)

// StorageType 存储类型
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

// ArtifactStore keeps the original uploaded PDFs, keyed by fingerprint. The
// returned URI becomes the document's location pointer and lets the
// summary-update path re-fetch the original for OCR when the index holds no
// text.
type ArtifactStore interface {
	// Store writes the artifact and returns its location URI.
	Store(ctx context.Context, reader io.Reader, key string, size int64, contentType string) (string, error)
	// Get streams the artifact back. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ArtifactKey is the canonical object key for a document's original upload.
func ArtifactKey(fingerprint string) string {
	return "documents/" + fingerprint + ".pdf"
}

// NewArtifactStore 创建存储实例的工厂方法
func NewArtifactStore(storageType StorageType, logger logger.Logger) (ArtifactStore, error) {
	switch storageType {
	case StorageTypeS3:
		return s3.NewStorage(logger)
	case StorageTypeMinio:
		return minio.NewStorage(logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
