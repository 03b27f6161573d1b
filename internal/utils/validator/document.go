// internal/utils/validator/document.go
package validator

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/pkg/logger"
)

// pdfMagic is the signature every PDF starts with.
var pdfMagic = []byte("%PDF-")

// UploadValidator 上传文件验证器
type UploadValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	MaxFileSize int64 // 最大文件大小（字节）
}

func NewUploadValidator(log logger.Logger, cfg *ValidatorConfig) *UploadValidator {
	if cfg == nil {
		cfg = &ValidatorConfig{
			MaxFileSize: 50 * 1024 * 1024, // 50MB
		}
	}
	return &UploadValidator{logger: log, config: cfg}
}

// ValidateUpload checks that the upload is a plausible PDF before it enters
// the pipeline. Every failure wraps models.ErrInvalidInput.
func (v *UploadValidator) ValidateUpload(filename string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", models.ErrInvalidInput)
	}

	if v.config.MaxFileSize > 0 && int64(len(data)) > v.config.MaxFileSize {
		return fmt.Errorf("%w: file exceeds maximum size of %d bytes",
			models.ErrInvalidInput, v.config.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" {
		return fmt.Errorf("%w: only PDF files are accepted, got %q", models.ErrInvalidInput, ext)
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		v.logger.Warn("Upload has .pdf extension but no PDF signature",
			logger.String("filename", filename),
		)
		return fmt.Errorf("%w: file content is not a PDF", models.ErrInvalidInput)
	}

	return nil
}
