package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/pkg/logger"
)

func newTestValidator(maxSize int64) *UploadValidator {
	return NewUploadValidator(logger.NewTestLogger(), &ValidatorConfig{MaxFileSize: maxSize})
}

func TestValidateUploadAcceptsPDF(t *testing.T) {
	v := newTestValidator(0)
	assert.NoError(t, v.ValidateUpload("act.pdf", []byte("%PDF-1.7\ncontent")))
	assert.NoError(t, v.ValidateUpload("ACT.PDF", []byte("%PDF-1.4")))
}

func TestValidateUploadRejectsEmpty(t *testing.T) {
	v := newTestValidator(0)
	assert.ErrorIs(t, v.ValidateUpload("act.pdf", nil), models.ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateUpload("act.pdf", []byte{}), models.ErrInvalidInput)
}

func TestValidateUploadRejectsWrongExtension(t *testing.T) {
	v := newTestValidator(0)
	assert.ErrorIs(t, v.ValidateUpload("act.docx", []byte("%PDF-1.7")), models.ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateUpload("act", []byte("%PDF-1.7")), models.ErrInvalidInput)
}

func TestValidateUploadRejectsWrongMagic(t *testing.T) {
	v := newTestValidator(0)
	err := v.ValidateUpload("act.pdf", []byte("PK\x03\x04 actually a zip"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestValidateUploadEnforcesSizeCap(t *testing.T) {
	v := newTestValidator(10)
	assert.ErrorIs(t, v.ValidateUpload("act.pdf", []byte("%PDF-1.7 too large")), models.ErrInvalidInput)
	assert.NoError(t, v.ValidateUpload("act.pdf", []byte("%PDF-1.7")))
}
