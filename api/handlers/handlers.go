package handlers

import (
	"github.com/finsight/finserv-docs/internal/service/document"
	"github.com/finsight/finserv-docs/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
}

func NewHandlers(
	documentService document.Service,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, logger),
	}
}
