package ocr

import (
	"context"
	"fmt"

	"github.com/finsight/finserv-docs/config"
	"github.com/finsight/finserv-docs/pkg/logger"
)

// Engine recognizes text on a single page image. Implementations must be
// safe for concurrent page-level calls.
type Engine interface {
	Name() string
	RecognizePage(ctx context.Context, image []byte) (string, error)
	Close() error
}

// NewEngine builds the configured recognition backend.
func NewEngine(ctx context.Context, cfg *config.OCRConfig, log logger.Logger) (Engine, error) {
	switch cfg.Engine {
	case config.EngineTextract:
		return NewTextractEngine(ctx, cfg, log)
	case config.EngineTesseract, "":
		return NewTesseractEngine(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}
