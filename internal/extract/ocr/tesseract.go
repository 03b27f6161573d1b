package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/finsight/finserv-docs/config"
	"github.com/finsight/finserv-docs/pkg/logger"
)

// TesseractEngine recognizes page images with a local Tesseract install.
// gosseract clients are not goroutine-safe, so each page gets its own.
type TesseractEngine struct {
	cfg    *config.OCRConfig
	logger logger.Logger
}

func NewTesseractEngine(cfg *config.OCRConfig, log logger.Logger) *TesseractEngine {
	return &TesseractEngine{cfg: cfg, logger: log}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) RecognizePage(ctx context.Context, image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(e.cfg.Languages, "+")); err != nil {
		return "", err
	}
	// single uniform block of text, the layout scanned pages usually have
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", err
	}

	prepared := preprocess(image, e.cfg)
	if err := client.SetImageFromBytes(prepared); err != nil {
		return "", err
	}

	return client.Text()
}

func (e *TesseractEngine) Close() error { return nil }
