package ocr

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"github.com/finsight/finserv-docs/config"
)

// preprocess cleans a page image up before recognition: grayscale, a small
// contrast boost and a sharpen pass. Rasterized scans are frequently low
// contrast and the difference in recognition quality is noticeable. When the
// image cannot be decoded the original bytes pass through untouched, since
// Tesseract reads several formats natively.
func preprocess(data []byte, cfg *config.OCRConfig) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	result := imaging.Grayscale(img)
	if cfg.ContrastBoost != 0 {
		result = imaging.AdjustContrast(result, cfg.ContrastBoost)
	}
	if cfg.SharpenStrength > 0 {
		result = imaging.Sharpen(result, cfg.SharpenStrength)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, result, &jpeg.Options{Quality: 100}); err != nil {
		return data
	}
	return buf.Bytes()
}
