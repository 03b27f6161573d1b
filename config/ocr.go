package config

import (
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ocrOnce   sync.Once
	ocrConfig *OCRConfig
)

// OCREngine selects the recognition backend.
type OCREngine string

const (
	EngineTesseract OCREngine = "tesseract"
	EngineTextract  OCREngine = "textract"
)

// OCRConfig tunes the fallback recognition stage. Env vars win over the
// optional yaml file, which wins over defaults.
type OCRConfig struct {
	Engine        OCREngine `yaml:"engine"`
	Languages     []string  `yaml:"languages"`
	MaxWorkers    int       `yaml:"maxWorkers"`
	MinConfidence float64   `yaml:"minConfidence"`

	// Tesseract-specific preprocessing knobs.
	ContrastBoost   float64 `yaml:"contrastBoost"`
	SharpenStrength float64 `yaml:"sharpenStrength"`

	// Textract credentials come from the AWS env vars.
	AWSRegion    string `yaml:"-"`
	AWSAccessKey string `yaml:"-"`
	AWSSecretKey string `yaml:"-"`
}

func GetOCRConfig() *OCRConfig {
	ocrOnce.Do(func() {
		loadEnv()

		ocrConfig = &OCRConfig{
			Engine:          EngineTesseract,
			Languages:       []string{"eng"},
			MaxWorkers:      4,
			MinConfidence:   60.0,
			ContrastBoost:   10,
			SharpenStrength: 0.5,
		}

		// yaml overlay, optional
		path := getEnv("OCR_CONFIG_FILE", "config/ocr.yaml")
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, ocrConfig); err != nil {
				log.Printf("Warning: ignoring malformed OCR config %s: %v", path, err)
			}
		}

		if engine := getEnv("OCR_ENGINE", ""); engine != "" {
			ocrConfig.Engine = OCREngine(engine)
		}
		if langs := getEnv("OCR_LANGUAGES", ""); langs != "" {
			ocrConfig.Languages = strings.Split(langs, "+")
		}

		ocrConfig.AWSRegion = getEnv("AWS_REGION", "us-east-1")
		ocrConfig.AWSAccessKey = getEnv("AWS_ACCESS_KEY", "")
		ocrConfig.AWSSecretKey = getEnv("AWS_SECRET_KEY", "")
	})
	return ocrConfig
}
