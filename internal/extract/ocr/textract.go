package ocr

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/finsight/finserv-docs/config"
	"github.com/finsight/finserv-docs/pkg/logger"
)

// TextractEngine recognizes page images through AWS Textract, for
// deployments without a local Tesseract install.
type TextractEngine struct {
	client        *textract.Client
	logger        logger.Logger
	minConfidence float32
}

func NewTextractEngine(ctx context.Context, cfg *config.OCRConfig, log logger.Logger) (*TextractEngine, error) {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AWSAccessKey,
		cfg.AWSSecretKey,
		"",
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractEngine{
		client:        textract.NewFromConfig(awsCfg),
		logger:        log,
		minConfidence: float32(cfg.MinConfidence),
	}, nil
}

func (e *TextractEngine) Name() string { return "textract" }

func (e *TextractEngine) RecognizePage(ctx context.Context, image []byte) (string, error) {
	result, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			Bytes: image,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	return joinLines(result.Blocks, e.minConfidence), nil
}

func (e *TextractEngine) Close() error { return nil }

// joinLines keeps LINE blocks above the confidence floor, in reading order.
func joinLines(blocks []types.Block, minConfidence float32) string {
	var lines []string
	for _, block := range blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		if block.Confidence != nil && *block.Confidence < minConfidence {
			continue
		}
		lines = append(lines, *block.Text)
	}
	return strings.Join(lines, "\n")
}
