// Package describe turns figure images into natural-language descriptions
// through an Azure OpenAI vision deployment.
package describe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultMaxTokens = 2000

	systemPrompt = "You are a helpful assistant."
)

// Config holds the Azure OpenAI connection settings for a Describer.
type Config struct {
	// BaseURL is the Azure OpenAI resource endpoint.
	BaseURL string

	// Key authenticates requests against the resource.
	Key string

	// Deployment names the vision-capable model deployment.
	Deployment string

	// APIVersion selects the Azure OpenAI REST API version.
	APIVersion string

	// MaxTokens caps the completion length. Defaults to 2000.
	MaxTokens int
}

// Describer asks a vision model to describe figure images.
type Describer struct {
	llm       llms.Model
	maxTokens int
}

// New creates a Describer backed by an Azure OpenAI deployment.
func New(cfg Config) (*Describer, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("empty vision base URL")
	}
	if cfg.Key == "" {
		return nil, errors.New("empty vision key")
	}
	if cfg.Deployment == "" {
		return nil, errors.New("empty vision deployment")
	}
	if cfg.APIVersion == "" {
		return nil, errors.New("empty vision API version")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	llm, err := openai.New(
		openai.WithToken(cfg.Key),
		openai.WithModel(cfg.Deployment),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithAPIVersion(cfg.APIVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}

	return &Describer{llm: llm, maxTokens: maxTokens}, nil
}

// Describe reads the image at path back from disk and returns the model's
// description of it. A non-empty caption from the surrounding document is
// folded into the prompt.
func (d *Describer) Describe(ctx context.Context, imagePath, caption string) (string, error) {
	dataURL, err := ImageDataURL(imagePath)
	if err != nil {
		return "", err
	}

	completion, err := d.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(describePrompt(caption)),
				llms.ImageURLPart(dataURL),
			},
		},
	}, llms.WithMaxTokens(d.maxTokens))
	if err != nil {
		return "", fmt.Errorf("generating description: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("vision model returned no choices")
	}
	return completion.Choices[0].Content, nil
}

func describePrompt(caption string) string {
	if caption != "" {
		return fmt.Sprintf("Describe this image (note: it has image caption: %s):", caption)
	}
	return "Describe this image:"
}

// ImageDataURL encodes the file at path as a base64 data URL. The MIME
// type is guessed from the file extension and falls back to
// application/octet-stream.
func ImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
