package core

import (
	"context"
	"fmt"
	"log"
)

const visionPrompt = "Analyze this image and identify the main subject in a single, concise sentence suitable for a search query."

// ImageDescriber turns an attached image into a one-sentence subject
// summary that enriches the user's question. Gateway calls for this
// step retry under the injected backoff policy.
type ImageDescriber struct {
	llm     LLMProvider
	model   string
	backoff Backoff
	logger  *log.Logger
}

// NewImageDescriber creates an image describer
func NewImageDescriber(llm LLMProvider, model string, backoff Backoff, logger *log.Logger) *ImageDescriber {
	if logger == nil {
		logger = log.New(log.Writer(), "[VISION] ", log.LstdFlags)
	}
	return &ImageDescriber{llm: llm, model: model, backoff: backoff, logger: logger}
}

// Describe returns the main subject of a base64-encoded image
func (d *ImageDescriber) Describe(ctx context.Context, imageB64 string) (string, error) {
	var subject string
	err := d.backoff.Retry(ctx, func() error {
		out, err := d.llm.GenerateWithImage(ctx, visionPrompt, imageB64, d.model, map[string]interface{}{"temperature": 0.0})
		if err != nil {
			d.logger.Printf("image summary attempt failed: %v", err)
			return err
		}
		subject = out
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("image summary: %w", err)
	}
	return subject, nil
}

// EnhanceQuery folds the image subject into the user's question
func EnhanceQuery(query, subject string) string {
	if subject == "" {
		return query
	}
	if query == "" {
		return fmt.Sprintf("Tell me about: %s", subject)
	}
	return fmt.Sprintf("%s (the attached image shows: %s)", query, subject)
}
