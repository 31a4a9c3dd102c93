package core

import (
	"context"
	"fmt"
)

// stubLLM replays scripted outputs and records every prompt it saw
type stubLLM struct {
	outputs    []string
	next       int
	prompts    []string
	err        error
	imageCalls int
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.prompts = append(s.prompts, prompt)
	if s.next >= len(s.outputs) {
		return "", fmt.Errorf("stub exhausted after %d outputs", len(s.outputs))
	}
	out := s.outputs[s.next]
	s.next++
	return out, nil
}

func (s *stubLLM) GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error) {
	out, err := s.Generate(ctx, prompt, model, options)
	return out, 10, 10, err
}

func (s *stubLLM) GenerateWithImage(ctx context.Context, prompt string, imageB64 string, model string, options map[string]interface{}) (string, error) {
	s.imageCalls++
	return s.Generate(ctx, prompt, model, options)
}

func (s *stubLLM) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubLLM) CalculateCost(inputTokens, outputTokens int64, model string) float64 { return 0 }

func (s *stubLLM) GetModelInfo(model string) (ModelInfo, error) {
	return ModelInfo{Name: model}, nil
}

// stubRetriever returns a fixed passage list
type stubRetriever struct {
	passages []RetrievedPassage
	err      error
	calls    int
}

func (s *stubRetriever) Search(ctx context.Context, query string, k int) ([]RetrievedPassage, error) {
	s.calls++
	return s.passages, s.err
}

// stubSearcher returns a fixed summary
type stubSearcher struct {
	summary string
	err     error
	calls   int
}

func (s *stubSearcher) Search(ctx context.Context, query string) (string, error) {
	s.calls++
	return s.summary, s.err
}
