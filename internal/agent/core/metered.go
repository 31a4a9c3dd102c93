package core

import (
	"context"

	"github.com/wanirfan/atlast/internal/agent/telemetry"
)

// MeteredProvider wraps a provider and records request counts, token
// usage and cost for every gateway call
type MeteredProvider struct {
	inner LLMProvider
	tele  *telemetry.Telemetry
}

// NewMeteredProvider wraps inner. A nil telemetry passes calls through
// unrecorded.
func NewMeteredProvider(inner LLMProvider, tele *telemetry.Telemetry) *MeteredProvider {
	return &MeteredProvider{inner: inner, tele: tele}
}

func (m *MeteredProvider) record(model string, inputTokens, outputTokens int64, failed bool) {
	if m.tele == nil {
		return
	}
	cost := m.inner.CalculateCost(inputTokens, outputTokens, model)
	m.tele.RecordLLMUsage(model, inputTokens, outputTokens, cost, failed)
}

func (m *MeteredProvider) Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error) {
	out, inTok, outTok, err := m.inner.GenerateWithTokens(ctx, prompt, model, options)
	m.record(model, inTok, outTok, err != nil)
	return out, err
}

func (m *MeteredProvider) GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error) {
	out, inTok, outTok, err := m.inner.GenerateWithTokens(ctx, prompt, model, options)
	m.record(model, inTok, outTok, err != nil)
	return out, inTok, outTok, err
}

func (m *MeteredProvider) GenerateWithImage(ctx context.Context, prompt string, imageB64 string, model string, options map[string]interface{}) (string, error) {
	out, err := m.inner.GenerateWithImage(ctx, prompt, imageB64, model, options)
	m.record(model, 0, 0, err != nil)
	return out, err
}

func (m *MeteredProvider) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	vec, err := m.inner.Embed(ctx, model, text)
	m.record(model, 0, 0, err != nil)
	return vec, err
}

func (m *MeteredProvider) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	return m.inner.CalculateCost(inputTokens, outputTokens, model)
}

func (m *MeteredProvider) GetModelInfo(model string) (ModelInfo, error) {
	return m.inner.GetModelInfo(model)
}
