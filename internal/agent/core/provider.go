package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/wanirfan/atlast/internal/agent/config"
)

// NewLLMProvider creates a new LLM provider based on configuration
func NewLLMProvider(cfg config.LLMConfig) (LLMProvider, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured")
	}

	for _, provider := range cfg.Providers {
		switch provider.Type {
		case "openai":
			return NewOpenAIProvider(provider), nil
		default:
			return nil, fmt.Errorf("unsupported LLM provider type: %s", provider.Type)
		}
	}

	return nil, fmt.Errorf("no valid LLM providers found")
}

// OpenAIProvider implements LLMProvider against an OpenAI-compatible API
type OpenAIProvider struct {
	config    config.LLMProvider
	models    map[string]ModelInfo
	rawModels map[string]config.LLMModel
	client    *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg config.LLMProvider) *OpenAIProvider {
	provider := &OpenAIProvider{
		config:    cfg,
		models:    make(map[string]ModelInfo),
		rawModels: cfg.Models,
		client:    &http.Client{Timeout: cfg.Timeout},
	}

	for key, model := range cfg.Models {
		provider.models[key] = ModelInfo{
			Name:            model.Name,
			Provider:        "openai",
			MaxTokens:       model.MaxTokens,
			CostPer1KInput:  model.CostPer1K,
			CostPer1KOutput: model.CostPer1KOutput,
			Description:     fmt.Sprintf("OpenAI %s model", model.Name),
		}
	}

	return provider
}

func (p *OpenAIProvider) apiKey() (string, error) {
	key := p.config.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}
	return key, nil
}

func (p *OpenAIProvider) baseURL() string {
	if p.config.BaseURL != "" {
		return p.config.BaseURL
	}
	return "https://api.openai.com/v1"
}

// resolveModel maps a routing name to the API model name plus limits.
// Unlisted models pass through with zero-value limits.
func (p *OpenAIProvider) resolveModel(model string) (string, float64, int) {
	m, ok := p.rawModels[model]
	if !ok {
		return model, 0, 0
	}
	apiModel := m.APIName
	if apiModel == "" {
		apiModel = m.Name
	}
	return apiModel, m.Temperature, m.MaxTokens
}

type chatContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type chatMsg struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatReq struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *OpenAIProvider) chat(ctx context.Context, req chatReq) (chatResp, error) {
	apiKey, err := p.apiKey()
	if err != nil {
		return chatResp{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return chatResp{}, fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL()+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return chatResp{}, fmt.Errorf("request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return chatResp{}, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return chatResp{}, fmt.Errorf("OpenAI status %d", resp.StatusCode)
	}

	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chatResp{}, fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return chatResp{}, fmt.Errorf("no choices")
	}
	return out, nil
}

// Generate generates text for a single prompt
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error) {
	resp, _, _, err := p.GenerateWithTokens(ctx, prompt, model, options)
	return resp, err
}

// GenerateWithTokens generates text and returns token usage
func (p *OpenAIProvider) GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error) {
	apiModel, temperature, maxTokens := p.resolveModel(model)
	if t, ok := options["temperature"].(float64); ok {
		temperature = t
	}
	if mt, ok := options["max_tokens"].(int); ok {
		maxTokens = mt
	}

	out, err := p.chat(ctx, chatReq{
		Model:       apiModel,
		Messages:    []chatMsg{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", 0, 0, err
	}
	return out.Choices[0].Message.Content, int64(out.Usage.PromptTokens), int64(out.Usage.CompletionTokens), nil
}

// GenerateWithImage generates text for a prompt plus a base64 JPEG/PNG
// attachment, using the multi-part message content form
func (p *OpenAIProvider) GenerateWithImage(ctx context.Context, prompt string, imageB64 string, model string, options map[string]interface{}) (string, error) {
	apiModel, temperature, maxTokens := p.resolveModel(model)
	if t, ok := options["temperature"].(float64); ok {
		temperature = t
	}
	if mt, ok := options["max_tokens"].(int); ok {
		maxTokens = mt
	}

	img := &struct {
		URL string `json:"url"`
	}{URL: "data:image/jpeg;base64," + imageB64}
	parts := []chatContentPart{
		{Type: "text", Text: prompt},
		{Type: "image_url", ImageURL: img},
	}

	out, err := p.chat(ctx, chatReq{
		Model:       apiModel,
		Messages:    []chatMsg{{Role: "user", Content: parts}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return out.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for a text
func (p *OpenAIProvider) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	apiKey, err := p.apiKey()
	if err != nil {
		return nil, err
	}
	apiModel, _, _ := p.resolveModel(model)

	body, err := json.Marshal(map[string]interface{}{
		"model": apiModel,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL()+"/embeddings", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI status %d", resp.StatusCode)
	}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("no embedding data")
	}
	return out.Data[0].Embedding, nil
}

// GetAvailableModels returns configured models
func (p *OpenAIProvider) GetAvailableModels() []string {
	var models []string
	for name := range p.models {
		models = append(models, name)
	}
	return models
}

// GetModelInfo returns information about a specific model
func (p *OpenAIProvider) GetModelInfo(model string) (ModelInfo, error) {
	info, exists := p.models[model]
	if !exists {
		return ModelInfo{}, fmt.Errorf("model not found: %s", model)
	}
	return info, nil
}

// CalculateCost calculates the cost for a given number of tokens
func (p *OpenAIProvider) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	info, err := p.GetModelInfo(model)
	if err != nil {
		return 0.0
	}

	inputCost := float64(inputTokens) / 1000.0 * info.CostPer1KInput
	outputCost := float64(outputTokens) / 1000.0 * info.CostPer1KOutput
	return inputCost + outputCost
}
