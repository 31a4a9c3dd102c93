package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Domain identifies one deployed knowledge domain
type Domain string

const (
	DomainMedical   Domain = "medical"
	DomainIslamic   Domain = "islamic"
	DomainInsurance Domain = "insurance"
)

// ParseDomain maps a request path segment to a known domain
func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainMedical, DomainIslamic, DomainInsurance:
		return Domain(s), nil
	}
	return "", fmt.Errorf("unknown domain: %s", s)
}

// Message is a single turn of conversation history
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// RetrievedPassage is one chunk returned by the retriever
type RetrievedPassage struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ToolInvocation records one tool call made during an episode
type ToolInvocation struct {
	Tool        string `json:"tool"`
	Input       string `json:"input"`
	Observation string `json:"observation"`
	Err         string `json:"error,omitempty"`
}

// ReasoningStep is one think/act/observe cycle of the loop
type ReasoningStep struct {
	Thought     string `json:"thought"`
	Action      string `json:"action,omitempty"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation,omitempty"`
}

// ReasoningTrace is the full record of one episode's loop
type ReasoningTrace struct {
	Steps       []ReasoningStep  `json:"steps"`
	Invocations []ToolInvocation `json:"invocations"`
	Iterations  int              `json:"iterations"`
	CapHit      bool             `json:"cap_hit"`
}

// Thoughts returns the thought lines in order, for the result payload
func (t ReasoningTrace) Thoughts() []string {
	out := make([]string, 0, len(t.Steps))
	for _, s := range t.Steps {
		if s.Thought != "" {
			out = append(out, s.Thought)
		}
	}
	return out
}

// Validation is the validator's verdict on an answer
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// AnswerResult is the stable result shape returned for every episode
type AnswerResult struct {
	Answer     string     `json:"answer"`
	Context    string     `json:"context"`
	Validation Validation `json:"validation"`
	Source     string     `json:"source"`
	Thoughts   []string   `json:"thoughts"`
}

// AskRequest is one question against a domain, optionally with an
// image or a document attached
type AskRequest struct {
	Domain   Domain    `json:"domain"`
	Query    string    `json:"query"`
	History  []Message `json:"history,omitempty"`
	ImageB64 string    `json:"image_base64,omitempty"`
	Document string    `json:"document,omitempty"`
}

// Source labels attached to answers, decided by the attribution fold
const (
	SourceEtiqaDB    = "Etiqa Takaful Database"
	SourceDomainDB   = "Domain Database (RAG)"
	SourceEtiqaWeb   = "Etiqa Website Search"
	SourceGeneralWeb = "General Web Search"
	SourceAgentLogic = "Agent Logic"
	SourceSwarm      = "Medical Swarm"
)

// Tool names registered per domain
const (
	ToolRAG           = "knowledge_base_search"
	ToolEtiqaSearch   = "etiqa_website_search"
	ToolGeneralSearch = "general_web_search"
)

var (
	// ErrDomainNotLoaded means the domain's index failed to open at startup
	ErrDomainNotLoaded = errors.New("domain not loaded")
	// ErrNoInput means the request carried neither query, image nor document
	ErrNoInput = errors.New("no query, image or document provided")
	// ErrDocumentUnsupported means the domain has no document analysis swarm
	ErrDocumentUnsupported = errors.New("document analysis not supported for this domain")
)

// ModelInfo contains information about an LLM model
type ModelInfo struct {
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	MaxTokens       int     `json:"max_tokens"`
	CostPer1KInput  float64 `json:"cost_per_1k_input"`
	CostPer1KOutput float64 `json:"cost_per_1k_output"`
	Description     string  `json:"description"`
}

// LLMProvider is the single gateway to language models
type LLMProvider interface {
	Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error)
	GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error)
	GenerateWithImage(ctx context.Context, prompt string, imageB64 string, model string, options map[string]interface{}) (string, error)
	Embed(ctx context.Context, model string, text string) ([]float32, error)
	CalculateCost(inputTokens, outputTokens int64, model string) float64
	GetModelInfo(model string) (ModelInfo, error)
}

// Retriever searches a domain's prepackaged index. Read-only: repeated
// searches never mutate the index.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]RetrievedPassage, error)
}

// WebSearcher returns a rendered text summary of web results
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// EpisodeResult is what the reasoning loop hands back to the engine
type EpisodeResult struct {
	Answer   string
	Trace    ReasoningTrace
	Duration time.Duration
}
