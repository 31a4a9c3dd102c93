// Package retriever opens the prepackaged per-domain indexes and serves
// similarity search over them. Index construction itself happens
// offline; this package only loads and queries.
package retriever

import "context"

// Passage is one indexed chunk with its ranking info
type Passage struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score,omitempty"`
	Rank     int               `json:"rank,omitempty"`
}

// Retriever searches an index. Implementations are read-only once
// loaded; Search never mutates state.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}

// Embedder produces the embedding for one text
type Embedder func(ctx context.Context, text string) ([]float32, error)
