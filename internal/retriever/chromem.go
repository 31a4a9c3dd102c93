package retriever

import (
	"context"
	"fmt"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
)

// VectorConfig describes one domain's persistent vector collection
type VectorConfig struct {
	PersistDir    string
	Collection    string
	MinSimilarity float64
}

// VectorStore is a chromem-go backed retriever over a persistent
// collection. The collection ships prepackaged; Add exists for tests
// and offline tooling, not the serving path.
type VectorStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	config     VectorConfig
}

// OpenVectorStore opens (or creates) a persistent collection. An empty
// PersistDir selects an in-memory DB, used by tests.
func OpenVectorStore(cfg VectorConfig, embed Embedder) (*VectorStore, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name required")
	}

	var db *chromem.DB
	var err error
	if cfg.PersistDir != "" {
		// chromem treats the path as a directory holding one subdir per collection
		persistPath := filepath.Join(cfg.PersistDir, cfg.Collection)
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("open persistent DB: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embed(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", cfg.Collection, err)
	}

	return &VectorStore{db: db, collection: collection, config: cfg}, nil
}

// Count returns the number of indexed passages
func (s *VectorStore) Count() int {
	return s.collection.Count()
}

// Add indexes passages. Used by tests and the offline ingest tooling.
func (s *VectorStore) Add(ctx context.Context, passages []Passage) error {
	for _, p := range passages {
		err := s.collection.AddDocument(ctx, chromem.Document{
			ID:       p.ID,
			Content:  p.Text,
			Metadata: p.Metadata,
		})
		if err != nil {
			return fmt.Errorf("add passage %s: %w", p.ID, err)
		}
	}
	return nil
}

// Search returns the top-k most similar passages for a query
func (s *VectorStore) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	if k <= 0 {
		k = 5
	}
	// chromem rejects nResults above the collection size
	if n := s.collection.Count(); k > n {
		k = n
	}
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	var out []Passage
	for _, r := range results {
		if float64(r.Similarity) < s.config.MinSimilarity {
			continue
		}
		out = append(out, Passage{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: r.Metadata,
			Score:    float64(r.Similarity),
			Rank:     len(out) + 1,
		})
	}
	return out, nil
}
