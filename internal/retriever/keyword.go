package retriever

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve"
)

// KeywordIndex is a mem-only bleve BM25 index rebuilt at startup from
// the passages sidecar file shipped next to the vector collection.
type KeywordIndex struct {
	index bleve.Index
	meta  map[string]Passage
	mu    sync.RWMutex
}

// NewKeywordIndex creates an empty mem-only index
func NewKeywordIndex() (*KeywordIndex, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create mem index: %w", err)
	}
	return &KeywordIndex{index: index, meta: make(map[string]Passage)}, nil
}

// LoadKeywordIndex rebuilds the index from a JSONL passages file,
// one {"id":...,"text":...,"metadata":{...}} object per line.
func LoadKeywordIndex(path string) (*KeywordIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open passages file: %w", err)
	}
	defer f.Close()

	ki, err := NewKeywordIndex()
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var p Passage
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			return nil, fmt.Errorf("passages file line %d: %w", line, err)
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("line-%d", line)
		}
		if err := ki.Add(p); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read passages file: %w", err)
	}
	return ki, nil
}

// Add indexes one passage
func (ki *KeywordIndex) Add(p Passage) error {
	ki.mu.Lock()
	defer ki.mu.Unlock()
	ki.meta[p.ID] = p
	return ki.index.Index(p.ID, map[string]string{"text": p.Text})
}

// Count returns the number of indexed passages
func (ki *KeywordIndex) Count() int {
	ki.mu.RLock()
	defer ki.mu.RUnlock()
	return len(ki.meta)
}

// Search runs a BM25 query string search and returns the top-k passages
func (ki *KeywordIndex) Search(ctx context.Context, q string, k int) ([]Passage, error) {
	if k <= 0 {
		k = 5
	}
	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k*3, 0, false)
	res, err := ki.index.SearchInContext(ctx, searchReq)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	ki.mu.RLock()
	defer ki.mu.RUnlock()
	var out []Passage
	for _, hit := range res.Hits {
		p, ok := ki.meta[hit.ID]
		if !ok {
			continue
		}
		p.Score = hit.Score
		p.Rank = len(out) + 1
		out = append(out, p)
		if len(out) >= k {
			break
		}
	}
	return out, nil
}
