package retriever

import (
	"context"
	"sort"
)

const rrfK = 60 // reciprocal-rank-fusion constant

// Hybrid fuses vector and keyword rankings with reciprocal rank
// fusion. A failure on either side degrades to the other ranking
// instead of failing the search.
type Hybrid struct {
	Vector  Retriever
	Keyword Retriever
}

// Search queries both sides and fuses the rankings
func (h *Hybrid) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	if k <= 0 {
		k = 5
	}
	vec, verr := h.Vector.Search(ctx, query, k)
	kw, kerr := h.Keyword.Search(ctx, query, k)
	if verr != nil && kerr != nil {
		return nil, verr
	}
	if verr != nil {
		return kw, nil
	}
	if kerr != nil {
		return vec, nil
	}
	return FuseRRF(vec, kw, k), nil
}

// FuseRRF merges two rankings by reciprocal rank fusion
func FuseRRF(a, b []Passage, k int) []Passage {
	type agg struct {
		item  Passage
		score float64
	}
	m := map[string]*agg{}
	add := func(list []Passage) {
		for _, p := range list {
			x, ok := m[p.ID]
			if !ok {
				m[p.ID] = &agg{item: p}
				x = m[p.ID]
			}
			x.score += 1.0 / float64(rrfK+p.Rank)
		}
	}
	add(a)
	add(b)

	items := make([]*agg, 0, len(m))
	for _, v := range m {
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].score > items[j].score })

	n := k
	if len(items) < n {
		n = len(items)
	}
	out := make([]Passage, 0, n)
	for i := 0; i < n; i++ {
		p := items[i].item
		p.Score = items[i].score
		p.Rank = i + 1
		out = append(out, p)
	}
	return out
}
