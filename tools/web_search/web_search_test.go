package web_search

import (
	"context"
	"testing"

	"github.com/wanirfan/atlast/tools/web_search/models"
)

// fakeSearcher records the query it was asked to discover
type fakeSearcher struct {
	query   string
	k       int
	results []models.Result
}

func (f *fakeSearcher) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	f.query = q
	f.k = k
	return f.results, nil
}

func TestTextSearchSiteScopePrefixesQuery(t *testing.T) {
	fake := &fakeSearcher{results: []models.Result{{Title: "Motor Plus", URL: "https://etiqa.com.my/motor", Snippet: "coverage details"}}}
	ts := TextSearch{WS: fake, K: 3, Site: "etiqa.com.my"}

	out, err := ts.Search(context.Background(), "motor coverage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.query != "site:etiqa.com.my motor coverage" {
		t.Fatalf("site scope not applied: %q", fake.query)
	}
	if fake.k != 3 {
		t.Fatalf("wrong result count requested: %d", fake.k)
	}
	if out != "Motor Plus: coverage details (https://etiqa.com.my/motor)" {
		t.Fatalf("unexpected rendering: %q", out)
	}
}

func TestTextSearchWithoutSitePassesQueryThrough(t *testing.T) {
	fake := &fakeSearcher{}
	ts := TextSearch{WS: fake}

	out, err := ts.Search(context.Background(), "weather today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.query != "weather today" {
		t.Fatalf("query altered: %q", fake.query)
	}
	if fake.k != 5 {
		t.Fatalf("default k not applied: %d", fake.k)
	}
	if out != "No results found." {
		t.Fatalf("empty results not rendered as sentinel: %q", out)
	}
}
