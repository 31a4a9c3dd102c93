package web_search

import (
	"context"
	"fmt"
	"strings"

	"github.com/wanirfan/atlast/tools/web_search/brave"
	"github.com/wanirfan/atlast/tools/web_search/models"
	"github.com/wanirfan/atlast/tools/web_search/serper"
)

// WebSearcher discovers raw web results
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = fmt.Errorf("unsupported provider")

// NewWebSearcher builds the configured provider client
func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// Render flattens results into the compact text block the reasoning
// loop consumes as an observation
func Render(results []models.Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "%s: %s (%s)\n", r.Title, r.Snippet, r.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TextSearch adapts a WebSearcher to the search(query) -> text contract
// the agent tools use. A non-empty Site restricts every query with a
// site: prefix.
type TextSearch struct {
	WS   WebSearcher
	K    int
	Site string
}

// Search runs the query and renders the results
func (t TextSearch) Search(ctx context.Context, q string) (string, error) {
	k := t.K
	if k <= 0 {
		k = 5
	}
	if t.Site != "" {
		q = fmt.Sprintf("site:%s %s", t.Site, q)
	}
	results, err := t.WS.Discover(ctx, q, k)
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}
	return Render(results), nil
}
