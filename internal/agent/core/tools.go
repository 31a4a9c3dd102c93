package core

import (
	"context"
	"fmt"
	"strings"
)

// Tool is one capability the reasoning loop can invoke
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, input string) (string, error)
}

// Toolset is the per-domain tool registry. It is assembled once at
// startup and holds no per-episode state.
type Toolset struct {
	tools  []Tool
	byName map[string]Tool
}

// ToolsetDeps carries what the standard tools need
type ToolsetDeps struct {
	Retriever     Retriever
	TopK          int
	DomainSearch  WebSearcher // site-scoped, nil when the domain has none
	GeneralSearch WebSearcher
}

// NewToolset builds the standard tools for a domain: knowledge base
// retrieval for every domain, the site-scoped Etiqa search only where
// configured, and general web search as the catch-all.
func NewToolset(domain Domain, deps ToolsetDeps) *Toolset {
	ts := &Toolset{byName: make(map[string]Tool)}

	topK := deps.TopK
	if topK <= 0 {
		topK = 5
	}
	ts.add(Tool{
		Name:        ToolRAG,
		Description: fmt.Sprintf("Search the curated %s knowledge base. Always try this tool first for any %s question.", domain, domain),
		Run: func(ctx context.Context, input string) (string, error) {
			passages, err := deps.Retriever.Search(ctx, input, topK)
			if err != nil {
				return "", fmt.Errorf("knowledge base search: %w", err)
			}
			return AssembleContext(passages), nil
		},
	})

	if deps.DomainSearch != nil {
		ts.add(Tool{
			Name:        ToolEtiqaSearch,
			Description: "Search the official Etiqa website for product and policy information. Use when the knowledge base has no answer.",
			Run: func(ctx context.Context, input string) (string, error) {
				return deps.DomainSearch.Search(ctx, input)
			},
		})
	}

	ts.add(Tool{
		Name:        ToolGeneralSearch,
		Description: "Search the public web. Use only when the other tools cannot answer the question.",
		Run: func(ctx context.Context, input string) (string, error) {
			return deps.GeneralSearch.Search(ctx, input)
		},
	})

	return ts
}

func (ts *Toolset) add(t Tool) {
	ts.tools = append(ts.tools, t)
	ts.byName[t.Name] = t
}

// Lookup finds a tool by name
func (ts *Toolset) Lookup(name string) (Tool, bool) {
	t, ok := ts.byName[strings.TrimSpace(name)]
	return t, ok
}

// Names lists tool names in registration order
func (ts *Toolset) Names() []string {
	out := make([]string, 0, len(ts.tools))
	for _, t := range ts.tools {
		out = append(out, t.Name)
	}
	return out
}

// Describe renders the tool list for the reasoning prompt
func (ts *Toolset) Describe() string {
	var b strings.Builder
	for _, t := range ts.tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	return b.String()
}
