package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/wanirfan/atlast/internal/agent/config"
	"github.com/wanirfan/atlast/internal/agent/core"
	"github.com/wanirfan/atlast/internal/agent/telemetry"
	"github.com/wanirfan/atlast/internal/retriever"
	"github.com/wanirfan/atlast/internal/server"
	"github.com/wanirfan/atlast/session"
	"github.com/wanirfan/atlast/tools/web_search"
)

func serveCMD() *cobra.Command {
	var serveAddr string
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the QA HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			addr := serveAddr
			if addr == "" {
				addr = cfg.Server.Address
			}
			return run(cmd.Context(), cfg, addr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config directory (default is .)")

	return serve
}

// run wires every dependency explicitly and starts the server. A
// domain whose index fails to open is logged and left unregistered;
// the server still starts and answers 503 for that domain.
func run(ctx context.Context, cfg *config.Config, addr string) error {
	logger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)

	rawLLM, err := core.NewLLMProvider(cfg.LLM)
	if err != nil {
		return err
	}
	tele := telemetry.NewTelemetry(cfg.Telemetry)
	llm := core.NewMeteredProvider(rawLLM, tele)

	store, err := session.NewStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	general, err := newTextSearch(cfg, "")
	if err != nil {
		return err
	}

	engine := core.NewEngine(cfg, llm, tele, logger)
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return llm.Embed(ctx, cfg.LLM.Routing.Embedding, text)
	}

	for name, dc := range cfg.Domains {
		if !dc.Enabled {
			continue
		}
		domain, err := core.ParseDomain(name)
		if err != nil {
			logger.Printf("skipping unknown domain in config: %s", name)
			continue
		}

		ret, err := openRetriever(cfg, name, embed)
		if err != nil {
			logger.Printf("domain %s not loaded: %v", name, err)
			continue
		}

		var domainSearch core.WebSearcher
		if dc.SiteScope != "" {
			ds, err := newTextSearch(cfg, dc.SiteScope)
			if err != nil {
				return err
			}
			domainSearch = ds
		}

		idx := cfg.Retrieval.Indexes[name]
		tools := core.NewToolset(domain, core.ToolsetDeps{
			Retriever:     retrieverAdapter{ret},
			TopK:          idx.TopK,
			DomainSearch:  domainSearch,
			GeneralSearch: general,
		})
		engine.RegisterDomain(domain, tools)
	}

	return server.New(engine, store, nil).Start(addr)
}

// openRetriever opens the domain's vector collection, adding the
// keyword side when hybrid retrieval is configured
func openRetriever(cfg *config.Config, domain string, embed retriever.Embedder) (retriever.Retriever, error) {
	idx, ok := cfg.Retrieval.Indexes[domain]
	if !ok {
		return nil, core.ErrDomainNotLoaded
	}

	vec, err := retriever.OpenVectorStore(retriever.VectorConfig{
		PersistDir:    cfg.Retrieval.PersistDir,
		Collection:    idx.Collection,
		MinSimilarity: idx.MinSimilarity,
	}, embed)
	if err != nil {
		return nil, err
	}

	if !idx.Hybrid {
		return vec, nil
	}
	kw, err := retriever.LoadKeywordIndex(idx.PassagesFile)
	if err != nil {
		return nil, err
	}
	return &retriever.Hybrid{Vector: vec, Keyword: kw}, nil
}

func newTextSearch(cfg *config.Config, site string) (web_search.TextSearch, error) {
	provider := web_search.Provider(cfg.WebSearch.Provider)
	apiKey := cfg.WebSearch.SerperAPIKey
	if provider == web_search.BraveProvider {
		apiKey = cfg.WebSearch.BraveAPIKey
	}
	ws, err := web_search.NewWebSearcher(provider, apiKey)
	if err != nil {
		return web_search.TextSearch{}, err
	}
	return web_search.TextSearch{WS: ws, K: cfg.WebSearch.MaxResults, Site: site}, nil
}

// retrieverAdapter maps retriever passages into the engine's shape
type retrieverAdapter struct {
	r retriever.Retriever
}

func (a retrieverAdapter) Search(ctx context.Context, query string, k int) ([]core.RetrievedPassage, error) {
	passages, err := a.r.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]core.RetrievedPassage, 0, len(passages))
	for _, p := range passages {
		out = append(out, core.RetrievedPassage{Text: p.Text, Metadata: p.Metadata})
	}
	return out, nil
}
