package core

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/wanirfan/atlast/internal/agent/config"
)

func testConfig() *config.Config {
	return &config.Config{
		General: config.GeneralConfig{MaxIterations: 5},
		LLM: config.LLMConfig{
			Routing: config.LLMRoutingConfig{
				Reasoning:  "gpt-4o",
				Rewrite:    "gpt-4o-mini",
				Validation: "gpt-4o-mini",
				Vision:     "gpt-4o",
			},
			Backoff: config.BackoffConfig{MaxAttempts: 1},
		},
		Domains: map[string]config.DomainConfig{
			"insurance": {Enabled: true, SkipValidation: true, DatabaseLabel: SourceEtiqaDB},
			"medical":   {Enabled: true, Swarm: true},
			"islamic":   {Enabled: true},
		},
	}
}

func testEngine(llm *stubLLM, cfg *config.Config) *Engine {
	return NewEngine(cfg, llm, nil, log.New(io.Discard, "", 0))
}

func TestAskRetrievalBackedEpisode(t *testing.T) {
	llm := &stubLLM{outputs: []string{
		"Thought: check the policy database\nAction: knowledge_base_search\nAction Input: roadside assistance coverage",
		"Thought: I now know the final answer\nFinal Answer: Roadside assistance is included in the comprehensive plan.",
	}}
	ret := &stubRetriever{passages: []RetrievedPassage{{Text: "Comprehensive plans include 24/7 roadside assistance."}}}
	e := testEngine(llm, testConfig())
	e.RegisterDomain(DomainInsurance, testToolset(ret, &stubSearcher{}))

	res, err := e.Ask(context.Background(), AskRequest{Domain: DomainInsurance, Query: "does my plan cover roadside assistance?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceEtiqaDB {
		t.Fatalf("wrong source: %q", res.Source)
	}
	if !strings.Contains(res.Context, "roadside assistance") {
		t.Fatalf("retrieval context not attached: %q", res.Context)
	}
	// skip_validation is on for this domain
	if !res.Validation.Valid || res.Validation.Reason != "Factual Answer" {
		t.Fatalf("unexpected validation: %+v", res.Validation)
	}
	if res.Answer != "Roadside assistance is included in the comprehensive plan." {
		t.Fatalf("wrong answer: %q", res.Answer)
	}
}

func TestAskWebBackedEpisodeIsValidated(t *testing.T) {
	llm := &stubLLM{outputs: []string{
		"Thought: this needs current information\nAction: general_web_search\nAction Input: measles outbreak 2026",
		"Thought: I now know the final answer\nFinal Answer: Cases are rising in three states.",
		"Valid",
	}}
	e := testEngine(llm, testConfig())
	e.RegisterDomain(DomainMedical, testToolset(&stubRetriever{}, &stubSearcher{summary: "Health agencies report rising measles cases."}))

	res, err := e.Ask(context.Background(), AskRequest{Domain: DomainMedical, Query: "is there a measles outbreak?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceGeneralWeb {
		t.Fatalf("wrong source: %q", res.Source)
	}
	if res.Context != "" {
		t.Fatalf("web-backed answers carry no retrieval context, got %q", res.Context)
	}
	if !res.Validation.Valid {
		t.Fatalf("unexpected validation: %+v", res.Validation)
	}
	if len(llm.prompts) != 3 {
		t.Fatalf("expected 3 gateway calls (2 loop + 1 validation), got %d", len(llm.prompts))
	}
}

func TestAskUnloadedDomain(t *testing.T) {
	e := testEngine(&stubLLM{}, testConfig())

	_, err := e.Ask(context.Background(), AskRequest{Domain: DomainIslamic, Query: "q"})
	if !errors.Is(err, ErrDomainNotLoaded) {
		t.Fatalf("expected ErrDomainNotLoaded, got %v", err)
	}
}

func TestAskRequiresInput(t *testing.T) {
	e := testEngine(&stubLLM{}, testConfig())
	e.RegisterDomain(DomainInsurance, testToolset(&stubRetriever{}, &stubSearcher{}))

	_, err := e.Ask(context.Background(), AskRequest{Domain: DomainInsurance})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}

func TestAskDocumentNeedsSwarmDomain(t *testing.T) {
	e := testEngine(&stubLLM{}, testConfig())
	e.RegisterDomain(DomainInsurance, testToolset(&stubRetriever{}, &stubSearcher{}))

	_, err := e.Ask(context.Background(), AskRequest{Domain: DomainInsurance, Document: "lab report text"})
	if !errors.Is(err, ErrDocumentUnsupported) {
		t.Fatalf("expected ErrDocumentUnsupported, got %v", err)
	}
}

func TestAskDocumentDispatchesToSwarm(t *testing.T) {
	llm := &stubLLM{outputs: []string{
		"CALL: MEDICAL_DATA_EXTRACTOR",
		"HbA1c 8.2% (ref 4.0-5.6, HIGH)",
		"FINISH",
		"Your long-term blood sugar is elevated.",
		"Valid",
	}}
	e := testEngine(llm, testConfig())
	e.RegisterDomain(DomainMedical, testToolset(&stubRetriever{}, &stubSearcher{}))

	res, err := e.Ask(context.Background(), AskRequest{
		Domain:   DomainMedical,
		Query:    "explain my lab report",
		Document: "HbA1c: 8.2%",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "Your long-term blood sugar is elevated." {
		t.Fatalf("wrong answer: %q", res.Answer)
	}
	if res.Source != SourceSwarm {
		t.Fatalf("wrong source: %q", res.Source)
	}
	if res.Context != "" {
		t.Fatalf("swarm answers carry no retrieval context, got %q", res.Context)
	}
	// Specialist reports surface as thoughts; the seeded report does not
	if len(res.Thoughts) != 1 || res.Thoughts[0] != "[MEDICAL_DATA_EXTRACTOR] HbA1c 8.2% (ref 4.0-5.6, HIGH)" {
		t.Fatalf("unexpected thoughts: %+v", res.Thoughts)
	}
	if !res.Validation.Valid {
		t.Fatalf("unexpected validation: %+v", res.Validation)
	}
	// The summary is validated with the ungrounded prompt
	last := llm.prompts[len(llm.prompts)-1]
	if strings.Contains(last, "CONTEXT") {
		t.Fatalf("swarm validation must use the general prompt: %q", last)
	}
}

func TestAskInternalFailureFoldsIntoResult(t *testing.T) {
	llm := &stubLLM{err: errors.New("gateway unreachable")}
	e := testEngine(llm, testConfig())
	e.RegisterDomain(DomainMedical, testToolset(&stubRetriever{}, &stubSearcher{}))

	res, err := e.Ask(context.Background(), AskRequest{Domain: DomainMedical, Query: "q"})
	if err != nil {
		t.Fatalf("internal failures must not surface as errors, got %v", err)
	}
	if !strings.Contains(res.Answer, "An error occurred:") {
		t.Fatalf("wrong failure answer: %q", res.Answer)
	}
	if res.Validation.Valid || res.Validation.Reason != "Answer generation failed; validation skipped." {
		t.Fatalf("unexpected validation: %+v", res.Validation)
	}
}

func TestAskImageEnhancesQuestion(t *testing.T) {
	llm := &stubLLM{outputs: []string{
		"A close-up photo of a red skin rash on a forearm.",
		"Thought: I now know the final answer\nFinal Answer: See a dermatologist.",
		"Valid",
	}}
	e := testEngine(llm, testConfig())
	e.RegisterDomain(DomainMedical, testToolset(&stubRetriever{}, &stubSearcher{}))

	res, err := e.Ask(context.Background(), AskRequest{Domain: DomainMedical, Query: "what is this?", ImageB64: "aW1hZ2U="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.imageCalls != 1 {
		t.Fatalf("expected one vision call, got %d", llm.imageCalls)
	}
	// The reasoning prompt carries the enhanced question
	if !strings.Contains(llm.prompts[1], "the attached image shows") {
		t.Fatalf("reasoning prompt missing image subject: %q", llm.prompts[1])
	}
	if res.Source != SourceAgentLogic {
		t.Fatalf("no tools used, expected agent logic source, got %q", res.Source)
	}
}
