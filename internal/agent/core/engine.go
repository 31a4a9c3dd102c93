package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wanirfan/atlast/internal/agent/config"
	"github.com/wanirfan/atlast/internal/agent/swarm"
	"github.com/wanirfan/atlast/internal/agent/telemetry"
)

// DomainRuntime is one loaded domain: its reasoning loop plus the
// per-domain behavior flags from config
type DomainRuntime struct {
	Domain         Domain
	Loop           *Loop
	SkipValidation bool
	DBLabel        string
	SwarmEnabled   bool
}

// Engine owns the per-domain runtimes and runs episodes end to end:
// normalize, reason, attribute, validate. Every dependency is injected
// at construction; the engine holds no globals.
type Engine struct {
	cfg        *config.Config
	llm        LLMProvider
	normalizer *Normalizer
	validator  *Validator
	describer  *ImageDescriber
	swarm      *swarm.Swarm
	domains    map[Domain]*DomainRuntime
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
}

// NewEngine wires the engine's stage components from config
func NewEngine(cfg *config.Config, llm LLMProvider, tele *telemetry.Telemetry, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	backoff := NewBackoff(cfg.LLM.Backoff)
	return &Engine{
		cfg:        cfg,
		llm:        llm,
		normalizer: NewNormalizer(llm, cfg.LLM.Routing.Rewrite, nil),
		validator:  NewValidator(llm, cfg.LLM.Routing.Validation, nil),
		describer:  NewImageDescriber(llm, cfg.LLM.Routing.Vision, backoff, nil),
		swarm:      swarm.New(llm, cfg.LLM.Routing.Reasoning, cfg.General.MaxIterations, nil),
		domains:    make(map[Domain]*DomainRuntime),
		telemetry:  tele,
		logger:     logger,
	}
}

// RegisterDomain attaches a loaded toolset to a domain. Domains whose
// index failed to open at startup are simply never registered, and
// requests against them get ErrDomainNotLoaded.
func (e *Engine) RegisterDomain(domain Domain, tools *Toolset) {
	dc := e.cfg.Domains[string(domain)]
	rt := &DomainRuntime{
		Domain:         domain,
		Loop:           NewLoop(domain, e.llm, e.cfg.LLM.Routing.Reasoning, tools, e.cfg.General.MaxIterations, e.logger),
		SkipValidation: dc.SkipValidation,
		DBLabel:        dc.DatabaseLabel,
		SwarmEnabled:   dc.Swarm,
	}
	e.domains[domain] = rt
	e.logger.Printf("domain %s registered (skip_validation=%v swarm=%v)", domain, rt.SkipValidation, rt.SwarmEnabled)
}

// DomainLoaded reports whether a domain is serving
func (e *Engine) DomainLoaded(domain Domain) bool {
	_, ok := e.domains[domain]
	return ok
}

// Ask runs one episode. Input problems and unloaded domains surface as
// errors for the transport layer to map; everything else, including
// internal failures, yields a structured AnswerResult.
func (e *Engine) Ask(ctx context.Context, req AskRequest) (AnswerResult, error) {
	rt, ok := e.domains[req.Domain]
	if !ok {
		return AnswerResult{}, ErrDomainNotLoaded
	}
	if req.Query == "" && req.ImageB64 == "" && req.Document == "" {
		return AnswerResult{}, ErrNoInput
	}
	if req.Document != "" && !rt.SwarmEnabled {
		return AnswerResult{}, ErrDocumentUnsupported
	}

	start := time.Now()
	var result AnswerResult
	var err error
	if req.Document != "" {
		result, err = e.runSwarm(ctx, rt, req)
	} else {
		result, err = e.runEpisode(ctx, rt, req)
	}
	if err != nil {
		e.logger.Printf("episode failed for domain %s: %v", req.Domain, err)
		e.record(req.Domain, "error", time.Since(start))
		return errorResult(err), nil
	}
	e.record(req.Domain, "ok", time.Since(start))
	return result, nil
}

// runEpisode is the normalize/reason/attribute/validate pipeline
func (e *Engine) runEpisode(ctx context.Context, rt *DomainRuntime, req AskRequest) (AnswerResult, error) {
	question, err := e.normalizer.Normalize(ctx, req.Query, req.History)
	if err != nil {
		return AnswerResult{}, err
	}

	if req.ImageB64 != "" {
		subject, derr := e.describer.Describe(ctx, req.ImageB64)
		if derr != nil {
			return AnswerResult{}, derr
		}
		question = EnhanceQuery(question, subject)
	}

	episode, err := rt.Loop.Run(ctx, question)
	if err != nil {
		return AnswerResult{}, err
	}
	for _, inv := range episode.Trace.Invocations {
		if e.telemetry != nil {
			e.telemetry.RecordToolInvocation(string(rt.Domain), inv.Tool)
		}
	}

	source, context := ResolveSource(rt.Domain, rt.DBLabel, episode.Trace.Invocations)
	validation := e.validator.Validate(ctx, rt.SkipValidation, question, episode.Answer, context)
	if e.telemetry != nil {
		e.telemetry.RecordValidation(string(rt.Domain), validation.Valid)
	}

	return AnswerResult{
		Answer:     episode.Answer,
		Context:    context,
		Validation: validation,
		Source:     source,
		Thoughts:   episode.Trace.Thoughts(),
	}, nil
}

// runSwarm analyzes an uploaded document with the specialist swarm
func (e *Engine) runSwarm(ctx context.Context, rt *DomainRuntime, req AskRequest) (AnswerResult, error) {
	res, err := e.swarm.Run(ctx, req.Document, req.Query)
	if err != nil {
		return AnswerResult{}, err
	}
	if e.telemetry != nil {
		e.telemetry.RecordSwarm(res.Rounds, res.Fallback)
	}

	validation := e.validator.Validate(ctx, rt.SkipValidation, req.Query, res.Summary, "")
	if e.telemetry != nil {
		e.telemetry.RecordValidation(string(rt.Domain), validation.Valid)
	}

	thoughts := make([]string, 0, len(res.Workspace))
	for _, entry := range res.Workspace {
		if entry.Agent == "REPORT" {
			continue
		}
		thoughts = append(thoughts, fmt.Sprintf("[%s] %s", entry.Agent, entry.Content))
	}

	return AnswerResult{
		Answer:     res.Summary,
		Context:    "",
		Validation: validation,
		Source:     SourceSwarm,
		Thoughts:   thoughts,
	}, nil
}

func (e *Engine) record(domain Domain, status string, duration time.Duration) {
	if e.telemetry != nil {
		e.telemetry.RecordEpisode(string(domain), status, duration)
	}
}

// errorResult is the transparent failure shape: the episode still
// yields a result, marked invalid, with the error in the answer text
func errorResult(err error) AnswerResult {
	return AnswerResult{
		Answer:     fmt.Sprintf("An error occurred: %v", err),
		Context:    "",
		Validation: Validation{Valid: false, Reason: "Answer generation failed; validation skipped."},
		Source:     SourceAgentLogic,
		Thoughts:   []string{},
	}
}
