package swarm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// DefaultMaxRounds caps coordinator routing rounds per analysis
const DefaultMaxRounds = 5

// LLM is the minimal gateway surface the swarm needs
type LLM interface {
	Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error)
}

// Entry is one specialist report appended to the shared workspace
type Entry struct {
	Agent   string `json:"agent"`
	Content string `json:"content"`
}

// Result is the outcome of one document analysis
type Result struct {
	Summary   string  `json:"summary"`
	Workspace []Entry `json:"workspace"`
	Rounds    int     `json:"rounds"`
	Fallback  bool    `json:"fallback"` // summary produced by the expiration path
}

// Swarm coordinates the specialist agents over a shared append-only
// workspace. The coordinator routes; specialists only ever read the
// workspace and append their report.
type Swarm struct {
	llm       LLM
	model     string
	maxRounds int
	logger    *log.Logger
}

// New creates a swarm. maxRounds <= 0 selects the default cap.
func New(llm LLM, model string, maxRounds int, logger *log.Logger) *Swarm {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[SWARM] ", log.LstdFlags)
	}
	return &Swarm{llm: llm, model: model, maxRounds: maxRounds, logger: logger}
}

// All specialists share this constraint: the uploaded report is the
// complete input, so no agent may ask for more tests or information.
const sharedConstraint = `The medical report below is final and complete. Do not request additional tests, scans or information. Do not suggest follow-up data collection. Work only with what is provided.`

type role struct {
	name   string
	prompt string
}

var roles = map[Directive]role{
	DirectiveExtract: {
		name: "MEDICAL_DATA_EXTRACTOR",
		prompt: `You are the medical data extractor. Extract every clinically relevant finding from the report: values, units, reference ranges, flagged abnormalities and stated observations. Present them as a structured list.`,
	},
	DirectiveDiagnose: {
		name: "DIAGNOSTIC_SPECIALIST",
		prompt: `You are the diagnostic specialist. Using only the workspace findings, explain what the results indicate. Name likely conditions with their supporting evidence from the extracted data.`,
	},
	DirectivePlan: {
		name: "TREATMENT_PLANNER",
		prompt: `You are the treatment planner. Based only on the workspace findings and diagnostic assessment, outline appropriate management and lifestyle guidance for the patient.`,
	},
	DirectiveConsult: {
		name: "SPECIALIST_CONSULTANT",
		prompt: `You are the specialist consultant. Review the workspace for gaps or inconsistencies in the extraction, diagnosis and plan, and add any corrections or clarifications.`,
	},
}

const coordinatorPrompt = `You are the coordinator of a medical document analysis team. Review the workspace and decide which specialist should act next.

Respond with exactly one of:
CALL: MEDICAL_DATA_EXTRACTOR
CALL: DIAGNOSTIC_SPECIALIST
CALL: TREATMENT_PLANNER
CALL: SPECIALIST_CONSULTANT
FINISH

Call FINISH when the workspace holds enough analysis to produce the final patient summary. Typically extraction comes first, then diagnosis.

Patient goal: %s

Workspace:
%s`

const synthesisPrompt = `You are writing the final summary for the patient. Using the analysis workspace below, produce a clear, compassionate, patient-facing explanation of the findings, what they mean and the recommended next steps from the plan. Do not introduce recommendations that are not in the workspace. %s

Patient goal: %s

Workspace:
%s`

const expirationPrompt = `The analysis could not be completed in full. Summarize for the patient whatever reliable findings exist in the workspace below, clearly and without speculation. %s

Patient goal: %s

Workspace:
%s`

// Run analyzes a document toward a goal. It always produces a summary:
// specialist failures become workspace entries, an unrecognized
// coordinator command or round-cap exhaustion falls back to the
// expiration summary, and only a failing summary call itself is an error.
func (s *Swarm) Run(ctx context.Context, document, goal string) (Result, error) {
	start := time.Now()
	if goal == "" {
		goal = "Explain this medical report to me."
	}

	workspace := []Entry{{Agent: "REPORT", Content: document}}
	res := Result{}

	for round := 1; round <= s.maxRounds; round++ {
		res.Rounds = round

		out, err := s.llm.Generate(ctx, fmt.Sprintf(coordinatorPrompt, goal, renderWorkspace(workspace)), s.model, map[string]interface{}{"temperature": 0.0})
		if err != nil {
			s.logger.Printf("round %d: coordinator failed: %v", round, err)
			res2, ferr := s.finish(ctx, workspace, goal, true)
			res2.Rounds = round
			return res2, ferr
		}

		directive := ParseDirective(out)
		s.logger.Printf("round %d: directive %s", round, directive)

		switch directive {
		case DirectiveFinish:
			res2, err := s.finish(ctx, workspace, goal, false)
			res2.Rounds = round
			return res2, err
		case DirectiveUnrecognized:
			// No retry here: an off-vocabulary coordinator goes
			// straight to the expiration summary.
			res2, err := s.finish(ctx, workspace, goal, true)
			res2.Rounds = round
			return res2, err
		default:
			workspace = append(workspace, s.callSpecialist(ctx, directive, workspace, goal))
		}
	}

	s.logger.Printf("round cap %d reached after %s", s.maxRounds, time.Since(start))
	res2, err := s.finish(ctx, workspace, goal, true)
	res2.Rounds = s.maxRounds
	return res2, err
}

// callSpecialist runs one specialist over the workspace. A failure is
// recorded as that round's report so the loop keeps moving.
func (s *Swarm) callSpecialist(ctx context.Context, d Directive, workspace []Entry, goal string) Entry {
	r := roles[d]
	prompt := fmt.Sprintf("%s\n\n%s\n\nPatient goal: %s\n\nWorkspace:\n%s", r.prompt, sharedConstraint, goal, renderWorkspace(workspace))
	out, err := s.llm.Generate(ctx, prompt, s.model, map[string]interface{}{"temperature": 0.2})
	if err != nil {
		s.logger.Printf("%s failed: %v", r.name, err)
		return Entry{Agent: r.name, Content: fmt.Sprintf("ERROR: %v", err)}
	}
	return Entry{Agent: r.name, Content: out}
}

// finish produces either the full synthesis or the expiration summary
func (s *Swarm) finish(ctx context.Context, workspace []Entry, goal string, fallback bool) (Result, error) {
	tmpl := synthesisPrompt
	if fallback {
		tmpl = expirationPrompt
	}
	out, err := s.llm.Generate(ctx, fmt.Sprintf(tmpl, sharedConstraint, goal, renderWorkspace(workspace)), s.model, map[string]interface{}{"temperature": 0.3})
	if err != nil {
		return Result{Workspace: workspace, Fallback: fallback}, fmt.Errorf("final summary: %w", err)
	}
	return Result{Summary: out, Workspace: workspace, Fallback: fallback}, nil
}

func renderWorkspace(workspace []Entry) string {
	var b strings.Builder
	for _, e := range workspace {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", e.Agent, e.Content)
	}
	return b.String()
}
