package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// DefaultMaxIterations caps think/act/observe cycles per episode
const DefaultMaxIterations = 5

const parseErrorNotice = "Your last response did not follow the required format. Respond with either an Action and Action Input, or a Final Answer."

const capFallbackAnswer = "I was unable to determine a complete answer within the reasoning limit."

// Loop runs the think/act/observe cycle against a domain's toolset
type Loop struct {
	domain        Domain
	llm           LLMProvider
	model         string
	tools         *Toolset
	maxIterations int
	logger        *log.Logger
}

// NewLoop creates a reasoning loop. maxIterations <= 0 selects the default cap.
func NewLoop(domain Domain, llm LLMProvider, model string, tools *Toolset, maxIterations int, logger *log.Logger) *Loop {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[REACT] ", log.LstdFlags)
	}
	return &Loop{domain: domain, llm: llm, model: model, tools: tools, maxIterations: maxIterations, logger: logger}
}

const reactPrompt = `You are an assistant that answers %s questions using tools. Think step by step.

Available tools:
%s
Use exactly this format:

Thought: what to do next
Action: one of [%s]
Action Input: the input to the tool

After each Action you will receive an Observation. When you know the answer, finish with:

Thought: I now know the final answer
Final Answer: the answer to the original question

Question: %s
%s`

type decision struct {
	thought     string
	action      string
	actionInput string
	finalAnswer string
	isFinal     bool
}

// parseDecision extracts the model's next move from its raw output.
// Anything that is neither an action pair nor a final answer is a
// format error.
func parseDecision(out string) (decision, error) {
	var d decision
	d.thought = sectionAfter(out, "Thought:")

	if idx := strings.Index(out, "Final Answer:"); idx >= 0 {
		d.isFinal = true
		d.finalAnswer = strings.TrimSpace(out[idx+len("Final Answer:"):])
		return d, nil
	}

	d.action = sectionAfter(out, "Action:")
	d.actionInput = sectionAfter(out, "Action Input:")
	if d.action == "" {
		return d, fmt.Errorf("no Action or Final Answer in model output")
	}
	return d, nil
}

// sectionAfter returns the text following a marker up to the next
// known marker or end of line block
func sectionAfter(out, marker string) string {
	idx := strings.Index(out, marker)
	if idx < 0 {
		return ""
	}
	rest := out[idx+len(marker):]
	for _, stop := range []string{"\nThought:", "\nAction:", "\nAction Input:", "\nObservation:", "\nFinal Answer:"} {
		if stop == "\n"+marker {
			continue
		}
		if j := strings.Index(rest, stop); j >= 0 {
			rest = rest[:j]
		}
	}
	return strings.TrimSpace(rest)
}

// Run executes one episode. Gateway transport errors abort the episode;
// tool errors and malformed model output are folded into observations
// and consume iterations. Hitting the cap forcibly produces the best
// available partial answer.
func (l *Loop) Run(ctx context.Context, question string) (EpisodeResult, error) {
	start := time.Now()
	var trace ReasoningTrace
	var scratchpad strings.Builder
	lastObservation := ""

	toolNames := strings.Join(l.tools.Names(), ", ")

	for iter := 1; iter <= l.maxIterations; iter++ {
		trace.Iterations = iter

		prompt := fmt.Sprintf(reactPrompt, l.domain, l.tools.Describe(), toolNames, question, scratchpad.String())
		out, err := l.llm.Generate(ctx, prompt, l.model, map[string]interface{}{"temperature": 0.0})
		if err != nil {
			return EpisodeResult{Trace: trace, Duration: time.Since(start)}, fmt.Errorf("reasoning step %d: %w", iter, err)
		}

		d, perr := parseDecision(out)
		if perr != nil {
			l.logger.Printf("iteration %d: unparseable output, re-prompting", iter)
			trace.Steps = append(trace.Steps, ReasoningStep{Thought: d.thought, Observation: parseErrorNotice})
			fmt.Fprintf(&scratchpad, "%s\nObservation: %s\n", strings.TrimSpace(out), parseErrorNotice)
			continue
		}

		if d.isFinal {
			trace.Steps = append(trace.Steps, ReasoningStep{Thought: d.thought})
			return EpisodeResult{Answer: d.finalAnswer, Trace: trace, Duration: time.Since(start)}, nil
		}

		observation := ""
		inv := ToolInvocation{Tool: d.action, Input: d.actionInput}
		if tool, ok := l.tools.Lookup(d.action); ok {
			obs, terr := tool.Run(ctx, d.actionInput)
			if terr != nil {
				observation = fmt.Sprintf("ERROR: %v", terr)
				inv.Err = terr.Error()
			} else {
				observation = obs
			}
		} else {
			observation = fmt.Sprintf("Unknown tool %q. Available tools: %s", d.action, toolNames)
			inv.Err = "unknown tool"
		}
		inv.Observation = observation
		trace.Invocations = append(trace.Invocations, inv)
		trace.Steps = append(trace.Steps, ReasoningStep{
			Thought:     d.thought,
			Action:      d.action,
			ActionInput: d.actionInput,
			Observation: observation,
		})
		if inv.Err == "" {
			lastObservation = observation
		}
		fmt.Fprintf(&scratchpad, "Thought: %s\nAction: %s\nAction Input: %s\nObservation: %s\n", d.thought, d.action, d.actionInput, observation)
	}

	// Cap exhausted: return the best partial answer instead of failing
	trace.CapHit = true
	answer := capFallbackAnswer
	if lastObservation != "" && lastObservation != NoContextSentinel {
		answer = "I could not complete my reasoning in time. Based on what I found so far: " + lastObservation
	}
	l.logger.Printf("iteration cap %d reached, returning partial answer", l.maxIterations)
	return EpisodeResult{Answer: answer, Trace: trace, Duration: time.Since(start)}, nil
}
