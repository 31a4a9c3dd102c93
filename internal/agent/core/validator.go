package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Validator verdicts for the degenerate paths
const (
	reasonSkipped       = "Factual Answer"
	reasonUnparseable   = "Validation response format unexpected."
	reasonGatewayFailed = "Validation failed due to error."
)

// Validator checks a finished answer against its question and context.
// A failed validation never blocks the answer; it only marks it.
type Validator struct {
	llm    LLMProvider
	model  string
	logger *log.Logger
}

// NewValidator creates an answer validator
func NewValidator(llm LLMProvider, model string, logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.New(log.Writer(), "[VALID] ", log.LstdFlags)
	}
	return &Validator{llm: llm, model: model, logger: logger}
}

const validateGroundedPrompt = `You are a strict answer validator. Check whether the ANSWER to the QUESTION is supported by the CONTEXT retrieved from the knowledge base.

QUESTION: %s

CONTEXT:
%s

ANSWER: %s

Respond with exactly "Valid" if the answer is faithful to the context, or "Invalid: <short reason>" if it is not.`

const validateGeneralPrompt = `You are a strict answer validator. Check whether the ANSWER to the QUESTION is factually plausible and actually addresses the question.

QUESTION: %s

ANSWER: %s

Respond with exactly "Valid" if the answer is acceptable, or "Invalid: <short reason>" if it is not.`

// Validate renders a verdict. Domains configured to skip validation
// short-circuit to valid with zero gateway calls. A non-empty context
// means the answer is retrieval-backed and gets the grounded prompt.
func (v *Validator) Validate(ctx context.Context, skip bool, question, answer, context string) Validation {
	if skip {
		return Validation{Valid: true, Reason: reasonSkipped}
	}

	var prompt string
	if context != "" {
		prompt = fmt.Sprintf(validateGroundedPrompt, question, context, answer)
	} else {
		prompt = fmt.Sprintf(validateGeneralPrompt, question, answer)
	}

	out, err := v.llm.Generate(ctx, prompt, v.model, map[string]interface{}{"temperature": 0.0})
	if err != nil {
		v.logger.Printf("validation call failed: %v", err)
		return Validation{Valid: false, Reason: reasonGatewayFailed}
	}
	return parseVerdict(out)
}

// parseVerdict reads the leading Valid / Invalid: token of the
// validator's reply. Anything else counts as a format failure.
func parseVerdict(out string) Validation {
	s := strings.TrimSpace(out)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "valid"):
		return Validation{Valid: true, Reason: "Valid"}
	case strings.HasPrefix(lower, "invalid"):
		reason := strings.TrimSpace(strings.TrimPrefix(s[len("invalid"):], ":"))
		reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
		if reason == "" {
			reason = "Invalid"
		}
		return Validation{Valid: false, Reason: reason}
	default:
		return Validation{Valid: false, Reason: reasonUnparseable}
	}
}
