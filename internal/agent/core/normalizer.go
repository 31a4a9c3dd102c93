package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Normalizer rewrites follow-up questions into standalone ones so the
// retriever and tools see a self-contained query.
type Normalizer struct {
	llm    LLMProvider
	model  string
	logger *log.Logger
}

// NewNormalizer creates a query normalizer
func NewNormalizer(llm LLMProvider, model string, logger *log.Logger) *Normalizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[NORM] ", log.LstdFlags)
	}
	return &Normalizer{llm: llm, model: model, logger: logger}
}

const rewritePrompt = `Given the following conversation history and a follow-up question, rephrase the follow-up question to be a standalone question that preserves its original intent. Do not answer the question. Return only the rewritten question.

Conversation history:
%s

Follow-up question: %s

Standalone question:`

// Normalize returns the question unchanged when there is no history.
// That path makes no gateway calls. With history it makes exactly one
// rewrite call and returns the model output verbatim.
func (n *Normalizer) Normalize(ctx context.Context, question string, history []Message) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	out, err := n.llm.Generate(ctx, fmt.Sprintf(rewritePrompt, b.String(), question), n.model, map[string]interface{}{"temperature": 0.0})
	if err != nil {
		return "", fmt.Errorf("query rewrite: %w", err)
	}
	n.logger.Printf("rewrote %q -> %q", question, out)
	return out, nil
}
