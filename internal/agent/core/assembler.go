package core

import "strings"

// NoContextSentinel is returned when retrieval produced nothing usable
const NoContextSentinel = "No relevant context found."

// AssembleContext joins retrieved passages into a single prompt-ready
// block. Exact duplicate texts collapse to their first occurrence and
// first-seen order is preserved.
func AssembleContext(passages []RetrievedPassage) string {
	if len(passages) == 0 {
		return NoContextSentinel
	}

	seen := make(map[string]struct{}, len(passages))
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		if p.Text == "" {
			continue
		}
		if _, ok := seen[p.Text]; ok {
			continue
		}
		seen[p.Text] = struct{}{}
		parts = append(parts, p.Text)
	}
	if len(parts) == 0 {
		return NoContextSentinel
	}
	return strings.Join(parts, "\n")
}
