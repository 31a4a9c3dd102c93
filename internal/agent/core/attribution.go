package core

// ResolveSource derives the answer's source label from the episode's
// tool invocations. It is a pure fold over the invocation sequence:
// the last successful invocation decides the label, and retrieval
// context is attached only when retrieval was that source. Episodes
// that used no tool are attributed to the agent's own reasoning.
func ResolveSource(domain Domain, dbLabel string, invocations []ToolInvocation) (source string, context string) {
	source = SourceAgentLogic
	context = ""

	if dbLabel == "" {
		dbLabel = SourceDomainDB
	}

	for _, inv := range invocations {
		if inv.Err != "" {
			continue
		}
		switch inv.Tool {
		case ToolRAG:
			source = dbLabel
			context = inv.Observation
		case ToolEtiqaSearch:
			source = SourceEtiqaWeb
			context = ""
		case ToolGeneralSearch:
			source = SourceGeneralWeb
			context = ""
		}
	}
	return source, context
}
