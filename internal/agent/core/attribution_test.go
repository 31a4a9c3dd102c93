package core

import "testing"

func TestResolveSource(t *testing.T) {
	cases := []struct {
		name        string
		dbLabel     string
		invocations []ToolInvocation
		wantSource  string
		wantContext string
	}{
		{
			name:       "no tools means agent logic",
			wantSource: SourceAgentLogic,
		},
		{
			name:        "retrieval attaches context",
			dbLabel:     SourceEtiqaDB,
			invocations: []ToolInvocation{{Tool: ToolRAG, Observation: "policy text"}},
			wantSource:  SourceEtiqaDB,
			wantContext: "policy text",
		},
		{
			name:    "last successful tool wins",
			dbLabel: SourceEtiqaDB,
			invocations: []ToolInvocation{
				{Tool: ToolRAG, Observation: "policy text"},
				{Tool: ToolGeneralSearch, Observation: "web text"},
			},
			wantSource:  SourceGeneralWeb,
			wantContext: "",
		},
		{
			name:    "failed invocation is skipped",
			dbLabel: SourceEtiqaDB,
			invocations: []ToolInvocation{
				{Tool: ToolRAG, Observation: "policy text"},
				{Tool: ToolGeneralSearch, Observation: "ERROR: timeout", Err: "timeout"},
			},
			wantSource:  SourceEtiqaDB,
			wantContext: "policy text",
		},
		{
			name:        "etiqa site search",
			invocations: []ToolInvocation{{Tool: ToolEtiqaSearch, Observation: "site text"}},
			wantSource:  SourceEtiqaWeb,
		},
		{
			name:        "default database label",
			invocations: []ToolInvocation{{Tool: ToolRAG, Observation: "x"}},
			wantSource:  SourceDomainDB,
			wantContext: "x",
		},
	}
	for _, tc := range cases {
		source, context := ResolveSource(DomainInsurance, tc.dbLabel, tc.invocations)
		if source != tc.wantSource || context != tc.wantContext {
			t.Fatalf("%s: got (%q, %q), want (%q, %q)", tc.name, source, context, tc.wantSource, tc.wantContext)
		}
	}
}

func TestResolveSourceIsPure(t *testing.T) {
	invocations := []ToolInvocation{{Tool: ToolRAG, Observation: "ctx"}}
	s1, c1 := ResolveSource(DomainMedical, "", invocations)
	s2, c2 := ResolveSource(DomainMedical, "", invocations)
	if s1 != s2 || c1 != c2 {
		t.Fatal("repeated folds over the same trace must agree")
	}
}
