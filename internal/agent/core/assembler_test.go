package core

import "testing"

func TestAssembleContextEmpty(t *testing.T) {
	if got := AssembleContext(nil); got != NoContextSentinel {
		t.Fatalf("expected sentinel, got %q", got)
	}
	if got := AssembleContext([]RetrievedPassage{{Text: ""}}); got != NoContextSentinel {
		t.Fatalf("expected sentinel for blank passages, got %q", got)
	}
}

func TestAssembleContextDedupKeepsFirstSeenOrder(t *testing.T) {
	passages := []RetrievedPassage{
		{Text: "beta"},
		{Text: "alpha"},
		{Text: "beta"},
		{Text: "gamma"},
		{Text: "alpha"},
	}
	got := AssembleContext(passages)
	want := "beta\nalpha\ngamma"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAssembleContextIdempotent(t *testing.T) {
	passages := []RetrievedPassage{{Text: "one"}, {Text: "two"}}
	once := AssembleContext(passages)
	twice := AssembleContext([]RetrievedPassage{{Text: once}})
	if twice != once {
		t.Fatalf("reassembly changed output: %q vs %q", twice, once)
	}
}
