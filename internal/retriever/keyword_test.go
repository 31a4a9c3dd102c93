package retriever

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestKeywordIndexAddAndSearch(t *testing.T) {
	ki, err := NewKeywordIndex()
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	passages := []Passage{
		{ID: "p1", Text: "Metformin is a first-line medication for type 2 diabetes."},
		{ID: "p2", Text: "Hypertension is persistently elevated blood pressure."},
		{ID: "p3", Text: "Takaful is an Islamic insurance arrangement."},
	}
	for _, p := range passages {
		if err := ki.Add(p); err != nil {
			t.Fatalf("add %s: %v", p.ID, err)
		}
	}
	if ki.Count() != 3 {
		t.Fatalf("expected 3 indexed passages, got %d", ki.Count())
	}

	out, err := ki.Search(context.Background(), "diabetes medication", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) == 0 || out[0].ID != "p1" {
		t.Fatalf("expected p1 first, got %+v", out)
	}
	if out[0].Rank != 1 {
		t.Fatalf("rank not assigned: %+v", out[0])
	}
}

func TestLoadKeywordIndexFromSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passages.jsonl")
	data := `{"id":"a","text":"zakat is an obligatory charity in islam"}
{"id":"b","text":"wudu is the ritual washing before prayer"}

{"text":"a passage without an explicit id"}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	ki, err := LoadKeywordIndex(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ki.Count() != 3 {
		t.Fatalf("expected 3 passages (blank line skipped), got %d", ki.Count())
	}

	out, err := ki.Search(context.Background(), "zakat charity", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("unexpected hit: %+v", out)
	}
}

func TestLoadKeywordIndexBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passages.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	if _, err := LoadKeywordIndex(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadKeywordIndexMissingFile(t *testing.T) {
	if _, err := LoadKeywordIndex(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
