package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/wanirfan/atlast/internal/agent/core"
)

func TestAppendAndHistory(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	if err := s.Append(ctx, "s1", core.DomainMedical,
		core.Message{Role: "user", Content: "hi"},
		core.Message{Role: "assistant", Content: "hello"},
	); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.History(ctx, "s1", core.DomainMedical)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 || got[0].Content != "hi" || got[1].Role != "assistant" {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestHistoryIsolatedByDomain(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	_ = s.Append(ctx, "s1", core.DomainMedical, core.Message{Role: "user", Content: "medical"})
	_ = s.Append(ctx, "s1", core.DomainIslamic, core.Message{Role: "user", Content: "islamic"})

	med, _ := s.History(ctx, "s1", core.DomainMedical)
	isl, _ := s.History(ctx, "s1", core.DomainIslamic)
	if len(med) != 1 || len(isl) != 1 || med[0].Content == isl[0].Content {
		t.Fatalf("domains not isolated: %+v / %+v", med, isl)
	}
}

func TestClear(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	_ = s.Append(ctx, "s1", core.DomainMedical, core.Message{Role: "user", Content: "hi"})
	if err := s.Clear(ctx, "s1", core.DomainMedical); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ := s.History(ctx, "s1", core.DomainMedical)
	if len(got) != 0 {
		t.Fatalf("history survived clear: %+v", got)
	}
}

func TestExpiredSessionReadsEmpty(t *testing.T) {
	s := NewStore(time.Nanosecond)
	ctx := context.Background()

	_ = s.Append(ctx, "s1", core.DomainMedical, core.Message{Role: "user", Content: "hi"})
	time.Sleep(5 * time.Millisecond)

	got, err := s.History(ctx, "s1", core.DomainMedical)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expired session still readable: %+v", got)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	_ = s.Append(ctx, "s1", core.DomainMedical, core.Message{Role: "user", Content: "original"})
	got, _ := s.History(ctx, "s1", core.DomainMedical)
	got[0].Content = "mutated"

	again, _ := s.History(ctx, "s1", core.DomainMedical)
	if again[0].Content != "original" {
		t.Fatal("History must return a copy")
	}
}
