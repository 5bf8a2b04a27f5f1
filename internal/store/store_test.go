package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
)

func openStores(t *testing.T) map[string]History {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]History{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestJournalEntriesRoundTrip(t *testing.T) {
	base := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			old, err := s.SaveEntry(ctx, journal.Entry{Text: "old", Summary: "s0", CreatedAt: base.Add(-48 * time.Hour)})
			if err != nil {
				t.Fatalf("save old: %v", err)
			}
			if old.ID == "" {
				t.Fatalf("expected generated id")
			}
			if _, err := s.SaveEntry(ctx, journal.Entry{Text: "second", Summary: "s2", Tone: "happy", CreatedAt: base.Add(2 * time.Hour)}); err != nil {
				t.Fatalf("save second: %v", err)
			}
			if _, err := s.SaveEntry(ctx, journal.Entry{Text: "first", Summary: "s1", CreatedAt: base}); err != nil {
				t.Fatalf("save first: %v", err)
			}

			entries, err := s.ListEntries(ctx, base)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			want := []journal.Entry{
				{Text: "first", Summary: "s1", CreatedAt: base},
				{Text: "second", Summary: "s2", Tone: "happy", CreatedAt: base.Add(2 * time.Hour)},
			}
			if diff := cmp.Diff(want, entries, cmpopts.IgnoreFields(journal.Entry{}, "ID")); diff != "" {
				t.Fatalf("ListEntries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoodRange(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, at := range []time.Time{monday.Add(-time.Hour), monday.Add(time.Hour), monday.Add(7 * 24 * time.Hour)} {
				if _, err := s.SaveMood(ctx, mood.Record{Level: mood.Level(i), RecordedAt: at}); err != nil {
					t.Fatalf("save mood %d: %v", i, err)
				}
			}
			records, err := s.ListMoods(ctx, monday, monday.Add(7*24*time.Hour))
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(records) != 1 || records[0].Level != mood.Down {
				t.Fatalf("unexpected records: %+v", records)
			}
		})
	}
}

func TestDurability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	at := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	if _, err := first.SaveMood(context.Background(), mood.Record{Level: mood.Great, RecordedAt: at}); err != nil {
		t.Fatalf("save: %v", err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if !second.Durable() {
		t.Fatalf("sqlite store should be durable")
	}
	records, err := second.ListMoods(context.Background(), at, at.Add(time.Second))
	if err != nil || len(records) != 1 {
		t.Fatalf("expected persisted record, got %v %v", records, err)
	}

	mem, _ := Open("")
	if mem.Durable() {
		t.Fatalf("memory store should not be durable")
	}
}
