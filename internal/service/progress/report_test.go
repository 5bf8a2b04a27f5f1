package progress

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
	"github.com/zhouzirui/mindbff/backend/internal/store"
)

func TestBuildEmptyShowsEncouragement(t *testing.T) {
	report, err := NewBuilder(store.NewMemoryStore()).Build(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !report.Empty || report.Headline != Encouragement {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Durable {
		t.Fatalf("memory store is not durable")
	}
}

func TestBuildWithoutStore(t *testing.T) {
	report, err := NewBuilder(nil).Build(context.Background(), time.Now())
	if err != nil || report.Headline != Encouragement {
		t.Fatalf("unexpected %+v %v", report, err)
	}
}

func TestBuildCountsLastSevenDays(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	history := store.NewMemoryStore()

	history.SaveEntry(ctx, journal.Entry{Text: "a", Tone: "happy", CreatedAt: now.Add(-time.Hour)})
	history.SaveEntry(ctx, journal.Entry{Text: "b", Tone: "sad", CreatedAt: now.Add(-48 * time.Hour)})
	history.SaveEntry(ctx, journal.Entry{Text: "c", Tone: "happy", CreatedAt: now.Add(-72 * time.Hour)})
	history.SaveEntry(ctx, journal.Entry{Text: "old", Tone: "sad", CreatedAt: now.Add(-10 * 24 * time.Hour)})
	history.SaveMood(ctx, mood.Record{Level: mood.Good, RecordedAt: now.Add(-2 * time.Hour)})
	history.SaveMood(ctx, mood.Record{Level: mood.Great, RecordedAt: now.Add(-26 * time.Hour)})
	history.SaveMood(ctx, mood.Record{Level: mood.Sad, RecordedAt: now.Add(-9 * 24 * time.Hour)})

	report, err := NewBuilder(history).Build(ctx, now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Empty {
		t.Fatalf("report should not be empty")
	}
	if report.JournalEntries != 3 || report.MoodsLogged != 2 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.AverageMood == nil || *report.AverageMood != 3.5 {
		t.Fatalf("unexpected average %v", report.AverageMood)
	}
	if report.TopTone != "happy" {
		t.Fatalf("unexpected top tone %q", report.TopTone)
	}
	if !strings.Contains(report.Headline, "3 journal entries") || !strings.Contains(report.Headline, "2 moods") {
		t.Fatalf("unexpected headline %q", report.Headline)
	}
}
