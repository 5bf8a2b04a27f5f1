// Package progress summarises the last seven days of journal and mood activity.
package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
	"github.com/zhouzirui/mindbff/backend/internal/store"
)

// Encouragement is shown while there is nothing to report yet.
const Encouragement = "Keep using mindBFF daily to unlock your personalized reports and insights!"

// Window is how far back a report looks.
const Window = 7 * 24 * time.Hour

// Report is the content of the progress screen.
// AverageMood is rounded to one decimal and nil when no mood was logged.
type Report struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	JournalEntries int             `json:"journalEntries"`
	MoodsLogged    int             `json:"moodsLogged"`
	AverageMood    *float64        `json:"averageMood"`
	AverageLevel   *mood.LevelInfo `json:"averageLevel,omitempty"`
	TopTone        string          `json:"topTone,omitempty"`
	Headline       string          `json:"headline"`
	Empty          bool            `json:"empty"`
	Durable        bool            `json:"durable"`
}

// Builder reads the history store.
type Builder struct {
	history store.History
}

func NewBuilder(history store.History) *Builder {
	return &Builder{history: history}
}

// Build returns the report for the seven days ending at now.
func (b *Builder) Build(ctx context.Context, now time.Time) (Report, error) {
	report := Report{From: now.Add(-Window), To: now}
	if b.history == nil {
		report.Empty = true
		report.Headline = Encouragement
		return report, nil
	}
	report.Durable = b.history.Durable()

	var (
		entries []journal.Entry
		moods   []mood.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if entries, err = b.history.ListEntries(gctx, report.From); err != nil {
			return fmt.Errorf("list journal entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if moods, err = b.history.ListMoods(gctx, report.From, now.Add(time.Nanosecond)); err != nil {
			return fmt.Errorf("list moods: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	tones := make(map[string]int)
	for _, e := range entries {
		if e.CreatedAt.After(now) {
			continue
		}
		report.JournalEntries++
		if e.Tone != "" {
			tones[e.Tone]++
		}
	}
	report.MoodsLogged = len(moods)
	report.TopTone = topTone(tones)

	if len(moods) > 0 {
		sum := 0
		for _, m := range moods {
			sum += int(m.Level)
		}
		avg := math.Round(float64(sum)/float64(len(moods))*10) / 10
		report.AverageMood = &avg
		info := mood.Level(int(math.Round(avg))).Info()
		report.AverageLevel = &info
	}

	if report.JournalEntries == 0 && report.MoodsLogged == 0 {
		report.Empty = true
		report.Headline = Encouragement
		return report, nil
	}
	report.Headline = headline(report)
	return report, nil
}

func headline(r Report) string {
	text := fmt.Sprintf("This week you wrote %s and logged %s.",
		plural(r.JournalEntries, "journal entry", "journal entries"),
		plural(r.MoodsLogged, "mood", "moods"))
	if r.AverageLevel != nil {
		text += fmt.Sprintf(" Your average mood was %s %s.", r.AverageLevel.Label, r.AverageLevel.Emoji)
	}
	return text
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// topTone picks the most frequent tone; ties go to the alphabetically first.
func topTone(counts map[string]int) string {
	best, bestCount := "", 0
	for tone, n := range counts {
		if n > bestCount || (n == bestCount && tone < best) {
			best, bestCount = tone, n
		}
	}
	return best
}
