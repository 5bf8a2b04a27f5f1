// Package mood records the user's daily mood and builds the weekly chart.
package mood

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
	"github.com/zhouzirui/mindbff/backend/internal/store"
)

var (
	ErrInvalidLevel = errors.New("mood level must be between 0 and 4")
	ErrNoSelection  = errors.New("no mood selected")
	ErrNoStore      = errors.New("no history store configured")
)

// Weekdays are the chart labels, Monday first.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Recorder holds the current selection of the mood screen.
type Recorder struct {
	store store.MoodStore

	mu       sync.Mutex
	selected *mood.Level
}

// NewRecorder returns a Recorder. records may be nil, in which case Submit only clears the selection.
func NewRecorder(records store.MoodStore) *Recorder {
	return &Recorder{store: records}
}

// Select marks level as the pending choice.
func (r *Recorder) Select(level mood.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	r.mu.Lock()
	r.selected = &level
	r.mu.Unlock()
	return nil
}

// Selected returns the pending choice.
func (r *Recorder) Selected() (mood.Level, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return 0, false
	}
	return *r.selected, true
}

// Submit stores the pending choice at now and clears it.
func (r *Recorder) Submit(ctx context.Context, now time.Time) (mood.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return mood.Record{}, ErrNoSelection
	}

	record := mood.Record{Level: *r.selected, RecordedAt: now}
	if r.store != nil {
		saved, err := r.store.SaveMood(ctx, record)
		if err != nil {
			return mood.Record{}, err
		}
		record = saved
	}
	r.selected = nil
	log.Printf("[mood] recorded level=%s", record.Level)
	return record, nil
}

// Week returns Mon..Sun of the week containing now. Each day carries its latest record.
func (r *Recorder) Week(ctx context.Context, now time.Time) ([]mood.Sample, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)
	records, err := r.store.ListMoods(ctx, start, end)
	if err != nil {
		return nil, err
	}

	samples := emptyWeek()
	loc := now.Location()
	for _, rec := range records {
		idx := weekdayIndex(rec.RecordedAt.In(loc).Weekday())
		level := rec.Level
		samples[idx].Level = &level
	}
	return samples, nil
}

// SampleWeek is the demonstration series shown before any moods exist.
func SampleWeek() []mood.Sample {
	samples := emptyWeek()
	for i, level := range []mood.Level{mood.Good, mood.Great, mood.Down, mood.Good, mood.Neutral} {
		level := level
		samples[i].Level = &level
	}
	return samples
}

// BarHeightPercent is the chart height for level.
func BarHeightPercent(level mood.Level) int {
	return (int(level) + 1) * 20
}

// WeekStart returns local midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -weekdayIndex(t.Weekday()))
}

func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func emptyWeek() []mood.Sample {
	samples := make([]mood.Sample, len(Weekdays))
	for i, day := range Weekdays {
		samples[i] = mood.Sample{Day: day}
	}
	return samples
}
