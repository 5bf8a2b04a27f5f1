package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
)

// MemoryStore keeps history for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []journal.Entry
	moods   []mood.Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveEntry(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return entry, nil
}

func (s *MemoryStore) ListEntries(_ context.Context, since time.Time) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []journal.Entry
	for _, e := range s.entries {
		if !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SaveMood(_ context.Context, record mood.Record) (mood.Record, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	s.mu.Lock()
	s.moods = append(s.moods, record)
	s.mu.Unlock()
	return record, nil
}

func (s *MemoryStore) ListMoods(_ context.Context, from, to time.Time) ([]mood.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []mood.Record
	for _, r := range s.moods {
		if !r.RecordedAt.Before(from) && r.RecordedAt.Before(to) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (s *MemoryStore) Durable() bool { return false }

func (s *MemoryStore) Close() error { return nil }
