// Package store 保存日记与心情记录。只在本机保存，不做任何同步。
package store

import (
	"context"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
)

// JournalStore persists saved journal entries.
type JournalStore interface {
	SaveEntry(ctx context.Context, entry journal.Entry) (journal.Entry, error)
	// ListEntries returns entries created at or after since, oldest first.
	ListEntries(ctx context.Context, since time.Time) ([]journal.Entry, error)
}

// MoodStore persists mood submissions.
type MoodStore interface {
	SaveMood(ctx context.Context, record mood.Record) (mood.Record, error)
	// ListMoods returns records in [from, to), oldest first.
	ListMoods(ctx context.Context, from, to time.Time) ([]mood.Record, error)
}

// History combines both stores.
type History interface {
	JournalStore
	MoodStore
	// Durable reports whether data survives a restart.
	Durable() bool
	Close() error
}

// Open returns the sqlite store at path, or the memory store when path is empty.
func Open(path string) (History, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(path)
}
