package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
)

// SQLiteStore keeps history in a sqlite file on this device.
// Timestamps are stored as unix nanoseconds so range queries stay numeric.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err = s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Durable() bool { return true }

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS journal_entries (
        id TEXT PRIMARY KEY, -- UUID
        text TEXT NOT NULL,
        summary TEXT NOT NULL,
        tone TEXT NOT NULL DEFAULT '',
        created_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_journal_created ON journal_entries (created_at);

    CREATE TABLE IF NOT EXISTS moods (
        id TEXT PRIMARY KEY, -- UUID
        level INTEGER NOT NULL CHECK (level BETWEEN 0 AND 4),
        recorded_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_moods_recorded ON moods (recorded_at);
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveEntry(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO journal_entries (id, text, summary, tone, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Text, entry.Summary, entry.Tone, entry.CreatedAt.UnixNano())
	if err != nil {
		return journal.Entry{}, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return entry, nil
}

func (s *SQLiteStore) ListEntries(ctx context.Context, since time.Time) ([]journal.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, summary, tone, created_at FROM journal_entries WHERE created_at >= ? ORDER BY created_at ASC",
		since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Text, &e.Summary, &e.Tone, &created); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) SaveMood(ctx context.Context, record mood.Record) (mood.Record, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO moods (id, level, recorded_at) VALUES (?, ?, ?)",
		record.ID, int(record.Level), record.RecordedAt.UnixNano())
	if err != nil {
		return mood.Record{}, fmt.Errorf("failed to insert mood: %w", err)
	}
	return record, nil
}

func (s *SQLiteStore) ListMoods(ctx context.Context, from, to time.Time) ([]mood.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, level, recorded_at FROM moods WHERE recorded_at >= ? AND recorded_at < ? ORDER BY recorded_at ASC",
		from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query moods: %w", err)
	}
	defer rows.Close()

	var records []mood.Record
	for rows.Next() {
		var r mood.Record
		var level int
		var recorded int64
		if err := rows.Scan(&r.ID, &level, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan mood row: %w", err)
		}
		r.Level = mood.Level(level)
		r.RecordedAt = time.Unix(0, recorded)
		records = append(records, r)
	}
	return records, rows.Err()
}
