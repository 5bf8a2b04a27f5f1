// Package journal turns a free-text journal entry into a short supportive reflection.
package journal

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/analysis/emotion"
	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	"github.com/zhouzirui/mindbff/backend/internal/service/completion"
	"github.com/zhouzirui/mindbff/backend/internal/store"
)

var (
	ErrEmptyEntry        = errors.New("journal entry is empty")
	ErrBusy              = errors.New("an analysis is already running")
	ErrMissingCredential = errors.New("chat api key is not configured")
	ErrNoStore           = errors.New("no history store configured")
)

// Analyzer holds the working entry of the journal screen.
type Analyzer struct {
	completer completion.Completer
	persona   persona.Persona
	store     store.JournalStore

	busy atomic.Bool

	mu      sync.RWMutex
	text    string
	summary string
}

// NewAnalyzer wires an Analyzer. entries may be nil, in which case Save reports ErrNoStore.
func NewAnalyzer(completer completion.Completer, personas persona.Store, entries store.JournalStore) *Analyzer {
	return &Analyzer{
		completer: completer,
		persona:   persona.MustFind(personas, persona.JournalAnalystID),
		store:     entries,
	}
}

// Analyze asks the chat endpoint for a reflection on text and stores it as the current summary.
// Endpoint failures are not returned: the summary becomes a fixed apology instead.
func (a *Analyzer) Analyze(ctx context.Context, text, chatKey string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyEntry
	}
	if !a.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer a.busy.Store(false)

	if strings.TrimSpace(chatKey) == "" {
		return "", ErrMissingCredential
	}

	a.mu.Lock()
	a.text = text
	a.summary = ""
	a.mu.Unlock()

	req := completion.Request{
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: a.persona.SystemPrompt},
			{Role: completion.RoleUser, Content: a.persona.UserPrefix + text},
		},
		MaxTokens: a.persona.MaxTokens,
	}

	summary, err := a.completer.Complete(ctx, chatKey, req)
	switch {
	case errors.Is(err, completion.ErrEmptyCompletion):
		summary = a.persona.EmptyReply
	case err != nil:
		log.Printf("[journal] error analyzing journal entry: %v", err)
		summary = a.persona.FailureReply
	}

	a.mu.Lock()
	a.summary = summary
	a.mu.Unlock()
	return summary, nil
}

// Draft replaces the working text. A changed text invalidates the summary.
func (a *Analyzer) Draft(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if text != a.text {
		a.text = text
		a.summary = ""
	}
}

// Summary returns the latest reflection, empty when none was produced yet.
func (a *Analyzer) Summary() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.summary
}

// Text returns the working entry text.
func (a *Analyzer) Text() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}

// Analyzing reports whether a request is in flight.
func (a *Analyzer) Analyzing() bool {
	return a.busy.Load()
}

// Save persists the working entry with its summary and tone, then clears the form.
func (a *Analyzer) Save(ctx context.Context, now time.Time) (journal.Entry, error) {
	if a.busy.Load() {
		return journal.Entry{}, ErrBusy
	}

	a.mu.RLock()
	text, summary := a.text, a.summary
	a.mu.RUnlock()

	if strings.TrimSpace(text) == "" {
		return journal.Entry{}, ErrEmptyEntry
	}
	if a.store == nil {
		return journal.Entry{}, ErrNoStore
	}

	decision := emotion.Analyze(text, summary)
	saved, err := a.store.SaveEntry(ctx, journal.Entry{
		Text:      text,
		Summary:   summary,
		Tone:      string(decision.Tone),
		CreatedAt: now,
	})
	if err != nil {
		return journal.Entry{}, err
	}

	a.mu.Lock()
	if a.text == text {
		a.text = ""
		a.summary = ""
	}
	a.mu.Unlock()

	log.Printf("[journal] entry saved id=%s tone=%s", saved.ID, saved.Tone)
	return saved, nil
}

// Entries lists saved entries created at or after since.
func (a *Analyzer) Entries(ctx context.Context, since time.Time) ([]journal.Entry, error) {
	if a.store == nil {
		return nil, ErrNoStore
	}
	return a.store.ListEntries(ctx, since)
}
