// Package settings holds the application-level key configuration. One Handle
// is built at startup and passed to every screen that needs credentials.
package settings

import (
	"fmt"
	"log"
	"sync"

	"github.com/zhouzirui/mindbff/backend/internal/model/keys"
)

// Persister is the durable side of the handle.
type Persister interface {
	Load() keys.Pair
	Save(pair keys.Pair) error
}

// ChangeFunc is called after a successful save or reload with the previous and new pair.
type ChangeFunc func(previous, current keys.Pair)

// Handle caches the key pair and writes through to the Persister.
type Handle struct {
	mu        sync.RWMutex
	store     Persister
	current   keys.Pair
	listeners []ChangeFunc
}

// Load builds a Handle from whatever the store currently holds.
func Load(store Persister) *Handle {
	pair := store.Load()
	log.Printf("[settings] loaded keys chat=%t voice=%t", pair.HasChat(), pair.HasVoice())
	return &Handle{store: store, current: pair}
}

// Keys returns the current pair.
func (h *Handle) Keys() keys.Pair {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnChange registers fn to run after every successful Save.
func (h *Handle) OnChange(fn ChangeFunc) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Save persists pair, replaces the cached copy and notifies listeners.
func (h *Handle) Save(pair keys.Pair) error {
	if err := h.store.Save(pair); err != nil {
		return fmt.Errorf("save keys: %w", err)
	}
	h.swap(pair, true)
	return nil
}

// Reload re-reads the store. Listeners run only when the pair changed,
// e.g. after `mindbff keys set` in another terminal.
func (h *Handle) Reload() {
	if h.swap(h.store.Load(), false) {
		log.Printf("[settings] keys changed on disk, reloaded")
	}
}

func (h *Handle) swap(pair keys.Pair, always bool) bool {
	h.mu.Lock()
	previous := h.current
	if !always && previous == pair {
		h.mu.Unlock()
		return false
	}
	h.current = pair
	listeners := append([]ChangeFunc(nil), h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(previous, pair)
	}
	return true
}
