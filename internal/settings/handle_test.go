package settings

import (
	"errors"
	"testing"

	"github.com/zhouzirui/mindbff/backend/internal/model/keys"
)

type memoryPersister struct {
	pair    keys.Pair
	saveErr error
	saves   int
}

func (m *memoryPersister) Load() keys.Pair { return m.pair }

func (m *memoryPersister) Save(pair keys.Pair) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.pair = pair
	return nil
}

func TestLoadUsesStoredPair(t *testing.T) {
	store := &memoryPersister{pair: keys.Pair{ChatKey: "sk", VoiceKey: "xi"}}
	handle := Load(store)

	if got := handle.Keys(); got != store.pair {
		t.Fatalf("Keys() = %+v, want %+v", got, store.pair)
	}
}

func TestSaveNotifiesListeners(t *testing.T) {
	store := &memoryPersister{pair: keys.Pair{VoiceKey: "old"}}
	handle := Load(store)

	var previous, current keys.Pair
	calls := 0
	handle.OnChange(func(p, c keys.Pair) {
		calls++
		previous, current = p, c
	})

	next := keys.Pair{ChatKey: "sk", VoiceKey: "new"}
	if err := handle.Save(next); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected one notification, got %d", calls)
	}
	if previous.VoiceKey != "old" || current != next {
		t.Fatalf("unexpected change args: %+v -> %+v", previous, current)
	}
	if handle.Keys() != next || store.pair != next {
		t.Fatalf("expected cache and store to hold the new pair")
	}
}

func TestSaveFailureKeepsCache(t *testing.T) {
	store := &memoryPersister{pair: keys.Pair{ChatKey: "kept"}, saveErr: errors.New("disk full")}
	handle := Load(store)

	notified := false
	handle.OnChange(func(keys.Pair, keys.Pair) { notified = true })

	if err := handle.Save(keys.Pair{ChatKey: "lost"}); err == nil {
		t.Fatal("expected save error")
	}
	if handle.Keys().ChatKey != "kept" {
		t.Fatalf("cache should not change on failed save, got %+v", handle.Keys())
	}
	if notified {
		t.Fatal("listeners should not run on failed save")
	}
}

func TestReloadNotifiesOnlyOnChange(t *testing.T) {
	store := &memoryPersister{pair: keys.Pair{ChatKey: "sk-1"}}
	handle := Load(store)

	calls := 0
	handle.OnChange(func(keys.Pair, keys.Pair) { calls++ })

	handle.Reload()
	if calls != 0 {
		t.Fatalf("unchanged store should not notify, got %d calls", calls)
	}

	// another process rewrote the record
	store.pair = keys.Pair{ChatKey: "sk-1", VoiceKey: "xi-2"}
	handle.Reload()
	if calls != 1 {
		t.Fatalf("expected one notification after external change, got %d", calls)
	}
	if handle.Keys().VoiceKey != "xi-2" {
		t.Fatalf("expected reloaded pair, got %+v", handle.Keys())
	}
}
