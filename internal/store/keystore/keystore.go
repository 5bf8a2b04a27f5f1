package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"

	"github.com/zhouzirui/mindbff/backend/internal/model/keys"
)

// Namespace is the fixed record key the pair is stored under.
const Namespace = "mindBFF_api_keys"

// Store persists the key pair as a single clear-text record on this device.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// Open prepares a Store rooted at dir. "~" is expanded to the user's home.
func Open(dir string) (*Store, error) {
	basePath, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expand key store path %q: %w", dir, err)
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("create key store dir: %w", err)
	}

	// No cache: another process (the CLI, a second shell) may rewrite the record.
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath: basePath,
			TempDir:  filepath.Join(basePath, ".tmp"),
			PathPerm: 0o700,
			FilePerm: 0o600,
		}),
		basePath: basePath,
	}, nil
}

// Path returns the directory holding the record.
func (s *Store) Path() string {
	return s.basePath
}

// Load returns the stored pair. A missing or unreadable record yields an empty pair.
func (s *Store) Load() keys.Pair {
	if !s.d.Has(Namespace) {
		return keys.Pair{}
	}

	raw, err := s.d.Read(Namespace)
	if err != nil {
		log.Printf("[keystore] read failed, treating as empty: %v", err)
		return keys.Pair{}
	}

	var pair keys.Pair
	if err := json.Unmarshal(raw, &pair); err != nil {
		log.Printf("[keystore] stored record is not valid json, treating as empty: %v", err)
		return keys.Pair{}
	}
	return pair
}

// Save overwrites the whole record. diskv writes through TempDir and renames,
// so readers never observe a partial record.
func (s *Store) Save(pair keys.Pair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encode key pair: %w", err)
	}
	if err := s.d.Write(Namespace, raw); err != nil {
		return fmt.Errorf("write key pair: %w", err)
	}
	return nil
}

// Watch calls fn whenever the record is written, replaced or removed on disk,
// until ctx is done. fn runs on the watcher goroutine.
func (s *Store) Watch(ctx context.Context, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create key store watcher: %w", err)
	}
	if err := watcher.Add(s.basePath); err != nil {
		watcher.Close()
		return fmt.Errorf("watch key store dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != Namespace {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					fn()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[keystore] watch error: %v", err)
			}
		}
	}()
	return nil
}
