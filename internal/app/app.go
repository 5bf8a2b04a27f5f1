// Package app builds the services once and hands them to the HTTP and terminal shells.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/config"
	"github.com/zhouzirui/mindbff/backend/internal/handler"
	"github.com/zhouzirui/mindbff/backend/internal/model/keys"
	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	"github.com/zhouzirui/mindbff/backend/internal/service/chat"
	"github.com/zhouzirui/mindbff/backend/internal/service/completion"
	"github.com/zhouzirui/mindbff/backend/internal/service/journal"
	"github.com/zhouzirui/mindbff/backend/internal/service/mood"
	"github.com/zhouzirui/mindbff/backend/internal/service/progress"
	"github.com/zhouzirui/mindbff/backend/internal/service/voice"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/internal/shell"
	"github.com/zhouzirui/mindbff/backend/internal/store"
	"github.com/zhouzirui/mindbff/backend/internal/store/keystore"
)

// App holds every long-lived component of one running companion.
type App struct {
	Config    *config.Config
	KeyStore  *keystore.Store
	Settings  *settings.Handle
	History   store.History
	Personas  persona.Store
	Completer completion.Completer
	Chat      *chat.Service
	Journal   *journal.Analyzer
	Mood      *mood.Recorder
	Progress  *progress.Builder
	Voice     *voice.Session
	Navigator *shell.Navigator

	stopWatch context.CancelFunc
}

// New wires the components described by cfg.
func New(cfg *config.Config) (*App, error) {
	ks, err := keystore.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}

	history, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if history.Durable() {
		log.Printf("[app] history stored at %s", cfg.Storage.DBPath)
	} else {
		log.Println("[app] MINDBFF_DB_PATH not set, history is kept in memory only")
	}

	completer, err := cfg.Chat.NewCompleter()
	if err != nil {
		history.Close()
		return nil, fmt.Errorf("init chat provider: %w", err)
	}
	log.Printf("[app] chat provider %s", cfg.Chat.Provider)

	personas := persona.NewMemoryStore(persona.Seed())
	handle := settings.Load(ks)

	voiceSession := voice.NewSession(
		voice.NewWebsocketDialer(cfg.Voice.BaseURL, cfg.Voice.HandshakeTimeout),
		voice.StaticMicrophone{Granted: cfg.Voice.MicrophoneGranted},
		cfg.Voice.AgentID,
	)

	a := &App{
		Config:    cfg,
		KeyStore:  ks,
		Settings:  handle,
		History:   history,
		Personas:  personas,
		Completer: completer,
		Chat:      chat.NewService(completer, personas),
		Journal:   journal.NewAnalyzer(completer, personas, history),
		Mood:      mood.NewRecorder(history),
		Progress:  progress.NewBuilder(history),
		Voice:     voiceSession,
		Navigator: shell.NewNavigator(),
	}

	handle.OnChange(a.onKeysChanged)

	watchCtx, stop := context.WithCancel(context.Background())
	if err := ks.Watch(watchCtx, handle.Reload); err != nil {
		log.Printf("[app] keys changed elsewhere will need a restart: %v", err)
	}
	a.stopWatch = stop
	return a, nil
}

// onKeysChanged restarts a running voice conversation when its key changes.
func (a *App) onKeysChanged(previous, current keys.Pair) {
	if previous.VoiceKey == current.VoiceKey {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Voice.HandshakeTimeout+5*time.Second)
	defer cancel()
	if err := a.Voice.SetCredential(ctx, current.VoiceKey); err != nil {
		log.Printf("[app] failed to restart voice session with new key: %v", err)
	}
}

// RouterDependencies exposes the components to the HTTP layer.
func (a *App) RouterDependencies() handler.Dependencies {
	return handler.Dependencies{
		Settings:  a.Settings,
		Navigator: a.Navigator,
		Personas:  a.Personas,
		Chat:      a.Chat,
		Journal:   a.Journal,
		Mood:      a.Mood,
		Progress:  a.Progress,
		Voice:     a.Voice,
		Durable:   a.History.Durable(),
		Now:       time.Now,
	}
}

// Close stops watching the key record, ends the voice conversation and closes the history store.
func (a *App) Close() error {
	a.stopWatch()
	a.Voice.Close()
	return a.History.Close()
}
