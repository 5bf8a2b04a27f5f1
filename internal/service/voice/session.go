// Package voice runs the hands-free conversation with the hosted voice agent.
// The session only tracks connection state and the agent's last words; speech
// recognition and synthesis happen on the vendor side.
package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// State is the lifecycle of a voice session.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateListening  State = "listening"
	StateSpeaking   State = "speaking"
)

// Overlay texts shown to the user. They never block returning to idle.
const (
	PermissionErrorText = "Please allow microphone access to use the voice companion"
	ConnectErrorText    = "An error occurred connecting to the voice agent"
)

var (
	ErrMissingCredential = errors.New("voice api key is not configured")
	ErrNotActive         = errors.New("voice session is not active")
)

// StatusLabel is the caption under the microphone button.
func StatusLabel(s State) string {
	switch s {
	case StateConnecting:
		return "Connecting..."
	case StateListening:
		return "I'm listening..."
	case StateSpeaking:
		return "I'm speaking..."
	default:
		return "Tap to start talking"
	}
}

// Snapshot is a copy of the observable session state.
type Snapshot struct {
	State       State  `json:"state"`
	Label       string `json:"label"`
	LastMessage string `json:"lastMessage,omitempty"`
	Error       string `json:"error,omitempty"`
	// Notice carries the latest user transcript; it is transient and never stored.
	Notice string `json:"notice,omitempty"`
}

// Session owns at most one connection to the voice agent.
type Session struct {
	dialer  Dialer
	mic     Microphone
	agentID string

	// toggleMu serialises Toggle, SetCredential and Close.
	toggleMu sync.Mutex
	writeMu  sync.Mutex

	mu          sync.RWMutex
	state       State
	lastMessage string
	errText     string
	notice      string
	conn        Conn
	generation  uint64

	obsMu     sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int
}

// NewSession returns an idle session. agentID defaults to DefaultAgentID.
func NewSession(dialer Dialer, mic Microphone, agentID string) *Session {
	if strings.TrimSpace(agentID) == "" {
		agentID = DefaultAgentID
	}
	return &Session{
		dialer:    dialer,
		mic:       mic,
		agentID:   agentID,
		state:     StateIdle,
		observers: make(map[int]func(Snapshot)),
	}
}

// Toggle starts a conversation from idle and ends it from any other state.
func (s *Session) Toggle(ctx context.Context, voiceKey string) error {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()
	return s.toggleLocked(ctx, voiceKey)
}

// SetCredential restarts an active conversation with a new key. Idle sessions are left alone.
func (s *Session) SetCredential(ctx context.Context, voiceKey string) error {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	if s.State() == StateIdle {
		return nil
	}
	s.teardown()
	return s.toggleLocked(ctx, voiceKey)
}

// Close ends the conversation if one is open.
func (s *Session) Close() {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()
	if s.State() != StateIdle {
		s.teardown()
	}
}

func (s *Session) toggleLocked(ctx context.Context, voiceKey string) error {
	if s.State() != StateIdle {
		s.teardown()
		return nil
	}
	if strings.TrimSpace(voiceKey) == "" {
		return ErrMissingCredential
	}

	s.update(func() {
		s.state = StateConnecting
		s.errText = ""
		s.notice = ""
	})

	if err := s.mic.RequestPermission(ctx); err != nil {
		log.Printf("[voice] microphone access error: %v", err)
		s.update(func() {
			s.state = StateIdle
			s.errText = PermissionErrorText
		})
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	conn, err := s.dialer.Dial(ctx, s.agentID, voiceKey)
	if err != nil {
		log.Printf("[voice] voice agent error: %v", err)
		s.update(func() {
			s.state = StateIdle
			s.errText = ConnectErrorText
		})
		return err
	}

	var gen uint64
	s.update(func() {
		s.generation++
		gen = s.generation
		s.conn = conn
		s.state = StateListening
	})
	log.Printf("[voice] connected to voice agent %s", s.agentID)

	go s.readLoop(conn, gen)
	return nil
}

// teardown closes the current connection; the reader sees the close and exits.
func (s *Session) teardown() {
	var conn Conn
	s.update(func() {
		conn = s.conn
		s.conn = nil
		s.generation++
		s.state = StateIdle
		s.notice = ""
	})
	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Printf("[voice] close connection: %v", err)
		}
		log.Printf("[voice] disconnected from voice agent")
	}
}

func (s *Session) readLoop(conn Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.connectionLost(gen, err)
			return
		}
		s.handle(conn, gen, ParseInbound(data))
	}
}

func (s *Session) handle(conn Conn, gen uint64, in Inbound) {
	if !s.current(gen) {
		return
	}

	switch in.Kind {
	case KindUtterance:
		s.update(func() { s.lastMessage = in.Text })
	case KindTranscript:
		s.update(func() {
			s.notice = in.Text
			s.state = StateListening
		})
	case KindAudio:
		s.update(func() { s.state = StateSpeaking })
	case KindInterruption:
		s.update(func() { s.state = StateListening })
	case KindPing:
		if err := s.write(conn, map[string]any{"type": "pong", "event_id": in.EventID}); err != nil {
			log.Printf("[voice] failed to answer ping: %v", err)
		}
	default:
		log.Printf("[voice] ignoring frame: %.120s", in.Raw)
	}
}

// connectionLost handles a reader error. Errors after an intentional teardown are expected.
func (s *Session) connectionLost(gen uint64, err error) {
	if !s.current(gen) {
		return
	}

	normal := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
	if !normal {
		log.Printf("[voice] voice agent error: %v", err)
	}

	var conn Conn
	s.update(func() {
		if s.generation != gen {
			return
		}
		conn = s.conn
		s.conn = nil
		s.generation++
		s.state = StateIdle
		s.notice = ""
		if !normal {
			s.errText = ConnectErrorText
		}
	})
	if conn != nil {
		conn.Close()
	}
	log.Printf("[voice] disconnected from voice agent")
}

// SendAudio forwards one captured audio chunk to the agent.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return ErrNotActive
	}
	return s.write(conn, map[string]string{
		"user_audio_chunk": base64.StdEncoding.EncodeToString(chunk),
	})
}

func (s *Session) write(conn Conn, v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// ClearError dismisses the overlay.
func (s *Session) ClearError() {
	s.update(func() { s.errText = "" })
}

// Subscribe registers fn for every state change and returns the matching unsubscribe.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Session) current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == gen
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:       s.state,
		Label:       StatusLabel(s.state),
		LastMessage: s.lastMessage,
		Error:       s.errText,
		Notice:      s.notice,
	}
}

// update applies fn under the state lock, then notifies observers outside it.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.obsMu.Lock()
	observers := make([]func(Snapshot), 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.obsMu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}
