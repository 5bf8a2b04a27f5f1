package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/mindbff/backend/internal/model/chat"
	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	"github.com/zhouzirui/mindbff/backend/internal/service/completion"
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps the in-memory chat sessions of this process.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	completer completion.Completer
	persona   persona.Persona
}

type entry struct {
	info    chat.Session
	session *Session
}

// NewService builds a Service whose sessions all talk as the companion persona.
func NewService(completer completion.Completer, personas persona.Store) *Service {
	return &Service{
		sessions:  make(map[string]*entry),
		completer: completer,
		persona:   persona.MustFind(personas, persona.CompanionID),
	}
}

// CreateSession provisions a session whose transcript opens with the greeting.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	info := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	var history []chat.Message
	if s.persona.Greeting != "" {
		history = append(history, chat.Message{
			Role:      chat.RoleAssistant,
			Content:   s.persona.Greeting,
			Timestamp: info.CreatedAt,
		})
	}

	s.mu.Lock()
	s.sessions[info.ID] = &entry{info: info, session: NewSession(s.completer, s.persona, history...)}
	s.mu.Unlock()

	return info, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Send appends a user turn to the session and returns the assistant reply.
func (s *Service) Send(ctx context.Context, sessionID, chatKey, text string) (chat.Message, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Message{}, err
	}
	return session.Send(ctx, chatKey, text)
}

// LoadTranscript returns the turns of the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Transcript(), nil
}
