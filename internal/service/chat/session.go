package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/model/chat"
	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	"github.com/zhouzirui/mindbff/backend/internal/service/completion"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is still pending")
)

// Session holds one ordered transcript and sends new turns against the completer.
type Session struct {
	mu        sync.Mutex
	messages  []chat.Message
	pending   bool
	completer completion.Completer
	persona   persona.Persona
	now       func() time.Time
}

// NewSession starts a transcript seeded with history (usually empty or a greeting).
func NewSession(completer completion.Completer, p persona.Persona, history ...chat.Message) *Session {
	return &Session{
		messages:  append(make([]chat.Message, 0, 16), history...),
		completer: completer,
		persona:   p,
		now:       time.Now,
	}
}

// Send appends the user turn right away, asks for a reply and appends it.
// Endpoint failures never surface as errors: the apology turn is the signal.
func (s *Session) Send(ctx context.Context, chatKey, text string) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return chat.Message{}, ErrBusy
	}
	prior := append([]chat.Message(nil), s.messages...)
	userMsg := chat.Message{Role: chat.RoleUser, Content: text, Timestamp: s.now()}
	s.messages = append(s.messages, userMsg)
	s.pending = true
	s.mu.Unlock()

	reply := s.reply(ctx, chatKey, prior, userMsg)

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.pending = false
	s.mu.Unlock()

	return reply, nil
}

func (s *Session) reply(ctx context.Context, chatKey string, prior []chat.Message, userMsg chat.Message) chat.Message {
	req := completion.Request{
		Messages:  buildMessages(s.persona.SystemPrompt, prior, userMsg),
		MaxTokens: s.persona.MaxTokens,
	}

	content, err := s.completer.Complete(ctx, chatKey, req)
	switch {
	case errors.Is(err, completion.ErrEmptyCompletion):
		content = s.persona.EmptyReply
	case err != nil:
		log.Printf("[chat] error sending message: %v", err)
		content = s.persona.FailureReply
	}

	return chat.Message{Role: chat.RoleAssistant, Content: content, Timestamp: s.now()}
}

// Transcript returns a copy of the turns so far, oldest first.
func (s *Session) Transcript() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Message(nil), s.messages...)
}

// Pending reports whether a reply is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func buildMessages(system string, prior []chat.Message, userMsg chat.Message) []completion.Message {
	out := make([]completion.Message, 0, len(prior)+2)
	out = append(out, completion.Message{Role: completion.RoleSystem, Content: system})
	for _, msg := range prior {
		role := completion.RoleUser
		if msg.Role == chat.RoleAssistant {
			role = completion.RoleAssistant
		}
		out = append(out, completion.Message{Role: role, Content: msg.Content})
	}
	return append(out, completion.Message{Role: completion.RoleUser, Content: userMsg.Content})
}
