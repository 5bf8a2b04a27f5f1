package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zhouzirui/mindbff/backend/internal/model/chat"
	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/mindbff/backend/internal/service/chat"
	"github.com/zhouzirui/mindbff/backend/internal/service/completion"
)

func companion() persona.Persona {
	return persona.MustFind(nil, persona.CompanionID)
}

func newEndpoint(t *testing.T, handler http.HandlerFunc) completion.Completer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return completion.NewOpenAI(srv.URL, "", 2*time.Second)
}

func TestSendAppendsUserThenAssistant(t *testing.T) {
	client := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"Hello! How are you?"}}]}`))
	})
	session := chatservice.NewSession(client, companion())

	reply, err := session.Send(context.Background(), "sk", "Hi there")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if reply.Role != chat.RoleAssistant || reply.Content != "Hello! How are you?" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(transcript))
	}
	if transcript[0].Role != chat.RoleUser || transcript[0].Content != "Hi there" {
		t.Fatalf("unexpected first turn %+v", transcript[0])
	}
	if transcript[1].Role != chat.RoleAssistant || transcript[1].Content != "Hello! How are you?" {
		t.Fatalf("unexpected second turn %+v", transcript[1])
	}
}

func TestSendServerErrorAppendsApology(t *testing.T) {
	client := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	session := chatservice.NewSession(client, companion())

	reply, err := session.Send(context.Background(), "sk", "hello")
	if err != nil {
		t.Fatalf("Send should not fail on endpoint errors: %v", err)
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected user + apology, got %d turns", len(transcript))
	}
	if transcript[0].Content != "hello" {
		t.Fatalf("user message should stay appended, got %+v", transcript[0])
	}
	if reply.Content != companion().FailureReply || transcript[1].Content != companion().FailureReply {
		t.Fatalf("expected apology, got %q", reply.Content)
	}
}

func TestSendEmptyCompletionUsesFallback(t *testing.T) {
	client := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	session := chatservice.NewSession(client, companion())

	reply, err := session.Send(context.Background(), "sk", "anyone?")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if reply.Content != companion().EmptyReply {
		t.Fatalf("expected empty-completion fallback, got %q", reply.Content)
	}
}

func TestSendMissingChoicesUsesApology(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `{"choices":null}`, `{"error":{"message":"x"}}`} {
		client := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		session := chatservice.NewSession(client, companion())

		reply, err := session.Send(context.Background(), "sk", "hello?")
		if err != nil {
			t.Fatalf("Send err: %v", err)
		}
		if reply.Content != companion().FailureReply {
			t.Fatalf("body %s: expected apology, got %q", body, reply.Content)
		}
	}
}

func TestSendIncludesWholeTranscript(t *testing.T) {
	var lastRequest struct {
		Messages  []completion.Message `json:"messages"`
		MaxTokens int                  `json:"max_tokens"`
	}
	client := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&lastRequest)
		w.Write([]byte(`{"choices":[{"message":{"content":"noted"}}]}`))
	})
	greeting := chat.Message{Role: chat.RoleAssistant, Content: "welcome"}
	session := chatservice.NewSession(client, companion(), greeting)

	ctx := context.Background()
	if _, err := session.Send(ctx, "sk", "first"); err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if _, err := session.Send(ctx, "sk", "second"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	want := []string{companion().SystemPrompt, "welcome", "first", "noted", "second"}
	if len(lastRequest.Messages) != len(want) {
		t.Fatalf("expected %d request messages, got %d", len(want), len(lastRequest.Messages))
	}
	for i, content := range want {
		if lastRequest.Messages[i].Content != content {
			t.Fatalf("message %d = %q, want %q", i, lastRequest.Messages[i].Content, content)
		}
	}
	if lastRequest.Messages[0].Role != completion.RoleSystem || lastRequest.Messages[1].Role != completion.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", lastRequest.Messages[:2])
	}
	if lastRequest.MaxTokens != 300 {
		t.Fatalf("expected max_tokens 300, got %d", lastRequest.MaxTokens)
	}
}

func TestSendRejectsBlankText(t *testing.T) {
	var calls atomic.Int32
	client := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	session := chatservice.NewSession(client, companion())

	if _, err := session.Send(context.Background(), "sk", "   "); !errors.Is(err, chatservice.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if calls.Load() != 0 || len(session.Transcript()) != 0 {
		t.Fatal("blank text must not touch the endpoint or transcript")
	}
}

func TestSendWhilePendingIsRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	client := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Write([]byte(`{"choices":[{"message":{"content":"done"}}]}`))
	})
	session := chatservice.NewSession(client, companion())

	done := make(chan error, 1)
	go func() {
		_, err := session.Send(context.Background(), "sk", "slow")
		done <- err
	}()

	<-entered
	if !session.Pending() {
		t.Fatal("expected pending state while the reply is in flight")
	}
	if _, err := session.Send(context.Background(), "sk", "impatient"); !errors.Is(err, chatservice.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Send err: %v", err)
	}
	if got := len(session.Transcript()); got != 2 {
		t.Fatalf("expected 2 turns, got %d", got)
	}
}

func TestServiceCreateSessionSeedsGreeting(t *testing.T) {
	svc := chatservice.NewService(completion.NewOpenAI("http://127.0.0.1:0", "", time.Second), persona.NewMemoryStore(persona.Seed()))
	ctx := context.Background()

	info, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	transcript, err := svc.LoadTranscript(ctx, info.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(transcript) != 1 || transcript[0].Content != companion().Greeting {
		t.Fatalf("expected greeting, got %+v", transcript)
	}
}

func TestServiceUnknownSession(t *testing.T) {
	svc := chatservice.NewService(completion.NewOpenAI("", "", time.Second), persona.NewMemoryStore(persona.Seed()))

	if _, err := svc.Send(context.Background(), "missing", "sk", "hi"); !errors.Is(err, chatservice.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
