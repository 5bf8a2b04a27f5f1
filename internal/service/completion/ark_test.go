package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not used")
}

func TestEinoCompleterConvertsRoles(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("ok", nil)}
	factoryCalls := 0
	completer := NewEinoCompleter(func(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
		factoryCalls++
		return fake, nil
	})

	req := Request{Messages: []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, MaxTokens: 150}

	for i := 0; i < 2; i++ {
		got, err := completer.Complete(context.Background(), "ark-key", req)
		if err != nil {
			t.Fatalf("Complete err: %v", err)
		}
		if got != "ok" {
			t.Fatalf("unexpected completion %q", got)
		}
	}

	if factoryCalls != 1 {
		t.Fatalf("expected model reuse for the same key, factory called %d times", factoryCalls)
	}
	if len(fake.input) != 3 || fake.input[0].Role != schema.System || fake.input[2].Role != schema.Assistant {
		t.Fatalf("unexpected converted input: %+v", fake.input)
	}
}

func TestEinoCompleterEmptyReply(t *testing.T) {
	completer := NewEinoCompleter(func(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
		return &fakeChatModel{reply: schema.AssistantMessage("", nil)}, nil
	})

	if _, err := completer.Complete(context.Background(), "k", Request{}); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestEinoCompleterMissingKey(t *testing.T) {
	completer := NewEinoCompleter(func(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
		t.Fatal("factory must not run without a key")
		return nil, nil
	})

	if _, err := completer.Complete(context.Background(), "", Request{}); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}
