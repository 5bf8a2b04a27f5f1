package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ModelFactory builds an eino chat model bound to one api key.
type ModelFactory func(ctx context.Context, apiKey string) (model.BaseChatModel, error)

// EinoCompleter routes completions through an eino chat model (OpenAI or Ark).
type EinoCompleter struct {
	factory ModelFactory

	mu     sync.Mutex
	key    string
	cached model.BaseChatModel
}

// NewEinoCompleter wraps factory. The model for the most recent key is reused.
func NewEinoCompleter(factory ModelFactory) *EinoCompleter {
	return &EinoCompleter{factory: factory}
}

// Complete converts the request into eino messages and runs Generate once.
func (e *EinoCompleter) Complete(ctx context.Context, apiKey string, req Request) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrMissingKey
	}

	chatModel, err := e.modelFor(ctx, apiKey)
	if err != nil {
		return "", err
	}

	var opts []model.Option
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	ctx, check := withReplyCheck(ctx)
	msg, err := chatModel.Generate(ctx, toSchemaMessages(req.Messages), opts...)
	if check.err != nil {
		return "", check.err
	}
	if err != nil {
		return "", fmt.Errorf("eino generate failed: %w", err)
	}
	if msg == nil || msg.Content == "" {
		return "", ErrEmptyCompletion
	}
	return msg.Content, nil
}

func (e *EinoCompleter) modelFor(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cached != nil && e.key == apiKey {
		return e.cached, nil
	}

	chatModel, err := e.factory(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	e.key = apiKey
	e.cached = chatModel
	return chatModel, nil
}

func toSchemaMessages(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, schema.SystemMessage(msg.Content))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		default:
			out = append(out, schema.UserMessage(msg.Content))
		}
	}
	return out
}
