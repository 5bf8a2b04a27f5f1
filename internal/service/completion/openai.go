package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// DefaultBaseURL is the hosted OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultModel is the model both screens use.
const DefaultModel = "gpt-4o-mini"

// NewOpenAI returns a completer backed by eino's OpenAI chat model.
// Empty arguments fall back to the defaults.
func NewOpenAI(baseURL, modelName string, timeout time.Duration) *EinoCompleter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &replyTransport{next: http.DefaultTransport},
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return NewEinoCompleter(func(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:     apiKey,
			BaseURL:    baseURL,
			Model:      modelName,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return chatModel, nil
	})
}

type replyCheckKey struct{}

// replyCheck carries the transport's verdict on one reply back to Complete.
type replyCheck struct {
	err error
}

func withReplyCheck(ctx context.Context) (context.Context, *replyCheck) {
	check := &replyCheck{}
	return context.WithValue(ctx, replyCheckKey{}, check), check
}

// replyTransport inspects chat-completion replies before the SDK decodes them,
// so a missing "choices" field is told apart from an empty one.
type replyTransport struct {
	next http.RoundTripper
}

func (t *replyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	check, _ := req.Context().Value(replyCheckKey{}).(*replyCheck)
	if check == nil {
		return resp, nil
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	check.err = classifyReply(resp.StatusCode, raw)
	return resp, nil
}

// classifyReply returns nil for a usable reply, ErrEmptyCompletion for a present but
// empty choice list or blank content, and an error for anything else.
func classifyReply(status int, raw []byte) error {
	if status < 200 || status > 299 {
		snippet := raw
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return &StatusError{Code: status, Body: strings.TrimSpace(string(snippet))}
	}

	var shape struct {
		Choices *[]struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return fmt.Errorf("decode completion response: %w", err)
	}
	if shape.Choices == nil {
		return ErrMalformedResponse
	}
	if len(*shape.Choices) == 0 || (*shape.Choices)[0].Message.Content == "" {
		return ErrEmptyCompletion
	}
	return nil
}
