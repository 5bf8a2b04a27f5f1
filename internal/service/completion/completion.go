// Package completion talks to hosted chat-completion endpoints. Callers get
// either the completion text or an error; turning errors into the friendly
// fallback strings is the job of the journal and chat services.
package completion

import (
	"context"
	"errors"
	"fmt"
)

// Roles used in a completion request.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrEmptyCompletion means the endpoint answered well-formed JSON without any completion text.
	ErrEmptyCompletion = errors.New("completion: response contained no completion")
	// ErrMalformedResponse means a 2xx body without a "choices" list.
	ErrMalformedResponse = errors.New("completion: response has no choices field")
	// ErrMissingKey is returned before any network attempt when no key was supplied.
	ErrMissingKey = errors.New("completion: api key is required")
)

// Message is one turn in the request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat-completion call.
type Request struct {
	Messages  []Message
	MaxTokens int
}

// Completer issues one completion per call. The key is supplied per call
// because the user may change it at any time.
type Completer interface {
	Complete(ctx context.Context, apiKey string, req Request) (string, error)
}

// StatusError reports a non-2xx answer from the endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion endpoint returned status %d: %s", e.Code, e.Body)
}
