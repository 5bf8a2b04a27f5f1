package voice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultBaseURL is the hosted conversational voice endpoint.
	DefaultBaseURL = "wss://api.elevenlabs.io/v1/convai/conversation"
	// DefaultAgentID is the companion agent configured on the vendor side.
	DefaultAgentID = "IpGxDXMq7Zdd28TdsFMg"
)

// Conn is the part of a websocket connection the session uses. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a conversation with the voice agent.
type Dialer interface {
	Dial(ctx context.Context, agentID, apiKey string) (Conn, error)
}

// WebsocketDialer dials the hosted endpoint with gorilla/websocket.
type WebsocketDialer struct {
	baseURL string
	dialer  *websocket.Dialer
}

// NewWebsocketDialer returns a dialer for baseURL, DefaultBaseURL when empty.
func NewWebsocketDialer(baseURL string, handshakeTimeout time.Duration) *WebsocketDialer {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if handshakeTimeout <= 0 {
		handshakeTimeout = 30 * time.Second
	}
	return &WebsocketDialer{
		baseURL: baseURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Dial connects with agent_id in the query and the key in the xi-api-key header.
func (d *WebsocketDialer) Dial(ctx context.Context, agentID, apiKey string) (Conn, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid voice endpoint %q: %w", d.baseURL, err)
	}
	q := u.Query()
	q.Set("agent_id", agentID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("xi-api-key", apiKey)

	conn, resp, err := d.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("voice handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to voice endpoint: %w", err)
	}
	return conn, nil
}
