package voice

import (
	"encoding/json"
	"strings"
)

// Kind classifies a frame received from the voice endpoint.
type Kind string

const (
	KindUtterance    Kind = "utterance"
	KindTranscript   Kind = "transcript"
	KindAudio        Kind = "audio"
	KindInterruption Kind = "interruption"
	KindPing         Kind = "ping"
	KindUnknown      Kind = "unknown"
)

// Inbound is one parsed frame. Raw always holds the original bytes.
type Inbound struct {
	Kind    Kind
	Text    string
	EventID int
	Raw     []byte
}

type inboundEnvelope struct {
	Type       string  `json:"type"`
	Message    *string `json:"message"`
	Text       *string `json:"text"`
	Transcript *string `json:"transcript"`

	AgentResponseEvent *struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event"`
	UserTranscriptionEvent *struct {
		UserTranscript string `json:"user_transcript"`
	} `json:"user_transcription_event"`
	AudioEvent *struct {
		EventID int `json:"event_id"`
	} `json:"audio_event"`
	PingEvent *struct {
		EventID int `json:"event_id"`
	} `json:"ping_event"`
}

// ParseInbound classifies raw. Frames that are not JSON objects, or carry
// none of the known fields, come back as KindUnknown.
func ParseInbound(raw []byte) Inbound {
	in := Inbound{Kind: KindUnknown, Raw: raw}

	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return in
	}

	switch strings.TrimSpace(env.Type) {
	case "agent_response":
		if env.AgentResponseEvent != nil {
			in.Kind, in.Text = KindUtterance, env.AgentResponseEvent.AgentResponse
			return in
		}
	case "user_transcript":
		if env.UserTranscriptionEvent != nil {
			in.Kind, in.Text = KindTranscript, env.UserTranscriptionEvent.UserTranscript
			return in
		}
	case "audio":
		in.Kind = KindAudio
		if env.AudioEvent != nil {
			in.EventID = env.AudioEvent.EventID
		}
		return in
	case "interruption":
		in.Kind = KindInterruption
		return in
	case "ping":
		in.Kind = KindPing
		if env.PingEvent != nil {
			in.EventID = env.PingEvent.EventID
		}
		return in
	}

	switch {
	case env.Message != nil:
		in.Kind, in.Text = KindUtterance, *env.Message
	case env.Text != nil:
		in.Kind, in.Text = KindUtterance, *env.Text
	case env.Transcript != nil:
		in.Kind, in.Text = KindTranscript, *env.Transcript
	}
	return in
}
