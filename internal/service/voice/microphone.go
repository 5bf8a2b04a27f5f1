package voice

import (
	"context"
	"errors"
)

var ErrPermissionDenied = errors.New("microphone permission denied")

// Microphone asks the host for capture permission before a conversation starts.
type Microphone interface {
	RequestPermission(ctx context.Context) error
}

// MicrophoneFunc adapts a function to Microphone.
type MicrophoneFunc func(ctx context.Context) error

func (f MicrophoneFunc) RequestPermission(ctx context.Context) error {
	return f(ctx)
}

// StaticMicrophone answers every request the same way. Hosts without an
// interactive prompt configure it from VOICE_MICROPHONE.
type StaticMicrophone struct {
	Granted bool
}

func (m StaticMicrophone) RequestPermission(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.Granted {
		return ErrPermissionDenied
	}
	return nil
}
