package contract

import (
	"context"
	"io"
)

// Notifier delivers a plain-text business event to a fixed destination.
// Implementations report delivery and never return an error to the caller.
type Notifier interface {
	Notify(ctx context.Context, message string) bool
}

// Transcriber turns one chunk of caller audio into an utterance.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (Utterance, error)
}
