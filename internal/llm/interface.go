package llm

import (
	"context"
	"errors"
)

// FallbackContent is returned in place of a completion when a response
// arrived but no text could be extracted from it.
const FallbackContent = "Could not extract summary from OpenAI response."

// ErrTransport covers network errors and non-2xx responses from the backend.
var ErrTransport = errors.New("language model transport failure")

// Client sends one prompt to a language model and returns its text.
// Implementations never retry.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
