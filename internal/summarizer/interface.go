package summarizer

import "context"

// Mode selects the prompt family used for a summary.
type Mode int

const (
	// ModeDocument summarizes plain text and closes with potential concerns.
	ModeDocument Mode = iota
	// ModeMeeting summarizes a timestamped transcript and closes with action items.
	ModeMeeting
)

func (m Mode) String() string {
	if m == ModeMeeting {
		return "meeting"
	}
	return "document"
}

// Summarizer reduces arbitrarily long content to one summary through
// sequential, context-carrying language-model calls.
type Summarizer interface {
	// Summarize dispatches on mode: content is plain text for ModeDocument
	// and a transcription payload for ModeMeeting.
	Summarize(ctx context.Context, content []byte, mode Mode) (string, error)
	SummarizeDocument(ctx context.Context, text string) (string, error)
	SummarizeTranscript(ctx context.Context, payload []byte) (string, error)
}
