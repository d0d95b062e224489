package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/llm"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
)

// ErrMalformedInput is returned before any model call when the input has no usable structure.
var ErrMalformedInput = errors.New("malformed input")

func (s *implSummarizer) Summarize(ctx context.Context, content []byte, mode Mode) (string, error) {
	switch mode {
	case ModeDocument:
		return s.SummarizeDocument(ctx, string(content))
	case ModeMeeting:
		return s.SummarizeTranscript(ctx, content)
	default:
		return "", fmt.Errorf("%w: unknown mode %d", ErrMalformedInput, mode)
	}
}

// SummarizeDocument splits text into word chunks and folds over them.
func (s *implSummarizer) SummarizeDocument(ctx context.Context, text string) (string, error) {
	chunks := chunkWords(text, s.cfg.ChunkWords)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: document is empty", ErrMalformedInput)
	}

	s.logger.Info(ctx, "Summarizing document in %d chunk(s)", len(chunks))
	return s.fold(ctx, chunks, documentPrompts{})
}

// SummarizeTranscript renders segments as timestamped lines and folds over
// character-bounded chunks. Short transcripts go out in a single call.
func (s *implSummarizer) SummarizeTranscript(ctx context.Context, payload []byte) (string, error) {
	segments, err := parseSegments(payload)
	if err != nil {
		return "", err
	}

	lines := make([]string, len(segments))
	total := 0
	for i, seg := range segments {
		lines[i] = renderSegment(seg)
		total += len(lines[i]) + 1
	}

	prompts := meetingPrompts{wordLimit: s.cfg.MeetingWordLimit}

	var chunks []string
	if total <= s.cfg.SinglePassChars {
		chunks = []string{strings.Join(lines, "\n") + "\n"}
	} else {
		chunks = chunkLines(lines, s.cfg.ChunkChars)
	}

	s.logger.Info(ctx, "Summarizing transcript: %d segments, %d chars, %d chunk(s)", len(segments), total, len(chunks))
	return s.fold(ctx, chunks, prompts)
}

// fold runs the chunks through the model strictly in order. Each prompt
// after the first carries the previous chunk's summary. Any failure
// discards the partial summaries collected so far.
func (s *implSummarizer) fold(ctx context.Context, chunks []string, prompts promptSet) (string, error) {
	if len(chunks) == 1 {
		return s.call(ctx, prompts.single(chunks[0]))
	}

	partials := make([]string, 0, len(chunks))
	previous := ""
	for i, chunk := range chunks {
		var prompt string
		if i == 0 {
			prompt = prompts.first(chunk, i+1)
		} else {
			prompt = prompts.next(previous, chunk, i+1)
		}

		summary, err := s.call(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("summarize part %d/%d: %w", i+1, len(chunks), err)
		}
		s.logger.Debug(ctx, "Part %d/%d summarized (%d chars)", i+1, len(chunks), len(summary))

		partials = append(partials, summary)
		previous = summary
	}

	final, err := s.call(ctx, prompts.merge(partials))
	if err != nil {
		return "", fmt.Errorf("merge %d parts: %w", len(partials), err)
	}
	return final, nil
}

func (s *implSummarizer) call(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	out, err := s.client.Complete(ctx, prompt)
	switch {
	case err != nil:
		s.metrics.RecordLLMCall(metrics.OutcomeError)
		s.logger.Warn(ctx, "Language model call failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return "", err
	case out == llm.FallbackContent:
		s.metrics.RecordLLMCall(metrics.OutcomeFallback)
	default:
		s.metrics.RecordLLMCall(metrics.OutcomeOK)
	}
	return out, nil
}
