package summarizer

import (
	"fmt"
	"strings"
)

// promptSet builds every prompt one fold needs.
type promptSet interface {
	single(chunk string) string
	first(chunk string, part int) string
	next(previous, chunk string, part int) string
	merge(partials []string) string
}

type documentPrompts struct{}

func (documentPrompts) single(chunk string) string {
	return "You are a legal assistant. Simplify and summarize the following document in plain English.\n" +
		"At the end, include a section titled 'Potential Concerns' if any unusual or risky details appear.\n\n" +
		chunk
}

func (documentPrompts) first(chunk string, _ int) string {
	return "You are a legal assistant. Simplify and summarize the following section in plain English.\n" +
		"Include a section titled 'Potential Concerns' if needed.\n\n" +
		chunk
}

func (documentPrompts) next(previous, chunk string, _ int) string {
	return "You are a legal assistant.\n" +
		"Summary of the previous section:\n" + previous + "\n\n" +
		"Now simplify and summarize this new section in plain English. " +
		"Also include a 'Potential Concerns' section if applicable.\n\n" +
		chunk
}

func (documentPrompts) merge(partials []string) string {
	var b strings.Builder
	b.WriteString("You are a legal assistant. Combine the following section summaries into one plain-English explanation of the whole document.\n\n")
	b.WriteString("Finish with a section titled 'Potential Concerns' that gathers every important issue or red flag from the summaries.\n\n")
	writeParts(&b, partials)
	return b.String()
}

type meetingPrompts struct {
	wordLimit int
}

const meetingChunkPrompt = `You are an AI meeting assistant. Below is part %d of a transcribed meeting.

Your task:
- Summarize the content clearly and professionally
- List key discussion points and decisions
- Extract any action items with timestamps, e.g., "[00:02 - 00:05] John to email client."
%s
Transcript:
%s`

func (meetingPrompts) single(chunk string) string {
	return fmt.Sprintf(meetingChunkPrompt, 1, "", chunk)
}

func (meetingPrompts) first(chunk string, part int) string {
	return fmt.Sprintf(meetingChunkPrompt, part, "", chunk)
}

func (meetingPrompts) next(previous, chunk string, part int) string {
	carried := "\nSummary of the previous part, for context only:\n" + previous + "\n"
	return fmt.Sprintf(meetingChunkPrompt, part, carried, chunk)
}

func (p meetingPrompts) merge(partials []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Based on the following summaries of a meeting, generate a final comprehensive summary.

Be sure to:
- Consolidate all content into one coherent summary
- Emphasize key insights and decisions made
- Finish with an "Action Items" section listing every action item with timestamps (if mentioned)
- Keep output under %d words
- Use bullet points for action items if possible

===
`, p.wordLimit)
	writeParts(&b, partials)
	return b.String()
}

func writeParts(b *strings.Builder, partials []string) {
	for i, s := range partials {
		fmt.Fprintf(b, "Part %d:\n%s\n\n", i+1, s)
	}
}
