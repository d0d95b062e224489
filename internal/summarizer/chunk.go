package summarizer

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

// chunkWords groups whitespace-separated words into chunks of at most size
// words. The last chunk keeps whatever is left.
func chunkWords(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// formatTimestamp renders seconds as mm:ss. Minutes are not wrapped into hours.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// renderSegment formats one segment as "[mm:ss - mm:ss] text".
func renderSegment(seg models.Segment) string {
	return fmt.Sprintf("[%s - %s] %s", formatTimestamp(*seg.Start), formatTimestamp(*seg.End), strings.TrimSpace(seg.Text))
}

// chunkLines packs newline-terminated lines into chunks of at most limit
// characters. Lines are never split, so a single line longer than limit
// becomes a chunk of its own.
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	var cur strings.Builder

	for _, line := range lines {
		if cur.Len() > 0 && cur.Len()+len(line)+1 > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
