package summarizer

import (
	"encoding/json"
	"fmt"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

// parseSegments decodes a transcription payload and checks that every
// segment carries both timestamps.
func parseSegments(payload []byte) ([]models.Segment, error) {
	var tp models.TranscriptPayload
	if err := json.Unmarshal(payload, &tp); err != nil {
		return nil, fmt.Errorf("%w: decode transcript: %v", ErrMalformedInput, err)
	}
	if len(tp.Segments) == 0 {
		return nil, fmt.Errorf("%w: transcript has no segments", ErrMalformedInput)
	}
	for i, seg := range tp.Segments {
		if seg.Start == nil || seg.End == nil {
			return nil, fmt.Errorf("%w: segment %d is missing start or end", ErrMalformedInput, i)
		}
	}
	return tp.Segments, nil
}
