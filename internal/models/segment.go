package models

// Segment is one timed span of a transcript. Start and End are seconds;
// nil means the field was missing in the payload.
type Segment struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Text  string   `json:"text"`
}

// TranscriptPayload is the subset of the transcription response we consume.
type TranscriptPayload struct {
	Segments []Segment `json:"segments"`
}
