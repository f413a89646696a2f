package pipeline

// Fragment is one raw timed unit of transcribed speech as delivered by the
// transcript source.
type Fragment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Speaker  string  `json:"speaker,omitempty"` // optional hint
}

// Segment is a run of fragments grouped under one inferred speaker turn.
type Segment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Batch is a contiguous window of segments submitted together for attribution.
type Batch struct {
	Index    int
	Segments []Segment
}

// AttributedSegment is a segment with a resolved speaker name and corrected text.
type AttributedSegment struct {
	Speaker string `json:"speaker" yaml:"speaker" validate:"required"`
	Text    string `json:"text" yaml:"text" validate:"required"`
}

// BatchWarning records a batch whose content was dropped from the result.
type BatchWarning struct {
	Batch int   // 1-based
	Err   error
}

// Result is the final ordered, speaker-attributed transcript.
type Result struct {
	Segments []AttributedSegment
	Warnings []BatchWarning
}

// Video is what a transcript source hands to the pipeline.
type Video struct {
	URL         string
	Title       string
	Description string
	Fragments   []Fragment
}
