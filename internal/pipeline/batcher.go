package pipeline

import (
	"fmt"
	"strings"
)

// Split partitions segments into contiguous batches of at most size.
func Split(segments []Segment, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, &ConfigurationError{Field: "batch size", Value: size, Msg: "must be positive"}
	}

	batches := make([]Batch, 0, (len(segments)+size-1)/size)
	for start := 0; start < len(segments); start += size {
		end := min(start+size, len(segments))
		batches = append(batches, Batch{
			Index:    len(batches),
			Segments: segments[start:end:end],
		})
	}
	return batches, nil
}

// Transcript renders a batch one line per segment, "speaker: text".
func (b Batch) Transcript() string {
	var sb strings.Builder
	for i, s := range b.Segments {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s", s.Speaker, s.Text)
	}
	return sb.String()
}
