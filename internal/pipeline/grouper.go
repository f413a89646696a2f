package pipeline

import "strings"

// UnknownSpeaker labels segments when no fragment offers anything better.
const UnknownSpeaker = "Unknown"

// BoundaryFunc reports whether frag starts a new segment. label is the
// running speaker label after frag's own hint (if any) has been applied;
// prev is the label before it.
type BoundaryFunc func(frag Fragment, prev, label string) bool

// Boundary is a segmentation rule: the predicate that splits fragments and
// the label given to the segment it closes.
type Boundary struct {
	Name  string
	Fires BoundaryFunc
	// LabelPrevious labels a closed segment with the label in force before
	// the boundary fragment instead of the running label after it.
	LabelPrevious bool
}

// LabelEcho declares a boundary when a fragment's text is exactly the current
// speaker label. Raw transcripts sometimes repeat the speaker name as its own
// fragment at a turn change; this is a weak signal and is kept as-is,
// including labelling the closed segment with the running label.
var LabelEcho = Boundary{
	Name: "label-echo",
	Fires: func(frag Fragment, _, label string) bool {
		return frag.Text == label
	},
}

// SpeakerChange declares a boundary when a fragment carries an explicit
// speaker hint that differs from the previous label. The closed segment
// keeps the speaker who was talking.
var SpeakerChange = Boundary{
	Name: "speaker-change",
	Fires: func(frag Fragment, prev, _ string) bool {
		return frag.Speaker != "" && frag.Speaker != prev
	},
	LabelPrevious: true,
}

// BoundaryByName resolves a configured boundary strategy.
func BoundaryByName(name string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "label-echo":
		return LabelEcho, nil
	case "speaker-change":
		return SpeakerChange, nil
	default:
		return Boundary{}, &ConfigurationError{Field: "grouping.boundary", Value: name, Msg: "want label-echo or speaker-change"}
	}
}

// initialLabel picks the best available label from the first fragment.
func initialLabel(frags []Fragment) string {
	if len(frags) == 0 {
		return UnknownSpeaker
	}
	if frags[0].Speaker != "" {
		return frags[0].Speaker
	}
	if frags[0].Text != "" {
		return frags[0].Text
	}
	return UnknownSpeaker
}

// Group folds an ordered fragment sequence into segments. Joining the
// returned segment texts with single spaces reproduces the fragment texts
// joined the same way. A zero Boundary means LabelEcho.
func Group(frags []Fragment, boundary Boundary) []Segment {
	if len(frags) == 0 {
		return nil
	}
	if boundary.Fires == nil {
		boundary = LabelEcho
	}

	label := initialLabel(frags)
	var (
		segments []Segment
		buf      []string
	)

	for _, f := range frags {
		prev := label
		if f.Speaker != "" {
			label = f.Speaker
		}
		if boundary.Fires(f, prev, label) && len(buf) > 0 {
			speaker := label
			if boundary.LabelPrevious {
				speaker = prev
			}
			segments = append(segments, Segment{Speaker: speaker, Text: strings.Join(buf, " ")})
			buf = buf[:0]
		}
		buf = append(buf, f.Text)
	}

	if len(buf) > 0 {
		segments = append(segments, Segment{Speaker: label, Text: strings.Join(buf, " ")})
	}
	return segments
}
