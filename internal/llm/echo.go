package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// TranscriptMarker introduces the transcript block in attribution prompts.
// It sits on a line of its own, after the title and description.
const TranscriptMarker = "Transcript:"

// transcriptBody returns the text after the last line consisting of
// TranscriptMarker alone, or user unchanged if there is none.
func transcriptBody(user string) string {
	if idx := strings.LastIndex(user, "\n"+TranscriptMarker+"\n"); idx >= 0 {
		return user[idx+len(TranscriptMarker)+2:]
	}
	if rest, ok := strings.CutPrefix(user, TranscriptMarker+"\n"); ok {
		return rest
	}
	return user
}

// Echo is a deterministic offline Service. It returns every "speaker: text"
// line found after TranscriptMarker in the user prompt as a segment, which
// makes it useful for dry runs and tests.
type Echo struct{}

func NewEcho() *Echo { return &Echo{} }

func (*Echo) Name() string { return "fake/echo" }

func (*Echo) Close() error { return nil }

type echoSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func (*Echo) Complete(ctx context.Context, p Prompt, _ *Schema) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ServiceError{Kind: kindForTransport(err), Provider: "fake", Err: err}
	}

	segments := []echoSegment{}
	for _, line := range strings.Split(transcriptBody(p.User), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		speaker, text, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		segments = append(segments, echoSegment{Speaker: speaker, Text: text})
	}

	out, err := json.Marshal(map[string]any{"segments": segments})
	if err != nil {
		return "", malformed("fake", err)
	}
	return string(out), nil
}
