// Package source retrieves a video's metadata and raw transcript.
package source

import (
	"context"
	"fmt"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

// Kind classifies a fetch failure.
type Kind int

const (
	Unknown Kind = iota
	TranscriptsDisabled
	NotFound
)

func (k Kind) String() string {
	switch k {
	case TranscriptsDisabled:
		return "transcripts disabled"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// FetchError is fatal to a pipeline run: without a transcript there is
// nothing to process.
type FetchError struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Source fetches a video and its raw transcript fragments.
type Source interface {
	Fetch(ctx context.Context, url string) (*pipeline.Video, error)
}

// NoDescription replaces a missing video description.
const NoDescription = "No description available"
