package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dtaibeau/youtube-proj/internal/llm"
)

// AttributionRequest carries one batch plus the video context the model
// needs to resolve speaker names.
type AttributionRequest struct {
	Title       string
	Description string
	Batch       Batch
}

// Attributor resolves speakers and corrects text for one batch.
type Attributor interface {
	Attribute(ctx context.Context, req AttributionRequest) ([]AttributedSegment, error)
}

// AttributorFunc adapts a function to Attributor.
type AttributorFunc func(ctx context.Context, req AttributionRequest) ([]AttributedSegment, error)

func (f AttributorFunc) Attribute(ctx context.Context, req AttributionRequest) ([]AttributedSegment, error) {
	return f(ctx, req)
}

const systemPrompt = `You are given a video, and your task is to identify the different speakers' names and correct the text.
Using the video title and description, identify the speakers in the transcript segments and the text each one spoke in one segment until the next speaker starts speaking, with appropriate capitalization and punctuation.
Merge or split the given segments so that each output segment is exactly one speaker turn, in spoken order.
Provide the output in JSON format with a 'segments' key; each segment must contain 'speaker' and 'text'.`

// SegmentsSchema is the structure every attribution response must satisfy.
var SegmentsSchema = &llm.Schema{
	Name: "transcript_with_speakers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"segments": map[string]any{
				"type":        "array",
				"description": "List of transcript segments with identified speaker names",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"speaker": map[string]any{"type": "string", "description": "Name of the speaker"},
						"text":    map[string]any{"type": "string", "description": "Spoken text segment"},
					},
					"required": []string{"speaker", "text"},
				},
			},
		},
		"required": []string{"segments"},
	},
}

// attributionPayload mirrors SegmentsSchema for decoding and validation.
type attributionPayload struct {
	Segments []AttributedSegment `json:"segments" validate:"required,min=1,dive"`
}

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// Client is the Attributor backed by a language model service. It keeps no
// state between calls.
type Client struct {
	svc         llm.Service
	temperature float64
}

// NewClient returns a Client that sends prompts to svc.
func NewClient(svc llm.Service, temperature float64) *Client {
	return &Client{svc: svc, temperature: temperature}
}

// Attribute makes exactly one service call for req.Batch. Every failure,
// including a response that does not match SegmentsSchema, is returned as
// an *AttributionError.
func (c *Client) Attribute(ctx context.Context, req AttributionRequest) ([]AttributedSegment, error) {
	raw, err := c.svc.Complete(ctx, BuildPrompt(req, c.temperature), SegmentsSchema)
	if err != nil {
		return nil, &AttributionError{Batch: req.Batch.Index, Err: err}
	}

	segments, err := ParseSegments(raw)
	if err != nil {
		return nil, &AttributionError{Batch: req.Batch.Index, Err: err}
	}
	return segments, nil
}

// BuildPrompt renders the attribution prompt for one batch. The transcript
// block comes last in the user message.
func BuildPrompt(req AttributionRequest, temperature float64) llm.Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Video title: %s\n", req.Title)
	fmt.Fprintf(&sb, "Video description: %s\n\n", req.Description)
	sb.WriteString(llm.TranscriptMarker)
	sb.WriteByte('\n')
	sb.WriteString(req.Batch.Transcript())

	return llm.Prompt{
		System:      systemPrompt,
		User:        sb.String(),
		Temperature: temperature,
	}
}

// ErrSchemaMismatch marks a response that is not a valid segments document.
var ErrSchemaMismatch = errors.New("response does not match segments schema")

// ParseSegments decodes and validates a raw model response.
func ParseSegments(raw string) ([]AttributedSegment, error) {
	var p attributionPayload
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &p); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSchemaMismatch, err)
	}
	for i := range p.Segments {
		p.Segments[i].Speaker = strings.TrimSpace(p.Segments[i].Speaker)
		p.Segments[i].Text = strings.TrimSpace(p.Segments[i].Text)
	}
	if err := payloadValidator.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return p.Segments, nil
}
