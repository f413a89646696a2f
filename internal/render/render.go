// Package render serializes attributed transcripts for storage and display.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

// Format is an output encoding.
type Format string

const (
	JSON     Format = "json"
	YAML     Format = "yaml"
	HTML     Format = "html"
	Markdown Format = "md"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "html", "htm":
		return HTML, nil
	case "md", "markdown":
		return Markdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Meta is optional header information for formats that show it.
type Meta struct {
	Title       string
	Description string
	Source      string
	Generated   string
}

// Document is the persisted shape of a transcript.
type Document struct {
	Segments []pipeline.AttributedSegment `json:"segments" yaml:"segments"`
	Warnings []Warning                    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Warning is the persisted form of a dropped batch.
type Warning struct {
	Batch int    `json:"batch" yaml:"batch"`
	Error string `json:"error" yaml:"error"`
}

// NewDocument converts a pipeline result to its persisted shape.
func NewDocument(res *pipeline.Result) Document {
	doc := Document{Segments: res.Segments}
	if doc.Segments == nil {
		doc.Segments = []pipeline.AttributedSegment{}
	}
	for _, w := range res.Warnings {
		doc.Warnings = append(doc.Warnings, Warning{Batch: w.Batch, Error: w.String()})
	}
	return doc
}

// Result converts a persisted document back to a pipeline result.
func (d Document) Result() *pipeline.Result {
	res := &pipeline.Result{Segments: d.Segments}
	for _, w := range d.Warnings {
		res.Warnings = append(res.Warnings, pipeline.BatchWarning{Batch: w.Batch, Err: errors.New(w.Error)})
	}
	return res
}

// Write renders res to w in format f.
func Write(w io.Writer, f Format, meta Meta, res *pipeline.Result) error {
	switch f {
	case JSON:
		return WriteJSON(w, res)
	case YAML:
		return WriteYAML(w, res)
	case HTML:
		return WriteHTML(w, res)
	case Markdown:
		return WriteMarkdown(w, meta, res)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// WriteJSON writes the transcript as an indented JSON document.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(res))
}

// ReadJSON reads a document written by WriteJSON.
func ReadJSON(r io.Reader) (*pipeline.Result, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return doc.Result(), nil
}
