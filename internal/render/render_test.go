package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Segments: []pipeline.AttributedSegment{
			{Speaker: "Jane Host", Text: "Welcome back."},
			{Speaker: "Ada <Lovelace>", Text: "Thanks & hello."},
		},
		Warnings: []pipeline.BatchWarning{
			{Batch: 2, Err: &pipeline.AttributionError{Batch: 1, Err: errors.New("timeout")}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", JSON},
		{".JSON", JSON},
		{"yml", YAML},
		{"yaml", YAML},
		{".html", HTML},
		{"md", Markdown},
		{"markdown", Markdown},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("srt"); err == nil {
		t.Error("expected error for srt")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\n    \"segments\": [") {
		t.Errorf("expected 4-space indent:\n%s", out)
	}
	if !strings.Contains(out, `"error": "batch 2: attribution failed: timeout"`) {
		t.Errorf("warning not rendered:\n%s", out)
	}

	res, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(res.Segments) != 2 || res.Segments[1].Speaker != "Ada <Lovelace>" {
		t.Errorf("segments = %v", res.Segments)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Batch != 2 || res.Warnings[0].String() != "batch 2: attribution failed: timeout" {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestJSONOmitsEmptyWarnings(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, &pipeline.Result{}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "warnings") {
		t.Errorf("empty warnings should be omitted:\n%s", out)
	}
	if !strings.Contains(out, `"segments": []`) {
		t.Errorf("expected empty segments array:\n%s", out)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal: %v\n%s", err, buf.String())
	}
	if len(doc.Segments) != 2 || doc.Segments[0].Speaker != "Jane Host" {
		t.Errorf("segments = %v", doc.Segments)
	}
	if len(doc.Warnings) != 1 || doc.Warnings[0].Batch != 2 {
		t.Errorf("warnings = %v", doc.Warnings)
	}
}

func TestWriteHTMLEscapes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<span class='speaker'>Jane Host:</span> <span class='segment'>Welcome back.</span>",
		"Ada &lt;Lovelace&gt;:",
		"Thanks &amp; hello.",
		"color: #8bdcfc;",
		"[missing] batch 2: attribution failed: timeout",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<Lovelace>") {
		t.Error("speaker name was not escaped")
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	meta := Meta{Title: "Ada on Engines", Description: "line one\nline two", Source: "video.json"}
	if err := WriteMarkdown(&buf, meta, sampleResult()); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Ada on Engines\n",
		"> line one\n> line two\n",
		"- Source: `video.json`\n",
		"- Missing batches: 1\n",
		"**Jane Host:** Welcome back.\n",
		"_[missing] batch 2: attribution failed: timeout_",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDispatch(t *testing.T) {
	for _, f := range []Format{JSON, YAML, HTML, Markdown} {
		var buf bytes.Buffer
		if err := Write(&buf, f, Meta{}, sampleResult()); err != nil {
			t.Errorf("Write(%s): %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) produced no output", f)
		}
	}
	if err := Write(&bytes.Buffer{}, Format("srt"), Meta{}, sampleResult()); err == nil {
		t.Error("expected error for unknown format")
	}
}
