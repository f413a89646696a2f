package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dtaibeau/youtube-proj/internal/llm"
)

// stubService returns canned responses and records every prompt.
type stubService struct {
	mu      sync.Mutex
	prompts []llm.Prompt
	schemas []*llm.Schema
	reply   string
	err     error
}

func (s *stubService) Name() string { return "stub" }
func (s *stubService) Close() error { return nil }

func (s *stubService) Complete(_ context.Context, p llm.Prompt, schema *llm.Schema) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	s.schemas = append(s.schemas, schema)
	return s.reply, s.err
}

func testRequest() AttributionRequest {
	return AttributionRequest{
		Title:       "Interview with Ada",
		Description: "Ada talks about engines.",
		Batch: Batch{Index: 3, Segments: []Segment{
			{Speaker: "Host", Text: "so tell me"},
			{Speaker: "Ada", Text: "well it started"},
		}},
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(testRequest(), 0.2)

	if p.System != systemPrompt {
		t.Errorf("unexpected system prompt: %q", p.System)
	}
	if p.Temperature != 0.2 {
		t.Errorf("temperature = %v", p.Temperature)
	}
	for _, want := range []string{
		"Video title: Interview with Ada\n",
		"Video description: Ada talks about engines.\n",
		"Transcript:\nHost: so tell me\nAda: well it started",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q:\n%s", want, p.User)
		}
	}
	if !strings.HasSuffix(p.User, "Ada: well it started") {
		t.Errorf("transcript block is not last:\n%s", p.User)
	}
}

func TestClient_Attribute(t *testing.T) {
	svc := &stubService{reply: `{"segments":[{"speaker":"Jane Host","text":"So, tell me."},{"speaker":"Ada Lovelace","text":"Well, it started."}]}`}
	c := NewClient(svc, 0)

	segs, err := c.Attribute(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	if len(svc.prompts) != 1 {
		t.Fatalf("expected exactly 1 service call, got %d", len(svc.prompts))
	}
	if svc.schemas[0] != SegmentsSchema {
		t.Errorf("service called without the segments schema")
	}
	want := []AttributedSegment{
		{Speaker: "Jane Host", Text: "So, tell me."},
		{Speaker: "Ada Lovelace", Text: "Well, it started."},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(segs))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestClient_AttributeIdempotent(t *testing.T) {
	svc := &stubService{reply: `{"segments":[{"speaker":"A","text":"x"}]}`}
	c := NewClient(svc, 0)
	req := testRequest()

	first, err := c.Attribute(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := c.Attribute(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("results differ: %v vs %v", first, second)
	}
	if svc.prompts[0] != svc.prompts[1] {
		t.Errorf("prompts differ between identical requests")
	}
}

func TestClient_AttributeErrors(t *testing.T) {
	svcErr := &llm.ServiceError{Kind: llm.Timeout, Provider: "stub", Err: context.DeadlineExceeded}
	tests := []struct {
		name    string
		svc     *stubService
		checkIs error
	}{
		{"service error", &stubService{err: svcErr}, svcErr},
		{"not json", &stubService{reply: "I could not find any speakers."}, ErrSchemaMismatch},
		{"empty segments", &stubService{reply: `{"segments":[]}`}, ErrSchemaMismatch},
		{"missing speaker", &stubService{reply: `{"segments":[{"text":"hello"}]}`}, ErrSchemaMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.svc, 0).Attribute(context.Background(), testRequest())
			var aerr *AttributionError
			if !errors.As(err, &aerr) {
				t.Fatalf("expected AttributionError, got %v", err)
			}
			if aerr.Batch != 3 {
				t.Errorf("batch = %d, want 3", aerr.Batch)
			}
			if !errors.Is(err, tt.checkIs) {
				t.Errorf("error %v does not wrap %v", err, tt.checkIs)
			}
		})
	}
}

func TestParseSegments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"plain", `{"segments":[{"speaker":"A","text":"hi"}]}`, 1, false},
		{"fenced", "```json\n{\"segments\":[{\"speaker\":\"A\",\"text\":\"hi\"},{\"speaker\":\"B\",\"text\":\"yo\"}]}\n```", 2, false},
		{"leading prose", "Here you go:\n{\"segments\":[{\"speaker\":\"A\",\"text\":\"hi\"}]}", 1, false},
		{"extra fields", `{"segments":[{"speaker":"A","text":"hi","confidence":0.9}],"note":"x"}`, 1, false},
		{"blank speaker", `{"segments":[{"speaker":"  ","text":"hi"}]}`, 0, true},
		{"no segments key", `{"turns":[]}`, 0, true},
		{"truncated", `{"segments":[{"speaker":"A"`, 0, true},
		{"empty", ``, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := ParseSegments(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrSchemaMismatch) {
					t.Errorf("expected ErrSchemaMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSegments: %v", err)
			}
			if len(segs) != tt.want {
				t.Errorf("got %d segments, want %d", len(segs), tt.want)
			}
		})
	}
}

func TestClient_WithEchoService(t *testing.T) {
	c := NewClient(llm.NewEcho(), 0)
	segs, err := c.Attribute(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	if len(segs) != 2 || segs[0].Speaker != "Host" || segs[1].Text != "well it started" {
		t.Errorf("unexpected echo segments: %v", segs)
	}
}

func TestClient_EchoIgnoresMarkerInTitle(t *testing.T) {
	req := AttributionRequest{
		Title:       "Transcript: Part 1",
		Description: "first episode",
		Batch:       Batch{Segments: []Segment{{Speaker: "Host", Text: "welcome"}}},
	}
	segs, err := NewClient(llm.NewEcho(), 0).Attribute(context.Background(), req)
	if err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	if len(segs) != 1 || segs[0] != (AttributedSegment{Speaker: "Host", Text: "welcome"}) {
		t.Errorf("unexpected echo segments: %v", segs)
	}
}
