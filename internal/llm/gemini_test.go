package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestToGenaiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"segments": map[string]any{
				"type":        "array",
				"description": "turns",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"speaker": map[string]any{"type": "string"},
						"text":    map[string]any{"type": "string"},
					},
					"required": []string{"speaker", "text"},
				},
			},
		},
		"required": []string{"segments"},
	}

	s := toGenaiSchema(def)
	if s.Type != genai.TypeObject {
		t.Fatalf("root type = %v", s.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "segments" {
		t.Errorf("root required = %v", s.Required)
	}
	seg := s.Properties["segments"]
	if seg == nil || seg.Type != genai.TypeArray || seg.Description != "turns" {
		t.Fatalf("segments schema = %+v", seg)
	}
	item := seg.Items
	if item == nil || item.Type != genai.TypeObject {
		t.Fatalf("items schema = %+v", item)
	}
	if item.Properties["speaker"].Type != genai.TypeString {
		t.Errorf("speaker type = %v", item.Properties["speaker"].Type)
	}
	if len(item.Required) != 2 {
		t.Errorf("item required = %v", item.Required)
	}

	if toGenaiSchema(nil) != nil {
		t.Error("nil definition should give nil schema")
	}
}
