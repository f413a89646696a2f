// Package llm wraps the language model completion services used for
// speaker attribution.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dtaibeau/youtube-proj/internal/config"
)

// Prompt is one completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float64
}

// Schema describes the JSON object a completion must return. Definition is
// a JSON Schema document restricted to object, array and string types.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Instructions renders the schema for inclusion in a system prompt.
func (s *Schema) Instructions() string {
	if s == nil {
		return ""
	}
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return ""
	}
	return "Respond with ONLY a JSON object matching this JSON Schema, with no markdown or commentary:\n" + string(b)
}

// Service is a language model completion backend.
type Service interface {
	Name() string
	// Complete returns the raw model output for prompt. Implementations ask
	// the backend for JSON matching schema when it is non-nil.
	Complete(ctx context.Context, p Prompt, schema *Schema) (string, error)
	Close() error
}

// New builds the Service selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Service, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAI(cfg)
	case "gemini":
		return NewGemini(ctx, cfg)
	case "fake":
		return NewEcho(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// ExtractJSON pulls a JSON object out of model output that may be wrapped
// in markdown fences or surrounded by prose.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
