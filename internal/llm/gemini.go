package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtaibeau/youtube-proj/internal/config"
)

const geminiProvider = "gemini"

// Gemini completes prompts with the Google Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini-backed Service.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ServiceError{Kind: AuthError, Provider: geminiProvider, Err: errors.New("api key not set (GEMINI_API_KEY or YTSCRIBE_LLM_API_KEY)")}
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, &ServiceError{Kind: Unavailable, Provider: geminiProvider, Err: err}
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultModel(geminiProvider)
	}
	return &Gemini{client: client, model: model, timeout: cfg.Timeout}, nil
}

func (g *Gemini) Name() string { return geminiProvider + "/" + g.model }

func (g *Gemini) Close() error { return g.client.Close() }

// Complete sends one generation request in JSON mode. The model handle is
// built per call so concurrent calls never share mutable settings.
func (g *Gemini) Complete(ctx context.Context, p Prompt, schema *Schema) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(float32(p.Temperature))
	m.ResponseMIMEType = "application/json"
	if schema != nil {
		m.ResponseSchema = toGenaiSchema(schema.Definition)
	}
	if p.System != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(p.System))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := m.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", classifyGemini(err)
	}

	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", malformed(geminiProvider, errors.New("no text candidates returned"))
	}
	return out, nil
}

func classifyGemini(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &ServiceError{Kind: kindForStatus(gerr.Code), Provider: geminiProvider, Err: err}
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return malformed(geminiProvider, err)
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return &ServiceError{Kind: kindForCode(st.Code()), Provider: geminiProvider, Err: err}
	}
	return &ServiceError{Kind: kindForTransport(err), Provider: geminiProvider, Err: err}
}

func kindForCode(c codes.Code) Kind {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return AuthError
	case codes.ResourceExhausted:
		return RateLimited
	case codes.DeadlineExceeded:
		return Timeout
	default:
		return Unavailable
	}
}

// toGenaiSchema converts the JSON Schema subset used by this package.
func toGenaiSchema(def map[string]any) *genai.Schema {
	if def == nil {
		return nil
	}
	s := &genai.Schema{}
	switch def["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}
	if d, ok := def["description"].(string); ok {
		s.Description = d
	}
	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	if req, ok := def["required"].([]string); ok {
		s.Required = req
	}
	return s
}
