package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dtaibeau/youtube-proj/internal/config"
)

const openAIProvider = "openai"

// OpenAI completes prompts with the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed Service. The SDK's own retries are
// disabled; retry policy belongs to the caller.
func NewOpenAI(cfg config.LLMConfig) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ServiceError{Kind: AuthError, Provider: openAIProvider, Err: errors.New("api key not set (OPENAI_API_KEY or YTSCRIBE_LLM_API_KEY)")}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultModel(openAIProvider)
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model}, nil
}

func (o *OpenAI) Name() string { return openAIProvider + "/" + o.model }

// Close is a no-op; the SDK holds no resources.
func (o *OpenAI) Close() error { return nil }

// Complete sends one chat completion in JSON-object mode.
func (o *OpenAI) Complete(ctx context.Context, p Prompt, schema *Schema) (string, error) {
	system := p.System
	if instr := schema.Instructions(); instr != "" {
		system += "\n\n" + instr
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(p.User),
		},
		Model:       o.model,
		Temperature: openai.Float(p.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return "", o.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", malformed(openAIProvider, errors.New("no choices returned"))
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", malformed(openAIProvider, fmt.Errorf("empty content (finish reason %q)", resp.Choices[0].FinishReason))
	}
	return content, nil
}

func (o *OpenAI) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ServiceError{Kind: kindForStatus(apiErr.StatusCode), Provider: openAIProvider, Err: err}
	}
	return &ServiceError{Kind: kindForTransport(err), Provider: openAIProvider, Err: err}
}
