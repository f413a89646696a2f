package config

import "time"

// GroupingConfig controls how raw fragments are folded into segments.
type GroupingConfig struct {
	Boundary string `mapstructure:"boundary" validate:"omitempty,oneof=label-echo speaker-change"`
}

// AttributionConfig controls batching and dispatch of attribution calls.
type AttributionConfig struct {
	BatchSize       int  `mapstructure:"batch_size"`
	MaxConcurrent   int  `mapstructure:"max_concurrent" validate:"gte=1"`
	RateLimitPerMin int  `mapstructure:"rate_limit_per_min" validate:"gte=0"`
	MaxRetries      int  `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	NoAsync         bool `mapstructure:"no_async"`
}

// LLMConfig selects and configures the language model backend.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider" validate:"oneof=openai gemini fake"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Temperature float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SourceConfig configures transcript retrieval.
type SourceConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig configures the render sink.
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=json yaml html md"`
	Path   string `mapstructure:"path"`
}

// TelemetryConfig toggles trace export.
type TelemetryConfig struct {
	Trace bool `mapstructure:"trace"`
}

// Config holds the full application configuration.
type Config struct {
	Grouping    GroupingConfig    `mapstructure:"grouping"`
	Attribution AttributionConfig `mapstructure:"attribution"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Source      SourceConfig      `mapstructure:"source"`
	Output      OutputConfig      `mapstructure:"output"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Grouping: GroupingConfig{
			Boundary: "label-echo",
		},
		Attribution: AttributionConfig{
			BatchSize:       20,
			MaxConcurrent:   4,
			RateLimitPerMin: 60,
			MaxRetries:      0,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Temperature: 0,
			Timeout:     120 * time.Second,
		},
		Source: SourceConfig{
			Timeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Format: "json",
			Path:   "transcript.json",
		},
	}
}

// DefaultModel returns the model used when none is configured for provider.
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-1.5-flash"
	case "fake":
		return "fake"
	default:
		return "gpt-4o"
	}
}
