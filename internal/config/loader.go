package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. YTSCRIBE_LLM_MODEL.
const EnvPrefix = "YTSCRIBE"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds a Config from defaults, an optional YAML file, a .env file and
// YTSCRIBE_* environment variables, in increasing order of precedence.
// With an empty path the file is looked up as ytscribe.yaml in the working
// directory and in the user config directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is Load with a final layer of values keyed by dotted
// config key (e.g. "attribution.batch_size"). Command-line flags use it.
func LoadWithOverrides(path string, overrides map[string]any) (*Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ytscribe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "ytscribe"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range overrides {
		v.Set(key, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKey(cfg.LLM.Provider)
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. Batch size is left to the batcher,
// which reports it as a configuration error of its own.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("grouping.boundary", d.Grouping.Boundary)

	v.SetDefault("attribution.batch_size", d.Attribution.BatchSize)
	v.SetDefault("attribution.max_concurrent", d.Attribution.MaxConcurrent)
	v.SetDefault("attribution.rate_limit_per_min", d.Attribution.RateLimitPerMin)
	v.SetDefault("attribution.max_retries", d.Attribution.MaxRetries)
	v.SetDefault("attribution.no_async", d.Attribution.NoAsync)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.timeout", d.LLM.Timeout)

	v.SetDefault("source.timeout", d.Source.Timeout)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)

	v.SetDefault("telemetry.trace", d.Telemetry.Trace)
}

// normalize lowercases enumerated values so they match the validate tags.
func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Grouping.Boundary = strings.ToLower(strings.TrimSpace(c.Grouping.Boundary))
}

// providerKey falls back to the conventional per-vendor variables.
func providerKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is skipped; a malformed one
// is reported and skipped.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("ignoring malformed .env file", "path", path, "err", err)
	}
}
