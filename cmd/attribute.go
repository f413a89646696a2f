package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtaibeau/youtube-proj/internal/config"
	"github.com/dtaibeau/youtube-proj/internal/llm"
	"github.com/dtaibeau/youtube-proj/internal/pipeline"
	"github.com/dtaibeau/youtube-proj/internal/render"
	"github.com/dtaibeau/youtube-proj/internal/source"
	"github.com/dtaibeau/youtube-proj/internal/telemetry"
	"github.com/dtaibeau/youtube-proj/internal/worker"
)

var attributeCmd = &cobra.Command{
	Use:   "attribute <video-url>",
	Short: "Fetch a transcript and attribute speakers",
	Long: `Fetch the transcript document at <video-url> (a local path, file:// or
http(s):// URL), group it into speaker turns, attribute speakers with the
configured language model, and write the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttribute,
}

// attributeFlags maps each flag to the config key it overrides.
var attributeFlags = map[string]string{
	"output":         "output.path",
	"format":         "output.format",
	"batch-size":     "attribution.batch_size",
	"no-async":       "attribution.no_async",
	"max-concurrent": "attribution.max_concurrent",
	"max-retries":    "attribution.max_retries",
	"rate-limit":     "attribution.rate_limit_per_min",
	"boundary":       "grouping.boundary",
	"provider":       "llm.provider",
	"model":          "llm.model",
	"temperature":    "llm.temperature",
	"timeout":        "llm.timeout",
	"trace":          "telemetry.trace",
}

var (
	strict bool
	dryRun bool
)

func init() {
	d := config.Default()

	f := attributeCmd.Flags()
	f.StringP("output", "o", d.Output.Path, `output path ("-" for stdout)`)
	f.StringP("format", "f", d.Output.Format, "output format: json, yaml, html, md (default: from output extension)")
	f.IntP("batch-size", "b", d.Attribution.BatchSize, "segments per attribution request")
	f.Bool("no-async", d.Attribution.NoAsync, "attribute batches one at a time")
	f.IntP("max-concurrent", "j", d.Attribution.MaxConcurrent, "max concurrent attribution requests")
	f.Int("max-retries", d.Attribution.MaxRetries, "retries per batch on timeouts and rate limits")
	f.Int("rate-limit", d.Attribution.RateLimitPerMin, "attribution requests per minute (0 = unlimited)")
	f.String("boundary", d.Grouping.Boundary, "segment boundary rule: label-echo, speaker-change")
	f.String("provider", d.LLM.Provider, "language model provider: openai, gemini, fake")
	f.String("model", "", "model name (default depends on provider)")
	f.Float64("temperature", d.LLM.Temperature, "sampling temperature")
	f.Duration("timeout", d.LLM.Timeout, "per-request timeout")
	f.Bool("trace", d.Telemetry.Trace, "print OpenTelemetry spans to stderr")
	f.BoolVar(&strict, "strict", false, "exit non-zero if any batch failed")
	f.BoolVar(&dryRun, "dry-run", false, "use the offline fake model instead of a real provider")

	rootCmd.AddCommand(attributeCmd)
}

func runAttribute(cmd *cobra.Command, args []string) error {
	url := args[0]

	if dryRun {
		if err := cmd.Flags().Set("provider", "fake"); err != nil {
			return err
		}
	}
	inferFormat(cmd)

	cfg, err := loadConfig(cmd, attributeFlags)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	boundary, err := pipeline.BoundaryByName(cfg.Grouping.Boundary)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(cfg.Telemetry.Trace, os.Stderr)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	// Setup signal handling for graceful cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer svc.Close()
	slog.Debug("language model ready", "service", svc.Name())

	opts := worker.Options{
		Source:          source.NewDocument(cfg.Source.Timeout),
		Attributor:      pipeline.NewClient(svc, cfg.LLM.Temperature),
		Boundary:        boundary,
		BatchSize:       cfg.Attribution.BatchSize,
		NoAsync:         cfg.Attribution.NoAsync,
		MaxConcurrent:   cfg.Attribution.MaxConcurrent,
		MaxRetries:      cfg.Attribution.MaxRetries,
		RateLimitPerMin: cfg.Attribution.RateLimitPerMin,
	}

	rep, err := worker.Run(ctx, url, opts)
	if err != nil {
		return err
	}

	meta := render.Meta{
		Title:       rep.Title,
		Description: rep.Description,
		Source:      rep.URL,
		Generated:   time.Now().Format(time.RFC3339),
	}
	if err := writeOutput(cfg.Output.Path, format, meta, rep.Result); err != nil {
		return err
	}

	slog.Info("done",
		"output", cfg.Output.Path,
		"segments", len(rep.Result.Segments),
		"warnings", len(rep.Result.Warnings),
		"elapsed", rep.Elapsed.Round(time.Millisecond))

	if strict && len(rep.Result.Warnings) > 0 {
		return fmt.Errorf("%d of %d batches failed", len(rep.Result.Warnings), rep.Batches)
	}
	return nil
}

// inferFormat picks the format from the output extension when only the
// output path was given.
func inferFormat(cmd *cobra.Command) {
	out := cmd.Flags().Lookup("output")
	if !out.Changed || cmd.Flags().Changed("format") {
		return
	}
	if f, err := render.ParseFormat(filepath.Ext(out.Value.String())); err == nil {
		_ = cmd.Flags().Set("format", string(f))
	}
}

func writeOutput(path string, format render.Format, meta render.Meta, res *pipeline.Result) error {
	if path == "-" {
		return render.Write(os.Stdout, format, meta, res)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := render.Write(f, format, meta, res); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
