package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dtaibeau/youtube-proj/internal/config"
)

var (
	verbose    bool
	quiet      bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ytscribe",
	Short: "Attribute speakers in video transcripts using an LLM",
	Long: `ytscribe fetches a video's raw transcript, groups it into speaker turns,
and asks a language model to name the speakers and clean up the text, batch by
batch. Failed batches are reported as warnings instead of aborting the run.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// loadConfig loads the configuration, with every flag the user set on cmd
// overriding the config key it is mapped to in keys.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	overrides := make(map[string]any)
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		overrides[key] = f.Value.String()
	}
	return config.LoadWithOverrides(configPath, overrides)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./ytscribe.yaml or <user config dir>/ytscribe/ytscribe.yaml)")
}
