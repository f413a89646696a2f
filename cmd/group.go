package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dtaibeau/youtube-proj/internal/config"
	"github.com/dtaibeau/youtube-proj/internal/pipeline"
	"github.com/dtaibeau/youtube-proj/internal/source"
)

var groupCmd = &cobra.Command{
	Use:   "group <video-url>",
	Short: "Show how a transcript would be grouped and batched",
	Long: `Fetch a transcript, group it into segments and split it into batches
without calling a language model. Prints one line per batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runGroup,
}

var groupFlags = map[string]string{
	"batch-size": "attribution.batch_size",
	"boundary":   "grouping.boundary",
}

var showSegments bool

func init() {
	d := config.Default()
	groupCmd.Flags().IntP("batch-size", "b", d.Attribution.BatchSize, "segments per attribution request")
	groupCmd.Flags().String("boundary", d.Grouping.Boundary, "segment boundary rule: label-echo, speaker-change")
	groupCmd.Flags().BoolVar(&showSegments, "segments", false, "also print every segment")

	rootCmd.AddCommand(groupCmd)
}

func runGroup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, groupFlags)
	if err != nil {
		return err
	}
	boundary, err := pipeline.BoundaryByName(cfg.Grouping.Boundary)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	video, err := source.NewDocument(cfg.Source.Timeout).Fetch(ctx, args[0])
	if err != nil {
		return err
	}

	segments := pipeline.Group(video.Fragments, boundary)
	batches, err := pipeline.Split(segments, cfg.Attribution.BatchSize)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d fragments, %d segments, %d batches\n",
		video.Title, len(video.Fragments), len(segments), len(batches))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tSEGMENTS\tSPEAKERS\tCHARS")
	for _, b := range batches {
		speakers := make(map[string]struct{})
		chars := 0
		for _, s := range b.Segments {
			speakers[s.Speaker] = struct{}{}
			chars += len(s.Text)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", b.Index+1, len(b.Segments), len(speakers), chars)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if showSegments {
		for _, b := range batches {
			fmt.Fprintf(out, "\n--- batch %d ---\n%s\n", b.Index+1, b.Transcript())
		}
	}
	return nil
}
