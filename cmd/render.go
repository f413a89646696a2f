package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dtaibeau/youtube-proj/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render <transcript.json>",
	Short: "Re-render a saved JSON transcript",
	Long: `Read a transcript written by "attribute" in JSON format and render it
again as json, yaml, html or md.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var (
	renderOutput string
	renderFormat string
	renderTitle  string
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "-", `output path ("-" for stdout)`)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format: json, yaml, html, md (default: from output extension, else html)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "title for formats that show one")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	res, err := render.ReadJSON(in)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	name := renderFormat
	if name == "" {
		name = string(render.HTML)
		if renderOutput != "-" {
			if f, err := render.ParseFormat(filepath.Ext(renderOutput)); err == nil {
				name = string(f)
			}
		}
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		return err
	}

	meta := render.Meta{Title: renderTitle, Source: args[0]}
	return writeOutput(renderOutput, format, meta, res)
}
