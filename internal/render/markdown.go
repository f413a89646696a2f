package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

// WriteMarkdown renders a header from meta followed by one paragraph per
// speaker turn.
func WriteMarkdown(w io.Writer, meta Meta, res *pipeline.Result) error {
	b := bufio.NewWriter(w)

	if meta.Title != "" {
		fmt.Fprintf(b, "# %s\n\n", meta.Title)
	} else {
		b.WriteString("# Transcript\n\n")
	}
	if meta.Description != "" {
		for _, line := range strings.Split(strings.TrimSpace(meta.Description), "\n") {
			fmt.Fprintf(b, "> %s\n", line)
		}
		b.WriteString("\n")
	}
	if meta.Source != "" {
		fmt.Fprintf(b, "- Source: `%s`\n", meta.Source)
	}
	if meta.Generated != "" {
		fmt.Fprintf(b, "- Generated: %s\n", meta.Generated)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(b, "- Missing batches: %d\n", len(res.Warnings))
	}
	b.WriteString("\n---\n\n")

	for _, s := range res.Segments {
		fmt.Fprintf(b, "**%s:** %s\n\n", s.Speaker, strings.TrimSpace(s.Text))
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(b, "_[missing] %s_\n\n", warn.String())
	}
	return b.Flush()
}
