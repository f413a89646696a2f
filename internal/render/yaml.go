package render

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

// WriteYAML writes the transcript as YAML with the same shape as WriteJSON.
func WriteYAML(w io.Writer, res *pipeline.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(res)); err != nil {
		return err
	}
	return enc.Close()
}
