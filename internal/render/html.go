package render

import (
	"html/template"
	"io"

	"github.com/dtaibeau/youtube-proj/internal/pipeline"
)

var htmlTmpl = template.Must(template.New("transcript").Parse(`<html><head><style>
    .transcript {
        font-family: Arial, sans-serif;
        line-height: 1.6;
    }
    .speaker {
        font-weight: bold;
        color: #8bdcfc;
        font-size: 1.3em;
    }
    .text {
        margin-bottom: 10px;
        font-size: 1.2em;
    }
    .segment {
        font-style: italic;
    }
    .warning {
        color: #c0392b;
    }
</style></head><body>
<div class='transcript'>
{{- range .Segments}}
<div class='text'><span class='speaker'>{{.Speaker}}:</span> <span class='segment'>{{.Text}}</span></div>
{{- end}}
{{- range .Warnings}}
<div class='warning' data-batch='{{.Batch}}'>[missing] {{.Error}}</div>
{{- end}}
</div></body></html>
`))

// WriteHTML renders the transcript as a standalone HTML page. Speaker names
// and text are escaped.
func WriteHTML(w io.Writer, res *pipeline.Result) error {
	return htmlTmpl.Execute(w, NewDocument(res))
}
