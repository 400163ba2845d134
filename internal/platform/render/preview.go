package render

import (
	"bytes"
	"html/template"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

var previewTmpl = template.Must(template.New("preview").Parse(`<div class="frame">
  <div class="frame__head">
    {{- range $i, $line := .Header}}
    <div class="{{if eq $i 0}}h{{else}}sub{{end}}">{{$line}}</div>
    {{- end}}
  </div>
  <div class="frame__label">{{.Label}}</div>
  <div class="box" style="white-space:pre-wrap">{{.Body}}</div>
  <div class="foot">
    {{- range $i, $line := .Footer}}{{if $i}}<br>{{end}}{{$line}}{{end -}}
  </div>
</div>
`))

// Preview renders the layout as an escaped HTML fragment for on-screen review.
func Preview(in Input) (string, error) {
	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, Build(in)); err != nil {
		return "", apperr.Render(err)
	}
	return buf.String(), nil
}
