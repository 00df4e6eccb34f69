package report

import (
	"html/template"
	"io"
	"strings"
	"time"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": money,
	"inc":   func(i int) int { return i + 1 },
	"stamp": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Domain prices in {{.Base}}</title></head>
<body>
<h1>Domain prices in {{.Base}}</h1>
{{if not .GeneratedAt.IsZero}}<p>Generated {{stamp .GeneratedAt}}</p>
{{end}}<table>
<thead><tr><th>TLD</th><th>Rank</th><th>Source</th><th>Price ({{.Base}})</th><th>Listed price</th></tr></thead>
<tbody>
{{- range .Rows}}{{$tld := .TLD}}{{range $i, $e := .Entries}}
<tr><td>{{$tld}}</td><td>{{inc $i}}</td><td>{{if eq $i 0}}<strong>{{$e.Source}}</strong>{{else}}{{$e.Source}}{{end}}</td><td>{{money $e.Converted $.Base}}</td><td>{{money $e.Price $e.Currency}}</td></tr>
{{- end}}{{end}}
</tbody>
</table>
{{if .Failed}}<h2>Skipped sources</h2>
<ul>
{{- range .Failed}}
<li>{{.Source}}: {{.Error}}</li>
{{- end}}
</ul>
{{end}}</body>
</html>
`))

type htmlData struct {
	Base        string
	GeneratedAt time.Time
	Rows        []Row
	Failed      []Failure
}

// WriteHTML writes a standalone HTML page with one table row per entry
func WriteHTML(w io.Writer, r Report, opts Options) error {
	rows, err := r.Rows(opts)
	if err != nil {
		return err
	}
	data := htmlData{
		GeneratedAt: r.GeneratedAt,
		Rows:        rows,
		Failed:      r.Failed,
	}
	if r.Table != nil {
		data.Base = r.Table.Base()
	}
	return htmlTemplate.Execute(w, data)
}

// renderHTML returns the HTML page as a string
func renderHTML(r Report, opts Options) (string, error) {
	var sb strings.Builder
	if err := WriteHTML(&sb, r, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}
