package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/faanross/m365dns/internal/checker"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Microsoft 365 DNS Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f0f0f0; }
.Match { color: #0a0; }
.Mismatch { color: #b80; }
.Missing { color: #c00; }
.Error { color: #c00; font-weight: bold; }
.actions { color: #c00; }
.recommendations { color: #b80; }
</style>
</head>
<body>
<h1>Microsoft 365 DNS Report</h1>
{{range .}}
<h2>{{.Domain}}</h2>
{{if .Err}}
<p class="Error">No expected records: {{.Err}}</p>
{{else}}
<p>Score: {{.Assessment.Score}}% &mdash; Tier: {{.Assessment.Tier}} &mdash; Priority: {{.Assessment.Priority}}</p>
<table>
<tr><th>Name</th><th>Type</th><th>Status</th><th>Expected</th><th>Actual</th><th>Notes</th></tr>
{{range .Assessment.Results}}
<tr>
<td>{{.FQDN}}</td>
<td>{{.RecordType}}</td>
<td class="{{.Status}}">{{.Status}}</td>
<td>{{.ExpectedValue}}</td>
<td>{{.ActualValue}}</td>
<td>{{.FormatNote}}{{if and .FormatNote .Details}}; {{end}}{{.Details}}</td>
</tr>
{{end}}
</table>
{{if .Assessment.CriticalActions}}
<h3 class="actions">Critical actions</h3>
<ul>{{range .Assessment.CriticalActions}}<li>{{.}}</li>{{end}}</ul>
{{end}}
{{if .Assessment.Recommendations}}
<h3 class="recommendations">Recommendations</h3>
<ul>{{range .Assessment.Recommendations}}<li>{{.}}</li>{{end}}</ul>
{{end}}
{{end}}
{{end}}
</body>
</html>
`))

// WriteHTML renders the full assessment set as a standalone HTML page
func WriteHTML(w io.Writer, results []checker.DomainResult) error {
	if err := htmlTemplate.Execute(w, results); err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}
	return nil
}
