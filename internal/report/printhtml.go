package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/edustar/attendance-register/internal/register"
)

// Printable renders the selection as a self-contained page that triggers the
// browser's print flow on load and closes itself shortly after. The core's job
// ends at producing the markup; the browser does the rest.
func Printable(records []register.Record, logoURL string) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	now := time.Now()
	var buf bytes.Buffer
	err := printTmpl.Execute(&buf, printData{
		Title:       Title,
		LogoURL:     logoURL,
		GeneratedAt: formatLocal(&now),
		Total:       len(records),
		Headers:     Headers,
		Rows:        Rows(records),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type printData struct {
	Title       string
	LogoURL     string
	GeneratedAt string
	Total       int
	Headers     []string
	Rows        [][]string
}

var printTmpl = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>{{.Title}}</title>
    <style>
      body {
        font-family: Arial, sans-serif;
        margin: 20px;
        color: #333;
      }
      .header {
        text-align: center;
        border-bottom: 3px solid #7B1FA2;
        padding-bottom: 20px;
        margin-bottom: 30px;
        display: flex;
        flex-direction: column;
        align-items: center;
        gap: 10px;
      }
      .logo {
        max-width: 80px;
        height: auto;
        object-fit: contain;
      }
      .report-title {
        font-size: 24px;
        font-weight: bold;
        color: #7B1FA2;
        margin: 5px 0;
      }
      .report-subtitle {
        font-size: 12px;
        color: #666;
        margin: 2px 0;
      }
      table {
        width: 100%;
        border-collapse: collapse;
        margin-top: 20px;
        font-size: 10px;
        table-layout: fixed;
      }
      th, td {
        border: 1px solid #ddd;
        padding: 6px 3px;
        text-align: left;
        word-wrap: break-word;
        overflow-wrap: break-word;
        hyphens: auto;
      }
      th {
        background: linear-gradient(135deg, #7B1FA2, #9C27B0);
        color: white;
        font-weight: bold;
        position: sticky;
        top: 0;
        font-size: 9px;
      }
      tr:nth-child(even) {
        background-color: #f8f9fa;
      }
      @media print {
        body { margin: 10mm; }
        table { font-size: 8px; }
        th, td { padding: 4px 2px; }
        .logo { max-width: 60px; }
        .report-title { font-size: 18px; }
        .report-subtitle { font-size: 10px; }
        .header { gap: 5px; flex-direction: column; }
        @page { margin: 10mm; }
      }
    </style>
  </head>
  <body>
    <div class="header">
      {{if .LogoURL}}<img src="{{.LogoURL}}" alt="Logo" class="logo" />{{end}}
      <div class="header-content">
        <div class="report-title">{{.Title}}</div>
        <div class="report-subtitle">Generated on: {{.GeneratedAt}}</div>
        <div class="report-subtitle">Total Records: {{.Total}}</div>
      </div>
    </div>

    <table>
      <thead>
        <tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
      </thead>
      <tbody>
        {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
        {{end}}
      </tbody>
    </table>

    <script>
      window.onload = function() {
        window.print();
        setTimeout(function() { window.close(); }, 1000);
      }
    </script>
  </body>
</html>
`))
