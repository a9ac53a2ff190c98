package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/Masterminds/sprig/v3"
)

// htmlTemplate is the self-contained report page. Screenshot and diff
// paths are relative to the run directory so the file is portable with
// its artifacts.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Gods Eye Report {{ .RunID }}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; background: #12121a; color: #e8e8ef; margin: 0; padding: 24px; }
h1 { color: #9d7bff; margin: 0 0 4px; }
.meta { color: #8a8a99; margin-bottom: 24px; }
.cards { display: flex; gap: 12px; flex-wrap: wrap; margin-bottom: 24px; }
.card { background: #1d1d2b; border-radius: 8px; padding: 12px 20px; min-width: 110px; }
.card .num { font-size: 26px; font-weight: 700; }
.card .label { color: #8a8a99; font-size: 12px; text-transform: uppercase; }
.grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(420px, 1fr)); gap: 16px; }
.target { background: #1d1d2b; border-radius: 8px; padding: 14px; }
.target img { width: 100%; border-radius: 4px; border: 1px solid #2c2c3d; }
.target .url { font-weight: 600; word-break: break-all; }
.target .final { color: #8a8a99; font-size: 12px; word-break: break-all; }
.badges { margin: 8px 0; }
.badge { display: inline-block; border-radius: 4px; padding: 2px 8px; margin-right: 6px; font-size: 12px; }
.status-2xx { background: #114d2e; color: #4ade80; }
.status-3xx { background: #1e3a5f; color: #60a5fa; }
.status-4xx { background: #5c4a11; color: #fbbf24; }
.status-5xx { background: #5c1515; color: #f87171; }
.grade { background: #2c2c3d; }
.sev-critical { background: #5c1515; color: #ff5555; font-weight: 700; }
.sev-high { background: #5c2a15; color: #ff8866; }
.sev-medium { background: #5c4a11; color: #fbbf24; }
.sev-low { background: #114d2e; color: #4ade80; }
.sev-new { background: #1e3a5f; color: #60a5fa; }
.sev-none { background: #2c2c3d; color: #8a8a99; }
.tech { background: #24243a; color: #a5b4fc; }
.failed { border: 1px solid #5c1515; }
.error { color: #f87171; font-size: 13px; }
.changes { font-size: 13px; color: #c9c9d4; margin-top: 6px; }
.artifacts a { color: #9d7bff; font-size: 13px; margin-right: 12px; }
</style>
</head>
<body>
<h1>Gods Eye</h1>
<div class="meta">run {{ .RunID }} · {{ .Generated.Format "2006-01-02 15:04:05 MST" }} · v{{ .Version }}{{ if .Baseline }} · baseline {{ .Baseline }}{{ end }}</div>

<div class="cards">
  <div class="card"><div class="num">{{ .Summary.Total }}</div><div class="label">targets</div></div>
  <div class="card"><div class="num">{{ .Summary.Succeeded }}</div><div class="label">captured</div></div>
  <div class="card"><div class="num">{{ .Summary.Failed }}</div><div class="label">failed</div></div>
  {{- if .Summary.Resumed }}
  <div class="card"><div class="num">{{ .Summary.Resumed }}</div><div class="label">resumed</div></div>
  {{- end }}
  {{- range $sev, $n := .Summary.BySeverity }}
  <div class="card"><div class="num">{{ $n }}</div><div class="label">{{ $sev }}</div></div>
  {{- end }}
</div>

<div class="grid">
{{- range .Results }}
  <div class="target{{ if ne .Outcome "success" }} failed{{ end }}">
    <div class="url">{{ printf "%03d" .Index }} · {{ .URL }}</div>
    {{- if and .FinalURL (ne .FinalURL .URL) }}
    <div class="final">→ {{ .FinalURL }}</div>
    {{- end }}
    <div class="badges">
      {{- if .Status }}
      <span class="badge status-{{ statusClass .Status }}">{{ .Status }}</span>
      {{- end }}
      {{- if .SecurityGrade }}<span class="badge grade">grade {{ .SecurityGrade }}</span>{{ end }}
      {{- if .Category }}<span class="badge grade">{{ .Category }}</span>{{ end }}
      {{- if .Diff }}<span class="badge sev-{{ .Diff.Severity }}">{{ .Diff.Severity }}{{ if .Diff.Percent }} {{ printf "%.2f" .Diff.Percent }}%{{ end }}</span>{{ end }}
      {{- range .Technologies }}<span class="badge tech">{{ . }}</span>{{ end }}
    </div>
    {{- if .Screenshot }}
    <a href="screenshots/{{ .Screenshot }}"><img src="screenshots/{{ .Screenshot }}" alt="{{ .URL }}" loading="lazy"></a>
    {{- end }}
    {{- if .Error }}<div class="error">{{ .Error }}</div>{{ end }}
    {{- if .Diff }}
    {{- range .Diff.Changes }}
    <div class="changes">{{ .Field }}: {{ .Before | default "∅" }} → {{ .After | default "∅" }}</div>
    {{- end }}
    <div class="artifacts">
      {{- if .Diff.Heatmap }}<a href="diffs/{{ .Diff.Heatmap }}">heatmap</a>{{ end }}
      {{- if .Diff.Composite }}<a href="diffs/{{ .Diff.Composite }}">side-by-side</a>{{ end }}
    </div>
    {{- end }}
  </div>
{{- end }}
</div>
</body>
</html>
`

// WriteHTML renders the self-contained HTML report next to the artifacts.
func WriteHTML(path string, r *Report) error {
	funcs := sprig.HtmlFuncMap()
	funcs["statusClass"] = func(status int) string {
		switch {
		case status >= 500:
			return "5xx"
		case status >= 400:
			return "4xx"
		case status >= 300:
			return "3xx"
		default:
			return "2xx"
		}
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
