package popup

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("popup").Funcs(template.FuncMap{
	// Summary HTML is produced by FormatSummary, which escapes model output first.
	"trusted": func(s string) template.HTML { return template.HTML(s) },
}).Parse(pageHTML))

// Render writes vm as a standalone HTML page. Every control is a plain form so
// the page works without scripts.
func Render(w io.Writer, vm ViewModel) error {
	return pageTemplate.Execute(w, vm)
}

const pageHTML = `{{define "keep"}}{{if .SearchTerm}}<input type="hidden" name="q" value="{{.SearchTerm}}">{{end}}{{range .ExpandedIDs}}<input type="hidden" name="expand" value="{{.}}">{{end}}{{end}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Highlight Saver</title>
<style>
body{font-family:system-ui,sans-serif;width:400px;margin:0;padding:12px;color:#222}
header{display:flex;justify-content:space-between;align-items:center}
.count{color:#666;font-size:13px}
.error{background:#fdecea;color:#b3261e;padding:8px;border-radius:4px;margin:8px 0}
.empty{text-align:center;color:#666;padding:24px 0}
.highlight{border:1px solid #e0e0e0;border-radius:6px;padding:8px;margin:8px 0}
.highlight .meta{display:flex;justify-content:space-between;color:#888;font-size:12px}
.highlight .context{color:#555;font-style:italic;font-size:12px}
.actions form{display:inline}
.summary{background:#f5f7ff;border-radius:6px;padding:8px;margin:8px 0}
</style>
</head>
<body>
<header>
  <h1>Highlight Saver</h1>
  <span class="count">{{.Header}}</span>
</header>

{{if .Error}}<div class="error">{{.Error}}</div>{{end}}

<section class="api-key">
  <a href="{{.KeyPanelURL}}">⚙️ API Key</a>
  {{if .APIKeyPanelOpen}}
  <form method="post" action="/popup/api-key">
    {{template "keep" .}}
    <input type="password" name="apiKey" value="{{.APIKey}}" placeholder="Gemini API key">
    <button type="submit">Save</button>
  </form>
  {{end}}
</section>

{{if .ShowSearch}}
<form method="get" action="/popup" class="search">
  <input type="search" name="q" value="{{.SearchTerm}}" placeholder="Search highlights...">
  {{range .ExpandedIDs}}<input type="hidden" name="expand" value="{{.}}">{{end}}
</form>
{{end}}

{{if .ShowActions}}
<div class="actions">
  <form method="post" action="/popup/summarize">
    {{template "keep" .}}
    <button type="submit"{{if .SummarizeAllDisabled}} disabled{{end}}>{{.SummarizeAllLabel}}</button>
  </form>
  {{if .ConfirmingClear}}
  <form method="post" action="/popup/clear">
    {{template "keep" .}}
    <input type="hidden" name="confirm" value="yes">
    <span>Are you sure you want to delete all highlights?</span>
    <button type="submit">Delete all</button>
    <a href="{{.PageURL}}">Cancel</a>
  </form>
  {{else}}
  <form method="post" action="/popup/clear">
    {{template "keep" .}}
    <button type="submit">🗑️ Clear All</button>
  </form>
  {{end}}
</div>
{{end}}

{{if .SummaryOpen}}
<section class="summary">
  {{if .SummaryError}}<p class="error">{{.SummaryError}}</p>{{else}}{{trusted .SummaryHTML}}{{end}}
  <a href="{{.PageURL}}">Close</a>
</section>
{{end}}

{{if .Loading}}
<p class="empty">Loading...</p>
{{else if .Empty}}
<div class="empty">
  <h2>{{.EmptyTitle}}</h2>
  <p>{{.EmptyMessage}}</p>
</div>
{{else}}
{{range .Rows}}
<article class="highlight" id="h-{{.ID}}">
  <p class="text">{{.Text}}</p>
  {{if .Expanded}}
    {{if .Title}}<p class="title">{{.Title}}</p>{{end}}
    {{if .Context}}<p class="context">{{.Context}}</p>{{end}}
  {{end}}
  <div class="meta">
    <span>{{.Date}}</span>
    <span>{{.Domain}}</span>
  </div>
  <div class="actions">
    <a href="{{.ToggleURL}}">{{if .Expanded}}Collapse{{else}}Expand{{end}}</a>
    <a href="{{.URL}}" target="_blank" rel="noopener">🔗 Visit</a>
    <form method="post" action="/popup/summarize">
      {{template "keep" $}}
      <input type="hidden" name="id" value="{{.ID}}">
      <button type="submit"{{if .Busy}} disabled{{end}}>{{.SummarizeLabel}}</button>
    </form>
    <form method="post" action="/popup/highlights/{{.ID}}/delete">
      {{template "keep" $}}
      <button type="submit">🗑️ Delete</button>
    </form>
  </div>
</article>
{{end}}
{{end}}
</body>
</html>
`
