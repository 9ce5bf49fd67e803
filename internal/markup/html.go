// Package markup writes timeline documents as HTML pages or terminal text.
package markup

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/burpheart/codex-viewer/internal/format"
	"github.com/burpheart/codex-viewer/internal/render"
	"github.com/burpheart/codex-viewer/internal/timeline"
	"github.com/burpheart/codex-viewer/internal/uploads"
)

type options struct {
	reloadPath  string
	uploadsLink string
}

// Option configures HTML output.
type Option func(*options)

// WithReload embeds a script that reloads the page when the websocket at
// path sends a message.
func WithReload(path string) Option {
	return func(o *options) { o.reloadPath = path }
}

// WithUploadsLink adds a header link to the tool uploads page.
func WithUploadsLink(href string) Option {
	return func(o *options) { o.uploadsLink = href }
}

var funcs = template.FuncMap{
	"node":      nodeHTML,
	"cardClass": cardClass,
	"cardKey":   cardKey,
	"diffClass": func(k uploads.LineKind) string { return "diff-" + string(k) },
}

const pageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Doc.Title}}</title>
  <style>{{.CSS}}</style>
</head>
<body>
  <header>
    <div class="header-top">
      <h1>{{.Doc.Title}}</h1>
      <div class="header-actions">
        {{- if .UploadsLink}}
        <a href="{{.UploadsLink}}" class="nav-button">View tool uploads</a>
        {{- end}}
        <button id="toggle-meta" class="meta-toggle" type="button">Hide meta blocks</button>
      </div>
    </div>
    <p>{{if .Doc.Source}}Source: {{.Doc.Source}} · {{end}}<span id="entry-count">{{.Doc.Total}}</span> entries · {{.Doc.Collapsible}} meta</p>
  </header>
  <div class="container">
  {{- range .Doc.Cards}}
    <article id="line-{{.Line}}" class="{{cardClass .}}" data-kind="{{cardKey .}}" data-collapsible="{{.Collapsible}}">
      <header>
        <div><strong>{{.Title}}</strong>{{if .Summary}}<span class="summary">{{.Summary}}</span>{{end}}</div>
        <small>{{if .Timestamp}}{{.Timestamp}} · {{end}}line {{.Line}} · {{cardKey .}}</small>
      </header>
      <div class="entry-body">{{node .Body}}</div>
    </article>
  {{- end}}
  </div>
  <script>
    (() => {
      const btn = document.getElementById("toggle-meta");
      if (!btn) return;
      let hidden = sessionStorage.getItem("meta-hidden") === "1";
      const update = () => {
        document.body.classList.toggle("meta-hidden", hidden);
        btn.textContent = hidden ? "Show meta blocks" : "Hide meta blocks";
      };
      btn.addEventListener("click", () => {
        hidden = !hidden;
        sessionStorage.setItem("meta-hidden", hidden ? "1" : "0");
        update();
      });
      update();
    })();
  </script>
  {{- if .ReloadPath}}
  <script>
    (() => {
      const proto = location.protocol === "https:" ? "wss://" : "ws://";
      const connect = () => {
        const ws = new WebSocket(proto + location.host + {{.ReloadPath}});
        ws.onmessage = () => location.reload();
        ws.onclose = () => setTimeout(connect, 2000);
      };
      connect();
    })();
  </script>
  {{- end}}
</body>
</html>
`

const uploadsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Tool}} uploads</title>
  <style>{{.CSS}}</style>
</head>
<body>
  <header>
    <div class="header-top">
      <h1>{{.Tool}} uploads</h1>
      <div class="header-actions">
        <a href="{{.BackLink}}" class="nav-button secondary">Back to entries</a>
      </div>
    </div>
    <p>{{if .Source}}Source: {{.Source}} · {{end}}{{len .Uploads}} uploads</p>
  </header>
  <div class="container">
    <section class="panel">
    {{- if .Uploads}}
      <h2>Captured uploads ({{len .Uploads}})</h2>
      <table class="uploads-table">
        <thead><tr><th>#</th><th>Timestamp</th><th>Location</th><th>Code</th><th>Flags</th></tr></thead>
        <tbody>
        {{- range .Uploads}}
          <tr>
            <td>{{.Index}}</td>
            <td>{{.Timestamp}}</td>
            <td>line {{.Line}}</td>
            <td>{{if .Code}}<details><summary>{{len .Code}} chars</summary><pre>{{.Code}}</pre></details>{{else}}<em>empty</em>{{end}}</td>
            <td>{{if .Flags}}<details><summary>{{len .Flags}} chars</summary><pre>{{.Flags}}</pre></details>{{else}}<em>empty</em>{{end}}</td>
          </tr>
        {{- end}}
        </tbody>
      </table>
    {{- else}}
      <h2>Captured uploads</h2>
      <p>No calls to {{.Tool}} were found in this log.</p>
    {{- end}}
    </section>
    {{- if .Err}}
    <section class="panel">
      <h2>Upload diffs</h2>
      <div class="error-banner">Failed to build upload history: {{.Err}}</div>
    </section>
    {{- else if .Diffs}}
    <section class="panel">
      <h2>Upload diffs</h2>
      {{- range .Diffs}}
      <div class="diff-card">
        <h3>{{.Label}}</h3>
        <pre class="diff-block">{{if .Empty}}<span class="diff-context">(no diff)</span>{{else}}{{range .Lines}}<span class="{{diffClass .Kind}}">{{.Text}}</span>{{end}}{{end}}</pre>
      </div>
      {{- end}}
    </section>
    {{- end}}
  </div>
</body>
</html>
`

var (
	pageTmpl    = template.Must(template.New("page").Funcs(funcs).Parse(pageHTML))
	uploadsTmpl = template.Must(template.New("uploads").Funcs(funcs).Parse(uploadsHTML))
)

// WriteHTML writes doc as a standalone HTML page.
func WriteHTML(w io.Writer, doc timeline.Document, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	data := struct {
		CSS         template.CSS
		Doc         timeline.Document
		UploadsLink string
		ReloadPath  string
	}{baseCSS, doc, o.uploadsLink, o.reloadPath}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}

// UploadsPage is the content of the tool uploads page.
type UploadsPage struct {
	Tool     string
	Source   string
	BackLink string
	Uploads  []uploads.Upload
	Diffs    []uploads.Diff
	// Err is shown instead of the diffs when the history could not be built.
	Err string
}

// WriteUploads writes the tool uploads page.
func WriteUploads(w io.Writer, page UploadsPage) error {
	if page.Tool == "" {
		page.Tool = uploads.DefaultTool
	}
	if page.BackLink == "" {
		page.BackLink = "/index.html"
	}
	data := struct {
		UploadsPage
		CSS template.CSS
	}{page, baseCSS}
	if err := uploadsTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("write uploads page: %w", err)
	}
	return nil
}

func cardKey(c render.Card) string {
	if c.Subkind == "" {
		return string(c.Kind)
	}
	return string(c.Kind) + "/" + string(c.Subkind)
}

func cardClass(c render.Card) string {
	class := "entry entry-" + string(c.Tone)
	if c.Collapsible {
		class += " collapsible-meta"
	}
	return class
}

func nodeHTML(n format.Node) template.HTML {
	var b strings.Builder
	writeNode(&b, n)
	return template.HTML(b.String())
}

func writeNode(b *strings.Builder, n format.Node) {
	esc := template.HTMLEscapeString
	switch n := n.(type) {
	case format.Text:
		switch {
		case n.Null:
			b.WriteString(`<span class="null">null</span>`)
		case n.Value == "":
			b.WriteString(`<span class="text empty"></span>`)
		case strings.Contains(n.Value, "\n"):
			b.WriteString(`<pre class="text">` + esc(n.Value) + `</pre>`)
		default:
			b.WriteString(`<span class="text">` + esc(n.Value) + `</span>`)
		}

	case format.CodeBlock:
		b.WriteString(`<div class="code-block">`)
		if n.Language != "" {
			b.WriteString(`<div class="code-lang">` + esc(n.Language) + `</div>`)
			b.WriteString(`<pre><code class="language-` + esc(n.Language) + `">`)
		} else {
			b.WriteString(`<pre><code>`)
		}
		b.WriteString(esc(n.Content) + `</code></pre></div>`)

	case format.Table:
		b.WriteString(`<table class="data-table"><thead><tr>`)
		for _, c := range n.Columns {
			b.WriteString(`<th>` + esc(c) + `</th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range n.Rows {
			b.WriteString(`<tr>`)
			for _, cell := range row {
				b.WriteString(`<td>`)
				writeNode(b, cell)
				b.WriteString(`</td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)

	case format.Group:
		if len(n.Fields) == 0 {
			b.WriteString(`<span class="empty">{}</span>`)
			return
		}
		writeFields(b, n.Fields)

	case format.List:
		if len(n.Items) == 0 {
			b.WriteString(`<span class="empty">[]</span>`)
			return
		}
		b.WriteString(`<ol class="list-nested">`)
		for _, item := range n.Items {
			b.WriteString(`<li>`)
			writeNode(b, item)
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ol>`)

	case format.PlanBoard:
		b.WriteString(`<div class="plan-board"><h4>Plan</h4>`)
		if n.Explanation != "" {
			b.WriteString(`<p class="plan-explanation">` + esc(n.Explanation) + `</p>`)
		}
		b.WriteString(`<ol>`)
		for _, s := range n.Steps {
			b.WriteString(`<li><span class="status-chip status-` + statusClass(s.Status) + `">` +
				esc(s.Status) + `</span>` + esc(s.Text))
			if len(s.Extra) > 0 {
				writeFields(b, s.Extra)
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ol>`)
		if len(n.Extra) > 0 {
			writeFields(b, n.Extra)
		}
		b.WriteString(`</div>`)
	}
}

func writeFields(b *strings.Builder, fields []format.Field) {
	b.WriteString(`<table class="kv-table"><tbody>`)
	for _, f := range fields {
		b.WriteString(`<tr><th>` + template.HTMLEscapeString(f.Key) + `</th><td>`)
		writeNode(b, f.Value)
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</tbody></table>`)
}

// statusClass maps a plan status to a CSS class suffix.
func statusClass(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, status)
}
