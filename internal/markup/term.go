package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/burpheart/codex-viewer/internal/format"
	"github.com/burpheart/codex-viewer/internal/render"
	"github.com/burpheart/codex-viewer/internal/timeline"
)

// TextOptions configures terminal output.
type TextOptions struct {
	// Width wraps text to this many columns. Zero means 100.
	Width int
	// HideCollapsible omits bulk metadata cards.
	HideCollapsible bool
}

type termStyles struct {
	title    lipgloss.Style
	meta     lipgloss.Style
	key      lipgloss.Style
	code     lipgloss.Style
	null     lipgloss.Style
	tones    map[render.Tone]lipgloss.Style
	statuses map[string]lipgloss.Style
}

func newTermStyles(r *lipgloss.Renderer) termStyles {
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	return termStyles{
		title: r.NewStyle().Bold(true),
		meta:  fg("244"),
		key:   fg("69"),
		code:  fg("252"),
		null:  fg("244").Italic(true),
		tones: map[render.Tone]lipgloss.Style{
			render.ToneUser:      fg("42").Bold(true),
			render.ToneAssistant: fg("39").Bold(true),
			render.ToneTool:      fg("208").Bold(true),
			render.ToneSystem:    fg("245").Bold(true),
			render.ToneMetric:    fg("34").Bold(true),
			render.ToneError:     fg("196").Bold(true),
		},
		statuses: map[string]lipgloss.Style{
			"completed":   fg("42"),
			"done":        fg("42"),
			"in_progress": fg("220"),
			"pending":     fg("245"),
		},
	}
}

type termWriter struct {
	b     strings.Builder
	width int
	st    termStyles
}

// WriteText writes doc for a terminal. Colors are used only when w is a
// terminal that supports them.
func WriteText(w io.Writer, doc timeline.Document, opts TextOptions) error {
	if opts.Width <= 0 {
		opts.Width = 100
	}
	tw := &termWriter{width: opts.Width, st: newTermStyles(lipgloss.NewRenderer(w))}

	tw.line(0, tw.st.title.Render(doc.Title))
	header := fmt.Sprintf("%d entries · %d meta", doc.Total, doc.Collapsible)
	if doc.Source != "" {
		header = doc.Source + " · " + header
	}
	tw.line(0, tw.st.meta.Render(header))

	for _, c := range doc.Cards {
		if opts.HideCollapsible && c.Collapsible {
			continue
		}
		tw.card(c)
	}

	if _, err := io.WriteString(w, tw.b.String()); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

func (tw *termWriter) line(indent int, s string) {
	tw.b.WriteString(strings.Repeat(" ", indent))
	tw.b.WriteString(s)
	tw.b.WriteByte('\n')
}

func (tw *termWriter) wrapped(indent int, s string) {
	width := tw.width - indent
	if width < 20 {
		width = 20
	}
	for _, l := range strings.Split(wordwrap.String(s, width), "\n") {
		tw.line(indent, l)
	}
}

func (tw *termWriter) card(c render.Card) {
	tone, ok := tw.st.tones[c.Tone]
	if !ok {
		tone = tw.st.title
	}
	tw.b.WriteByte('\n')
	head := fmt.Sprintf("[%d] %s", c.Line, tone.Render(c.Title))
	if c.Summary != "" {
		head += " " + tw.st.meta.Render("· "+c.Summary)
	}
	tw.line(0, head)

	meta := cardKey(c)
	if c.Timestamp != "" {
		meta = c.Timestamp + " · " + meta
	}
	if c.Collapsible {
		meta += " · meta"
	}
	tw.line(2, tw.st.meta.Render(meta))
	tw.node(2, c.Body)
}

func (tw *termWriter) node(indent int, n format.Node) {
	switch n := n.(type) {
	case format.Text:
		if n.Null {
			tw.line(indent, tw.st.null.Render("null"))
			return
		}
		tw.wrapped(indent, n.Value)

	case format.CodeBlock:
		if n.Language != "" {
			tw.line(indent, tw.st.meta.Render("```"+n.Language))
		}
		for _, l := range strings.Split(strings.TrimRight(n.Content, "\n"), "\n") {
			tw.line(indent, tw.st.meta.Render("│ ")+tw.st.code.Render(l))
		}

	case format.Table:
		tw.table(indent, n)

	case format.Group:
		if len(n.Fields) == 0 {
			tw.line(indent, tw.st.null.Render("{}"))
			return
		}
		tw.fields(indent, n.Fields)

	case format.List:
		if len(n.Items) == 0 {
			tw.line(indent, tw.st.null.Render("[]"))
			return
		}
		for _, item := range n.Items {
			if s, ok := inline(item); ok {
				tw.wrapped(indent, "- "+s)
				continue
			}
			tw.line(indent, "-")
			tw.node(indent+2, item)
		}

	case format.PlanBoard:
		if n.Explanation != "" {
			tw.wrapped(indent, n.Explanation)
		}
		for _, s := range n.Steps {
			st, ok := tw.st.statuses[statusClass(s.Status)]
			if !ok {
				st = tw.st.meta
			}
			tw.wrapped(indent, st.Render("["+s.Status+"]")+" "+s.Text)
			tw.fields(indent+4, s.Extra)
		}
		tw.fields(indent, n.Extra)
	}
}

func (tw *termWriter) fields(indent int, fields []format.Field) {
	for _, f := range fields {
		key := tw.st.key.Render(f.Key + ":")
		if s, ok := inline(f.Value); ok {
			tw.wrapped(indent, key+" "+s)
			continue
		}
		tw.line(indent, key)
		tw.node(indent+2, f.Value)
	}
}

func (tw *termWriter) table(indent int, t format.Table) {
	widths := make([]int, len(t.Columns))
	cells := make([][]string, len(t.Rows))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c)
	}
	for r, row := range t.Rows {
		cells[r] = make([]string, len(row))
		for i, cell := range row {
			s := cellText(cell)
			cells[r][i] = s
			if i < len(widths) && lipgloss.Width(s) > widths[i] {
				widths[i] = lipgloss.Width(s)
			}
		}
	}
	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-lipgloss.Width(s))
	}
	head := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = pad(c, widths[i])
		rule[i] = strings.Repeat("─", widths[i])
	}
	tw.line(indent, tw.st.key.Render(strings.TrimRight(strings.Join(head, "  "), " ")))
	tw.line(indent, tw.st.meta.Render(strings.Join(rule, "  ")))
	for _, row := range cells {
		out := make([]string, len(row))
		for i, s := range row {
			out[i] = pad(s, widths[i])
		}
		tw.line(indent, strings.TrimRight(strings.Join(out, "  "), " "))
	}
}

// inline returns the one-line form of scalar nodes.
func inline(n format.Node) (string, bool) {
	t, ok := n.(format.Text)
	if !ok {
		return "", false
	}
	if t.Null {
		return "null", true
	}
	if strings.Contains(t.Value, "\n") {
		return "", false
	}
	return t.Value, true
}

func cellText(n format.Node) string {
	if s, ok := inline(n); ok {
		return s
	}
	if t, ok := n.(format.Text); ok {
		return strings.ReplaceAll(t.Value, "\n", `\n`)
	}
	return ""
}
