// Package timeline assembles rendered cards into a page document.
package timeline

import (
	"github.com/burpheart/codex-viewer/internal/record"
	"github.com/burpheart/codex-viewer/internal/render"
)

// DefaultTitle is used when no document title is configured.
const DefaultTitle = "Codex log"

// Document is the ordered sequence of cards for one log plus page metadata.
type Document struct {
	Title       string        `json:"title"`
	Source      string        `json:"source,omitempty"`
	Cards       []render.Card `json:"cards"`
	Total       int           `json:"total"`
	Collapsible int           `json:"collapsible"`
}

// Assemble renders every record in input order. Nothing is filtered, merged
// or reordered; the i-th card is the rendering of the i-th record.
func Assemble(title, source string, records []record.Record, r *render.Renderer) Document {
	if title == "" {
		title = DefaultTitle
	}
	if r == nil {
		r = render.New()
	}
	doc := Document{
		Title:  title,
		Source: source,
		Cards:  make([]render.Card, 0, len(records)),
	}
	for _, rec := range records {
		c := r.Render(rec)
		if c.Collapsible {
			doc.Collapsible++
		}
		doc.Cards = append(doc.Cards, c)
	}
	doc.Total = len(doc.Cards)
	return doc
}

// RenderLog builds a document from records with the default renderer.
func RenderLog(records []record.Record) Document {
	return Assemble(DefaultTitle, "", records, render.New())
}

// Visible returns the number of cards shown while collapsible cards are hidden.
func (d Document) Visible() int {
	return d.Total - d.Collapsible
}

// Counts tallies cards by record key ("kind" or "kind/subkind").
func (d Document) Counts() map[string]int {
	counts := make(map[string]int)
	for _, c := range d.Cards {
		key := string(c.Kind)
		if c.Subkind != "" {
			key += "/" + string(c.Subkind)
		}
		counts[key]++
	}
	return counts
}
