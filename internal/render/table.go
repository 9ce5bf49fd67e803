package render

import (
	"strings"

	"github.com/burpheart/codex-viewer/internal/record"
)

// DefaultCollapsible lists the record keys hidden behind the metadata toggle.
// Keys are "kind" or "kind/subkind".
var DefaultCollapsible = []string{
	"session_meta",
	"turn_context",
	"response_item/reasoning",
	"event_msg/token_count",
	"event_msg/agent_reasoning",
	"event_msg/agent_reasoning_raw_content",
}

// Table decides which records are bulk metadata. It is a fixed lookup, not
// inferred from content.
type Table struct {
	keys map[string]bool
}

// NewTable builds a table from "kind" and "kind/subkind" keys. Blank keys
// are ignored.
func NewTable(keys []string) Table {
	t := Table{keys: make(map[string]bool, len(keys))}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			t.keys[k] = true
		}
	}
	return t
}

// DefaultTable returns the table built from DefaultCollapsible.
func DefaultTable() Table {
	return NewTable(DefaultCollapsible)
}

// Collapsible reports whether records of the given kind and subkind are bulk
// metadata. The exact kind/subkind key is checked first, then the kind alone.
// Unknown and malformed records are never collapsible.
func (t Table) Collapsible(kind record.Kind, subkind record.Subkind) bool {
	if kind == record.KindUnknown || kind == record.KindMalformed {
		return false
	}
	if subkind != "" && t.keys[string(kind)+"/"+string(subkind)] {
		return true
	}
	return t.keys[string(kind)]
}
