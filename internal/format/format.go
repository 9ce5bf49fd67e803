package format

import (
	"github.com/burpheart/codex-viewer/internal/jsonv"
)

// Hint tells Format what the caller knows about a value without Format
// having to see the enclosing record.
type Hint int

const (
	// HintNone applies the shape rules.
	HintNone Hint = iota
	// HintCode forces a code block for the value's top-level shape.
	HintCode
)

// Code payload field names, in lookup order.
var (
	codeContentKeys  = []string{"code", "content", "text"}
	codeLanguageKeys = []string{"language", "lang", "programming_language"}
)

// Plan field names.
var (
	planListKeys = []string{"plan", "steps"}
	planTextKeys = []string{"step", "text"}
)

// Format converts v into a display node. It never fails: every value that
// does not match a specialized shape falls through to a more generic node.
//
// Rules are tried in order: forced code, scalar, code payload, plan, table,
// list, group.
func Format(v jsonv.Value, hint Hint) Node {
	if hint == HintCode {
		return forceCode(v)
	}
	if v.IsScalar() {
		return scalar(v)
	}
	if cb, ok := codePayload(v); ok {
		return cb
	}
	if pb, ok := planBoard(v); ok {
		return pb
	}
	if tb, ok := table(v); ok {
		return tb
	}
	if v.Kind() == jsonv.Array {
		items := make([]Node, 0, v.Len())
		for _, e := range v.Elems() {
			items = append(items, Format(e, HintNone))
		}
		return List{Items: items}
	}
	return group(v.Members())
}

func scalar(v jsonv.Value) Text {
	if v.IsNull() {
		return Text{Null: true}
	}
	return Text{Value: v.Text()}
}

func group(members []jsonv.Member) Group {
	fields := make([]Field, 0, len(members))
	for _, m := range members {
		fields = append(fields, Field{Key: m.Key, Value: Format(m.Value, HintNone)})
	}
	return Group{Fields: fields}
}

func forceCode(v jsonv.Value) CodeBlock {
	if s, ok := v.Str(); ok {
		return CodeBlock{Content: s}
	}
	if cb, ok := codePayload(v); ok {
		return cb
	}
	if v.IsScalar() {
		return CodeBlock{Content: v.Text()}
	}
	return CodeBlock{Language: "json", Content: v.Indent()}
}

// IsCodePayload reports whether v is an object tagged "type": "code" that
// carries string content.
func IsCodePayload(v jsonv.Value) bool {
	_, ok := codePayload(v)
	return ok
}

func codePayload(v jsonv.Value) (CodeBlock, bool) {
	if v.Kind() != jsonv.Object || v.GetString("type") != "code" {
		return CodeBlock{}, false
	}
	content, ok := firstString(v, codeContentKeys)
	if !ok {
		return CodeBlock{}, false
	}
	lang, _ := firstString(v, codeLanguageKeys)
	return CodeBlock{Language: lang, Content: content}, true
}

func firstString(v jsonv.Value, keys []string) (string, bool) {
	_, s, ok := firstStringKey(v, keys)
	return s, ok
}

func firstStringKey(v jsonv.Value, keys []string) (string, string, bool) {
	for _, k := range keys {
		f, ok := v.Get(k)
		if !ok {
			continue
		}
		if s, ok := f.Str(); ok {
			return k, s, true
		}
	}
	return "", "", false
}

// planBoard matches an object holding a plan list: every element an object
// with a string status and a string step text. Other step keys are kept as
// step metadata.
func planBoard(v jsonv.Value) (PlanBoard, bool) {
	if v.Kind() != jsonv.Object {
		return PlanBoard{}, false
	}
	listKey := ""
	var steps []PlanStep
	for _, k := range planListKeys {
		list, ok := v.Get(k)
		if !ok {
			continue
		}
		if s, ok := planSteps(list); ok {
			listKey, steps = k, s
			break
		}
	}
	if listKey == "" {
		return PlanBoard{}, false
	}

	pb := PlanBoard{Steps: steps}
	for _, m := range v.Members() {
		if m.Key == listKey {
			continue
		}
		if m.Key == "explanation" && pb.Explanation == "" {
			if s, ok := m.Value.Str(); ok && s != "" {
				pb.Explanation = s
				continue
			}
		}
		pb.Extra = append(pb.Extra, Field{Key: m.Key, Value: Format(m.Value, HintNone)})
	}
	return pb, true
}

func planSteps(list jsonv.Value) ([]PlanStep, bool) {
	if list.Kind() != jsonv.Array || list.Len() == 0 {
		return nil, false
	}
	steps := make([]PlanStep, 0, list.Len())
	for _, e := range list.Elems() {
		if e.Kind() != jsonv.Object {
			return nil, false
		}
		status, ok := e.Get("status")
		if !ok {
			return nil, false
		}
		st, ok := status.Str()
		if !ok {
			return nil, false
		}
		textKey, text, ok := firstStringKey(e, planTextKeys)
		if !ok {
			return nil, false
		}
		step := PlanStep{Status: st, Text: text}
		for _, m := range e.Without("status", textKey).Members() {
			step.Extra = append(step.Extra, Field{Key: m.Key, Value: Format(m.Value, HintNone)})
		}
		steps = append(steps, step)
	}
	return steps, true
}

// table matches a non-empty array of non-empty objects that share one key
// set and hold only scalar values.
func table(v jsonv.Value) (Table, bool) {
	elems := v.Elems()
	if len(elems) == 0 || elems[0].Kind() != jsonv.Object || elems[0].Len() == 0 {
		return Table{}, false
	}
	columns := elems[0].Keys()
	for _, e := range elems {
		if !sameKeys(e, columns) {
			return Table{}, false
		}
		for _, m := range e.Members() {
			if !m.Value.IsScalar() {
				return Table{}, false
			}
		}
	}

	rows := make([][]Node, 0, len(elems))
	for _, e := range elems {
		row := make([]Node, len(columns))
		for i, col := range columns {
			cell, _ := e.Get(col)
			row[i] = scalar(cell)
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}, true
}

func sameKeys(v jsonv.Value, keys []string) bool {
	if v.Kind() != jsonv.Object || v.Len() != len(keys) {
		return false
	}
	for _, k := range keys {
		if _, ok := v.Get(k); !ok {
			return false
		}
	}
	return true
}
