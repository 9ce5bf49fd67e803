// Package uploads collects the code uploads made through a tracked tool and
// diffs each one against the previous upload.
package uploads

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/burpheart/codex-viewer/internal/jsonv"
	"github.com/burpheart/codex-viewer/internal/record"
)

// DefaultTool is the tool whose calls are tracked unless configured otherwise.
const DefaultTool = "mcp__kernelmcp__vm_compile_c_and_upload"

// File names used in diffs.
const (
	CodeFile  = "code.c"
	FlagsFile = "flags.txt"
)

// Upload is one call of the tracked tool.
type Upload struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Line      int    `json:"line"`
	Code      string `json:"code"`
	Flags     string `json:"flags"`
}

// LineKind classifies a line of a unified diff.
type LineKind string

const (
	LineFile    LineKind = "file"
	LineHunk    LineKind = "hunk"
	LineAdd     LineKind = "add"
	LineDel     LineKind = "del"
	LineContext LineKind = "context"
)

// DiffLine is one classified diff line.
type DiffLine struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Diff is the change introduced by one upload.
type Diff struct {
	Label  string     `json:"label"`
	Upload int        `json:"upload"`
	Lines  []DiffLine `json:"lines"`
}

// Empty reports whether the upload changed nothing.
func (d Diff) Empty() bool { return len(d.Lines) == 0 }

// Extract returns the uploads found in records, in log order. Only
// function calls to tool whose arguments decode to an object count.
func Extract(records []record.Record, tool string) []Upload {
	if tool == "" {
		tool = DefaultTool
	}
	var out []Upload
	for _, rec := range records {
		if rec.Kind != record.KindResponseItem || rec.Subkind != record.SubFunctionCall {
			continue
		}
		if rec.Payload.GetString("name") != tool {
			continue
		}
		args, ok := arguments(rec.Payload)
		if !ok {
			continue
		}
		ts := rec.Timestamp
		if ts == "" {
			ts = "unknown"
		}
		out = append(out, Upload{
			Index:     len(out) + 1,
			Timestamp: ts,
			Line:      rec.Line,
			Code:      field(args, "code"),
			Flags:     field(args, "flags"),
		})
	}
	return out
}

func arguments(p jsonv.Value) (jsonv.Value, bool) {
	args, ok := p.Get("arguments")
	if !ok {
		return jsonv.Value{}, false
	}
	if s, ok := args.Str(); ok {
		parsed, err := jsonv.ParseString(s)
		if err != nil {
			return jsonv.Value{}, false
		}
		args = parsed
	}
	return args, args.Kind() == jsonv.Object
}

// field reads a string argument. Arrays are joined one element per line.
func field(args jsonv.Value, key string) string {
	v, ok := args.Get(key)
	if !ok || v.IsNull() {
		return ""
	}
	if v.Kind() == jsonv.Array {
		parts := make([]string, 0, v.Len())
		for _, e := range v.Elems() {
			parts = append(parts, e.Text())
		}
		return strings.Join(parts, "\n")
	}
	return v.Text()
}

// History diffs every upload against the one before it. The first upload is
// diffed against empty files.
func History(uploads []Upload) ([]Diff, error) {
	diffs := make([]Diff, 0, len(uploads))
	var prev Upload
	for _, u := range uploads {
		var lines []DiffLine
		for _, f := range []struct {
			name          string
			before, after string
		}{
			{CodeFile, prev.Code, u.Code},
			{FlagsFile, prev.Flags, u.Flags},
		} {
			text, err := unified(f.name, f.before, f.after)
			if err != nil {
				return nil, fmt.Errorf("diff upload %d: %w", u.Index, err)
			}
			lines = append(lines, Classify(text)...)
		}
		diffs = append(diffs, Diff{
			Label:  fmt.Sprintf("upload %d · line %d", u.Index, u.Line),
			Upload: u.Index,
			Lines:  lines,
		})
		prev = u
	}
	return diffs, nil
}

func unified(name, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
}

// splitLines splits s into newline-terminated lines without the phantom
// empty line difflib.SplitLines adds after a trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n"
	}
	return lines
}

// Classify splits unified diff text into classified lines.
func Classify(diff string) []DiffLine {
	diff = strings.TrimRight(diff, "\n")
	if diff == "" {
		return nil
	}
	raw := strings.Split(diff, "\n")
	out := make([]DiffLine, 0, len(raw))
	for _, line := range raw {
		out = append(out, DiffLine{Kind: kindOf(line), Text: line})
	}
	return out
}

func kindOf(line string) LineKind {
	switch {
	case strings.HasPrefix(line, "@@"):
		return LineHunk
	case strings.HasPrefix(line, "+++ "), strings.HasPrefix(line, "--- "):
		return LineFile
	case strings.HasPrefix(line, "+"):
		return LineAdd
	case strings.HasPrefix(line, "-"):
		return LineDel
	}
	return LineContext
}
