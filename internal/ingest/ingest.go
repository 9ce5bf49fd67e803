// Package ingest reads JSONL trace logs into parsed lines.
package ingest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/burpheart/codex-viewer/internal/jsonv"
	"github.com/burpheart/codex-viewer/internal/record"
)

// ErrEmpty is returned when a log contains no non-blank lines.
var ErrEmpty = errors.New("log has no entries")

const scannerBufferSize = 64 * 1024

// Line is one non-blank line of a log. Err is set when the line is not a
// single JSON value; Text then holds the raw line.
type Line struct {
	No    int
	Value jsonv.Value
	Text  string
	Err   error
}

// Record classifies the line. Unparsable lines become malformed records.
func (l Line) Record() record.Record {
	if l.Err != nil {
		return record.Malformed(l.No, l.Text, l.Err)
	}
	return record.New(l.No, l.Value)
}

// Records classifies lines in order.
func Records(lines []Line) []record.Record {
	out := make([]record.Record, len(lines))
	for i, l := range lines {
		out[i] = l.Record()
	}
	return out
}

// Malformed counts lines that failed to parse.
func Malformed(lines []Line) int {
	n := 0
	for _, l := range lines {
		if l.Err != nil {
			n++
		}
	}
	return n
}

// Read splits r into lines and parses each one. Blank lines are skipped but
// still counted, so line numbers match the file.
func Read(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	// Tool outputs can make single lines very large
	scanner.Buffer(make([]byte, 0, scannerBufferSize), math.MaxInt)

	var lines []Line
	no := 0
	for scanner.Scan() {
		no++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		v, err := jsonv.Parse(raw)
		if err != nil {
			lines = append(lines, Line{No: no, Text: string(raw), Err: err})
			continue
		}
		lines = append(lines, Line{No: no, Value: v})
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("scan line %d: %w", no+1, err)
	}
	return lines, nil
}

// ReadFile reads and parses the log at path, decoding gzip, deflate and
// brotli compressed files. ErrEmpty is returned for logs without entries.
func ReadFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	r, err := decodeFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	lines, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return lines, nil
}
