package timeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burpheart/codex-viewer/internal/jsonv"
	"github.com/burpheart/codex-viewer/internal/record"
	"github.com/burpheart/codex-viewer/internal/render"
)

func records(t *testing.T, lines ...string) []record.Record {
	t.Helper()
	out := make([]record.Record, 0, len(lines))
	for i, l := range lines {
		v, err := jsonv.ParseString(l)
		require.NoError(t, err, l)
		out = append(out, record.New(i+1, v))
	}
	return out
}

func TestAssemblePreservesOrder(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, fmt.Sprintf(`{"type":"event_msg","payload":{"type":"agent_message","message":"m%d"}}`, i))
	}
	doc := RenderLog(records(t, lines...))

	require.Len(t, doc.Cards, 50)
	for i, c := range doc.Cards {
		assert.Equal(t, i+1, c.Line)
		assert.Equal(t, fmt.Sprintf("m%d", i), c.Summary)
	}
}

func TestAssembleCounts(t *testing.T) {
	recs := records(t,
		`{"type":"session_meta","id":"abc"}`,
		`{"type":"response_item","payload":{"type":"message","role":"user","content":"hi"}}`,
		`{"type":"response_item","payload":{"type":"reasoning","summary":[]}}`,
		`{"type":"event_msg","payload":{"type":"token_count","info":null}}`,
		`{"foo":"bar"}`,
	)
	recs = append(recs, record.Malformed(6, "{", fmt.Errorf("unexpected EOF")))

	doc := Assemble("", "/tmp/x.jsonl", recs, nil)

	assert.Equal(t, DefaultTitle, doc.Title)
	assert.Equal(t, "/tmp/x.jsonl", doc.Source)
	assert.Equal(t, 6, doc.Total)
	assert.Equal(t, 3, doc.Collapsible)
	assert.Equal(t, 3, doc.Visible())
	assert.Equal(t, map[string]int{
		"session_meta":            1,
		"response_item/message":   1,
		"response_item/reasoning": 1,
		"event_msg/token_count":   1,
		"unknown":                 1,
		"malformed":               1,
	}, doc.Counts())
}

func TestAssembleEmpty(t *testing.T) {
	doc := Assemble("t", "", nil, render.New())
	assert.Equal(t, 0, doc.Total)
	assert.NotNil(t, doc.Cards)
}

func TestAssembleIsDeterministic(t *testing.T) {
	recs := records(t,
		`{"type":"response_item","payload":{"type":"function_call","name":"shell","arguments":"{\"command\":[\"ls\"]}"}}`,
		`{"type":"event_msg","payload":{"type":"update_plan","steps":[{"status":"done","text":"a"}]}}`,
	)
	assert.Equal(t, RenderLog(recs), RenderLog(recs))
}
