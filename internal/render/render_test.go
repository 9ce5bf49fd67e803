package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burpheart/codex-viewer/internal/format"
	"github.com/burpheart/codex-viewer/internal/jsonv"
	"github.com/burpheart/codex-viewer/internal/record"
)

func renderLine(t *testing.T, line string) Card {
	t.Helper()
	return New().Render(record.New(1, jsonv.MustParse(line)))
}

func TestRenderSessionMeta(t *testing.T) {
	c := renderLine(t, `{"type":"session_meta","id":"abc"}`)

	assert.Equal(t, "session metadata", c.Title)
	assert.Equal(t, "session metadata", c.Summary)
	assert.True(t, c.Collapsible)
	assert.Equal(t, format.Group{Fields: []format.Field{{Key: "id", Value: format.Text{Value: "abc"}}}}, c.Body)
}

func TestRenderAssistantMessage(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"message","role":"assistant","content":"Hello\nworld"}}`)

	assert.Equal(t, "assistant message", c.Title)
	assert.Equal(t, "Hello", c.Summary)
	assert.Equal(t, format.Text{Value: "Hello\nworld"}, c.Body)
	assert.False(t, c.Collapsible)
	assert.Equal(t, ToneAssistant, c.Tone)
}

func TestRenderMessageChunks(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"first"},{"type":"input_image","image_url":"x"},{"type":"input_text","text":"second"}]}}`)

	assert.Equal(t, "user message", c.Title)
	assert.Equal(t, ToneUser, c.Tone)
	assert.Equal(t, "first", c.Summary)

	g, ok := c.Body.(format.Group)
	require.True(t, ok, "got %T", c.Body)
	require.Len(t, g.Fields, 2)
	assert.Equal(t, "content", g.Fields[0].Key)
	assert.Equal(t, format.List{Items: []format.Node{format.Text{Value: "first"}, format.Text{Value: "second"}}}, g.Fields[0].Value)
	assert.Equal(t, "attachments", g.Fields[1].Key)
	assert.Equal(t, format.Table{
		Columns: []string{"type", "image_url"},
		Rows:    [][]format.Node{{format.Text{Value: "input_image"}, format.Text{Value: "x"}}},
	}, g.Fields[1].Value)
}

func TestRenderMessageKeepsSiblingFields(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"message","role":"user","id":"msg_1","content":[{"type":"input_text","text":"look"},{"type":"input_image","image_url":"data:x"}]}}`)

	g, ok := c.Body.(format.Group)
	require.True(t, ok, "got %T", c.Body)
	keys := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{"content", "attachments", "id"}, keys)
	assert.Equal(t, format.Text{Value: "look"}, g.Fields[0].Value)
	assert.Equal(t, format.Text{Value: "msg_1"}, g.Fields[2].Value)
}

func TestRenderMessageWithoutTextFallsBackToGeneric(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_image","image_url":"x"}]}}`)

	g, ok := c.Body.(format.Group)
	require.True(t, ok, "got %T", c.Body)
	require.Len(t, g.Fields, 1)
	assert.Equal(t, "content", g.Fields[0].Key)
}

func TestRenderUpdatePlanEvent(t *testing.T) {
	c := renderLine(t, `{"type":"event_msg","payload":{"type":"update_plan","steps":[{"status":"done","text":"a"},{"status":"pending","text":"b"}]}}`)

	pb, ok := c.Body.(format.PlanBoard)
	require.True(t, ok, "got %T", c.Body)
	assert.Equal(t, []format.PlanStep{{Status: "done", Text: "a"}, {Status: "pending", Text: "b"}}, pb.Steps)
	assert.Equal(t, "plan update", c.Title)
	assert.Equal(t, "1/2 steps done", c.Summary)
	assert.False(t, c.Collapsible)
}

func TestRenderTabularPayload(t *testing.T) {
	c := renderLine(t, `{"type":"event_msg","payload":[{"x":1,"y":2},{"x":3,"y":2}]}`)
	// a non-object payload is not an event payload
	assert.Equal(t, record.KindUnknown, c.Kind)

	c = renderLine(t, `{"type":"event_msg","payload":{"type":"rows","items":[{"x":1,"y":2},{"x":3,"y":2}]}}`)
	g, ok := c.Body.(format.Group)
	require.True(t, ok)
	tb, ok := g.Fields[0].Value.(format.Table)
	require.True(t, ok, "got %T", g.Fields[0].Value)
	assert.Equal(t, []string{"x", "y"}, tb.Columns)
	assert.Len(t, tb.Rows, 2)
	assert.Equal(t, "rows event", c.Title)
}

func TestRenderUnknownRecord(t *testing.T) {
	c := renderLine(t, `{"foo":"bar"}`)

	assert.Equal(t, record.KindUnknown, c.Kind)
	assert.Equal(t, "unhandled record", c.Title)
	assert.False(t, c.Collapsible)
	assert.Equal(t, format.Group{Fields: []format.Field{{Key: "foo", Value: format.Text{Value: "bar"}}}}, c.Body)

	c = renderLine(t, `{"type":"compacted","payload":{"message":"m"}}`)
	assert.Equal(t, "unhandled type: compacted", c.Title)
}

func TestRenderFunctionCall(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"function_call","name":"shell","arguments":"{\"command\":[\"bash\",\"-lc\",\"ls -la\"],\"workdir\":\"/w\"}","call_id":"call_1"}}`)

	assert.Equal(t, "tool call: shell", c.Title)
	assert.Equal(t, "shell(bash -lc 'ls -la')", c.Summary)
	assert.False(t, c.Collapsible)

	g, ok := c.Body.(format.Group)
	require.True(t, ok)
	require.Len(t, g.Fields, 2)
	assert.Equal(t, "call_id", g.Fields[0].Key)
	assert.Equal(t, format.Text{Value: "call_1"}, g.Fields[0].Value)
	args, ok := g.Fields[1].Value.(format.Group)
	require.True(t, ok, "arguments should be parsed, got %T", g.Fields[1].Value)
	assert.Equal(t, "command", args.Fields[0].Key)
}

func TestRenderFunctionCallPreviewIsTruncated(t *testing.T) {
	long := strings.Repeat("x", 300)
	c := renderLine(t, `{"type":"response_item","payload":{"type":"function_call","name":"write","arguments":"`+long+`"}}`)

	assert.True(t, strings.HasSuffix(c.Summary, "…"))
	assert.Equal(t, 81, len([]rune(c.Summary)))
}

func TestRenderUpdatePlanToolCall(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"function_call","name":"update_plan","arguments":"{\"explanation\":\"e\",\"plan\":[{\"step\":\"a\",\"status\":\"completed\"}]}","call_id":"c"}}`)

	g, ok := c.Body.(format.Group)
	require.True(t, ok)
	pb, ok := g.Fields[1].Value.(format.PlanBoard)
	require.True(t, ok, "got %T", g.Fields[1].Value)
	assert.Equal(t, "e", pb.Explanation)
	assert.Equal(t, []format.PlanStep{{Status: "completed", Text: "a"}}, pb.Steps)
}

func TestRenderUnparsableArgumentsStayText(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"function_call","name":"x","arguments":"{not json"}}`)
	assert.Equal(t, format.Text{Value: "{not json"}, c.Body)
}

func TestRenderFunctionOutputOutcome(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"exit zero", `"{\"output\":\"ok\",\"metadata\":{\"exit_code\":0}}"`, "ok (exit 0)"},
		{"exit nonzero", `"{\"output\":\"boom\",\"metadata\":{\"exit_code\":2}}"`, "failed (exit 2)"},
		{"success flag", `{"content":"x","success":false}`, "failed"},
		{"plain text", `"just text"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := renderLine(t, `{"type":"response_item","payload":{"type":"function_call_output","call_id":"c","output":`+tt.output+`}}`)
			assert.Equal(t, "tool output", c.Title)
			assert.Equal(t, tt.want, c.Summary)
		})
	}
}

func TestRenderFunctionOutputMultilineText(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"function_call_output","output":"line1\nline2"}}`)
	assert.Equal(t, format.Text{Value: "line1\nline2"}, c.Body)
}

func TestRenderCustomToolCallForcesCode(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"custom_tool_call","name":"apply_patch","call_id":"c","input":"*** Begin Patch\n*** End Patch"}}`)

	assert.Equal(t, "tool call: apply_patch", c.Title)
	assert.Equal(t, "apply_patch *** Begin Patch", c.Summary)
	g, ok := c.Body.(format.Group)
	require.True(t, ok)
	assert.Equal(t, format.CodeBlock{Content: "*** Begin Patch\n*** End Patch"}, g.Fields[1].Value)
}

func TestRenderMissingPrimaryFieldIsOmitted(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"custom_tool_call","name":"apply_patch","call_id":"c"}}`)
	assert.Equal(t, format.Text{Value: "c"}, c.Body)

	c = renderLine(t, `{"type":"event_msg","payload":{"type":"agent_message","kind":"plain"}}`)
	assert.Equal(t, format.Group{Fields: []format.Field{{Key: "kind", Value: format.Text{Value: "plain"}}}}, c.Body)

	c = renderLine(t, `{"type":"response_item","payload":{"type":"function_call_output","call_id":"c","status":"done"}}`)
	assert.Equal(t, format.Group{Fields: []format.Field{
		{Key: "call_id", Value: format.Text{Value: "c"}},
		{Key: "status", Value: format.Text{Value: "done"}},
	}}, c.Body)

	// present but null stays visible
	c = renderLine(t, `{"type":"event_msg","payload":{"type":"agent_message","message":null}}`)
	assert.Equal(t, format.Text{Null: true}, c.Body)
}

func TestRenderCodeSubkind(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"code","language":"go","code":"package main"}}`)
	assert.Equal(t, format.CodeBlock{Language: "go", Content: "package main"}, c.Body)
	assert.Equal(t, "go", c.Summary)

	// no content: still a code block, of the payload itself
	c = renderLine(t, `{"type":"response_item","payload":{"type":"code","language":"go"}}`)
	cb, ok := c.Body.(format.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "json", cb.Language)
}

func TestRenderReasoning(t *testing.T) {
	c := renderLine(t, `{"type":"response_item","payload":{"type":"reasoning","summary":[{"type":"summary_text","text":"**Planning**\nthink"}],"encrypted_content":"zzz"}}`)
	assert.True(t, c.Collapsible)
	assert.Equal(t, "reasoning", c.Title)
	assert.Equal(t, "**Planning**", c.Summary)
	assert.Equal(t, format.Group{Fields: []format.Field{
		{Key: "summary", Value: format.Text{Value: "**Planning**\nthink"}},
		{Key: "encrypted_content", Value: format.Text{Value: "zzz"}},
	}}, c.Body)

	c = renderLine(t, `{"type":"response_item","payload":{"type":"reasoning","id":"rs_1","summary":[],"encrypted_content":"zzz"}}`)
	assert.Equal(t, format.Group{Fields: []format.Field{
		{Key: "summary", Value: format.Text{Value: "no public summary (content encrypted)"}},
		{Key: "id", Value: format.Text{Value: "rs_1"}},
		{Key: "encrypted_content", Value: format.Text{Value: "zzz"}},
	}}, c.Body)

	c = renderLine(t, `{"type":"response_item","payload":{"type":"reasoning","summary":[],"content":[{"type":"reasoning_text","text":"raw"}]}}`)
	assert.Equal(t, "raw", c.Summary)
	assert.Equal(t, format.Text{Value: "raw"}, c.Body)
}

func TestRenderTokenCount(t *testing.T) {
	c := renderLine(t, `{"type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":10,"total_tokens":15}}}}`)
	assert.True(t, c.Collapsible)
	assert.Equal(t, ToneMetric, c.Tone)
	assert.Equal(t, "15 tokens total", c.Summary)

	c = renderLine(t, `{"type":"event_msg","payload":{"type":"token_count","info":null}}`)
	assert.Equal(t, format.Text{Null: true}, c.Body)
}

func TestRenderEventMessages(t *testing.T) {
	c := renderLine(t, `{"type":"event_msg","payload":{"type":"user_message","message":"do it\nnow","kind":"plain"}}`)
	assert.Equal(t, "user event", c.Title)
	assert.Equal(t, "do it", c.Summary)
	assert.Equal(t, format.Group{Fields: []format.Field{
		{Key: "message", Value: format.Text{Value: "do it\nnow"}},
		{Key: "kind", Value: format.Text{Value: "plain"}},
	}}, c.Body)

	c = renderLine(t, `{"type":"event_msg","payload":{"type":"agent_message","message":"done"}}`)
	assert.Equal(t, "agent event", c.Title)
	assert.Equal(t, format.Text{Value: "done"}, c.Body)
}

func TestRenderMalformed(t *testing.T) {
	c := New().Render(record.Malformed(4, "{oops", errors.New("bad json")))
	assert.Equal(t, "malformed line", c.Title)
	assert.Equal(t, ToneError, c.Tone)
	assert.Equal(t, 4, c.Line)
	assert.False(t, c.Collapsible)
	assert.Equal(t, "bad json", c.Summary)
}

func TestCollapsibleDependsOnlyOnKindAndSubkind(t *testing.T) {
	lines := []string{
		`{"type":"response_item","payload":{"type":"reasoning","summary":[]}}`,
		`{"type":"response_item","payload":{"type":"reasoning","summary":[{"type":"summary_text","text":"x"}],"extra":[1,2,3]}}`,
		`{"type":"event_msg","payload":{"type":"token_count","info":null}}`,
		`{"type":"event_msg","payload":{"type":"token_count","info":{"a":1},"rate_limits":{}}}`,
		`{"type":"turn_context","payload":{}}`,
		`{"type":"turn_context","payload":{"cwd":"/x","model":"m"}}`,
		`{"type":"event_msg","payload":{"type":"exec_command_begin"}}`,
		`{"type":"event_msg","payload":{"type":"exec_command_begin","call_id":"c"}}`,
	}
	r := New()
	seen := map[string]bool{}
	for _, line := range lines {
		rec := record.New(1, jsonv.MustParse(line))
		c := r.Render(rec)
		if prev, ok := seen[rec.Key()]; ok {
			assert.Equal(t, prev, c.Collapsible, rec.Key())
		}
		seen[rec.Key()] = c.Collapsible
	}
	assert.False(t, seen["event_msg/exec_command_begin"])
}

func TestCustomTable(t *testing.T) {
	r := New(WithTable(NewTable([]string{"response_item/function_call_output", " ", "event_msg"})))

	out := r.Render(record.New(1, jsonv.MustParse(`{"type":"response_item","payload":{"type":"function_call_output","output":"x"}}`)))
	assert.True(t, out.Collapsible)

	meta := r.Render(record.New(2, jsonv.MustParse(`{"type":"session_meta","id":"abc"}`)))
	assert.False(t, meta.Collapsible)

	ev := r.Render(record.New(3, jsonv.MustParse(`{"type":"event_msg","payload":{"type":"agent_message","message":"m"}}`)))
	assert.True(t, ev.Collapsible)

	unknown := r.Render(record.New(4, jsonv.MustParse(`{"foo":1}`)))
	assert.False(t, unknown.Collapsible)
}
