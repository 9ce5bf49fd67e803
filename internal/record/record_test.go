package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/burpheart/codex-viewer/internal/jsonv"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		kind    Kind
		subkind Subkind
		payload string
	}{
		{
			name:    "session meta without payload",
			in:      `{"type":"session_meta","id":"abc"}`,
			kind:    KindSessionMeta,
			payload: `{"id":"abc"}`,
		},
		{
			name:    "session meta with payload",
			in:      `{"timestamp":"t","type":"session_meta","payload":{"id":"abc","cwd":"/w"}}`,
			kind:    KindSessionMeta,
			payload: `{"id":"abc","cwd":"/w"}`,
		},
		{
			name:    "turn context",
			in:      `{"type":"turn_context","payload":{"model":"gpt-5"}}`,
			kind:    KindTurnContext,
			payload: `{"model":"gpt-5"}`,
		},
		{
			name:    "response message",
			in:      `{"type":"response_item","payload":{"type":"message","role":"assistant","content":"hi"}}`,
			kind:    KindResponseItem,
			subkind: SubMessage,
			payload: `{"type":"message","role":"assistant","content":"hi"}`,
		},
		{
			name:    "response without discriminator",
			in:      `{"type":"response_item","payload":{"role":"assistant"}}`,
			kind:    KindResponseItem,
			subkind: SubOther,
			payload: `{"role":"assistant"}`,
		},
		{
			name:    "unlisted response subkind kept verbatim",
			in:      `{"type":"response_item","payload":{"type":"ghost_snapshot"}}`,
			kind:    KindResponseItem,
			subkind: "ghost_snapshot",
			payload: `{"type":"ghost_snapshot"}`,
		},
		{
			name:    "event update plan",
			in:      `{"type":"event_msg","payload":{"type":"update_plan","steps":[]}}`,
			kind:    KindEventMsg,
			subkind: SubUpdatePlan,
			payload: `{"type":"update_plan","steps":[]}`,
		},
		{
			name:    "legacy unwrapped function call",
			in:      `{"type":"function_call","name":"shell","arguments":"{}"}`,
			kind:    KindResponseItem,
			subkind: SubFunctionCall,
			payload: `{"type":"function_call","name":"shell","arguments":"{}"}`,
		},
		{
			name:    "response item with scalar payload is unknown",
			in:      `{"type":"response_item","payload":"oops"}`,
			kind:    KindUnknown,
			payload: `{"type":"response_item","payload":"oops"}`,
		},
		{
			name:    "unrecognized",
			in:      `{"foo":"bar"}`,
			kind:    KindUnknown,
			payload: `{"foo":"bar"}`,
		},
		{
			name:    "not an object",
			in:      `[1,2]`,
			kind:    KindUnknown,
			payload: `[1,2]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Classify(jsonv.MustParse(tt.in))
			assert.Equal(t, tt.kind, rec.Kind)
			assert.Equal(t, tt.subkind, rec.Subkind)
			got, err := rec.Payload.MarshalJSON()
			assert.NoError(t, err)
			assert.JSONEq(t, tt.payload, string(got))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	in := jsonv.MustParse(`{"type":"event_msg","timestamp":"2025-01-01T00:00:00Z","payload":{"type":"token_count","info":null}}`)
	a, b := Classify(in), Classify(in)
	assert.Equal(t, a, b)
	assert.Equal(t, "2025-01-01T00:00:00Z", a.Timestamp)
	assert.Equal(t, "event_msg/token_count", a.Key())
}

func TestNewAndMalformed(t *testing.T) {
	rec := New(12, jsonv.MustParse(`{"type":"session_meta"}`))
	assert.Equal(t, 12, rec.Line)
	assert.Equal(t, "session_meta", rec.Key())

	bad := Malformed(3, "{nope", errors.New("invalid character"))
	assert.Equal(t, KindMalformed, bad.Kind)
	assert.Equal(t, 3, bad.Line)
	assert.Equal(t, "{nope", bad.Text)
	assert.EqualError(t, bad.Err, "invalid character")
}
