// Package record classifies raw log lines into the known record kinds.
package record

import (
	"github.com/burpheart/codex-viewer/internal/jsonv"
)

// Kind is the top-level classification of a record.
type Kind string

const (
	KindSessionMeta  Kind = "session_meta"
	KindTurnContext  Kind = "turn_context"
	KindResponseItem Kind = "response_item"
	KindEventMsg     Kind = "event_msg"
	KindUnknown      Kind = "unknown"
	// KindMalformed marks a line that was not valid JSON.
	KindMalformed Kind = "malformed"
)

// Subkind is the payload discriminator of response items and events. Values
// outside the constants below are kept verbatim.
type Subkind string

// Response item subkinds.
const (
	SubMessage              Subkind = "message"
	SubFunctionCall         Subkind = "function_call"
	SubFunctionCallOutput   Subkind = "function_call_output"
	SubReasoning            Subkind = "reasoning"
	SubCustomToolCall       Subkind = "custom_tool_call"
	SubCustomToolCallOutput Subkind = "custom_tool_call_output"
	SubLocalShellCall       Subkind = "local_shell_call"
	SubWebSearchCall        Subkind = "web_search_call"
	SubCode                 Subkind = "code"
)

// Event subkinds.
const (
	SubUserMessage    Subkind = "user_message"
	SubAgentMessage   Subkind = "agent_message"
	SubAgentReasoning Subkind = "agent_reasoning"
	SubTokenCount     Subkind = "token_count"
	SubUpdatePlan     Subkind = "update_plan"
)

// SubOther is used when a payload carries no type discriminator.
const SubOther Subkind = "other"

// Record is one classified log line.
type Record struct {
	Line      int
	Timestamp string
	Kind      Kind
	Subkind   Subkind
	// Payload is the part of Raw specific to the kind: the nested payload for
	// wrapped records, Raw itself otherwise.
	Payload jsonv.Value
	Raw     jsonv.Value
	// Text and Err are set for malformed lines.
	Text string
	Err  error
}

// Key returns "kind/subkind", or just the kind when there is no subkind.
func (r Record) Key() string {
	if r.Subkind == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + "/" + string(r.Subkind)
}

// legacyTypes are unwrapped response records written by older CLI versions.
var legacyTypes = map[string]bool{
	string(SubMessage):            true,
	string(SubFunctionCall):       true,
	string(SubFunctionCallOutput): true,
	string(SubReasoning):          true,
}

// Classify assigns a kind to raw. It is total and depends only on raw's keys
// and its type discriminators; a value that matches nothing is KindUnknown
// with raw kept as the payload.
func Classify(raw jsonv.Value) Record {
	rec := Record{
		Kind:      KindUnknown,
		Payload:   raw,
		Raw:       raw,
		Timestamp: raw.GetString("timestamp"),
	}
	typ := raw.GetString("type")
	payload, hasPayload := raw.Get("payload")
	hasPayload = hasPayload && payload.Kind() == jsonv.Object

	switch {
	case typ == string(KindSessionMeta):
		rec.Kind = KindSessionMeta
		if hasPayload {
			rec.Payload = payload
		} else {
			rec.Payload = raw.Without("type", "timestamp")
		}
	case typ == string(KindTurnContext):
		rec.Kind = KindTurnContext
		if hasPayload {
			rec.Payload = payload
		} else {
			rec.Payload = raw.Without("type", "timestamp")
		}
	case typ == string(KindResponseItem) && hasPayload:
		rec.Kind = KindResponseItem
		rec.Subkind = subkindOf(payload)
		rec.Payload = payload
	case typ == string(KindEventMsg) && hasPayload:
		rec.Kind = KindEventMsg
		rec.Subkind = subkindOf(payload)
		rec.Payload = payload
	case legacyTypes[typ]:
		rec.Kind = KindResponseItem
		rec.Subkind = Subkind(typ)
	}
	return rec
}

func subkindOf(payload jsonv.Value) Subkind {
	if t := payload.GetString("type"); t != "" {
		return Subkind(t)
	}
	return SubOther
}

// New classifies the value read from the given 1-based line.
func New(line int, raw jsonv.Value) Record {
	rec := Classify(raw)
	rec.Line = line
	return rec
}

// Malformed returns the record for a line that failed to parse.
func Malformed(line int, text string, err error) Record {
	return Record{
		Line:    line,
		Kind:    KindMalformed,
		Payload: jsonv.NewString(text),
		Raw:     jsonv.NewString(text),
		Text:    text,
		Err:     err,
	}
}
