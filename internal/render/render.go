// Package render maps classified records to display cards.
package render

import (
	"fmt"
	"strings"

	"github.com/burpheart/codex-viewer/internal/format"
	"github.com/burpheart/codex-viewer/internal/jsonv"
	"github.com/burpheart/codex-viewer/internal/record"
)

// Tone selects the card accent. It does not affect content.
type Tone string

const (
	ToneUser      Tone = "user"
	ToneAssistant Tone = "assistant"
	ToneTool      Tone = "tool"
	ToneSystem    Tone = "system"
	ToneMetric    Tone = "metric"
	ToneError     Tone = "error"
)

// Card is the display unit for one record. A card owns its body tree.
type Card struct {
	Line        int            `json:"line"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Kind        record.Kind    `json:"kind"`
	Subkind     record.Subkind `json:"subkind,omitempty"`
	Tone        Tone           `json:"tone"`
	Title       string         `json:"title"`
	Summary     string         `json:"summary,omitempty"`
	Body        format.Node    `json:"body"`
	Collapsible bool           `json:"collapsible"`
}

// Renderer turns records into cards.
type Renderer struct {
	table      Table
	previewLen int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTable sets the collapsible classification table.
func WithTable(t Table) Option {
	return func(r *Renderer) { r.table = t }
}

// WithPreviewLen sets the maximum rune length of card summaries.
func WithPreviewLen(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.previewLen = n
		}
	}
}

// New creates a Renderer using DefaultTable unless configured otherwise.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		table:      DefaultTable(),
		previewLen: 80,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the card for rec. It never fails; payloads that do not match
// the expected shape for their subkind are rendered generically.
func (r *Renderer) Render(rec record.Record) Card {
	c := Card{
		Line:        rec.Line,
		Timestamp:   rec.Timestamp,
		Kind:        rec.Kind,
		Subkind:     rec.Subkind,
		Collapsible: r.table.Collapsible(rec.Kind, rec.Subkind),
	}

	switch rec.Kind {
	case record.KindSessionMeta:
		c.Tone = ToneSystem
		c.Title = "session metadata"
		c.Summary = "session metadata"
		c.Body = format.Format(rec.Payload, format.HintNone)
	case record.KindTurnContext:
		c.Tone = ToneSystem
		c.Title = "turn context"
		c.Summary = "turn context"
		c.Body = format.Format(rec.Payload, format.HintNone)
	case record.KindResponseItem:
		r.responseItem(&c, rec.Subkind, rec.Payload)
	case record.KindEventMsg:
		r.event(&c, rec.Subkind, rec.Payload)
	case record.KindMalformed:
		c.Tone = ToneError
		c.Title = "malformed line"
		if rec.Err != nil {
			c.Summary = r.preview(rec.Err.Error())
		}
		c.Body = malformedBody(rec)
	default:
		c.Tone = ToneSystem
		c.Title = "unhandled record"
		if t := rec.Raw.GetString("type"); t != "" {
			c.Title = "unhandled type: " + t
		}
		c.Body = format.Format(rec.Raw, format.HintNone)
	}
	return c
}

func (r *Renderer) responseItem(c *Card, sub record.Subkind, p jsonv.Value) {
	switch sub {
	case record.SubMessage:
		role := p.GetString("role")
		if role == "" {
			role = "unknown"
		}
		c.Title = role + " message"
		c.Tone = roleTone(role)
		content, _ := p.Get("content")
		texts := textChunks(content)
		c.Summary = r.preview(firstLine(texts))
		if len(texts) == 0 {
			c.Body = format.Format(p.Without("type", "role"), format.HintNone)
			break
		}
		var attachments format.Field
		if other := nonTextChunks(content); len(other) > 0 {
			attachments = format.Field{Key: "attachments", Value: format.Format(jsonv.NewArray(other...), format.HintNone)}
		}
		c.Body = withRest(p, []string{"type", "role", "content"},
			format.Field{Key: "content", Value: textsNode(texts)},
			attachments,
		)

	case record.SubFunctionCall:
		name := p.GetString("name")
		c.Tone = ToneTool
		c.Title = "tool call: " + orUnknown(name)
		args, ok := p.Get("arguments")
		args = parseEmbedded(args)
		c.Summary = r.callPreview(name, args)
		c.Body = withRest(p, []string{"type", "name", "call_id", "arguments"},
			optionalField(p, "call_id", format.HintNone),
			presentField("arguments", args, ok, format.HintNone),
		)

	case record.SubCustomToolCall:
		name := p.GetString("name")
		c.Tone = ToneTool
		c.Title = "tool call: " + orUnknown(name)
		input, _ := p.Get("input")
		s, _ := input.Str()
		c.Summary = r.preview(name + " " + firstLine([]string{s}))
		c.Body = withRest(p, []string{"type", "name", "call_id", "input"},
			optionalField(p, "call_id", format.HintNone),
			optionalField(p, "input", format.HintCode),
		)

	case record.SubFunctionCallOutput, record.SubCustomToolCallOutput:
		c.Tone = ToneTool
		c.Title = "tool output"
		out, ok := p.Get("output")
		out = parseEmbedded(out)
		c.Summary = outcome(out)
		c.Body = withRest(p, []string{"type", "call_id", "output"},
			optionalField(p, "call_id", format.HintNone),
			presentField("output", out, ok, format.HintNone),
		)

	case record.SubReasoning:
		c.Tone = ToneAssistant
		c.Title = "reasoning"
		summary, _ := p.Get("summary")
		texts := textChunks(summary)
		key, skip := "summary", []string{"type", "summary"}
		if len(texts) == 0 {
			content, _ := p.Get("content")
			if texts = textChunks(content); len(texts) > 0 {
				key, skip = "content", append(skip, "content")
			}
		}
		c.Summary = r.preview(firstLine(texts))
		var body format.Node = format.Text{Value: "no public summary (content encrypted)"}
		if len(texts) > 0 {
			body = textsNode(texts)
		}
		c.Body = withRest(p, skip, format.Field{Key: key, Value: body})

	case record.SubLocalShellCall:
		c.Tone = ToneTool
		c.Title = "shell call"
		action, _ := p.Get("action")
		cmd, _ := action.Get("command")
		c.Summary = r.preview(joinCommand(cmd))
		c.Body = format.Format(p.Without("type"), format.HintNone)

	case record.SubWebSearchCall:
		c.Tone = ToneTool
		c.Title = "web search"
		action, _ := p.Get("action")
		c.Summary = r.preview(action.GetString("query"))
		c.Body = format.Format(p.Without("type"), format.HintNone)

	case record.SubCode:
		c.Tone = ToneTool
		c.Title = "code"
		cb := format.Format(p, format.HintCode)
		if code, ok := cb.(format.CodeBlock); ok {
			c.Summary = r.preview(code.Language)
		}
		c.Body = cb

	default:
		c.Tone = ToneSystem
		c.Title = "response item (" + string(sub) + ")"
		c.Body = format.Format(p.Without("type"), format.HintNone)
	}
}

func (r *Renderer) event(c *Card, sub record.Subkind, p jsonv.Value) {
	switch sub {
	case record.SubUserMessage, record.SubAgentMessage:
		c.Tone = ToneAssistant
		c.Title = "agent event"
		if sub == record.SubUserMessage {
			c.Tone = ToneUser
			c.Title = "user event"
		}
		msg, _ := p.Get("message")
		s, _ := msg.Str()
		c.Summary = r.preview(firstLine([]string{s}))
		c.Body = withRest(p, []string{"type", "message"},
			optionalField(p, "message", format.HintNone),
		)

	case record.SubAgentReasoning:
		c.Tone = ToneAssistant
		c.Title = "reasoning event"
		text, _ := p.Get("text")
		s, _ := text.Str()
		c.Summary = r.preview(firstLine([]string{s}))
		c.Body = withRest(p, []string{"type", "text"},
			optionalField(p, "text", format.HintNone),
		)

	case record.SubTokenCount:
		c.Tone = ToneMetric
		c.Title = "token usage"
		info, _ := p.Get("info")
		c.Summary = tokenSummary(info)
		c.Body = withRest(p, []string{"type", "info"},
			optionalField(p, "info", format.HintNone),
		)

	case record.SubUpdatePlan:
		c.Tone = ToneAssistant
		c.Title = "plan update"
		c.Body = format.Format(p.Without("type"), format.HintNone)
		if pb, ok := c.Body.(format.PlanBoard); ok {
			c.Summary = planSummary(pb)
		}

	default:
		c.Tone = ToneSystem
		c.Title = string(sub) + " event"
		c.Body = format.Format(p.Without("type"), format.HintNone)
	}
}

// withRest returns the primary fields followed by every member of p not
// listed in skip. A single primary field with nothing else collapses to its
// value.
func withRest(p jsonv.Value, skip []string, primary ...format.Field) format.Node {
	fields := make([]format.Field, 0, len(primary)+p.Len())
	for _, f := range primary {
		if f.Value != nil {
			fields = append(fields, f)
		}
	}
	rest := p.Without(skip...)
	for _, m := range rest.Members() {
		fields = append(fields, format.Field{Key: m.Key, Value: format.Format(m.Value, format.HintNone)})
	}
	if len(fields) == 1 && rest.Len() == 0 {
		return fields[0].Value
	}
	return format.Group{Fields: fields}
}

// optionalField formats the member key of p. A missing member yields a field
// without value, which withRest leaves out.
func optionalField(p jsonv.Value, key string, hint format.Hint) format.Field {
	v, ok := p.Get(key)
	return presentField(key, v, ok, hint)
}

func presentField(key string, v jsonv.Value, ok bool, hint format.Hint) format.Field {
	if !ok {
		return format.Field{Key: key}
	}
	return format.Field{Key: key, Value: format.Format(v, hint)}
}

func malformedBody(rec record.Record) format.Node {
	errText := ""
	if rec.Err != nil {
		errText = rec.Err.Error()
	}
	return format.Group{Fields: []format.Field{
		{Key: "error", Value: format.Text{Value: errText}},
		{Key: "line", Value: format.CodeBlock{Content: rec.Text}},
	}}
}

func roleTone(role string) Tone {
	switch role {
	case "user":
		return ToneUser
	case "assistant":
		return ToneAssistant
	}
	return ToneSystem
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// textChunks extracts readable text from message content: a plain string, or
// an array of chunks carrying a "text" field (input_text, output_text,
// summary_text ...).
func textChunks(content jsonv.Value) []string {
	if s, ok := content.Str(); ok {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var texts []string
	for _, chunk := range content.Elems() {
		if s, ok := chunk.Str(); ok && s != "" {
			texts = append(texts, s)
			continue
		}
		if t := chunk.GetString("text"); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

// nonTextChunks returns the content chunks textChunks does not read, such as
// images and file references.
func nonTextChunks(content jsonv.Value) []jsonv.Value {
	var other []jsonv.Value
	for _, chunk := range content.Elems() {
		if s, ok := chunk.Str(); ok && s != "" {
			continue
		}
		if chunk.GetString("text") != "" {
			continue
		}
		other = append(other, chunk)
	}
	return other
}

func textsNode(texts []string) format.Node {
	if len(texts) == 1 {
		return format.Text{Value: texts[0]}
	}
	items := make([]format.Node, len(texts))
	for i, t := range texts {
		items[i] = format.Text{Value: t}
	}
	return format.List{Items: items}
}

// parseEmbedded decodes strings holding a JSON object or array, which is how
// tool arguments and outputs are logged. Anything else is returned as is.
func parseEmbedded(v jsonv.Value) jsonv.Value {
	s, ok := v.Str()
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return v
	}
	parsed, err := jsonv.ParseString(trimmed)
	if err != nil {
		return v
	}
	return parsed
}

func (r *Renderer) callPreview(name string, args jsonv.Value) string {
	var preview string
	if cmd, ok := args.Get("command"); ok {
		preview = joinCommand(cmd)
	}
	if preview == "" {
		switch {
		case args.IsNull():
		case args.Kind() == jsonv.String:
			preview = args.Text()
		default:
			raw, _ := args.MarshalJSON()
			preview = string(raw)
		}
	}
	return r.preview(orUnknown(name) + "(" + strings.ReplaceAll(preview, "\n", " ") + ")")
}

// joinCommand renders an argv array as a shell line, or a string command as is.
func joinCommand(cmd jsonv.Value) string {
	if s, ok := cmd.Str(); ok {
		return s
	}
	parts := make([]string, 0, cmd.Len())
	for _, e := range cmd.Elems() {
		parts = append(parts, shellQuote(e.Text()))
	}
	return strings.Join(parts, " ")
}

func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	safe := true
	for _, r := range arg {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("_@%+=:,./-", r)) {
			safe = false
			break
		}
	}
	if safe {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// outcome reports success or failure of a tool output when it says so.
func outcome(out jsonv.Value) string {
	meta, ok := out.Get("metadata")
	if !ok {
		meta = out
	}
	if code, ok := meta.Get("exit_code"); ok {
		if n, ok := code.Int(); ok {
			if n == 0 {
				return "ok (exit 0)"
			}
			return fmt.Sprintf("failed (exit %d)", n)
		}
	}
	if success, ok := out.Get("success"); ok {
		if b, ok := success.Bool(); ok {
			if b {
				return "ok"
			}
			return "failed"
		}
	}
	if e, ok := out.Get("error"); ok && !e.IsNull() && e.Text() != "" {
		return "failed"
	}
	return ""
}

func tokenSummary(info jsonv.Value) string {
	total, ok := info.Get("total_token_usage")
	if !ok {
		return ""
	}
	n, ok := total.Get("total_tokens")
	if !ok {
		return ""
	}
	return n.Text() + " tokens total"
}

func planSummary(pb format.PlanBoard) string {
	done := 0
	for _, s := range pb.Steps {
		switch strings.ToLower(s.Status) {
		case "completed", "done":
			done++
		}
	}
	return fmt.Sprintf("%d/%d steps done", done, len(pb.Steps))
}

// firstLine returns the first non-blank line of the first text.
func firstLine(texts []string) string {
	for _, t := range texts {
		for _, line := range strings.Split(t, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				return s
			}
		}
	}
	return ""
}

func (r *Renderer) preview(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= r.previewLen {
		return s
	}
	return string(runes[:r.previewLen]) + "…"
}
