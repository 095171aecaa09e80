// Package envelope embeds machine-readable context in human-readable messages
// and extracts the coach's numbers and keywords from replies.
package envelope

import (
	"strings"

	"refbot/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Marker opens an embedded context. It renders as an empty markdown link, so
// the payload is invisible to readers of the message.
const Marker = " [](#refbot"

const terminator = ')'

// Context is the state a message carries so a later reply can be routed.
type Context struct {
	// Action is the input the message solicits.
	Action domain.Action
	// Source overrides the id a reply is checked against. Corrective replies
	// forward the id of the message that originally asked the question.
	Source string
	// Game optionally names the game the message belongs to.
	Game string
	// Extra carries caller-defined fields.
	Extra map[string]string
}

var (
	escaper = strings.NewReplacer(
		"%", "%25",
		" ", "%20",
		"\t", "%09",
		"\r", "%0D",
		"\n", "%0A",
		")", "%29",
	)
	unescaper = strings.NewReplacer(
		"%25", "%",
		"%20", " ",
		"%09", "\t",
		"%0D", "\r",
		"%0A", "\n",
		"%29", ")",
	)
)

// Encode appends ctx to text. A nil ctx returns text unchanged.
func Encode(text string, ctx *Context) string {
	if ctx == nil {
		return text
	}
	payload, err := marshal(ctx)
	if err != nil {
		return text
	}
	return text + Marker + escaper.Replace(string(payload)) + string(terminator)
}

// Decode extracts the context embedded in text. It returns nil when text has no
// marker or the payload is malformed.
func Decode(text string) *Context {
	idx := strings.LastIndex(text, Marker)
	if idx < 0 {
		return nil
	}
	rest := text[idx+len(Marker):]
	end := strings.IndexByte(rest, terminator)
	if end < 0 {
		return nil
	}
	ctx, err := unmarshal([]byte(unescaper.Replace(rest[:end])))
	if err != nil {
		return nil
	}
	return ctx
}

// Strip removes an embedded context, returning only the human-readable text.
func Strip(text string) string {
	idx := strings.LastIndex(text, Marker)
	if idx < 0 {
		return text
	}
	rest := text[idx+len(Marker):]
	end := strings.IndexByte(rest, terminator)
	if end < 0 {
		return text
	}
	return text[:idx] + rest[end+1:]
}

func marshal(ctx *Context) ([]byte, error) {
	fields := map[string]any{"action": string(ctx.Action)}
	if ctx.Source != "" {
		fields["source"] = ctx.Source
	}
	if ctx.Game != "" {
		fields["game"] = ctx.Game
	}
	if len(ctx.Extra) > 0 {
		extra := make(map[string]any, len(ctx.Extra))
		for k, v := range ctx.Extra {
			extra[k] = v
		}
		fields["extra"] = extra
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{UseProtoNames: true}.Marshal(st)
}

func unmarshal(data []byte) (*Context, error) {
	var st structpb.Struct
	if err := protojson.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	fields := st.GetFields()
	action, err := domain.ParseAction(fields["action"].GetStringValue())
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		Action: action,
		Source: fields["source"].GetStringValue(),
		Game:   fields["game"].GetStringValue(),
	}
	if extra := fields["extra"].GetStructValue(); extra != nil && len(extra.GetFields()) > 0 {
		ctx.Extra = make(map[string]string, len(extra.GetFields()))
		for k, v := range extra.GetFields() {
			if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
				ctx.Extra[k] = s.StringValue
			}
		}
	}
	return ctx, nil
}
