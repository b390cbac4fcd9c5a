package action

import (
	"bytes"
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
)

var inputJSON = jsoniter.Config{UseNumber: true}.Froze()

// Input is the raw argument set of one computer-tool call. Absent fields are nil.
// Values keep their decoded JSON types so shape errors can be reported precisely.
type Input struct {
	Action          string
	Text            any
	Coordinate      any
	ScrollDirection any
	ScrollAmount    any
	Duration        any
	Key             any
}

// DecodeArgs decodes a tool-call argument object. Malformed JSON is run through
// jsonrepair once before giving up. An empty payload decodes to an empty map.
func DecodeArgs(raw []byte) (map[string]any, error) {
	args := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return args, nil
	}
	if err := inputJSON.Unmarshal(raw, &args); err == nil {
		return args, nil
	}

	repaired, err := jsonrepair.JSONRepair(string(raw))
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("tool input is not valid JSON: %v", err)}
	}
	args = map[string]any{}
	if err := inputJSON.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("tool input is not a JSON object: %v", err)}
	}
	return args, nil
}

// InputFromArgs maps a decoded argument object onto Input. Unknown keys are ignored.
func InputFromArgs(args map[string]any) (Input, error) {
	in := Input{
		Text:            args["text"],
		Coordinate:      args["coordinate"],
		ScrollDirection: args["scroll_direction"],
		ScrollAmount:    args["scroll_amount"],
		Duration:        args["duration"],
		Key:             args["key"],
	}
	switch name := args["action"].(type) {
	case string:
		in.Action = name
	case nil:
		return in, &ValidationError{Msg: "action is required"}
	default:
		return in, &ValidationError{Msg: fmt.Sprintf("action must be a string, got %T", name)}
	}
	return in, nil
}

type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// asInt accepts integral JSON numbers and Go integer types. Floats are rejected.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case jsonNumber:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// asNumber accepts any finite JSON number or Go numeric type.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case jsonNumber:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
