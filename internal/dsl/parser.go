// Package dsl recovers action calls from free-form model text of the form
// "Action: name(arg, key='value')" and converts them into validated actions.
package dsl

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
)

// Action names of the text vocabulary.
const (
	NameClick       = "click"
	NameLeftDouble  = "left_double"
	NameRightSingle = "right_single"
	NameDrag        = "drag"
	NameHotkey      = "hotkey"
	NameType        = "type"
	NameScroll      = "scroll"
	NameWait        = "wait"
	NameFinished    = "finished"
	NameCallUser    = "call_user"
)

// Names lists the text vocabulary in prompt order.
var Names = []string{
	NameClick, NameLeftDouble, NameRightSingle, NameDrag, NameHotkey,
	NameType, NameScroll, NameWait, NameFinished, NameCallUser,
}

const actionTitle = "Action"

// boxKeywords carry a stringified coordinate pair.
var boxKeywords = []string{"start_box", "end_box"}

// ErrNoAction is returned when a message has no action line.
var ErrNoAction = errors.New("no action line found in model message")

// ParseError reports an action line that does not match the call grammar.
type ParseError struct {
	Line string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed action line %q: %s", e.Line, e.Msg)
}

// Code returns action.ErrCodeParseFailure.
func (e *ParseError) Code() action.ErrorCode { return action.ErrCodeParseFailure }

// ValueKind tags a literal argument.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValuePoint
)

// Value is one literal argument of a call.
type Value struct {
	Kind  ValueKind
	Str   string
	Num   float64
	Point schemas.Point
}

// Interface returns the value as a plain Go value for export.
func (v Value) Interface() any {
	switch v.Kind {
	case ValueNumber:
		return v.Num
	case ValuePoint:
		return []int{v.Point.X, v.Point.Y}
	}
	return v.Str
}

// Signature is a parsed call: name, ordered positional arguments and keyword arguments.
type Signature struct {
	Name   string
	Args   []Value
	Kwargs map[string]Value
}

// ToMap renders the signature for trace export. Positional arguments are keyed arg0, arg1, ...
func (s Signature) ToMap() map[string]any {
	args := make(map[string]any, len(s.Args)+len(s.Kwargs))
	for i, a := range s.Args {
		args[fmt.Sprintf("arg%d", i)] = a.Interface()
	}
	for k, v := range s.Kwargs {
		args[k] = v.Interface()
	}
	return map[string]any{"name": s.Name, "arguments": args}
}

// ParseMessage finds the first line whose trimmed content starts with "Action" and
// parses its call. It returns ErrNoAction when no such line exists and a *ParseError
// when the line is malformed.
func ParseMessage(msg string) (Signature, error) {
	for _, line := range strings.Split(msg, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, actionTitle) {
			continue
		}
		title, call, found := strings.Cut(trimmed, ":")
		if !found {
			return Signature{}, &ParseError{Line: trimmed, Msg: "missing ':' after Action"}
		}
		if strings.TrimSpace(title) != actionTitle {
			return Signature{}, &ParseError{Line: trimmed, Msg: fmt.Sprintf("unexpected title %q", title)}
		}
		sig, err := ParseCall(call)
		if err != nil {
			return Signature{}, &ParseError{Line: trimmed, Msg: err.Error()}
		}
		return sig, nil
	}
	return Signature{}, ErrNoAction
}

// ParseCall parses a single call expression such as "click(start_box='(1,2)')".
func ParseCall(expr string) (Signature, error) {
	p := &parser{lex: newLexer(expr)}
	if err := p.advance(); err != nil {
		return Signature{}, err
	}
	sig, err := p.call()
	if err != nil {
		return Signature{}, err
	}
	if p.tok.kind != tokEOF {
		return Signature{}, fmt.Errorf("unexpected %s after call at %d", p.tok.kind, p.tok.pos)
	}
	return sig, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.tok
	if tok.kind != kind {
		return tok, fmt.Errorf("expected %s, found %s at %d", kind, tok.kind, tok.pos)
	}
	return tok, p.advance()
}

// call := IDENT "(" (arg ("," arg)*)? ")"
func (p *parser) call() (Signature, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return Signature{}, err
	}
	if !slices.Contains(Names, name.text) {
		return Signature{}, fmt.Errorf("unknown action %q", name.text)
	}
	sig := Signature{Name: name.text, Kwargs: map[string]Value{}}
	if _, err := p.expect(tokLParen); err != nil {
		return Signature{}, err
	}
	if p.tok.kind == tokRParen {
		return sig, p.advance()
	}
	for {
		if err := p.arg(&sig); err != nil {
			return Signature{}, err
		}
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return Signature{}, err
			}
			// Tolerate a trailing comma.
			if p.tok.kind == tokRParen {
				break
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// arg := LITERAL | IDENT "=" LITERAL
func (p *parser) arg(sig *Signature) error {
	if p.tok.kind != tokIdent {
		if len(sig.Kwargs) > 0 {
			return fmt.Errorf("positional argument follows keyword argument at %d", p.tok.pos)
		}
		v, err := p.literal()
		if err != nil {
			return err
		}
		sig.Args = append(sig.Args, v)
		return nil
	}

	key := p.tok.text
	if err := p.advance(); err != nil {
		return err
	}
	if _, err := p.expect(tokEquals); err != nil {
		return err
	}
	if _, dup := sig.Kwargs[key]; dup {
		return fmt.Errorf("keyword argument %q repeated", key)
	}
	v, err := p.literal()
	if err != nil {
		return err
	}
	if slices.Contains(boxKeywords, key) {
		if v.Kind != ValueString {
			return fmt.Errorf("%s must be a string literal", key)
		}
		pt, err := ParsePair(v.Str)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		v = Value{Kind: ValuePoint, Point: pt}
	}
	sig.Kwargs[key] = v
	return nil
}

// literal := STRING | NUMBER
func (p *parser) literal() (Value, error) {
	tok := p.tok
	switch tok.kind {
	case tokString:
		return Value{Kind: ValueString, Str: tok.text}, p.advance()
	case tokNumber:
		n, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad number %q: %w", tok.text, err)
		}
		return Value{Kind: ValueNumber, Num: n}, p.advance()
	}
	return Value{}, fmt.Errorf("expected literal, found %s at %d", tok.kind, tok.pos)
}

var boxMarkers = strings.NewReplacer("<|box_start|>", "", "<|box_end|>", "")

// ParsePair decodes "(x,y)" into a point. Box markers are ignored, and a four-element
// box "(x1,y1,x2,y2)" yields its center.
func ParsePair(s string) (schemas.Point, error) {
	s = strings.TrimSpace(boxMarkers.Replace(s))
	inner, ok := strings.CutPrefix(s, "(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")")
	}
	if !ok {
		return schemas.Point{}, fmt.Errorf("coordinate %q is not of the form (x,y)", s)
	}

	parts := strings.Split(inner, ",")
	nums := make([]float64, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return schemas.Point{}, fmt.Errorf("coordinate %q has a non-numeric component", s)
		}
		if math.IsNaN(n) || math.Abs(n) > math.MaxInt32 {
			return schemas.Point{}, fmt.Errorf("coordinate %q has an out of range component", s)
		}
		nums = append(nums, n)
	}

	switch len(nums) {
	case 2:
		return schemas.Point{X: int(nums[0]), Y: int(nums[1])}, nil
	case 4:
		return schemas.Point{X: int((nums[0] + nums[2]) / 2), Y: int((nums[1] + nums[3]) / 2)}, nil
	}
	return schemas.Point{}, fmt.Errorf("coordinate %q must have 2 components", s)
}
