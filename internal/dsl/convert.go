package dsl

import (
	"context"
	"fmt"
	"slices"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
	"github.com/xkilldash9x/webpilot/internal/keys"
)

const (
	// DefaultScrollStep is the pixel delta of one text-vocabulary scroll.
	DefaultScrollStep = 100
	// DefaultWaitUnits is how long wait() pauses, in time units.
	DefaultWaitUnits = 5
)

type paramSpec struct {
	names    []string // positional order
	required []string
}

var params = map[string]paramSpec{
	NameClick:       {names: []string{"start_box"}, required: []string{"start_box"}},
	NameLeftDouble:  {names: []string{"start_box"}, required: []string{"start_box"}},
	NameRightSingle: {names: []string{"start_box"}, required: []string{"start_box"}},
	NameDrag:        {names: []string{"start_box", "end_box"}, required: []string{"start_box", "end_box"}},
	NameHotkey:      {names: []string{"key"}, required: []string{"key"}},
	NameType:        {names: []string{"content"}, required: []string{"content"}},
	NameScroll:      {names: []string{"direction", "start_box"}, required: []string{"direction"}},
	NameWait:        {},
	NameFinished:    {names: []string{"content"}},
	NameCallUser:    {names: []string{"content"}},
}

// Converter turns signatures into actions, scaling normalized coordinates against the live viewport.
type Converter struct {
	scaler     *action.Scaler
	scrollStep int
	waitUnits  float64
}

// NewConverter creates a converter. Non-positive step or wait values use the defaults.
func NewConverter(scaler *action.Scaler, scrollStep int, waitUnits float64) *Converter {
	if scrollStep <= 0 {
		scrollStep = DefaultScrollStep
	}
	if waitUnits <= 0 {
		waitUnits = DefaultWaitUnits
	}
	return &Converter{scaler: scaler, scrollStep: scrollStep, waitUnits: waitUnits}
}

// ToAction binds the signature's arguments and builds the matching action.
func (c *Converter) ToAction(ctx context.Context, sig Signature) (action.Action, error) {
	bound, err := bind(sig)
	if err != nil {
		return nil, err
	}

	switch sig.Name {
	case NameClick, NameLeftDouble, NameRightSingle:
		at, err := c.point(ctx, sig.Name, bound["start_box"])
		if err != nil {
			return nil, err
		}
		click := action.Click{Button: schemas.ButtonLeft, Count: 1, At: &at}
		switch sig.Name {
		case NameLeftDouble:
			click.Count = 2
		case NameRightSingle:
			click.Button = schemas.ButtonRight
		}
		return click, nil

	case NameDrag:
		from, err := c.point(ctx, sig.Name, bound["start_box"])
		if err != nil {
			return nil, err
		}
		to, err := c.point(ctx, sig.Name, bound["end_box"])
		if err != nil {
			return nil, err
		}
		return action.Drag{From: from, To: to}, nil

	case NameHotkey:
		key, err := str(sig.Name, "key", bound["key"])
		if err != nil {
			return nil, err
		}
		chord, err := keys.Textual.Translate(key)
		if err != nil {
			return nil, invalid(sig.Name, "invalid key %q: %v", key, err)
		}
		return action.KeyPress{Chord: chord}, nil

	case NameType:
		content, err := str(sig.Name, "content", bound["content"])
		if err != nil {
			return nil, err
		}
		return action.TypeText{Text: content}, nil

	case NameScroll:
		dir, err := str(sig.Name, "direction", bound["direction"])
		if err != nil {
			return nil, err
		}
		s := action.Scroll{}
		switch dir {
		case "down":
			s.DeltaY = c.scrollStep
		case "up":
			s.DeltaY = -c.scrollStep
		case "right":
			s.DeltaX = c.scrollStep
		case "left":
			s.DeltaX = -c.scrollStep
		default:
			return nil, invalid(sig.Name, "direction must be 'up', 'down', 'left', or 'right', got %q", dir)
		}
		if v, ok := bound["start_box"]; ok {
			at, err := c.point(ctx, sig.Name, v)
			if err != nil {
				return nil, err
			}
			s.At = &at
		}
		return s, nil

	case NameWait:
		return action.Wait{Duration: c.waitUnits}, nil

	case NameFinished, NameCallUser:
		var content string
		if v, ok := bound["content"]; ok {
			if content, err = str(sig.Name, "content", v); err != nil {
				return nil, err
			}
		}
		if sig.Name == NameFinished {
			return action.Finished{Content: content}, nil
		}
		return action.CallUser{Content: content}, nil
	}

	return nil, invalid(sig.Name, "invalid action: %s", sig.Name)
}

// bind assigns positional and keyword arguments to the action's parameters.
func bind(sig Signature) (map[string]Value, error) {
	spec, ok := params[sig.Name]
	if !ok {
		return nil, invalid(sig.Name, "invalid action: %s", sig.Name)
	}
	if len(sig.Args) > len(spec.names) {
		return nil, invalid(sig.Name, "%s takes at most %d arguments, got %d", sig.Name, len(spec.names), len(sig.Args))
	}

	bound := make(map[string]Value, len(spec.names))
	for i, v := range sig.Args {
		bound[spec.names[i]] = v
	}
	for k, v := range sig.Kwargs {
		if !slices.Contains(spec.names, k) {
			return nil, invalid(sig.Name, "unexpected argument %q for %s", k, sig.Name)
		}
		if _, dup := bound[k]; dup {
			return nil, invalid(sig.Name, "argument %q given twice for %s", k, sig.Name)
		}
		bound[k] = v
	}
	for _, name := range spec.required {
		if _, ok := bound[name]; !ok {
			return nil, invalid(sig.Name, "%s is required for %s", name, sig.Name)
		}
	}
	return bound, nil
}

func (c *Converter) point(ctx context.Context, name string, v Value) (schemas.Point, error) {
	var p schemas.Point
	switch v.Kind {
	case ValuePoint:
		p = v.Point
	case ValueString:
		// Positional box arguments arrive undecoded.
		pt, err := ParsePair(v.Str)
		if err != nil {
			return schemas.Point{}, invalid(name, "%v", err)
		}
		p = pt
	default:
		return schemas.Point{}, invalid(name, "coordinate must be a string of the form (x,y)")
	}
	return c.scaler.ToAbsolute(ctx, p)
}

func str(name, param string, v Value) (string, error) {
	if v.Kind != ValueString {
		return "", invalid(name, "%s must be a string", param)
	}
	return v.Str, nil
}

func invalid(name, format string, args ...any) error {
	return &action.ValidationError{Action: name, Msg: fmt.Sprintf(format, args...)}
}
