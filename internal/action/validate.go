package action

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/keys"
)

// MaxDuration bounds wait and hold_key durations, in time units.
const MaxDuration = 100

// DefaultScrollMultiplier converts one scroll click to pixels.
const DefaultScrollMultiplier = 500

// Validator turns raw tool input into Actions for one vocabulary.
type Validator struct {
	vocabulary       Vocabulary
	scrollMultiplier int
}

// NewValidator creates a validator. A non-positive multiplier falls back to DefaultScrollMultiplier.
func NewValidator(v Vocabulary, scrollMultiplier int) *Validator {
	if scrollMultiplier <= 0 {
		scrollMultiplier = DefaultScrollMultiplier
	}
	return &Validator{vocabulary: v, scrollMultiplier: scrollMultiplier}
}

// Vocabulary returns the vocabulary the validator enforces.
func (v *Validator) Vocabulary() Vocabulary {
	return v.vocabulary
}

// ValidateTool validates a call to any advertised tool.
func (v *Validator) ValidateTool(tool string, raw []byte) (Action, error) {
	args, err := DecodeArgs(raw)
	if err != nil {
		return nil, err
	}
	switch tool {
	case ToolComputer:
		in, err := InputFromArgs(args)
		if err != nil {
			return nil, err
		}
		return v.Validate(in)
	case ToolSetURL:
		url, ok := args["url"].(string)
		if !ok || strings.TrimSpace(url) == "" {
			return nil, invalid(ToolSetURL, "url is required and must be a non-empty string")
		}
		return SetURL{URL: strings.TrimSpace(url)}, nil
	case ToolPreviousPage:
		return PreviousPage{}, nil
	}
	return nil, invalid(tool, "unknown tool %q", tool)
}

// Validate checks one computer-tool call against the per-action contract.
func (v *Validator) Validate(in Input) (Action, error) {
	name := in.Action
	if !v.vocabulary.Supports(name) {
		return nil, invalid(name, "invalid action: %s", name)
	}
	if name == NameLeftClickDrag {
		return nil, &UnsupportedActionError{Action: name}
	}
	// Scroll uses text as a held modifier and is the only action taking both.
	if in.Text != nil && in.Coordinate != nil && name != NameScroll {
		return nil, invalid(name, "coordinate and text cannot both be supplied for %s", name)
	}

	switch name {
	case NameMouseMove:
		if err := forbidText(name, in); err != nil {
			return nil, err
		}
		if in.Coordinate == nil {
			return nil, invalid(name, "coordinate is required for %s", name)
		}
		p, err := coordinate(name, in.Coordinate)
		if err != nil {
			return nil, err
		}
		return Move{To: p}, nil

	case NameKey, NameType:
		text, err := requireText(name, in)
		if err != nil {
			return nil, err
		}
		if in.Coordinate != nil {
			return nil, invalid(name, "coordinate is not accepted for %s", name)
		}
		if name == NameType {
			return TypeText{Text: text}, nil
		}
		chord, err := keys.Structured.Translate(text)
		if err != nil {
			return nil, invalid(name, "invalid key chord %q: %v", text, err)
		}
		return KeyPress{Chord: chord}, nil

	case NameLeftClick, NameRightClick, NameMiddleClick, NameDoubleClick, NameTripleClick:
		return v.click(name, in)

	case NameScreenshot, NameCursorPosition:
		if err := forbidText(name, in); err != nil {
			return nil, err
		}
		if in.Coordinate != nil {
			return nil, invalid(name, "coordinate is not accepted for %s", name)
		}
		if name == NameScreenshot {
			return Screenshot{}, nil
		}
		return CursorPosition{}, nil

	case NameLeftMouseDown, NameLeftMouseUp:
		if in.Coordinate != nil {
			return nil, invalid(name, "coordinate is not accepted for %s", name)
		}
		if err := forbidText(name, in); err != nil {
			return nil, err
		}
		if name == NameLeftMouseDown {
			return MouseDown{}, nil
		}
		return MouseUp{}, nil

	case NameScroll:
		return v.scroll(name, in)

	case NameHoldKey:
		if in.Coordinate != nil {
			return nil, invalid(name, "coordinate is not accepted for %s", name)
		}
		text, err := requireText(name, in)
		if err != nil {
			return nil, err
		}
		d, err := duration(name, in.Duration)
		if err != nil {
			return nil, err
		}
		chord, err := keys.Structured.Translate(text)
		if err != nil {
			return nil, invalid(name, "invalid key chord %q: %v", text, err)
		}
		return HoldKey{Chord: chord, Duration: d}, nil

	case NameWait:
		if in.Coordinate != nil {
			return nil, invalid(name, "coordinate is not accepted for %s", name)
		}
		if err := forbidText(name, in); err != nil {
			return nil, err
		}
		d, err := duration(name, in.Duration)
		if err != nil {
			return nil, err
		}
		return Wait{Duration: d}, nil
	}

	return nil, invalid(name, "invalid action: %s", name)
}

var clickButtons = map[string]struct {
	button schemas.MouseButton
	count  int
}{
	NameLeftClick:   {schemas.ButtonLeft, 1},
	NameRightClick:  {schemas.ButtonRight, 1},
	NameMiddleClick: {schemas.ButtonMiddle, 1},
	NameDoubleClick: {schemas.ButtonLeft, 2},
	NameTripleClick: {schemas.ButtonLeft, 3},
}

func (v *Validator) click(name string, in Input) (Action, error) {
	if err := forbidText(name, in); err != nil {
		return nil, err
	}
	mapping := clickButtons[name]
	c := Click{Button: mapping.button, Count: mapping.count}

	if in.Coordinate != nil {
		if v.vocabulary == V1 {
			return nil, invalid(name, "coordinate is not accepted for %s", name)
		}
		p, err := coordinate(name, in.Coordinate)
		if err != nil {
			return nil, err
		}
		c.At = &p
	}
	if v.vocabulary == V2 && in.Key != nil {
		chord, err := heldChord(name, "key", in.Key)
		if err != nil {
			return nil, err
		}
		c.Hold = chord
	}
	return c, nil
}

func (v *Validator) scroll(name string, in Input) (Action, error) {
	dir, _ := in.ScrollDirection.(string)
	if !slices.Contains(ScrollDirections, dir) {
		return nil, invalid(name, "scroll_direction must be 'up', 'down', 'left', or 'right'")
	}
	amount, ok := asInt(in.ScrollAmount)
	if !ok || amount < 0 {
		return nil, invalid(name, "scroll_amount must be a non-negative int")
	}
	// Wheel deltas travel as 32-bit values; larger products would wrap and flip the direction.
	if amount > int64(math.MaxInt32/v.scrollMultiplier) {
		return nil, invalid(name, "scroll_amount %d is too large", amount)
	}

	s := Scroll{}
	delta := int(amount) * v.scrollMultiplier
	switch dir {
	case "up":
		s.DeltaY = -delta
	case "down":
		s.DeltaY = delta
	case "left":
		s.DeltaX = -delta
	case "right":
		s.DeltaX = delta
	}

	if in.Coordinate != nil {
		p, err := coordinate(name, in.Coordinate)
		if err != nil {
			return nil, err
		}
		s.At = &p
	}
	if in.Text != nil {
		chord, err := heldChord(name, "text", in.Text)
		if err != nil {
			return nil, err
		}
		s.Hold = chord
	}
	return s, nil
}

func forbidText(name string, in Input) error {
	if in.Text != nil {
		return invalid(name, "text is not accepted for %s", name)
	}
	return nil
}

func requireText(name string, in Input) (string, error) {
	if in.Text == nil {
		return "", invalid(name, "text is required for %s", name)
	}
	text, ok := in.Text.(string)
	if !ok {
		return "", invalid(name, "%v must be a string", in.Text)
	}
	return text, nil
}

func heldChord(name, field string, v any) (*keys.Chord, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalid(name, "%s must be a string", field)
	}
	chord, err := keys.Structured.Translate(s)
	if err != nil {
		return nil, invalid(name, "invalid %s %q: %v", field, s, err)
	}
	return &chord, nil
}

func coordinate(name string, v any) (schemas.Point, error) {
	var pair []any
	switch c := v.(type) {
	case []any:
		pair = c
	case []int:
		for _, n := range c {
			pair = append(pair, n)
		}
	default:
		return schemas.Point{}, invalid(name, "%v must be a tuple of length 2", v)
	}
	if len(pair) != 2 {
		return schemas.Point{}, invalid(name, "%v must be a tuple of length 2", v)
	}
	x, okX := asInt(pair[0])
	y, okY := asInt(pair[1])
	if !okX || !okY || x < 0 || y < 0 {
		return schemas.Point{}, invalid(name, "%v must be a tuple of non-negative ints", v)
	}
	return schemas.Point{X: int(x), Y: int(y)}, nil
}

func duration(name string, v any) (float64, error) {
	if v == nil {
		return 0, invalid(name, "duration is required for %s", name)
	}
	d, ok := asNumber(v)
	if !ok {
		return 0, invalid(name, "duration=%v must be a number", v)
	}
	if d < 0 {
		return 0, invalid(name, "duration=%v must be non-negative", v)
	}
	if d > MaxDuration {
		return 0, invalid(name, "duration=%v is too long", v)
	}
	return d, nil
}

// FormatCursor renders a cursor position the way cursor_position reports it.
func FormatCursor(p schemas.Point) string {
	return fmt.Sprintf("X=%d,Y=%d", p.X, p.Y)
}
