package action

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

// Vocabulary is a generation of the structured computer-tool action set.
type Vocabulary string

const (
	V1 Vocabulary = "v1"
	V2 Vocabulary = "v2"
)

// Structured action names.
const (
	NameKey            = "key"
	NameType           = "type"
	NameMouseMove      = "mouse_move"
	NameLeftClick      = "left_click"
	NameLeftClickDrag  = "left_click_drag"
	NameRightClick     = "right_click"
	NameMiddleClick    = "middle_click"
	NameDoubleClick    = "double_click"
	NameTripleClick    = "triple_click"
	NameScreenshot     = "screenshot"
	NameCursorPosition = "cursor_position"
	NameLeftMouseDown  = "left_mouse_down"
	NameLeftMouseUp    = "left_mouse_up"
	NameScroll         = "scroll"
	NameHoldKey        = "hold_key"
	NameWait           = "wait"
)

// Tool names advertised to the model.
const (
	ToolComputer     = "computer"
	ToolSetURL       = "set_url"
	ToolPreviousPage = "previous_page"
)

var v1Actions = []string{
	NameKey, NameType, NameMouseMove, NameLeftClick, NameLeftClickDrag,
	NameRightClick, NameMiddleClick, NameDoubleClick, NameScreenshot, NameCursorPosition,
}

var v2Actions = append(slices.Clone(v1Actions),
	NameLeftMouseDown, NameLeftMouseUp, NameScroll, NameHoldKey, NameWait, NameTripleClick,
)

// ScrollDirections are the accepted scroll_direction values.
var ScrollDirections = []string{"up", "down", "left", "right"}

// ParseVocabulary accepts "v1"/"v2" or the dated generation identifiers.
func ParseVocabulary(s string) (Vocabulary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v1", "20241022", "computer_20241022":
		return V1, nil
	case "v2", "20250124", "computer_20250124":
		return V2, nil
	}
	return "", fmt.Errorf("unknown action vocabulary %q", s)
}

// Actions lists the action names of the vocabulary in advertisement order.
func (v Vocabulary) Actions() []string {
	if v == V2 {
		return slices.Clone(v2Actions)
	}
	return slices.Clone(v1Actions)
}

// Supports reports whether name belongs to the vocabulary.
func (v Vocabulary) Supports(name string) bool {
	if v == V2 {
		return slices.Contains(v2Actions, name)
	}
	return slices.Contains(v1Actions, name)
}

// ComputerTool describes the computer tool for the vocabulary and the current viewport.
func ComputerTool(v Vocabulary, vp schemas.Viewport) schemas.ToolDescriptor {
	params := []schemas.ParamSpec{
		{Name: "action", Type: schemas.ParamString, Enum: v.Actions(), Required: true,
			Description: "The action to perform."},
		{Name: "coordinate", Type: schemas.ParamArray, Items: schemas.ParamInteger, MinItems: 2, MaxItems: 2,
			Description: "(x, y): pixel position in the viewport. Required for mouse_move and left_click_drag."},
		{Name: "text", Type: schemas.ParamString,
			Description: "Required for type and key. For key, a chord such as \"ctrl+s\" or \"Return\"."},
	}
	if v == V2 {
		params = append(params,
			schemas.ParamSpec{Name: "scroll_direction", Type: schemas.ParamString, Enum: ScrollDirections,
				Description: "Direction to scroll. Required for scroll."},
			schemas.ParamSpec{Name: "scroll_amount", Type: schemas.ParamInteger,
				Description: "Number of scroll clicks. Required for scroll."},
			schemas.ParamSpec{Name: "duration", Type: schemas.ParamNumber,
				Description: "Seconds, between 0 and 100. Required for wait and hold_key."},
			schemas.ParamSpec{Name: "key", Type: schemas.ParamString,
				Description: "Modifier held during a click action."},
		)
	}
	return schemas.ToolDescriptor{
		Name: ToolComputer,
		Description: fmt.Sprintf("Use a mouse and keyboard to interact with a web page and take screenshots. "+
			"The viewport is %dx%d pixels; coordinates are pixel positions within it. "+
			"Consult a screenshot before clicking to find element positions.", vp.Width, vp.Height),
		Params: params,
	}
}

// SetURLTool describes the set_url tool.
func SetURLTool() schemas.ToolDescriptor {
	return schemas.ToolDescriptor{
		Name:        ToolSetURL,
		Description: "Navigate the browser to a URL.",
		Params: []schemas.ParamSpec{
			{Name: "url", Type: schemas.ParamString, Required: true, Description: "The absolute URL to open."},
		},
	}
}

// PreviousPageTool describes the previous_page tool.
func PreviousPageTool() schemas.ToolDescriptor {
	return schemas.ToolDescriptor{
		Name:        ToolPreviousPage,
		Description: "Navigate back to the previous page in the browser history.",
	}
}

// Tools returns every descriptor advertised for the vocabulary.
func Tools(v Vocabulary, vp schemas.Viewport) []schemas.ToolDescriptor {
	return []schemas.ToolDescriptor{ComputerTool(v, vp), SetURLTool(), PreviousPageTool()}
}
