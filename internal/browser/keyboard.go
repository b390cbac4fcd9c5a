package browser

import (
	"fmt"
	"strings"
)

// keyDefinition carries the DOM key, code, virtual key code and produced text of a key.
type keyDefinition struct {
	key     string
	code    string
	keyCode int64
	text    string
	// shiftKey is both key and text while Shift is held.
	shiftKey string
}

var keyDefinitions = map[string]keyDefinition{
	"Alt":     {key: "Alt", code: "AltLeft", keyCode: 18},
	"Control": {key: "Control", code: "ControlLeft", keyCode: 17},
	"Meta":    {key: "Meta", code: "MetaLeft", keyCode: 91},
	"Shift":   {key: "Shift", code: "ShiftLeft", keyCode: 16},

	"Enter":     {key: "Enter", code: "Enter", keyCode: 13, text: "\r"},
	"Tab":       {key: "Tab", code: "Tab", keyCode: 9},
	"Space":     {key: " ", code: "Space", keyCode: 32, text: " "},
	"Backspace": {key: "Backspace", code: "Backspace", keyCode: 8},
	"Delete":    {key: "Delete", code: "Delete", keyCode: 46},
	"Escape":    {key: "Escape", code: "Escape", keyCode: 27},
	"Insert":    {key: "Insert", code: "Insert", keyCode: 45},
	"Home":      {key: "Home", code: "Home", keyCode: 36},
	"End":       {key: "End", code: "End", keyCode: 35},
	"PageUp":    {key: "PageUp", code: "PageUp", keyCode: 33},
	"PageDown":  {key: "PageDown", code: "PageDown", keyCode: 34},

	"ArrowLeft":  {key: "ArrowLeft", code: "ArrowLeft", keyCode: 37},
	"ArrowUp":    {key: "ArrowUp", code: "ArrowUp", keyCode: 38},
	"ArrowRight": {key: "ArrowRight", code: "ArrowRight", keyCode: 39},
	"ArrowDown":  {key: "ArrowDown", code: "ArrowDown", keyCode: 40},

	"Backquote":    {key: "`", code: "Backquote", keyCode: 192, text: "`", shiftKey: "~"},
	"Minus":        {key: "-", code: "Minus", keyCode: 189, text: "-", shiftKey: "_"},
	"Equal":        {key: "=", code: "Equal", keyCode: 187, text: "=", shiftKey: "+"},
	"Backslash":    {key: "\\", code: "Backslash", keyCode: 220, text: "\\", shiftKey: "|"},
	"BracketLeft":  {key: "[", code: "BracketLeft", keyCode: 219, text: "[", shiftKey: "{"},
	"BracketRight": {key: "]", code: "BracketRight", keyCode: 221, text: "]", shiftKey: "}"},
	"Semicolon":    {key: ";", code: "Semicolon", keyCode: 186, text: ";", shiftKey: ":"},
	"Quote":        {key: "'", code: "Quote", keyCode: 222, text: "'", shiftKey: "\""},
	"Comma":        {key: ",", code: "Comma", keyCode: 188, text: ",", shiftKey: "<"},
	"Period":       {key: ".", code: "Period", keyCode: 190, text: ".", shiftKey: ">"},
	"Slash":        {key: "/", code: "Slash", keyCode: 191, text: "/", shiftKey: "?"},
}

var digitShift = ")!@#$%^&*("

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		lower := strings.ToLower(string(c))
		keyDefinitions["Key"+string(c)] = keyDefinition{
			key: lower, code: "Key" + string(c), keyCode: int64(c), text: lower, shiftKey: string(c),
		}
	}
	for d := '0'; d <= '9'; d++ {
		keyDefinitions["Digit"+string(d)] = keyDefinition{
			key: string(d), code: "Digit" + string(d), keyCode: int64(d), text: string(d),
			shiftKey: string(digitShift[d-'0']),
		}
	}
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("F%d", i)
		keyDefinitions[name] = keyDefinition{key: name, code: name, keyCode: int64(111 + i)}
	}
}

// lookupKey resolves a canonical token. Unknown tokens are sent as a bare DOM key
// so that pass-through names still reach the page.
func lookupKey(token string) (keyDefinition, bool) {
	def, ok := keyDefinitions[token]
	if !ok {
		def = keyDefinition{key: token}
		if len([]rune(token)) == 1 {
			def.text = token
		}
	}
	return def, ok
}

// withShift applies the Shift variant of a printable key.
func (d keyDefinition) withShift() keyDefinition {
	if d.shiftKey != "" {
		d.key = d.shiftKey
		d.text = d.shiftKey
	}
	return d
}
