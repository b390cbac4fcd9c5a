// Package keys normalizes model-supplied key names and chords into the canonical
// key tokens the browser driver dispatches.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

// Key is a canonical key token, named after the DOM KeyboardEvent code where one exists.
type Key string

const (
	Alt   Key = "Alt"
	Ctrl  Key = "Control"
	Meta  Key = "Meta"
	Shift Key = "Shift"

	Enter     Key = "Enter"
	Tab       Key = "Tab"
	Space     Key = "Space"
	Backspace Key = "Backspace"
	Delete    Key = "Delete"
	Escape    Key = "Escape"
	Insert    Key = "Insert"
	Home      Key = "Home"
	End       Key = "End"
	PageUp    Key = "PageUp"
	PageDown  Key = "PageDown"

	ArrowUp    Key = "ArrowUp"
	ArrowDown  Key = "ArrowDown"
	ArrowLeft  Key = "ArrowLeft"
	ArrowRight Key = "ArrowRight"

	Backquote    Key = "Backquote"
	Minus        Key = "Minus"
	Equal        Key = "Equal"
	Backslash    Key = "Backslash"
	BracketLeft  Key = "BracketLeft"
	BracketRight Key = "BracketRight"
	Semicolon    Key = "Semicolon"
	Quote        Key = "Quote"
	Comma        Key = "Comma"
	Period       Key = "Period"
	Slash        Key = "Slash"
)

// IsModifier reports whether k is one of the four modifier keys.
func (k Key) IsModifier() bool {
	switch k {
	case Alt, Ctrl, Meta, Shift:
		return true
	}
	return false
}

// ErrEmptyChord is returned when the input holds no key tokens.
var ErrEmptyChord = errors.New("key chord is empty")

// canonical maps lowercased names to canonical tokens. Letters, digits and
// function keys are filled in by init.
var canonical = map[string]Key{
	"alt": Alt, "option": Alt,
	"ctrl": Ctrl, "control": Ctrl,
	"shift": Shift,
	"meta": Meta, "super": Meta, "cmd": Meta, "command": Meta, "win": Meta,

	"return": Enter, "enter": Enter,
	"tab":       Tab,
	"space":     Space,
	"backspace": Backspace,
	"delete":    Delete, "del": Delete,
	"escape": Escape, "esc": Escape,
	"insert":    Insert,
	"home":      Home,
	"end":       End,
	"page_up":   PageUp, "pageup": PageUp, "prior": PageUp,
	"page_down": PageDown, "pagedown": PageDown, "next": PageDown,

	"up": ArrowUp, "arrowup": ArrowUp,
	"down": ArrowDown, "arrowdown": ArrowDown,
	"left": ArrowLeft, "arrowleft": ArrowLeft,
	"right": ArrowRight, "arrowright": ArrowRight,

	"backquote": Backquote, "grave": Backquote, "`": Backquote,
	"minus": Minus, "-": Minus,
	"equal": Equal, "=": Equal,
	"backslash": Backslash, "\\": Backslash,
	"bracketleft": BracketLeft, "[": BracketLeft,
	"bracketright": BracketRight, "]": BracketRight,
	"semicolon": Semicolon, ";": Semicolon,
	"quote": Quote, "apostrophe": Quote, "'": Quote,
	"comma": Comma, ",": Comma,
	"period": Period, ".": Period,
	"slash": Slash, "/": Slash,
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		k := Key("Key" + strings.ToUpper(string(c)))
		canonical[string(c)] = k
		canonical["key"+string(c)] = k
	}
	for d := '0'; d <= '9'; d++ {
		k := Key("Digit" + string(d))
		canonical[string(d)] = k
		canonical["digit"+string(d)] = k
	}
	for i := 1; i <= 12; i++ {
		canonical[fmt.Sprintf("f%d", i)] = Key(fmt.Sprintf("F%d", i))
	}
}

// Canonical maps a single key name to its canonical token, ignoring case.
func Canonical(name string) (Key, bool) {
	k, ok := canonical[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Chord is a translated key combination.
type Chord struct {
	Modifiers []Key
	Primary   Key
	// Unmapped lists the input tokens that had no canonical translation and were passed through.
	Unmapped []string
}

// Keys returns the modifiers followed by the primary key.
func (c Chord) Keys() []Key {
	out := make([]Key, 0, len(c.Modifiers)+1)
	out = append(out, c.Modifiers...)
	return append(out, c.Primary)
}

func (c Chord) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, k := range c.Keys() {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, "+")
}

// Translator splits chord strings on a fixed set of delimiter characters.
type Translator struct {
	delimiters string
}

// NewTranslator returns a translator splitting on any rune in delimiters.
func NewTranslator(delimiters string) *Translator {
	return &Translator{delimiters: delimiters}
}

var (
	// Structured handles "Ctrl+Shift+T" style chords from tool calls.
	Structured = NewTranslator("+")
	// Textual handles "ctrl c" and "ctrl+c" style chords from text actions.
	Textual = NewTranslator("+ ")
)

// Translate splits s into modifier tokens (all but the last) and a primary token and
// canonicalizes each. Unknown tokens pass through unchanged and are reported in Unmapped.
func (t *Translator) Translate(s string) (Chord, error) {
	tokens := t.split(s)
	if len(tokens) == 0 {
		return Chord{}, ErrEmptyChord
	}

	var chord Chord
	for i, tok := range tokens {
		k, ok := Canonical(tok)
		if !ok {
			k = Key(tok)
			chord.Unmapped = append(chord.Unmapped, tok)
		}
		if i == len(tokens)-1 {
			chord.Primary = k
		} else {
			chord.Modifiers = append(chord.Modifiers, k)
		}
	}
	return chord, nil
}

func (t *Translator) split(s string) []string {
	isDelim := func(r rune) bool { return strings.ContainsRune(t.delimiters, r) }
	tokens := strings.FieldsFunc(s, isDelim)

	// A trailing delimiter after another delimiter names the delimiter key itself, as in "ctrl++".
	trimmed := strings.TrimRightFunc(s, func(r rune) bool { return r == ' ' })
	if n := len(trimmed); n >= 2 && len(tokens) > 0 {
		last, prev := rune(trimmed[n-1]), rune(trimmed[n-2])
		if last != ' ' && isDelim(last) && isDelim(prev) {
			tokens = append(tokens, string(last))
		}
	}
	return tokens
}
