// Package action defines the closed set of UI actions a model can request, the
// vocabularies that advertise them, and the validation that turns raw tool input
// into a well-formed Action.
package action

import (
	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/keys"
)

// Kind identifies an action variant.
type Kind string

const (
	KindMove           Kind = "move"
	KindClick          Kind = "click"
	KindDrag           Kind = "drag"
	KindKeyPress       Kind = "key_press"
	KindHoldKey        Kind = "hold_key"
	KindTypeText       Kind = "type_text"
	KindScroll         Kind = "scroll"
	KindWait           Kind = "wait"
	KindMouseDown      Kind = "mouse_down"
	KindMouseUp        Kind = "mouse_up"
	KindScreenshot     Kind = "screenshot"
	KindCursorPosition Kind = "cursor_position"
	KindSetURL         Kind = "set_url"
	KindPreviousPage   Kind = "previous_page"
	KindFinished       Kind = "finished"
	KindCallUser       Kind = "call_user"
)

// Action is one validated UI operation. The set of implementations is closed.
type Action interface {
	Kind() Kind
	// Terminal reports whether the loop stops after executing the action.
	Terminal() bool
	isAction()
}

type base struct{}

func (base) Terminal() bool { return false }
func (base) isAction()      {}

// Move repositions the cursor.
type Move struct {
	base
	To schemas.Point
}

// Click presses a mouse button Count times. A nil At clicks at the current cursor.
type Click struct {
	base
	Button schemas.MouseButton
	Count  int
	At     *schemas.Point
	// Hold is pressed before and released after the click when non-nil.
	Hold *keys.Chord
}

// Drag presses the primary button at From, moves to To and releases.
type Drag struct {
	base
	From schemas.Point
	To   schemas.Point
}

// KeyPress presses a chord once.
type KeyPress struct {
	base
	Chord keys.Chord
}

// HoldKey holds a chord down for Duration time units.
type HoldKey struct {
	base
	Chord    keys.Chord
	Duration float64
}

// TypeText types literal text.
type TypeText struct {
	base
	Text string
}

// Scroll sends a wheel event with signed pixel deltas. A nil At scrolls at the current cursor.
type Scroll struct {
	base
	DeltaX int
	DeltaY int
	At     *schemas.Point
	Hold   *keys.Chord
}

// Wait pauses for Duration time units.
type Wait struct {
	base
	Duration float64
}

// MouseDown presses the primary button at the current cursor.
type MouseDown struct{ base }

// MouseUp releases the primary button at the current cursor.
type MouseUp struct{ base }

// Screenshot captures the viewport.
type Screenshot struct{ base }

// CursorPosition reports the current cursor.
type CursorPosition struct{ base }

// SetURL navigates the page.
type SetURL struct {
	base
	URL string
}

// PreviousPage navigates back in history.
type PreviousPage struct{ base }

// Finished ends the run successfully.
type Finished struct {
	base
	Content string
}

// CallUser ends the run and hands control back to the user.
type CallUser struct {
	base
	Content string
}

func (Move) Kind() Kind           { return KindMove }
func (Click) Kind() Kind          { return KindClick }
func (Drag) Kind() Kind           { return KindDrag }
func (KeyPress) Kind() Kind       { return KindKeyPress }
func (HoldKey) Kind() Kind        { return KindHoldKey }
func (TypeText) Kind() Kind       { return KindTypeText }
func (Scroll) Kind() Kind         { return KindScroll }
func (Wait) Kind() Kind           { return KindWait }
func (MouseDown) Kind() Kind      { return KindMouseDown }
func (MouseUp) Kind() Kind        { return KindMouseUp }
func (Screenshot) Kind() Kind     { return KindScreenshot }
func (CursorPosition) Kind() Kind { return KindCursorPosition }
func (SetURL) Kind() Kind         { return KindSetURL }
func (PreviousPage) Kind() Kind   { return KindPreviousPage }
func (Finished) Kind() Kind       { return KindFinished }
func (CallUser) Kind() Kind       { return KindCallUser }

func (Finished) Terminal() bool { return true }
func (CallUser) Terminal() bool { return true }
