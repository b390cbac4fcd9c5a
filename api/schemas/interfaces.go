package schemas

import (
	"context"
	"time"
)

// -- Browser Driver Interface --

// BrowserDriver is the capability set the dispatcher needs from a browser page.
// Implementations perform one primitive each and hold no cursor state of their own;
// modifier keys held through KeyDown stay applied to later mouse and key events
// until the matching KeyUp.
type BrowserDriver interface {
	// Viewport returns the current logical viewport size. It is never cached.
	Viewport(ctx context.Context) (Viewport, error)
	MoveMouse(ctx context.Context, to Point) error
	MouseDown(ctx context.Context, at Point, button MouseButton, clickCount int) error
	MouseUp(ctx context.Context, at Point, button MouseButton, clickCount int) error
	// Click presses and releases the button count times, reporting increasing click counts.
	Click(ctx context.Context, at Point, button MouseButton, count int) error
	Wheel(ctx context.Context, at Point, deltaX, deltaY int) error
	KeyDown(ctx context.Context, key string) error
	KeyUp(ctx context.Context, key string) error
	// PressKey sends a key down followed by a key up.
	PressKey(ctx context.Context, key string) error
	// TypeText inserts the text as a sequence of character key events.
	TypeText(ctx context.Context, text string) error
	// CaptureScreenshot returns a PNG of the visible viewport at device resolution.
	CaptureScreenshot(ctx context.Context) ([]byte, error)
	Navigate(ctx context.Context, url string) error
	NavigateBack(ctx context.Context) error
}

// -- Model Interfaces --

// TextModel is a model family that answers with free-form text carrying a
// textual action line.
type TextModel interface {
	// Complete requests one completion over the given transcript.
	Complete(ctx context.Context, entries []Entry) (string, error)
	// Close cleans up any resources held by the client.
	Close() error
}

// ToolRequest is one turn of the structured tool-calling loop.
type ToolRequest struct {
	System  string
	Entries []Entry
	Tools   []ToolDescriptor
}

// ToolModel is a model family that answers with structured tool calls.
type ToolModel interface {
	// Next returns the assistant entry for the request. Tool calls appear as tool_use blocks.
	Next(ctx context.Context, req ToolRequest) (Entry, error)
	Close() error
}

// -- Archive Interface --

// RunRecord describes one loop run for archival.
type RunRecord struct {
	ID          string    `json:"id"`
	Instruction string    `json:"instruction"`
	Mode        string    `json:"mode"`
	Model       string    `json:"model"`
	Outcome     string    `json:"outcome"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// TranscriptStore persists finished transcripts.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, run RunRecord, entries []Entry) error
	GetTranscript(ctx context.Context, runID string) ([]Entry, error)
}
