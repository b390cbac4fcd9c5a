// Package dispatch executes validated actions against a browser driver. The
// Dispatcher owns the cursor position carried between calls; the Toolbox
// wraps it for the structured tool-calling path.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
	"github.com/xkilldash9x/webpilot/internal/keys"
	"github.com/xkilldash9x/webpilot/internal/screenshot"
)

const (
	// DefaultTypingGroupSize is the number of characters forwarded per TypeText call.
	DefaultTypingGroupSize = 50
	// DefaultTimeUnit is the real length of one duration unit.
	DefaultTimeUnit = time.Second
)

// Options configures a Dispatcher.
type Options struct {
	TypingGroupSize int
	// TypingRate caps typing groups per second. Zero means unlimited.
	TypingRate float64
	TimeUnit   time.Duration
	// SettleDelay is waited before a screenshot that follows a state-changing action.
	SettleDelay time.Duration
	UseCursor   bool
	Clock       Clock
}

// Dispatcher runs one action at a time against a driver.
type Dispatcher struct {
	driver schemas.BrowserDriver
	logger *zap.Logger
	clock  Clock
	sem    *semaphore.Weighted
	typing *rate.Limiter
	opts   Options
	dirty  bool

	// cursorMu guards cursor writes against Cursor; execute reads it under sem.
	cursorMu sync.Mutex
	cursor   schemas.Point
}

// NewDispatcher creates a dispatcher with the cursor at the origin.
func NewDispatcher(driver schemas.BrowserDriver, logger *zap.Logger, opts Options) *Dispatcher {
	if opts.TypingGroupSize <= 0 {
		opts.TypingGroupSize = DefaultTypingGroupSize
	}
	if opts.TimeUnit <= 0 {
		opts.TimeUnit = DefaultTimeUnit
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	limit := rate.Inf
	if opts.TypingRate > 0 {
		limit = rate.Limit(opts.TypingRate)
	}
	return &Dispatcher{
		driver: driver,
		logger: logger.Named("dispatcher"),
		clock:  opts.Clock,
		sem:    semaphore.NewWeighted(1),
		typing: rate.NewLimiter(limit, 1),
		opts:   opts,
	}
}

// Cursor returns the last known mouse position.
func (d *Dispatcher) Cursor() schemas.Point {
	d.cursorMu.Lock()
	defer d.cursorMu.Unlock()
	return d.cursor
}

// Viewport reads the current viewport from the driver.
func (d *Dispatcher) Viewport(ctx context.Context) (schemas.Viewport, error) {
	return d.driver.Viewport(ctx)
}

// Execute performs a single action. Calls are serialized; a second caller
// blocks until the first finishes or its context ends.
func (d *Dispatcher) Execute(ctx context.Context, a action.Action) (schemas.ToolResult, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return schemas.ToolResult{}, err
	}
	defer d.sem.Release(1)

	d.logger.Debug("Dispatching action.", zap.String("kind", string(a.Kind())))
	return d.execute(ctx, a)
}

// Outcome is the result of an asynchronous Execute.
type Outcome struct {
	Result schemas.ToolResult
	Err    error
}

// ExecuteAsync runs Execute on its own goroutine. The channel receives exactly
// one Outcome and is then closed.
func (d *Dispatcher) ExecuteAsync(ctx context.Context, a action.Action) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := d.Execute(ctx, a)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

// Screenshot captures the viewport as Execute(Screenshot{}) would.
func (d *Dispatcher) Screenshot(ctx context.Context) ([]byte, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.sem.Release(1)
	return d.capture(ctx)
}

func (d *Dispatcher) execute(ctx context.Context, a action.Action) (schemas.ToolResult, error) {
	switch a := a.(type) {
	case action.Move:
		if err := d.moveTo(ctx, a.To); err != nil {
			return schemas.ToolResult{}, err
		}
		return schemas.ToolResult{}, nil

	case action.Click:
		return schemas.ToolResult{}, d.click(ctx, a)

	case action.Drag:
		return schemas.ToolResult{}, d.drag(ctx, a)

	case action.KeyPress:
		return schemas.ToolResult{}, d.press(ctx, a.Chord)

	case action.HoldKey:
		return schemas.ToolResult{}, d.hold(ctx, a.Chord, units(a.Duration, d.opts.TimeUnit))

	case action.TypeText:
		if err := d.typeText(ctx, a.Text); err != nil {
			return schemas.ToolResult{}, err
		}
		return d.screenshotResult(ctx)

	case action.Scroll:
		return schemas.ToolResult{}, d.scroll(ctx, a)

	case action.Wait:
		if err := d.clock.Sleep(ctx, units(a.Duration, d.opts.TimeUnit)); err != nil {
			return schemas.ToolResult{}, err
		}
		return d.screenshotResult(ctx)

	case action.MouseDown:
		d.dirty = true
		return schemas.ToolResult{}, d.driver.MouseDown(ctx, d.cursor, schemas.ButtonLeft, 1)

	case action.MouseUp:
		d.dirty = true
		return schemas.ToolResult{}, d.driver.MouseUp(ctx, d.cursor, schemas.ButtonLeft, 1)

	case action.Screenshot:
		return d.screenshotResult(ctx)

	case action.CursorPosition:
		return schemas.ToolResult{Output: action.FormatCursor(d.cursor)}, nil

	case action.SetURL:
		d.dirty = true
		if err := d.driver.Navigate(ctx, a.URL); err != nil {
			return schemas.ToolResult{}, err
		}
		return schemas.ToolResult{}, nil

	case action.PreviousPage:
		d.dirty = true
		return schemas.ToolResult{}, d.driver.NavigateBack(ctx)

	case action.Finished:
		return schemas.ToolResult{Output: a.Content}, nil

	case action.CallUser:
		return schemas.ToolResult{Output: a.Content}, nil
	}
	return schemas.ToolResult{}, fmt.Errorf("dispatch: unhandled action %T", a)
}

func (d *Dispatcher) moveTo(ctx context.Context, p schemas.Point) error {
	if err := d.driver.MoveMouse(ctx, p); err != nil {
		return err
	}
	d.cursorMu.Lock()
	d.cursor = p
	d.cursorMu.Unlock()
	d.dirty = true
	return nil
}

func (d *Dispatcher) click(ctx context.Context, c action.Click) error {
	if c.At != nil {
		if err := d.moveTo(ctx, *c.At); err != nil {
			return err
		}
	}
	d.dirty = true
	return d.withHeld(ctx, c.Hold, func() error {
		return d.driver.Click(ctx, d.cursor, c.Button, c.Count)
	})
}

func (d *Dispatcher) drag(ctx context.Context, a action.Drag) error {
	if err := d.moveTo(ctx, a.From); err != nil {
		return err
	}
	if err := d.driver.MouseDown(ctx, a.From, schemas.ButtonLeft, 1); err != nil {
		return err
	}
	if err := d.moveTo(ctx, a.To); err != nil {
		// Do not leave the button stuck down.
		_ = d.driver.MouseUp(ctx, d.cursor, schemas.ButtonLeft, 1)
		return err
	}
	return d.driver.MouseUp(ctx, a.To, schemas.ButtonLeft, 1)
}

func (d *Dispatcher) scroll(ctx context.Context, s action.Scroll) error {
	if s.At != nil {
		if err := d.moveTo(ctx, *s.At); err != nil {
			return err
		}
	}
	d.dirty = true
	return d.withHeld(ctx, s.Hold, func() error {
		return d.driver.Wheel(ctx, d.cursor, s.DeltaX, s.DeltaY)
	})
}

// press holds each modifier in order, presses the primary key, then releases
// the modifiers in reverse order.
func (d *Dispatcher) press(ctx context.Context, chord keys.Chord) error {
	d.noteUnmapped(chord)
	d.dirty = true
	return d.withModifiers(ctx, chord.Modifiers, func() error {
		return d.driver.PressKey(ctx, string(chord.Primary))
	})
}

func (d *Dispatcher) hold(ctx context.Context, chord keys.Chord, dur time.Duration) error {
	d.noteUnmapped(chord)
	d.dirty = true
	return d.withModifiers(ctx, chord.Keys(), func() error {
		return d.clock.Sleep(ctx, dur)
	})
}

func (d *Dispatcher) withHeld(ctx context.Context, chord *keys.Chord, fn func() error) error {
	if chord == nil {
		return fn()
	}
	d.noteUnmapped(*chord)
	return d.withModifiers(ctx, chord.Keys(), fn)
}

// withModifiers presses keys in order, runs fn and releases whatever was
// pressed in reverse order, even when fn fails.
func (d *Dispatcher) withModifiers(ctx context.Context, held []keys.Key, fn func() error) (err error) {
	pressed := 0
	defer func() {
		for i := pressed - 1; i >= 0; i-- {
			if upErr := d.driver.KeyUp(ctx, string(held[i])); upErr != nil && err == nil {
				err = upErr
			}
		}
	}()
	for _, k := range held {
		if err := d.driver.KeyDown(ctx, string(k)); err != nil {
			return err
		}
		pressed++
	}
	return fn()
}

func (d *Dispatcher) typeText(ctx context.Context, text string) error {
	d.dirty = true
	for _, group := range Chunks(text, d.opts.TypingGroupSize) {
		if err := d.typing.Wait(ctx); err != nil {
			return err
		}
		if err := d.driver.TypeText(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) screenshotResult(ctx context.Context) (schemas.ToolResult, error) {
	img, err := d.capture(ctx)
	if err != nil {
		return schemas.ToolResult{}, err
	}
	return schemas.ToolResult{Image: img}, nil
}

func (d *Dispatcher) capture(ctx context.Context) ([]byte, error) {
	if d.dirty && d.opts.SettleDelay > 0 {
		if err := d.clock.Sleep(ctx, d.opts.SettleDelay); err != nil {
			return nil, err
		}
	}
	d.dirty = false

	raw, err := d.driver.CaptureScreenshot(ctx)
	if err != nil {
		return nil, err
	}
	vp, err := d.driver.Viewport(ctx)
	if err != nil {
		return nil, err
	}
	opts := screenshot.Options{Viewport: vp}
	if d.opts.UseCursor {
		cursor := d.cursor
		opts.Cursor = &cursor
	}
	return screenshot.Process(raw, opts)
}

func (d *Dispatcher) noteUnmapped(chord keys.Chord) {
	for _, k := range chord.Unmapped {
		d.logger.Warn("Key has no canonical mapping; passing it through.",
			zap.String("key", k),
			zap.String("chord", chord.String()))
	}
}

// Chunks splits s into groups of at most size runes.
func Chunks(s string, size int) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	out := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}
