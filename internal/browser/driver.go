package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

const (
	defaultActionTimeout     = 10 * time.Second
	defaultNavigationTimeout = 45 * time.Second
)

// Driver implements schemas.BrowserDriver with CDP input and page commands.
// It tracks held modifiers and pressed buttons so later events carry the right state.
type Driver struct {
	logger            *zap.Logger
	runActionsFunc    func(ctx context.Context, actions ...chromedp.Action) error
	viewportFunc      func(ctx context.Context) (schemas.Viewport, error)
	actionTimeout     time.Duration
	navigationTimeout time.Duration

	mu        sync.Mutex
	modifiers schemas.KeyModifier
	buttons   int64
}

var _ schemas.BrowserDriver = (*Driver)(nil)

// NewDriver creates a driver that runs its actions through runActions.
func NewDriver(logger *zap.Logger, runActions func(ctx context.Context, actions ...chromedp.Action) error, actionTimeout, navigationTimeout time.Duration) *Driver {
	if actionTimeout <= 0 {
		actionTimeout = defaultActionTimeout
	}
	if navigationTimeout <= 0 {
		navigationTimeout = defaultNavigationTimeout
	}
	d := &Driver{
		logger:            logger.Named("driver"),
		runActionsFunc:    runActions,
		actionTimeout:     actionTimeout,
		navigationTimeout: navigationTimeout,
	}
	d.viewportFunc = d.layoutViewport
	return d
}

// run executes actions under a per-operation timeout and wraps timeouts with the operation name.
func (d *Driver) run(ctx context.Context, op string, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := d.runActionsFunc(opCtx, actions...)
	if err == nil {
		return nil
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		d.logger.Debug("Driver operation timed out.", zap.String("op", op), zap.Duration("timeout", timeout))
		return fmt.Errorf("driver: %s timed out after %v: %w", op, timeout, opCtx.Err())
	}
	return fmt.Errorf("driver: %s failed: %w", op, err)
}

// Viewport returns the CSS layout viewport. It queries the page on every call.
func (d *Driver) Viewport(ctx context.Context) (schemas.Viewport, error) {
	return d.viewportFunc(ctx)
}

func (d *Driver) layoutViewport(ctx context.Context) (schemas.Viewport, error) {
	var vp schemas.Viewport
	err := d.run(ctx, "layout metrics", d.actionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, _, cssLayoutViewport, _, _, err := page.GetLayoutMetrics().Do(ctx)
		if err != nil {
			return err
		}
		if cssLayoutViewport == nil {
			return errors.New("layout viewport unavailable")
		}
		vp = schemas.Viewport{Width: int(cssLayoutViewport.ClientWidth), Height: int(cssLayoutViewport.ClientHeight)}
		return nil
	}))
	return vp, err
}

// cdpModifiers converts our internal representation into the CDP bitmask.
func cdpModifiers(m schemas.KeyModifier) input.Modifier {
	var mods input.Modifier
	if m&schemas.ModAlt != 0 {
		mods |= input.ModifierAlt
	}
	if m&schemas.ModCtrl != 0 {
		mods |= input.ModifierCtrl
	}
	if m&schemas.ModMeta != 0 {
		mods |= input.ModifierMeta
	}
	if m&schemas.ModShift != 0 {
		mods |= input.ModifierShift
	}
	return mods
}

func (d *Driver) mouseEvent(data schemas.MouseEventData) *input.DispatchMouseEventParams {
	p := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y).
		WithButton(input.MouseButton(data.Button)).
		WithButtons(data.Buttons).
		WithModifiers(cdpModifiers(data.Modifiers))
	if data.ClickCount > 0 {
		p = p.WithClickCount(int64(data.ClickCount))
	}
	if data.Type == schemas.MouseWheel {
		p = p.WithDeltaX(data.DeltaX).WithDeltaY(data.DeltaY)
	}
	return p
}

func (d *Driver) eventData(t schemas.MouseEventType, at schemas.Point, button schemas.MouseButton, clickCount int) schemas.MouseEventData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return schemas.MouseEventData{
		Type:       t,
		X:          float64(at.X),
		Y:          float64(at.Y),
		Button:     button,
		Buttons:    d.buttons,
		ClickCount: clickCount,
		Modifiers:  d.modifiers,
	}
}

// MoveMouse dispatches a single mouseMoved event.
func (d *Driver) MoveMouse(ctx context.Context, to schemas.Point) error {
	data := d.eventData(schemas.MouseMove, to, schemas.ButtonNone, 0)
	return d.run(ctx, "mouse move", d.actionTimeout, d.mouseEvent(data))
}

// MouseDown presses a button and records it as held.
func (d *Driver) MouseDown(ctx context.Context, at schemas.Point, button schemas.MouseButton, clickCount int) error {
	d.mu.Lock()
	d.buttons |= button.Bit()
	d.mu.Unlock()
	data := d.eventData(schemas.MousePress, at, button, clickCount)
	return d.run(ctx, "mouse down", d.actionTimeout, d.mouseEvent(data))
}

// MouseUp releases a button.
func (d *Driver) MouseUp(ctx context.Context, at schemas.Point, button schemas.MouseButton, clickCount int) error {
	d.mu.Lock()
	d.buttons &^= button.Bit()
	d.mu.Unlock()
	data := d.eventData(schemas.MouseRelease, at, button, clickCount)
	return d.run(ctx, "mouse up", d.actionTimeout, d.mouseEvent(data))
}

// Click sends count press/release pairs with increasing click counts, the way a
// browser reports a double or triple click.
func (d *Driver) Click(ctx context.Context, at schemas.Point, button schemas.MouseButton, count int) error {
	if count < 1 {
		count = 1
	}
	d.mu.Lock()
	held, mods := d.buttons, d.modifiers
	d.mu.Unlock()

	actions := make([]chromedp.Action, 0, 2*count)
	for i := 1; i <= count; i++ {
		base := schemas.MouseEventData{X: float64(at.X), Y: float64(at.Y), Button: button, ClickCount: i, Modifiers: mods}
		press, release := base, base
		press.Type, press.Buttons = schemas.MousePress, held|button.Bit()
		release.Type, release.Buttons = schemas.MouseRelease, held
		actions = append(actions, d.mouseEvent(press), d.mouseEvent(release))
	}
	return d.run(ctx, "click", d.actionTimeout, actions...)
}

// Wheel scrolls at a position by the given pixel deltas.
func (d *Driver) Wheel(ctx context.Context, at schemas.Point, deltaX, deltaY int) error {
	data := d.eventData(schemas.MouseWheel, at, schemas.ButtonNone, 0)
	data.DeltaX, data.DeltaY = float64(deltaX), float64(deltaY)
	return d.run(ctx, "wheel", d.actionTimeout, d.mouseEvent(data))
}

func (d *Driver) currentModifiers() schemas.KeyModifier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modifiers
}

// keyEvent builds a key event for a canonical token under the current modifiers.
// Text is attached only when no command modifier is held, so shortcuts do not type.
func (d *Driver) keyEvent(t input.KeyType, token string) *input.DispatchKeyEventParams {
	mods := d.currentModifiers()
	def, known := lookupKey(token)
	if !known {
		d.logger.Debug("Dispatching key without a definition.", zap.String("key", token))
	}
	if mods&schemas.ModShift != 0 {
		def = def.withShift()
	}

	p := input.DispatchKeyEvent(t).
		WithModifiers(cdpModifiers(mods)).
		WithKey(def.key)
	if def.code != "" {
		p = p.WithCode(def.code)
	}
	if def.keyCode != 0 {
		p = p.WithWindowsVirtualKeyCode(def.keyCode).WithNativeVirtualKeyCode(def.keyCode)
	}
	commandHeld := mods&(schemas.ModCtrl|schemas.ModAlt|schemas.ModMeta) != 0
	if t == input.KeyDown {
		if def.text == "" || commandHeld {
			p.Type = input.KeyRawDown
		} else {
			p = p.WithText(def.text).WithUnmodifiedText(def.text)
		}
	}
	return p
}

// KeyDown presses a key. Modifier keys stay applied until KeyUp.
func (d *Driver) KeyDown(ctx context.Context, key string) error {
	ev := d.keyEvent(input.KeyDown, key)
	if mod := schemas.ModifierForKey(key); mod != schemas.ModNone {
		d.mu.Lock()
		d.modifiers |= mod
		d.mu.Unlock()
	}
	return d.run(ctx, "key down", d.actionTimeout, ev)
}

// KeyUp releases a key.
func (d *Driver) KeyUp(ctx context.Context, key string) error {
	if mod := schemas.ModifierForKey(key); mod != schemas.ModNone {
		d.mu.Lock()
		d.modifiers &^= mod
		d.mu.Unlock()
	}
	return d.run(ctx, "key up", d.actionTimeout, d.keyEvent(input.KeyUp, key))
}

// PressKey sends key down then key up in one batch.
func (d *Driver) PressKey(ctx context.Context, key string) error {
	return d.run(ctx, "key press", d.actionTimeout, d.keyEvent(input.KeyDown, key), d.keyEvent(input.KeyUp, key))
}

// TypeText sends the text as character key events.
func (d *Driver) TypeText(ctx context.Context, text string) error {
	return d.run(ctx, "type", d.actionTimeout, chromedp.KeyEvent(text))
}

// CaptureScreenshot captures the visible viewport as PNG.
func (d *Driver) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, "screenshot", d.actionTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Navigate loads url and waits for the load event.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, "navigate", d.navigationTimeout, chromedp.Navigate(url))
}

// NavigateBack goes back one history entry.
func (d *Driver) NavigateBack(ctx context.Context) error {
	return d.run(ctx, "navigate back", d.navigationTimeout, chromedp.NavigateBack())
}
