package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
	"github.com/xkilldash9x/webpilot/internal/dsl"
	"github.com/xkilldash9x/webpilot/internal/keys"
)

type fixedViewport struct {
	vp    schemas.Viewport
	calls int
}

func (f *fixedViewport) Viewport(ctx context.Context) (schemas.Viewport, error) {
	f.calls++
	return f.vp, nil
}

func newConverter() (*dsl.Converter, *fixedViewport) {
	src := &fixedViewport{vp: schemas.Viewport{Width: 1280, Height: 720}}
	return dsl.NewConverter(action.NewScaler(src), 0, 0), src
}

func convert(t *testing.T, c *dsl.Converter, msg string) (action.Action, error) {
	t.Helper()
	sig, err := dsl.ParseMessage(msg)
	require.NoError(t, err)
	return c.ToAction(context.Background(), sig)
}

func ptr(p schemas.Point) *schemas.Point { return &p }

func TestConverter_Clicks(t *testing.T) {
	c, src := newConverter()

	got, err := convert(t, c, "Action: click(start_box='(500,500)')")
	require.NoError(t, err)
	assert.Equal(t, action.Click{Button: schemas.ButtonLeft, Count: 1, At: ptr(schemas.Point{X: 640, Y: 360})}, got)

	got, err = convert(t, c, "Action: left_double(start_box='(0,0)')")
	require.NoError(t, err)
	assert.Equal(t, action.Click{Button: schemas.ButtonLeft, Count: 2, At: ptr(schemas.Point{})}, got)

	got, err = convert(t, c, "Action: right_single('(1000,1000)')")
	require.NoError(t, err)
	assert.Equal(t, action.Click{Button: schemas.ButtonRight, Count: 1, At: ptr(schemas.Point{X: 1280, Y: 720})}, got)

	assert.Equal(t, 3, src.calls, "viewport is read on every conversion")
}

func TestConverter_Drag(t *testing.T) {
	c, _ := newConverter()
	got, err := convert(t, c, "Action: drag(start_box='(100,100)', end_box='(200,300)')")
	require.NoError(t, err)
	assert.Equal(t, action.Drag{From: schemas.Point{X: 128, Y: 72}, To: schemas.Point{X: 256, Y: 216}}, got)

	_, err = convert(t, c, "Action: drag(start_box='(100,100)')")
	var verr *action.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestConverter_Hotkey(t *testing.T) {
	c, _ := newConverter()
	got, err := convert(t, c, "Action: hotkey(key='ctrl shift t')")
	require.NoError(t, err)
	press := got.(action.KeyPress)
	assert.Equal(t, []keys.Key{keys.Ctrl, keys.Shift}, press.Chord.Modifiers)
	assert.Equal(t, keys.Key("KeyT"), press.Chord.Primary)

	got, err = convert(t, c, "Action: hotkey(key='pagedown')")
	require.NoError(t, err)
	assert.Equal(t, keys.PageDown, got.(action.KeyPress).Chord.Primary)
}

func TestConverter_Scroll(t *testing.T) {
	c, _ := newConverter()

	got, err := convert(t, c, "Action: scroll(direction='down')")
	require.NoError(t, err)
	assert.Equal(t, action.Scroll{DeltaY: 100}, got)

	got, err = convert(t, c, "Action: scroll(start_box='(500,0)', direction='left')")
	require.NoError(t, err)
	assert.Equal(t, action.Scroll{DeltaX: -100, At: ptr(schemas.Point{X: 640, Y: 0})}, got)

	got, err = convert(t, c, "Action: scroll(direction='up')")
	require.NoError(t, err)
	assert.Equal(t, action.Scroll{DeltaY: -100}, got)

	_, err = convert(t, c, "Action: scroll(direction='diagonal')")
	assert.Error(t, err)
}

func TestConverter_Terminal(t *testing.T) {
	c, _ := newConverter()

	got, err := convert(t, c, "Action: finished(content='done')")
	require.NoError(t, err)
	assert.True(t, got.Terminal())
	assert.Equal(t, action.Finished{Content: "done"}, got)

	got, err = convert(t, c, "Action: call_user()")
	require.NoError(t, err)
	assert.True(t, got.Terminal())

	got, err = convert(t, c, "Action: wait()")
	require.NoError(t, err)
	assert.False(t, got.Terminal())
	assert.Equal(t, action.Wait{Duration: dsl.DefaultWaitUnits}, got)
}

func TestConverter_BindingErrors(t *testing.T) {
	c, _ := newConverter()
	for _, msg := range []string{
		"Action: click()",
		"Action: click(start_box='(1,1)', target='x')",
		"Action: type('a', 'b')",
		"Action: type(5)",
		"Action: hotkey('ctrl', key='c')",
		"Action: click(start_box='(1001,5)')",
	} {
		t.Run(msg, func(t *testing.T) {
			_, err := convert(t, c, msg)
			var verr *action.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
