package action_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
)

// viewportSequence returns a different viewport on every call.
type viewportSequence struct {
	sizes []schemas.Viewport
	calls int
	err   error
}

func (v *viewportSequence) Viewport(ctx context.Context) (schemas.Viewport, error) {
	if v.err != nil {
		return schemas.Viewport{}, v.err
	}
	vp := v.sizes[v.calls%len(v.sizes)]
	v.calls++
	return vp, nil
}

func TestScalePoint_FloorProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.IntRange(0, 1000).Draw(t, "x")
		y := rapid.IntRange(0, 1000).Draw(t, "y")
		w := rapid.IntRange(1, 8000).Draw(t, "w")
		h := rapid.IntRange(1, 8000).Draw(t, "h")

		got := action.ScalePoint(schemas.Point{X: x, Y: y}, schemas.Viewport{Width: w, Height: h})

		// floor(a/b) for non-negative integers is the largest q with q*b <= a.
		if got.X*1000 > x*w || (got.X+1)*1000 <= x*w {
			t.Fatalf("x: got %d for %d*%d/1000", got.X, x, w)
		}
		if got.Y*1000 > y*h || (got.Y+1)*1000 <= y*h {
			t.Fatalf("y: got %d for %d*%d/1000", got.Y, y, h)
		}
	})
}

func TestScalePoint_Examples(t *testing.T) {
	vp := schemas.Viewport{Width: 1280, Height: 720}
	assert.Equal(t, schemas.Point{X: 128, Y: 144}, action.ScalePoint(schemas.Point{X: 100, Y: 200}, vp))
	assert.Equal(t, schemas.Point{X: 1280, Y: 720}, action.ScalePoint(schemas.Point{X: 1000, Y: 1000}, vp))
	assert.Equal(t, schemas.Point{X: 1, Y: 0}, action.ScalePoint(schemas.Point{X: 1, Y: 1}, vp))
}

func TestScaler_ReadsViewportEveryCall(t *testing.T) {
	src := &viewportSequence{sizes: []schemas.Viewport{{Width: 1000, Height: 1000}, {Width: 2000, Height: 500}}}
	s := action.NewScaler(src)
	p := schemas.Point{X: 500, Y: 500}

	first, err := s.ToAbsolute(context.Background(), p)
	require.NoError(t, err)
	second, err := s.ToAbsolute(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, schemas.Point{X: 500, Y: 500}, first)
	assert.Equal(t, schemas.Point{X: 1000, Y: 250}, second)
	assert.Equal(t, 2, src.calls)
}

func TestScaler_Errors(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		s := action.NewScaler(&viewportSequence{sizes: []schemas.Viewport{{Width: 10, Height: 10}}})
		_, err := s.ToAbsolute(context.Background(), schemas.Point{X: 1001, Y: 0})
		var verr *action.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("viewport failure", func(t *testing.T) {
		boom := errors.New("target closed")
		s := action.NewScaler(&viewportSequence{err: boom})
		_, err := s.ToAbsolute(context.Background(), schemas.Point{X: 1, Y: 1})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty viewport", func(t *testing.T) {
		s := action.NewScaler(&viewportSequence{sizes: []schemas.Viewport{{}}})
		_, err := s.ToAbsolute(context.Background(), schemas.Point{X: 1, Y: 1})
		assert.Error(t, err)
	})
}
