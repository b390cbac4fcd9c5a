package action

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

// NormalizedMax is the upper bound of the normalized coordinate space.
const NormalizedMax = 1000

// ViewportSource reports the current viewport. Implementations must not cache.
type ViewportSource interface {
	Viewport(ctx context.Context) (schemas.Viewport, error)
}

// FixedViewport is a ViewportSource of constant size, for offline conversion.
type FixedViewport schemas.Viewport

// Viewport returns the fixed size.
func (f FixedViewport) Viewport(context.Context) (schemas.Viewport, error) {
	return schemas.Viewport(f), nil
}

// ScalePoint maps a normalized coordinate onto a viewport: floor(x*W/1000), floor(y*H/1000).
func ScalePoint(p schemas.Point, vp schemas.Viewport) schemas.Point {
	return schemas.Point{
		X: p.X * vp.Width / NormalizedMax,
		Y: p.Y * vp.Height / NormalizedMax,
	}
}

// Scaler converts normalized coordinates against a live viewport.
type Scaler struct {
	source ViewportSource
}

// NewScaler creates a scaler reading from source.
func NewScaler(source ViewportSource) *Scaler {
	return &Scaler{source: source}
}

// ToAbsolute reads the viewport and scales p. Coordinates outside [0,1000] are rejected.
func (s *Scaler) ToAbsolute(ctx context.Context, p schemas.Point) (schemas.Point, error) {
	if p.X < 0 || p.Y < 0 || p.X > NormalizedMax || p.Y > NormalizedMax {
		return schemas.Point{}, &ValidationError{Msg: fmt.Sprintf("normalized coordinate %s is outside [0,%d]", p, NormalizedMax)}
	}
	vp, err := s.source.Viewport(ctx)
	if err != nil {
		return schemas.Point{}, fmt.Errorf("failed to read viewport: %w", err)
	}
	if !vp.Valid() {
		return schemas.Point{}, fmt.Errorf("viewport %dx%d is not usable", vp.Width, vp.Height)
	}
	return ScalePoint(p, vp), nil
}
