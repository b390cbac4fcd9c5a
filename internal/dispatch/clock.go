package dispatch

import (
	"context"
	"time"
)

// Clock suspends the caller for a real duration.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on a timer and wakes early when the context is done.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// units converts an abstract duration in time units to real time.
func units(n float64, unit time.Duration) time.Duration {
	return time.Duration(n * float64(unit))
}
