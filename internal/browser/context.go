package browser

import "context"

// CombineContext returns a context derived from parent that is also canceled when
// secondary is done. Callers must call the returned cancel function.
func CombineContext(parent, secondary context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parent)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
