// File: internal/service/components.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/agent"
	"github.com/xkilldash9x/webpilot/internal/conversation"
	"github.com/xkilldash9x/webpilot/internal/dispatch"
	"github.com/xkilldash9x/webpilot/internal/observability"
)

// Runner is one of the agent loops.
type Runner interface {
	Run(ctx context.Context, instruction string) (*agent.Result, error)
}

// Closer is any component holding resources released at shutdown.
type Closer interface {
	Close() error
}

// closerFunc adapts a plain func to Closer.
type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// Components holds everything a run needs and owns its lifecycle.
type Components struct {
	Driver     schemas.BrowserDriver
	Dispatcher *dispatch.Dispatcher
	Window     *conversation.Window
	Runner     Runner
	// Store is nil when archiving is disabled.
	Store schemas.TranscriptStore

	Mode      string
	Model     string
	ExportDir string

	browser  Closer
	model    Closer
	database Closer
	logger   *zap.Logger
}

// Shutdown releases the model client and the browser concurrently, then the
// database pool. It is safe to call on partially built components.
func (c *Components) Shutdown() {
	logger := c.log()
	logger.Debug("Beginning components shutdown sequence.")

	// Bound shutdown even if the caller's context is gone.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	g, _ := errgroup.WithContext(ctx)
	for name, closer := range map[string]Closer{"model": c.model, "browser": c.browser} {
		if closer == nil {
			continue
		}
		g.Go(func() error {
			if err := closer.Close(); err != nil {
				logger.Warn("Error during component shutdown.", zap.String("component", name), zap.Error(err))
				return err
			}
			logger.Debug("Component shut down.", zap.String("component", name))
			return nil
		})
	}
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("Timed out waiting for components to shut down.")
	}

	if c.database != nil {
		_ = c.database.Close()
		logger.Debug("Database connection pool closed.")
	}

	logger.Info("All components shut down.")
}

func (c *Components) log() *zap.Logger {
	if c.logger == nil {
		return observability.GetLogger()
	}
	return c.logger
}
