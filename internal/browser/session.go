// Package browser owns the Chrome process and exposes the page to the dispatcher
// through a CDP-backed driver.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/internal/config"
)

// Session is one browser process with a single tab.
type Session struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
	cfg         config.BrowserConfig
	driver      *Driver

	closeOnce sync.Once
}

// NewSession launches the browser, applies the viewport and opens the start URL if one is configured.
func NewSession(parent context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	id := uuid.New().String()
	log := logger.Named("browser").With(zap.String("session_id", id))

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, DefaultAllocatorOptions(cfg)...)
	tabCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	s := &Session{
		id:          id,
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      log,
		cfg:         cfg,
	}
	s.driver = NewDriver(log, s.runActions, cfg.ActionTimeout, cfg.NavigationTimeout)

	if err := s.initialize(); err != nil {
		s.Close()
		return nil, err
	}
	log.Info("Browser session started.",
		zap.Int("viewport_width", cfg.ViewportWidth),
		zap.Int("viewport_height", cfg.ViewportHeight),
		zap.Bool("headless", cfg.Headless))
	return s, nil
}

func (s *Session) initialize() error {
	// The first Run allocates the browser and must use the tab context itself;
	// a derived context would tear the browser down when it is canceled.
	var tasks chromedp.Tasks
	if s.cfg.ViewportWidth > 0 && s.cfg.ViewportHeight > 0 {
		tasks = append(tasks, emulation.SetDeviceMetricsOverride(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight), 1, false))
	}
	if err := chromedp.Run(s.ctx, tasks...); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	if s.cfg.StartURL != "" {
		if err := s.driver.Navigate(s.ctx, s.cfg.StartURL); err != nil {
			return fmt.Errorf("failed to open start URL: %w", err)
		}
	}
	return nil
}

// runActions executes chromedp actions bounded by both the session lifetime and ctx.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string {
	return s.id
}

// Driver returns the page driver.
func (s *Session) Driver() *Driver {
	return s.driver
}

// Close terminates the tab and the browser process. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session.")
		s.cancel()
		s.allocCancel()
	})
}
