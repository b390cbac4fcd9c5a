// File: internal/service/initializers.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/browser"
	"github.com/xkilldash9x/webpilot/internal/config"
	"github.com/xkilldash9x/webpilot/internal/llmclient"
	"github.com/xkilldash9x/webpilot/internal/store"
)

// Dependencies are the constructors the factory uses for components that
// talk to the outside world. Tests replace them with fakes.
type Dependencies struct {
	NewBrowser   func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (schemas.BrowserDriver, Closer, error)
	NewTextModel func(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.TextModel, error)
	NewToolModel func(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.ToolModel, error)
	NewArchive   func(ctx context.Context, cfg config.ArchiveConfig, logger *zap.Logger) (schemas.TranscriptStore, Closer, error)
}

// DefaultDependencies returns the production constructors.
func DefaultDependencies() Dependencies {
	return Dependencies{
		NewBrowser:   InitializeBrowser,
		NewTextModel: llmclient.NewTextModel,
		NewToolModel: llmclient.NewToolModel,
		NewArchive:   InitializeArchive,
	}
}

// InitializeBrowser launches a browser session and returns its page driver.
func InitializeBrowser(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (schemas.BrowserDriver, Closer, error) {
	session, err := browser.NewSession(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return session.Driver(), closerFunc(session.Close), nil
}

// InitializeArchive connects to PostgreSQL and prepares the transcript tables.
func InitializeArchive(ctx context.Context, cfg config.ArchiveConfig, logger *zap.Logger) (schemas.TranscriptStore, Closer, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (hint: check WEBPILOT_DATABASE_URL)")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse PGX pool config: %w", err)
	}
	// A run writes one transcript; a small pool is plenty.
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create PGX connection pool: %w", err)
	}

	s, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Debug("Transcript archive initialized.")
	return s, closerFunc(pool.Close), nil
}
