// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/internal/action"
	"github.com/xkilldash9x/webpilot/internal/agent"
	"github.com/xkilldash9x/webpilot/internal/config"
	"github.com/xkilldash9x/webpilot/internal/conversation"
	"github.com/xkilldash9x/webpilot/internal/dispatch"
	"github.com/xkilldash9x/webpilot/internal/dsl"
)

// ComponentFactory creates the set of components needed for a run.
type ComponentFactory interface {
	Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error)
}

type concreteFactory struct {
	deps Dependencies
}

// NewComponentFactory creates a production factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{deps: DefaultDependencies()}
}

// NewComponentFactoryWith creates a factory over custom constructors.
func NewComponentFactoryWith(deps Dependencies) ComponentFactory {
	return &concreteFactory{deps: deps}
}

// Create wires the browser, dispatcher, window, model and loop selected by
// the agent mode. Partially built components are shut down on failure.
func (f *concreteFactory) Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error) {
	agentCfg := cfg.Agent()
	browserCfg := cfg.Browser()

	vocabulary, err := action.ParseVocabulary(agentCfg.Vocabulary)
	if err != nil {
		return nil, err
	}
	if agentCfg.Mode != config.ModeDSL && agentCfg.Mode != config.ModeTools {
		return nil, fmt.Errorf("unknown agent mode %q", agentCfg.Mode)
	}

	components := &Components{
		Mode:      string(agentCfg.Mode),
		Model:     cfg.LLM().Model,
		ExportDir: cfg.Archive().ExportDir,
		logger:    logger,
	}

	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			components.Shutdown()
		}
	}()

	// 1. Archive first so a bad database URL fails before a browser starts.
	if cfg.Archive().Enabled {
		archive, closer, err := f.deps.NewArchive(ctx, cfg.Archive(), logger)
		if err != nil {
			initializationErr = fmt.Errorf("failed to initialize transcript archive: %w", err)
			return nil, initializationErr
		}
		components.Store = archive
		components.database = closer
	}

	// 2. Browser
	driver, closer, err := f.deps.NewBrowser(ctx, browserCfg, logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to start browser: %w", err)
		return nil, initializationErr
	}
	components.Driver = driver
	components.browser = closer
	logger.Debug("Browser initialized.")

	// 3. Dispatcher and window
	components.Dispatcher = dispatch.NewDispatcher(driver, logger, dispatch.Options{
		TypingGroupSize: agentCfg.TypingGroupSize,
		TypingRate:      agentCfg.TypingRate,
		TimeUnit:        agentCfg.TimeUnit,
		SettleDelay:     browserCfg.SettleDelay,
		UseCursor:       browserCfg.UseCursor,
	})
	components.Window = conversation.NewWindow(agentCfg.ImageRetention)
	opts := agent.Options{StrictParse: agentCfg.StrictParse, MaxTurns: agentCfg.MaxTurns}

	// 4. Model and loop
	switch agentCfg.Mode {
	case config.ModeDSL:
		model, err := f.deps.NewTextModel(ctx, cfg.LLM(), logger)
		if err != nil {
			initializationErr = fmt.Errorf("failed to initialize text model: %w", err)
			return nil, initializationErr
		}
		components.model = model
		converter := dsl.NewConverter(action.NewScaler(components.Dispatcher), agentCfg.DSLScrollStep, agentCfg.DSLWaitUnits)
		components.Runner = agent.NewSamplingLoop(model, components.Dispatcher, converter, components.Window, logger, opts)

	case config.ModeTools:
		model, err := f.deps.NewToolModel(ctx, cfg.LLM(), logger)
		if err != nil {
			initializationErr = fmt.Errorf("failed to initialize tool model: %w", err)
			return nil, initializationErr
		}
		components.model = model
		toolbox := dispatch.NewToolbox(action.NewValidator(vocabulary, agentCfg.ScrollMultiplier), components.Dispatcher, logger)
		components.Runner = agent.NewToolLoop(model, toolbox, components.Window, logger, opts)
	}

	logger.Info("Components initialized.",
		zap.String("mode", components.Mode),
		zap.String("vocabulary", string(vocabulary)),
		zap.String("model", components.Model),
		zap.Bool("archive", components.Store != nil))
	return components, nil
}
