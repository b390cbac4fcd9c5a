package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
	"github.com/xkilldash9x/webpilot/internal/conversation"
	"github.com/xkilldash9x/webpilot/internal/dsl"
)

// Executor runs actions and captures observations. *dispatch.Dispatcher satisfies it.
type Executor interface {
	Execute(ctx context.Context, a action.Action) (schemas.ToolResult, error)
	Screenshot(ctx context.Context) ([]byte, error)
}

// Options tunes a loop.
type Options struct {
	// StrictParse makes malformed action lines fatal instead of reporting them back to the model.
	StrictParse bool
	// MaxTurns bounds model round-trips. Zero means unlimited.
	MaxTurns int
}

// SamplingLoop drives a text model that answers with "Action: name(args)" lines.
// Each iteration costs exactly one model round-trip and appends one assistant
// entry and one user entry carrying a fresh screenshot.
type SamplingLoop struct {
	model     schemas.TextModel
	executor  Executor
	converter *dsl.Converter
	window    *conversation.Window
	logger    *zap.Logger
	opts      Options
	state     LoopState
}

// NewSamplingLoop creates a loop over the given collaborators.
func NewSamplingLoop(model schemas.TextModel, executor Executor, converter *dsl.Converter, window *conversation.Window, logger *zap.Logger, opts Options) *SamplingLoop {
	return &SamplingLoop{
		model:     model,
		executor:  executor,
		converter: converter,
		window:    window,
		logger:    logger.Named("sampling_loop"),
		opts:      opts,
		state:     StateInit,
	}
}

// State returns the current loop phase.
func (l *SamplingLoop) State() LoopState { return l.state }

// Run executes the loop until a terminal action, the turn limit, or an error.
// On error the returned Result still carries the transcript so far.
func (l *SamplingLoop) Run(ctx context.Context, instruction string) (*Result, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyInstruction
	}

	l.state = StateInit
	shot, err := l.executor.Screenshot(ctx)
	if err != nil {
		return l.fail(fmt.Errorf("failed to capture initial screenshot: %w", err), 0)
	}
	l.window.Append(schemas.Entry{
		Role:   schemas.RoleUser,
		Blocks: []schemas.ContentBlock{schemas.TextBlock(DSLPrompt(instruction)), schemas.ImageBlock(shot)},
	})

	turns := 0
	for {
		if l.opts.MaxTurns > 0 && turns >= l.opts.MaxTurns {
			l.logger.Warn("Turn limit reached.", zap.Int("max_turns", l.opts.MaxTurns))
			return l.done(OutcomeTurnLimit, "", turns), nil
		}

		l.state = StateAwaitingModel
		text, err := l.model.Complete(ctx, l.window.Projection())
		if err != nil {
			return l.fail(fmt.Errorf("model request failed on turn %d: %w", turns+1, err), turns)
		}
		turns++
		l.window.Append(schemas.Entry{
			Role:   schemas.RoleAssistant,
			Blocks: []schemas.ContentBlock{schemas.TextBlock(text)},
		})

		l.state = StateDispatching
		act, res, diagnostic, err := l.dispatch(ctx, text)
		if err != nil {
			return l.fail(err, turns)
		}

		var blocks []schemas.ContentBlock
		if diagnostic != "" {
			blocks = append(blocks, schemas.TextBlock(diagnostic))
		}
		img := res.Image
		if len(img) == 0 {
			if img, err = l.executor.Screenshot(ctx); err != nil {
				return l.fail(fmt.Errorf("failed to capture screenshot: %w", err), turns)
			}
		}
		blocks = append(blocks, schemas.ImageBlock(img))
		l.window.Append(schemas.Entry{Role: schemas.RoleUser, Blocks: blocks})

		if act != nil && act.Terminal() {
			outcome := OutcomeFinished
			if act.Kind() == action.KindCallUser {
				outcome = OutcomeCallUser
			}
			l.logger.Info("Loop terminated by model.",
				zap.String("outcome", string(outcome)),
				zap.Int("turns", turns))
			return l.done(outcome, res.Output, turns), nil
		}
	}
}

// dispatch parses and executes one model message. Malformed or missing action
// lines yield a diagnostic for the model and a nil action unless StrictParse
// is set. Driver failures are always returned as errors.
func (l *SamplingLoop) dispatch(ctx context.Context, text string) (action.Action, schemas.ToolResult, string, error) {
	sig, err := dsl.ParseMessage(text)
	if errors.Is(err, dsl.ErrNoAction) {
		l.logger.Warn("Model reply has no action line; skipping turn.")
		return nil, schemas.ToolResult{}, "No action was found in your reply. Answer with a line of the form `Action: name(args)`.", nil
	}
	if err == nil {
		var act action.Action
		act, err = l.converter.ToAction(ctx, sig)
		if err == nil {
			res, execErr := l.executor.Execute(ctx, act)
			if execErr != nil {
				return nil, schemas.ToolResult{}, "", fmt.Errorf("failed to execute %s: %w", sig.Name, execErr)
			}
			return act, res, "", nil
		}
	}

	if l.opts.StrictParse {
		return nil, schemas.ToolResult{}, "", err
	}
	l.logger.Warn("Could not turn model reply into an action; reporting back.",
		zap.String("code", string(action.CodeOf(err))),
		zap.Error(err))
	return nil, schemas.ToolResult{}, fmt.Sprintf("Your last action could not be executed: %v", err), nil
}

func (l *SamplingLoop) done(outcome Outcome, content string, turns int) *Result {
	l.state = StateTerminated
	return &Result{
		Outcome:    outcome,
		Content:    content,
		Turns:      turns,
		Transcript: l.window.Transcript(),
	}
}

func (l *SamplingLoop) fail(err error, turns int) (*Result, error) {
	l.state = StateTerminated
	return &Result{Outcome: OutcomeFailed, Turns: turns, Transcript: l.window.Transcript()}, err
}
