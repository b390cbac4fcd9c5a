package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/conversation"
)

// ToolRunner advertises and runs tools. *dispatch.Toolbox satisfies it.
type ToolRunner interface {
	Descriptors(ctx context.Context) ([]schemas.ToolDescriptor, error)
	Run(ctx context.Context, name string, input json.RawMessage, toolUseID string) schemas.ContentBlock
}

// ToolLoop drives a model that answers with structured tool calls. It stops
// when the model replies without calling a tool.
type ToolLoop struct {
	model  schemas.ToolModel
	tools  ToolRunner
	window *conversation.Window
	logger *zap.Logger
	opts   Options
	system string
	state  LoopState
}

// NewToolLoop creates a tool loop using ToolSystemPrompt.
func NewToolLoop(model schemas.ToolModel, tools ToolRunner, window *conversation.Window, logger *zap.Logger, opts Options) *ToolLoop {
	return &ToolLoop{
		model:  model,
		tools:  tools,
		window: window,
		logger: logger.Named("tool_loop"),
		opts:   opts,
		system: ToolSystemPrompt,
		state:  StateInit,
	}
}

// State returns the current loop phase.
func (l *ToolLoop) State() LoopState { return l.state }

// Run seeds the transcript with the instruction and loops until the model
// stops calling tools.
func (l *ToolLoop) Run(ctx context.Context, instruction string) (*Result, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyInstruction
	}

	l.state = StateInit
	l.window.Append(schemas.Entry{
		Role:   schemas.RoleUser,
		Blocks: []schemas.ContentBlock{schemas.TextBlock(instruction)},
	})

	turns := 0
	for {
		if l.opts.MaxTurns > 0 && turns >= l.opts.MaxTurns {
			l.logger.Warn("Turn limit reached.", zap.Int("max_turns", l.opts.MaxTurns))
			return l.done(OutcomeTurnLimit, "", turns), nil
		}

		l.state = StateAwaitingModel
		descriptors, err := l.tools.Descriptors(ctx)
		if err != nil {
			return l.fail(err, turns)
		}
		reply, err := l.model.Next(ctx, schemas.ToolRequest{
			System:  l.system,
			Entries: l.window.Projection(),
			Tools:   descriptors,
		})
		if err != nil {
			return l.fail(fmt.Errorf("model request failed on turn %d: %w", turns+1, err), turns)
		}
		turns++
		reply.Role = schemas.RoleAssistant
		reply.LinkID = ""
		assignToolUseIDs(&reply)
		l.window.Append(reply)

		uses := reply.ToolUses()
		if len(uses) == 0 {
			l.logger.Info("Model replied without a tool call; loop done.", zap.Int("turns", turns))
			return l.done(OutcomeFinished, lastText(reply), turns), nil
		}

		l.state = StateDispatching
		results := make([]schemas.ContentBlock, 0, len(uses))
		for _, use := range uses {
			block := l.tools.Run(ctx, use.ToolName, use.ToolInput, use.ToolUseID)
			results = append(results, block)
			l.trace(use, block)
		}
		l.window.Append(schemas.Entry{Role: schemas.RoleUser, Blocks: results})

		if err := ctx.Err(); err != nil {
			return l.fail(err, turns)
		}
	}
}

// trace records an export-only entry describing one tool invocation.
func (l *ToolLoop) trace(use, result schemas.ContentBlock) {
	status := "ok"
	if result.IsError {
		status = "error"
	}
	l.window.Append(schemas.Entry{
		Role:   schemas.RoleUser,
		LinkID: use.ToolUseID,
		Blocks: []schemas.ContentBlock{
			schemas.TextBlock(fmt.Sprintf("%s %s -> %s", use.ToolName, string(use.ToolInput), status)),
		},
	})
	if result.IsError {
		l.logger.Debug("Tool call returned an error result.",
			zap.String("tool", use.ToolName),
			zap.String("tool_use_id", use.ToolUseID))
	}
}

// assignToolUseIDs gives every tool_use block without an ID a fresh one so
// its result can be linked back.
func assignToolUseIDs(e *schemas.Entry) {
	for i := range e.Blocks {
		if e.Blocks[i].Type == schemas.BlockToolUse && e.Blocks[i].ToolUseID == "" {
			e.Blocks[i].ToolUseID = "toolu_" + uuid.NewString()
		}
	}
}

func lastText(e schemas.Entry) string {
	for i := len(e.Blocks) - 1; i >= 0; i-- {
		if e.Blocks[i].Type == schemas.BlockText {
			return e.Blocks[i].Text
		}
	}
	return ""
}

func (l *ToolLoop) done(outcome Outcome, content string, turns int) *Result {
	l.state = StateTerminated
	return &Result{
		Outcome:    outcome,
		Content:    content,
		Turns:      turns,
		Transcript: l.window.Transcript(),
	}
}

func (l *ToolLoop) fail(err error, turns int) (*Result, error) {
	l.state = StateTerminated
	return &Result{Outcome: OutcomeFailed, Turns: turns, Transcript: l.window.Transcript()}, err
}
