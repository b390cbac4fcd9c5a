package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
)

// Toolbox exposes the computer, set_url and previous_page tools to a
// tool-calling model and runs the calls it makes.
type Toolbox struct {
	validator  *action.Validator
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewToolbox creates a toolbox over a validator and dispatcher.
func NewToolbox(validator *action.Validator, dispatcher *Dispatcher, logger *zap.Logger) *Toolbox {
	return &Toolbox{
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger.Named("toolbox"),
	}
}

// Descriptors advertises the tools for the current viewport size.
func (t *Toolbox) Descriptors(ctx context.Context) ([]schemas.ToolDescriptor, error) {
	vp, err := t.dispatcher.Viewport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read viewport: %w", err)
	}
	return action.Tools(t.validator.Vocabulary(), vp), nil
}

// Run validates and executes one tool call. Failures of any kind come back as
// an error-flagged tool_result block for the model to read; Run never fails.
func (t *Toolbox) Run(ctx context.Context, name string, input json.RawMessage, toolUseID string) schemas.ContentBlock {
	return t.Result(ctx, name, input).ToBlock(toolUseID)
}

// Result is Run without the wire conversion.
func (t *Toolbox) Result(ctx context.Context, name string, input json.RawMessage) schemas.ToolResult {
	a, err := t.validator.ValidateTool(name, input)
	if err != nil {
		t.logger.Warn("Rejected tool call.",
			zap.String("tool", name),
			zap.String("code", string(action.CodeOf(err))),
			zap.Error(err))
		return schemas.ErrorResult(err.Error())
	}

	res, err := t.dispatcher.Execute(ctx, a)
	if err != nil {
		t.logger.Warn("Tool call failed.",
			zap.String("tool", name),
			zap.String("kind", string(a.Kind())),
			zap.Error(err))
		return schemas.ErrorResult(err.Error())
	}
	return res
}
