package agent_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
	"github.com/xkilldash9x/webpilot/internal/dsl"
)

type staticViewport struct{ vp schemas.Viewport }

func (s staticViewport) Viewport(ctx context.Context) (schemas.Viewport, error) { return s.vp, nil }

func newConverter() *dsl.Converter {
	return dsl.NewConverter(action.NewScaler(staticViewport{schemas.Viewport{Width: 1000, Height: 500}}), 0, 0)
}

// recordingExecutor stands in for the dispatcher. Every screenshot carries a
// one-byte payload counting captures, so tests can tell frames apart.
type recordingExecutor struct {
	mu       sync.Mutex
	executed []action.Action
	shots    int
	execErr  error
	shotErr  error
}

func (r *recordingExecutor) Execute(ctx context.Context, a action.Action) (schemas.ToolResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.execErr != nil {
		return schemas.ToolResult{}, r.execErr
	}
	r.executed = append(r.executed, a)
	if f, ok := a.(action.Finished); ok {
		return schemas.ToolResult{Output: f.Content}, nil
	}
	return schemas.ToolResult{}, nil
}

func (r *recordingExecutor) Screenshot(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shotErr != nil {
		return nil, r.shotErr
	}
	r.shots++
	return []byte{byte(r.shots)}, nil
}

func (r *recordingExecutor) Executed() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Action(nil), r.executed...)
}

// scriptedTextModel answers with canned replies in order and records the
// transcript it was shown on each call.
type scriptedTextModel struct {
	replies []string
	seen    [][]schemas.Entry
	err     error
}

func (s *scriptedTextModel) Complete(ctx context.Context, entries []schemas.Entry) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.seen = append(s.seen, entries)
	i := len(s.seen) - 1
	if i >= len(s.replies) {
		return "Thought: nothing left\nAction: call_user()", nil
	}
	return s.replies[i], nil
}

func (s *scriptedTextModel) Close() error { return nil }

// fakeTools is a ToolRunner that records calls and returns canned blocks.
type fakeTools struct {
	descriptors []schemas.ToolDescriptor
	calls       []string
	result      func(name string, input json.RawMessage) schemas.ToolResult
}

func (f *fakeTools) Descriptors(ctx context.Context) ([]schemas.ToolDescriptor, error) {
	return f.descriptors, nil
}

func (f *fakeTools) Run(ctx context.Context, name string, input json.RawMessage, id string) schemas.ContentBlock {
	f.calls = append(f.calls, name+":"+id)
	res := schemas.ToolResult{}
	if f.result != nil {
		res = f.result(name, input)
	}
	return res.ToBlock(id)
}
