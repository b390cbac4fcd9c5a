// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/internal/agent"
	"github.com/xkilldash9x/webpilot/internal/config"
	"github.com/xkilldash9x/webpilot/internal/conversation"
	"github.com/xkilldash9x/webpilot/internal/observability"
	"github.com/xkilldash9x/webpilot/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// cfgFile is the config path executeCommand passes to each fresh command tree.
var cfgFile string

// resetForTest restores package state and points the config at an empty file
// so a developer's own config cannot leak into the tests.
func resetForTest(t *testing.T) {
	t.Helper()

	cfgFile = writeConfig(t, "")
	componentFactory = service.NewComponentFactory
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})

	t.Cleanup(func() {
		cfgFile = ""
		componentFactory = service.NewComponentFactory
	})
}

// writeConfig writes a YAML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// executeCommand runs a fresh command tree and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// fakeFactory hands out components wrapped around a canned runner.
type fakeFactory struct {
	run       func(ctx context.Context, instruction string) (*agent.Result, error)
	err       error
	exportDir string
	gotCfg    config.Interface
}

func (f *fakeFactory) Create(_ context.Context, cfg config.Interface, _ *zap.Logger) (*service.Components, error) {
	f.gotCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &service.Components{
		Runner:    runnerFunc(f.run),
		Window:    conversation.NewWindow(cfg.Agent().ImageRetention),
		ExportDir: f.exportDir,
	}, nil
}

func (f *fakeFactory) install() {
	componentFactory = func() service.ComponentFactory { return f }
}

type runnerFunc func(ctx context.Context, instruction string) (*agent.Result, error)

func (r runnerFunc) Run(ctx context.Context, instruction string) (*agent.Result, error) {
	return r(ctx, instruction)
}

