package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Agent() config.AgentConfig {
	args := m.Called()
	return args.Get(0).(config.AgentConfig)
}

func (m *MockConfig) LLM() config.LLMConfig {
	args := m.Called()
	return args.Get(0).(config.LLMConfig)
}

func (m *MockConfig) Archive() config.ArchiveConfig {
	args := m.Called()
	return args.Get(0).(config.ArchiveConfig)
}

// --- Setters ---

func (m *MockConfig) SetBrowserHeadless(b bool)   { m.Called(b) }
func (m *MockConfig) SetBrowserStartURL(u string) { m.Called(u) }
func (m *MockConfig) SetAgentMode(mode config.Mode) {
	m.Called(mode)
}
func (m *MockConfig) SetAgentVocabulary(v string) { m.Called(v) }
func (m *MockConfig) SetAgentMaxTurns(n int)      { m.Called(n) }
func (m *MockConfig) SetLLMModel(model string)    { m.Called(model) }

// -- Browser Driver Mock --

// MockBrowserDriver mocks schemas.BrowserDriver.
type MockBrowserDriver struct {
	mock.Mock
}

func (m *MockBrowserDriver) Viewport(ctx context.Context) (schemas.Viewport, error) {
	args := m.Called(ctx)
	return args.Get(0).(schemas.Viewport), args.Error(1)
}

func (m *MockBrowserDriver) MoveMouse(ctx context.Context, to schemas.Point) error {
	return m.Called(ctx, to).Error(0)
}

func (m *MockBrowserDriver) MouseDown(ctx context.Context, at schemas.Point, button schemas.MouseButton, clickCount int) error {
	return m.Called(ctx, at, button, clickCount).Error(0)
}

func (m *MockBrowserDriver) MouseUp(ctx context.Context, at schemas.Point, button schemas.MouseButton, clickCount int) error {
	return m.Called(ctx, at, button, clickCount).Error(0)
}

func (m *MockBrowserDriver) Click(ctx context.Context, at schemas.Point, button schemas.MouseButton, count int) error {
	return m.Called(ctx, at, button, count).Error(0)
}

func (m *MockBrowserDriver) Wheel(ctx context.Context, at schemas.Point, deltaX, deltaY int) error {
	return m.Called(ctx, at, deltaX, deltaY).Error(0)
}

func (m *MockBrowserDriver) KeyDown(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockBrowserDriver) KeyUp(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockBrowserDriver) PressKey(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockBrowserDriver) TypeText(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func (m *MockBrowserDriver) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var png []byte
	if v := args.Get(0); v != nil {
		png = v.([]byte)
	}
	return png, args.Error(1)
}

func (m *MockBrowserDriver) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockBrowserDriver) NavigateBack(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// -- Model Mocks --

// MockTextModel mocks schemas.TextModel.
type MockTextModel struct {
	mock.Mock
}

func (m *MockTextModel) Complete(ctx context.Context, entries []schemas.Entry) (string, error) {
	args := m.Called(ctx, entries)
	return args.String(0), args.Error(1)
}

func (m *MockTextModel) Close() error {
	return m.Called().Error(0)
}

// MockToolModel mocks schemas.ToolModel.
type MockToolModel struct {
	mock.Mock
}

func (m *MockToolModel) Next(ctx context.Context, req schemas.ToolRequest) (schemas.Entry, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(schemas.Entry), args.Error(1)
}

func (m *MockToolModel) Close() error {
	return m.Called().Error(0)
}

// -- Archive Mock --

// MockTranscriptStore mocks schemas.TranscriptStore.
type MockTranscriptStore struct {
	mock.Mock
}

func (m *MockTranscriptStore) SaveTranscript(ctx context.Context, run schemas.RunRecord, entries []schemas.Entry) error {
	return m.Called(ctx, run, entries).Error(0)
}

func (m *MockTranscriptStore) GetTranscript(ctx context.Context, runID string) ([]schemas.Entry, error) {
	args := m.Called(ctx, runID)
	var entries []schemas.Entry
	if v := args.Get(0); v != nil {
		entries = v.([]schemas.Entry)
	}
	return entries, args.Error(1)
}

var (
	_ config.Interface        = (*MockConfig)(nil)
	_ schemas.BrowserDriver   = (*MockBrowserDriver)(nil)
	_ schemas.TextModel       = (*MockTextModel)(nil)
	_ schemas.ToolModel       = (*MockToolModel)(nil)
	_ schemas.TranscriptStore = (*MockTranscriptStore)(nil)
)
