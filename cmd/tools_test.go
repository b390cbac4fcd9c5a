// File: cmd/tools_test.go
package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

func decodeTools(t *testing.T, data string) []toolJSON {
	t.Helper()
	var tools []toolJSON
	require.NoError(t, json.Unmarshal([]byte(data), &tools))
	return tools
}

func TestPrintTools(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printTools(&out, "computer_20250124", schemas.Viewport{Width: 1024, Height: 768}))

	tools := decodeTools(t, out.String())
	require.Len(t, tools, 3)
	assert.Equal(t, "computer", tools[0].Name)
	assert.Contains(t, tools[0].Description, "1024x768")
	assert.Equal(t, "object", tools[0].InputSchema["type"])
	assert.Equal(t, "set_url", tools[1].Name)
	assert.Equal(t, "previous_page", tools[2].Name)
}

func TestPrintTools_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, printTools(&out, "v9", schemas.Viewport{Width: 10, Height: 10}), "unknown action vocabulary")
	assert.ErrorContains(t, printTools(&out, "v1", schemas.Viewport{}), "invalid viewport")
}

func TestToolsCmd_UsesConfiguredViewport(t *testing.T) {
	resetForTest(t)
	cfgFile = writeConfig(t, "browser:\n  viewport_width: 640\n  viewport_height: 480\n")

	out, err := executeCommand(t, "tools")
	require.NoError(t, err)
	assert.Contains(t, decodeTools(t, out)[0].Description, "640x480")

	out, err = executeCommand(t, "tools", "--width", "800", "--vocabulary", "v2")
	require.NoError(t, err)
	assert.Contains(t, decodeTools(t, out)[0].Description, "800x480")
}
