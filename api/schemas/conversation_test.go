package schemas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

func TestToolResult_ToBlock(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("success with text and image", func(t *testing.T) {
		block := schemas.ToolResult{Output: "X=1,Y=2", Image: png}.ToBlock("tu_1")
		assert.Equal(t, schemas.BlockToolResult, block.Type)
		assert.Equal(t, "tu_1", block.ToolUseID)
		assert.False(t, block.IsError)
		require.Len(t, block.Content, 2)
		assert.Equal(t, schemas.BlockText, block.Content[0].Type)
		assert.Equal(t, schemas.BlockImage, block.Content[1].Type)
		assert.Equal(t, schemas.MediaTypePNG, block.Content[1].Image.MediaType)
	})

	t.Run("empty success", func(t *testing.T) {
		block := schemas.ToolResult{}.ToBlock("tu_2")
		assert.False(t, block.IsError)
		assert.Empty(t, block.Content)
	})

	t.Run("error drops output and image", func(t *testing.T) {
		block := schemas.ToolResult{Error: "boom", Output: "ignored", Image: png}.ToBlock("tu_3")
		assert.True(t, block.IsError)
		require.Len(t, block.Content, 1)
		assert.Equal(t, "boom", block.Content[0].Text)
	})
}

func TestEntry_ImageCount(t *testing.T) {
	entry := schemas.Entry{
		Role: schemas.RoleUser,
		Blocks: []schemas.ContentBlock{
			schemas.TextBlock("hi"),
			schemas.ImageBlock([]byte{1}),
			schemas.ToolResult{Image: []byte{2}}.ToBlock("a"),
		},
	}
	assert.Equal(t, 2, entry.ImageCount())
}

func TestToolDescriptor_InputSchema(t *testing.T) {
	d := schemas.ToolDescriptor{
		Name: "set_url",
		Params: []schemas.ParamSpec{
			{Name: "url", Type: schemas.ParamString, Required: true},
			{Name: "coordinate", Type: schemas.ParamArray, Items: schemas.ParamInteger, MinItems: 2, MaxItems: 2},
		},
	}
	schema := d.InputSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"url"}, schema["required"])

	props := schema["properties"].(map[string]any)
	coord := props["coordinate"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "integer"}, coord["items"])
	assert.Equal(t, 2, coord["minItems"])
}

func TestModifierForKey(t *testing.T) {
	assert.Equal(t, schemas.ModCtrl, schemas.ModifierForKey("Control"))
	assert.Equal(t, schemas.ModShift, schemas.ModifierForKey("Shift"))
	assert.Equal(t, schemas.ModNone, schemas.ModifierForKey("KeyA"))
}
