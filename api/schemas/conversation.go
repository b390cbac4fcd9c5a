package schemas

import "encoding/json"

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType identifies the kind of a content block.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockImage      BlockType = "image"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// MediaTypePNG is the only image media type produced by the screenshot pipeline.
const MediaTypePNG = "image/png"

// Image is an encoded image attachment. Data holds raw bytes; it is base64 encoded on the wire.
type Image struct {
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}

// ContentBlock is one ordered element of a conversation entry.
type ContentBlock struct {
	Type BlockType `json:"type"`

	Text  string `json:"text,omitempty"`
	Image *Image `json:"image,omitempty"`

	// Populated for tool_use and tool_result blocks.
	ToolUseID string          `json:"tool_use_id,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	Content   []ContentBlock  `json:"content,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ImageBlock builds a PNG image content block.
func ImageBlock(png []byte) ContentBlock {
	return ContentBlock{Type: BlockImage, Image: &Image{MediaType: MediaTypePNG, Data: png}}
}

// Entry is one turn in the transcript.
type Entry struct {
	Role   Role           `json:"role"`
	Blocks []ContentBlock `json:"blocks"`
	// LinkID marks an export-only entry tied to a tool invocation. Such entries are
	// never sent to the model.
	LinkID string `json:"link_id,omitempty"`
}

// ImageCount returns the number of image blocks in the entry, including those nested in tool results.
func (e Entry) ImageCount() int {
	n := 0
	for _, b := range e.Blocks {
		if b.Type == BlockImage {
			n++
		}
		for _, c := range b.Content {
			if c.Type == BlockImage {
				n++
			}
		}
	}
	return n
}

// ToolUses returns the tool_use blocks of the entry in order.
func (e Entry) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, b := range e.Blocks {
		if b.Type == BlockToolUse {
			uses = append(uses, b)
		}
	}
	return uses
}

// ToolResult is the outcome of dispatching one action.
// Error is mutually exclusive with Output and Image.
type ToolResult struct {
	Output string
	Error  string
	Image  []byte // PNG
}

// Failed reports whether the result carries an error.
func (r ToolResult) Failed() bool {
	return r.Error != ""
}

// ErrorResult builds a failed result.
func ErrorResult(msg string) ToolResult {
	return ToolResult{Error: msg}
}

// ToBlock converts the result into its wire shape, linked to the given tool use.
// Success yields at most one text block followed by at most one PNG image block.
// Failure yields a single error text block and drops any output or image.
func (r ToolResult) ToBlock(toolUseID string) ContentBlock {
	block := ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID}
	if r.Failed() {
		block.IsError = true
		block.Content = []ContentBlock{TextBlock(r.Error)}
		return block
	}
	if r.Output != "" {
		block.Content = append(block.Content, TextBlock(r.Output))
	}
	if len(r.Image) > 0 {
		block.Content = append(block.Content, ImageBlock(r.Image))
	}
	return block
}
