package llmclient

import (
	"encoding/base64"
	"strings"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

// part is one provider-neutral piece of a text-model message.
type part struct {
	text  string
	image *schemas.Image
}

// flatten reduces an entry to the text and image parts a text model understands.
// Tool result content is inlined; tool_use blocks carry nothing a text model can read.
func flatten(blocks []schemas.ContentBlock) []part {
	var parts []part
	for _, b := range blocks {
		switch b.Type {
		case schemas.BlockText:
			if b.Text != "" {
				parts = append(parts, part{text: b.Text})
			}
		case schemas.BlockImage:
			if b.Image != nil && len(b.Image.Data) > 0 {
				parts = append(parts, part{image: b.Image})
			}
		case schemas.BlockToolResult:
			parts = append(parts, flatten(b.Content)...)
		}
	}
	return parts
}

// joinText concatenates the text parts, ignoring images.
func joinText(parts []part) string {
	var sb strings.Builder
	for _, p := range parts {
		if p.image != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.text)
	}
	return sb.String()
}

// dataURL encodes an image as a base64 data URL.
func dataURL(img *schemas.Image) string {
	return "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
