// Package screenshot post-processes captured frames: scaling to the logical viewport
// and stamping a cursor glyph where the pointer is.
package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

// cursorGlyph is a standard arrow pointer. 'X' is outline, '.' is fill.
var cursorGlyph = []string{
	"X",
	"XX",
	"X.X",
	"X..X",
	"X...X",
	"X....X",
	"X.....X",
	"X......X",
	"X.......X",
	"X........X",
	"X.........X",
	"X......XXXXX",
	"X...X..X",
	"X..XX..X",
	"X.X  X..X",
	"XX   X..X",
	"X     X..X",
	"      X..X",
	"       XX",
}

var (
	outline = color.RGBA{A: 0xff}
	fill    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Options controls frame processing.
type Options struct {
	// Viewport is the logical size the frame is scaled to. A zero viewport keeps the captured size.
	Viewport schemas.Viewport
	// Cursor, when non-nil, is where the pointer glyph's hotspot is drawn.
	Cursor *schemas.Point
}

// Process decodes a PNG frame, applies the options and re-encodes it as PNG.
func Process(raw []byte, opts Options) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	dst := Resize(src, opts.Viewport)
	if opts.Cursor != nil {
		DrawCursor(dst, *opts.Cursor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Resize scales src to the viewport size. The result is always a fresh RGBA image.
func Resize(src image.Image, vp schemas.Viewport) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if vp.Valid() {
		w, h = vp.Width, vp.Height
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// DrawCursor stamps the pointer glyph with its hotspot at p, clipped to the image.
func DrawCursor(img *image.RGBA, p schemas.Point) {
	bounds := img.Bounds()
	for dy, row := range cursorGlyph {
		for dx, c := range row {
			var col color.RGBA
			switch c {
			case 'X':
				col = outline
			case '.':
				col = fill
			default:
				continue
			}
			pt := image.Pt(p.X+dx, p.Y+dy)
			if pt.In(bounds) {
				img.SetRGBA(pt.X, pt.Y, col)
			}
		}
	}
}
