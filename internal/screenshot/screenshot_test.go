package screenshot_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/screenshot"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decode(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func TestProcess_ResizesToViewport(t *testing.T) {
	raw := solidPNG(t, 200, 100, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	out, err := screenshot.Process(raw, screenshot.Options{Viewport: schemas.Viewport{Width: 100, Height: 50}})
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
	r, g, b, _ := img.At(50, 25).RGBA()
	assert.InDelta(t, 10, int(r>>8), 1)
	assert.InDelta(t, 20, int(g>>8), 1)
	assert.InDelta(t, 30, int(b>>8), 1)
}

func TestProcess_KeepsSizeWithoutViewport(t *testing.T) {
	raw := solidPNG(t, 40, 30, color.White)
	out, err := screenshot.Process(raw, screenshot.Options{})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), decode(t, out).Bounds())
}

func TestProcess_DrawsCursor(t *testing.T) {
	raw := solidPNG(t, 64, 64, color.RGBA{R: 255, A: 255})
	out, err := screenshot.Process(raw, screenshot.Options{Cursor: &schemas.Point{X: 10, Y: 10}})
	require.NoError(t, err)

	img := decode(t, out)
	// Hotspot is outline black; a point well inside the arrow is white fill.
	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, []uint32{0, 0, 0}, []uint32{r, g, b})
	r, g, b, _ = img.At(12, 15).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
	// Outside the glyph the frame is untouched.
	r, _, _, _ = img.At(40, 40).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestDrawCursor_ClipsAtEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	assert.NotPanics(t, func() { screenshot.DrawCursor(img, schemas.Point{X: 3, Y: 3}) })
}

func TestProcess_RejectsNonPNG(t *testing.T) {
	_, err := screenshot.Process([]byte("not an image"), screenshot.Options{})
	assert.Error(t, err)
}
