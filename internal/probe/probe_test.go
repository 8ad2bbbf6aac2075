package probe

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePNG creates a decodable PNG of the given dimensions under dir.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestProbe_PNG(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "photo.png", 32, 24)

	res, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 32, res.Width)
	assert.Equal(t, 24, res.Height)
	assert.Equal(t, "png", res.Format)
	assert.Greater(t, res.Bytes, int64(0))
	assert.Equal(t, "32x24", res.Resolution())
}

func TestProbe_UnknownFormatStillPasses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.webp")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xAB}, 200), 0o644))

	res, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Width)
	assert.Equal(t, "", res.Format)
	assert.Equal(t, int64(200), res.Bytes)
	assert.Equal(t, "unknown", res.Resolution())
}

func TestProbe_TooSmall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stub.png")
	require.NoError(t, os.WriteFile(path, []byte("tiny"), 0o644))

	_, err := Probe(path)
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestProbe_Missing(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestProbe_Directory(t *testing.T) {
	_, err := Probe(t.TempDir())
	assert.Error(t, err)
}
