package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeToJPG(t *testing.T) {
	out, err := NormalizeToJPG(encodePNG(t, 1600, 400), 800, 80)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	// narrower images keep their size
	out, err = NormalizeToJPG(encodePNG(t, 300, 100), 800, 0)
	require.NoError(t, err)
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
}

func TestNormalizeToJPGRejects(t *testing.T) {
	_, err := NormalizeToJPG(nil, 800, 80)
	assert.Error(t, err)

	_, err = NormalizeToJPG([]byte("GIF89a not really"), 800, 80)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestApplyOrientation(t *testing.T) {
	// 3x2 source with a marker in the top-left corner
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	marker := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, marker)

	tests := []struct {
		ori        int
		w, h       int
		markX, mkY int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}
	for _, tt := range tests {
		out := applyOrientation(src, tt.ori)
		b := out.Bounds()
		assert.Equal(t, tt.w, b.Dx(), "orientation %d width", tt.ori)
		assert.Equal(t, tt.h, b.Dy(), "orientation %d height", tt.ori)

		r, _, _, _ := out.At(tt.markX, tt.mkY).RGBA()
		assert.Equal(t, uint32(0xffff), r, "orientation %d marker", tt.ori)
	}
}

func TestReadAllLimit(t *testing.T) {
	b, err := ReadAllLimit(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(b))

	_, err = ReadAllLimit(strings.NewReader("123456"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)
}
