package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestPrepareJPEGReencodesPNG(t *testing.T) {
	out, err := PrepareJPEG(encodePNG(t, 32, 24), Options{})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestPrepareJPEGBoundsLongerEdge(t *testing.T) {
	out, err := PrepareJPEG(encodePNG(t, 200, 100), Options{MaxDim: 50})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.LessOrEqual(t, img.Bounds().Dy(), 50, "aspect ratio must be preserved within the bound")
}

func TestPrepareJPEGKeepsSmallImages(t *testing.T) {
	out, err := PrepareJPEG(encodePNG(t, 10, 10), Options{MaxDim: 50})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestPrepareJPEGRejectsGarbage(t *testing.T) {
	_, err := PrepareJPEG([]byte("definitely not an image"), Options{})
	assert.Error(t, err)
}
