package thumb

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	tests := []struct {
		source string
		preset string
		want   string
	}{
		{"202603/5/42/7/photo.jpg", "200x200", "202603/5/42/7/200x200_photo.jpg"},
		{"photo.jpg", "200x200", "200x200_photo.jpg"},
		{"a/b/noext", "small", "a/b/small_noext"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Path(tt.source, tt.preset))
	}
}

func TestPathIsDeterministic(t *testing.T) {
	a := Path("dir/pic.png", "64x64")
	b := Path("dir/pic.png", "64x64")
	assert.Equal(t, a, b)
}

func TestFitKeepsAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := Fit{Width: 100, Height: 100}.Apply(src)

	bounds := out.Bounds()
	assert.Equal(t, 100, bounds.Dx())
	assert.Equal(t, 50, bounds.Dy())
}

func TestFillCropsToExactBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := Fill{Width: 100, Height: 100}.Apply(src)

	bounds := out.Bounds()
	assert.Equal(t, 100, bounds.Dx())
	assert.Equal(t, 100, bounds.Dy())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, "x.png"))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
}

func TestEncodeUnknownExtensionFallsBackToJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, "artifact.unknown"))
	assert.NotZero(t, buf.Len())
}

func TestTransformFunc(t *testing.T) {
	called := false
	tr := TransformFunc(func(src image.Image) image.Image {
		called = true
		return src
	})
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Equal(t, src.Bounds(), tr.Apply(src).Bounds())
	assert.True(t, called)
}
