package thumb

import (
	"image"
	"io"
	"path"

	"github.com/disintegration/imaging"
)

// Path returns the deterministic location of a derived artifact.
// The preset name is inserted before the filename of the source, in
// the same directory: "a/b/photo.jpg" + "200x200" -> "a/b/200x200_photo.jpg".
func Path(source, preset string) string {
	dir, name := path.Split(source)
	return dir + preset + "_" + name
}

// Transform produces a derived variant of a decoded source image.
type Transform interface {
	Apply(src image.Image) image.Image
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc func(src image.Image) image.Image

func (f TransformFunc) Apply(src image.Image) image.Image {
	return f(src)
}

// Fit scales the image down to fit within the given bounds,
// preserving the aspect ratio. Smaller images are left as-is.
type Fit struct {
	Width  int
	Height int
}

func (t Fit) Apply(src image.Image) image.Image {
	return imaging.Fit(src, t.Width, t.Height, imaging.Lanczos)
}

// Fill scales and crops the image to exactly the given bounds,
// anchored at the center.
type Fill struct {
	Width  int
	Height int
}

func (t Fill) Apply(src image.Image) image.Image {
	return imaging.Fill(src, t.Width, t.Height, imaging.Center, imaging.Lanczos)
}

// Decode reads an image, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

// Encode writes the image in the format implied by the filename
// extension, falling back to JPEG for unknown extensions.
func Encode(w io.Writer, img image.Image, filename string) error {
	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		format = imaging.JPEG
	}
	return imaging.Encode(w, img, format)
}
