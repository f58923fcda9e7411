package playlist

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// DefaultThumbnailSize is the bounding box used for cover thumbnails.
const DefaultThumbnailSize = 128

// Thumbnail is an owned RGBA frame of a track's cover art.
type Thumbnail struct {
	Width  int
	Height int
	Pix    []byte // RGBA, 4 bytes per pixel, row-major
}

// NewThumbnail downscales img to fit a maxSize square, preserving aspect
// ratio. Images already smaller than maxSize are kept at their size.
func NewThumbnail(img image.Image, maxSize uint) *Thumbnail {
	if img == nil {
		return nil
	}
	scaled := resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)

	b := scaled.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), scaled, b.Min, draw.Src)

	return &Thumbnail{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    rgba.Pix,
	}
}

// Image returns the thumbnail as an image backed by a copy of its pixels.
func (t *Thumbnail) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	copy(img.Pix, t.Pix)
	return img
}

// Clone returns a deep copy of the thumbnail.
func (t *Thumbnail) Clone() *Thumbnail {
	if t == nil {
		return nil
	}
	pix := make([]byte, len(t.Pix))
	copy(pix, t.Pix)
	return &Thumbnail{Width: t.Width, Height: t.Height, Pix: pix}
}
