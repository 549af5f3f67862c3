package headless

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/phanxgames/cubism/gfx"
)

// Image is a premultiplied float RGBA pixel buffer. It serves as both a
// sampled texture and a draw target.
type Image struct {
	id       int
	w, h     int
	pix      []float32
	disposed bool
}

// NewImage returns a transparent w×h image.
func NewImage(w, h int) *Image {
	return &Image{w: w, h: h, pix: make([]float32, 4*w*h)}
}

// NewFilledImage returns a w×h image filled with c.
func NewFilledImage(w, h int, c gfx.Color) *Image {
	img := NewImage(w, h)
	img.Fill(c)
	return img
}

// Size returns the image dimensions.
func (img *Image) Size() (int, int) { return img.w, img.h }

// Format reports the storage format the image stands in for.
func (img *Image) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// ID is the device-assigned surface number, 0 for images created directly.
func (img *Image) ID() int { return img.id }

// Disposed reports whether the owning device released the image.
func (img *Image) Disposed() bool { return img.disposed }

// At returns the premultiplied color at (x, y). Out-of-range reads return
// transparent.
func (img *Image) At(x, y int) gfx.Color {
	if x < 0 || y < 0 || x >= img.w || y >= img.h {
		return gfx.Transparent
	}
	i := 4 * (y*img.w + x)
	return gfx.Color{R: img.pix[i], G: img.pix[i+1], B: img.pix[i+2], A: img.pix[i+3]}
}

// Set stores a premultiplied color at (x, y).
func (img *Image) Set(x, y int, c gfx.Color) {
	if x < 0 || y < 0 || x >= img.w || y >= img.h {
		return
	}
	i := 4 * (y*img.w + x)
	img.pix[i], img.pix[i+1], img.pix[i+2], img.pix[i+3] = c.R, c.G, c.B, c.A
}

// Fill sets every pixel to c.
func (img *Image) Fill(c gfx.Color) {
	for i := 0; i < len(img.pix); i += 4 {
		img.pix[i], img.pix[i+1], img.pix[i+2], img.pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// FillRect sets the pixels of [x0,x1)×[y0,y1) to c.
func (img *Image) FillRect(x0, y0, x1, y1 int, c gfx.Color) {
	for y := max(y0, 0); y < min(y1, img.h); y++ {
		for x := max(x0, 0); x < min(x1, img.w); x++ {
			img.Set(x, y, c)
		}
	}
}

// sample returns the texel under normalized coordinates (u, v) with
// nearest filtering and clamp-to-edge addressing.
func (img *Image) sample(u, v float32) gfx.Color {
	x := clampInt(int(u*float32(img.w)), 0, img.w-1)
	y := clampInt(int(v*float32(img.h)), 0, img.h-1)
	return img.At(x, y)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NRGBA converts the image to straight-alpha 8-bit RGBA.
func (img *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.w, img.h))
	for y := 0; y < img.h; y++ {
		for x := 0; x < img.w; x++ {
			c := img.At(x, y)
			if c.A > 0 && c.A < 1 {
				c.R, c.G, c.B = c.R/c.A, c.G/c.A, c.B/c.A
			}
			out.SetNRGBA(x, y, color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)})
		}
	}
	return out
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// EncodePNG writes the image as a straight-alpha PNG.
func (img *Image) EncodePNG(w io.Writer) error {
	return png.Encode(w, img.NRGBA())
}

// WritePNG writes the image to path.
func (img *Image) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("headless: write png: %w", err)
	}
	if err := img.EncodePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("headless: encode png: %w", err)
	}
	return f.Close()
}
