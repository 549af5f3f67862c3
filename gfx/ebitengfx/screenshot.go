package ebitengfx

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phanxgames/cubism"
)

// NRGBA reads back the image as straight-alpha 8-bit RGBA, upright.
// It must be called from ebiten's game loop.
func (i *Image) NRGBA() *image.NRGBA {
	w, h := i.Size()
	pixels := make([]byte, 4*w*h)
	i.img.ReadPixels(pixels)
	return unpremultiplyFlipped(pixels, w, h)
}

// unpremultiplyFlipped converts bottom-up premultiplied RGBA rows to a
// top-down straight-alpha image.
func unpremultiplyFlipped(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		src := pixels[4*w*(h-1-y) : 4*w*(h-y)]
		dst := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := 0; x < len(src); x += 4 {
			r, g, b, a := src[x], src[x+1], src[x+2], src[x+3]
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				b = uint8(min(int(b)*255/int(a), 255))
			}
			dst[x], dst[x+1], dst[x+2], dst[x+3] = r, g, b, a
		}
	}
	return img
}

// Screenshot writes the root surface to dir as a timestamped PNG named
// after label and returns the file path.
func (d *Device) Screenshot(dir, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ebitengfx: screenshot: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
	if err := writePNG(path, d.root.NRGBA()); err != nil {
		return "", fmt.Errorf("ebitengfx: screenshot: %w", err)
	}
	cubism.Logger().Info("screenshot written", "path", path)
	return path, nil
}

// writePNG encodes img to path with fast compression.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', maps everything else to
// '_' and names empty labels "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
