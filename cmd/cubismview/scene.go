package main

import (
	"image"
	"image/color"
	"math"

	"github.com/phanxgames/cubism"
	"github.com/phanxgames/cubism/gfx"
	"github.com/phanxgames/cubism/model"
)

// Drawable, part and offscreen indices of the synthetic model.
const (
	drawFace = iota
	drawEyeMask
	drawEye
	drawCheek
	drawGlow
	drawableCount
)

const (
	partBody = iota
	partGroup
)

const offscreenGroup = 0

// Texture slots. Files given with -textures replace them in order.
const (
	texSkin = iota
	texDisc
	texStripes
	texBlush
	textureCount
)

// rect returns the positions of an axis-aligned quad.
func rect(x0, y0, x1, y1 float32) []float32 {
	return []float32{x0, y0, x1, y0, x0, y1, x1, y1}
}

var (
	quadUVs     = []float32{0, 0, 1, 0, 0, 1, 1, 1}
	quadIndices = []uint16{0, 1, 2, 2, 1, 3}
)

func quad(x0, y0, x1, y1 float32, tex, parent int) model.Drawable {
	d := model.NewDrawable(rect(x0, y0, x1, y1), quadUVs, quadIndices)
	d.Texture = tex
	d.Parent = parent
	return d
}

// newScene builds a two-part model: a face with an eye clipped by a
// mask-only disc, and a group of two drawables composited through an
// offscreen, one of them screen-blended over the other.
func newScene() *model.StaticCore {
	c := &model.StaticCore{
		Parts: []int{cubism.NoIndex, partBody},
	}
	c.Drawables = make([]model.Drawable, drawableCount)
	c.Drawables[drawFace] = quad(-0.8, -0.8, 0.8, 0.8, texSkin, partBody)

	c.Drawables[drawEyeMask] = quad(-0.35, 0.1, 0.35, 0.6, texDisc, partBody)
	c.Drawables[drawEyeMask].Opacity = 0

	c.Drawables[drawEye] = quad(-0.6, 0.05, 0.6, 0.65, texStripes, partBody)
	c.Drawables[drawEye].Masks = []int{drawEyeMask}

	c.Drawables[drawCheek] = quad(-0.7, -0.6, -0.1, -0.1, texBlush, partGroup)
	c.Drawables[drawGlow] = quad(-0.3, -0.7, 0.5, -0.2, texStripes, partGroup)
	c.Drawables[drawGlow].BlendMode = cubism.BlendMode{Color: gfx.ColorBlendScreen}

	c.Offscreens = []model.Offscreen{{
		Owner:    partGroup,
		Opacity:  1,
		Flags:    model.IsDoubleSided,
		Multiply: gfx.White,
		Screen:   gfx.Color{A: 1},
	}}

	// Face, mask, eye, then the group offscreen ahead of its children.
	c.Orders = []int{0, 1, 2, 4, 5, 3}
	return c
}

// sceneImages returns procedural textures for every slot.
func sceneImages(size int) []image.Image {
	imgs := make([]image.Image, textureCount)
	imgs[texSkin] = fillImage(size, func(x, y float64) color.NRGBA {
		return color.NRGBA{R: 240, G: uint8(200 + 20*y), B: 170, A: 255}
	})
	imgs[texDisc] = fillImage(size, func(x, y float64) color.NRGBA {
		if math.Hypot(x-0.5, y-0.5) > 0.5 {
			return color.NRGBA{}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	})
	imgs[texStripes] = fillImage(size, func(x, y float64) color.NRGBA {
		if int(x*8)%2 == 0 {
			return color.NRGBA{R: 40, G: 90, B: 200, A: 255}
		}
		return color.NRGBA{R: 250, G: 250, B: 255, A: 255}
	})
	imgs[texBlush] = fillImage(size, func(x, y float64) color.NRGBA {
		a := 1 - min(1, 2*math.Hypot(x-0.5, y-0.5))
		return color.NRGBA{R: 230, G: 90, B: 110, A: uint8(255 * a)}
	})
	return imgs
}

func fillImage(size int, f func(x, y float64) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.SetNRGBA(x, y, f((float64(x)+0.5)/float64(size), (float64(y)+0.5)/float64(size)))
		}
	}
	return img
}
