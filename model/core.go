// Package model adapts Cubism Core model state to the renderer.
//
// A [Core] exposes the raw per-frame arrays of a loaded model. [Model]
// wraps one, decodes blend modes and constant flags, and layers the user
// overrides for culling and multiply/screen colors on top. [StaticCore] is
// an in-memory Core for tests and tools.
package model

import (
	"github.com/phanxgames/cubism"
	"github.com/phanxgames/cubism/gfx"
)

// ConstantFlags are the per-object flags fixed at authoring time.
type ConstantFlags uint8

const (
	BlendAdditive ConstantFlags = 1 << iota
	BlendMultiplicative
	IsDoubleSided
	IsInvertedMask
)

// Core is the raw model state. Blend modes are packed as in the model
// file: color blend in the low byte, alpha blend in the next.
type Core interface {
	DrawableCount() int
	DrawableVertexPositions(i int) []float32
	DrawableVertexUVs(i int) []float32
	DrawableIndices(i int) []uint16
	DrawableTextureIndex(i int) int
	DrawableOpacity(i int) float32
	DrawableBlendMode(i int) int32
	DrawableConstantFlags(i int) ConstantFlags
	DrawableDynamicFlags(i int) cubism.DynamicFlags
	DrawableParentPartIndex(i int) int
	DrawableMasks(i int) []int
	DrawableMultiplyColor(i int) gfx.Color
	DrawableScreenColor(i int) gfx.Color

	OffscreenCount() int
	OffscreenOwnerPartIndex(i int) int
	OffscreenOpacity(i int) float32
	OffscreenBlendMode(i int) int32
	OffscreenConstantFlags(i int) ConstantFlags
	OffscreenMasks(i int) []int
	OffscreenMultiplyColor(i int) gfx.Color
	OffscreenScreenColor(i int) gfx.Color

	PartCount() int
	PartParentPartIndex(i int) int

	RenderOrders() []int
	PixelsPerUnit() float32
}

// Drawable is one mesh of a StaticCore.
type Drawable struct {
	Positions []float32
	UVs       []float32
	Indices   []uint16
	Texture   int
	Opacity   float32
	BlendMode cubism.BlendMode
	Flags     ConstantFlags
	Dynamic   cubism.DynamicFlags
	Parent    int
	Masks     []int
	Multiply  gfx.Color
	Screen    gfx.Color
}

// Offscreen is one offscreen group of a StaticCore.
type Offscreen struct {
	Owner     int
	Opacity   float32
	BlendMode cubism.BlendMode
	Flags     ConstantFlags
	Masks     []int
	Multiply  gfx.Color
	Screen    gfx.Color
}

// StaticCore is a Core backed by plain slices. The caller updates fields
// between frames.
type StaticCore struct {
	Drawables  []Drawable
	Offscreens []Offscreen
	// Parts holds the parent part index of each part.
	Parts []int
	// Orders is the render order; nil draws drawables then offscreens in
	// index order.
	Orders []int
	// PPU is pixels per model unit; zero means 1.
	PPU float32
}

// NewDrawable returns a visible, opaque drawable at the root with neutral
// colors.
func NewDrawable(positions, uvs []float32, indices []uint16) Drawable {
	return Drawable{
		Positions: positions,
		UVs:       uvs,
		Indices:   indices,
		Opacity:   1,
		Flags:     IsDoubleSided,
		Dynamic:   cubism.FlagIsVisible | cubism.FlagVertexPositionsDidChange,
		Parent:    cubism.NoIndex,
		Multiply:  gfx.White,
		Screen:    gfx.Color{A: 1},
	}
}

// ResetDynamicFlags clears every did-change flag, keeping visibility.
func (c *StaticCore) ResetDynamicFlags() {
	for i := range c.Drawables {
		c.Drawables[i].Dynamic &= cubism.FlagIsVisible
	}
}

func (c *StaticCore) DrawableCount() int                            { return len(c.Drawables) }
func (c *StaticCore) DrawableVertexPositions(i int) []float32       { return c.Drawables[i].Positions }
func (c *StaticCore) DrawableVertexUVs(i int) []float32             { return c.Drawables[i].UVs }
func (c *StaticCore) DrawableIndices(i int) []uint16                { return c.Drawables[i].Indices }
func (c *StaticCore) DrawableTextureIndex(i int) int                { return c.Drawables[i].Texture }
func (c *StaticCore) DrawableOpacity(i int) float32                 { return c.Drawables[i].Opacity }
func (c *StaticCore) DrawableBlendMode(i int) int32                 { return c.Drawables[i].BlendMode.Encode() }
func (c *StaticCore) DrawableConstantFlags(i int) ConstantFlags     { return c.Drawables[i].Flags }
func (c *StaticCore) DrawableDynamicFlags(i int) cubism.DynamicFlags { return c.Drawables[i].Dynamic }
func (c *StaticCore) DrawableParentPartIndex(i int) int             { return c.Drawables[i].Parent }
func (c *StaticCore) DrawableMasks(i int) []int                     { return c.Drawables[i].Masks }
func (c *StaticCore) DrawableMultiplyColor(i int) gfx.Color         { return c.Drawables[i].Multiply }
func (c *StaticCore) DrawableScreenColor(i int) gfx.Color           { return c.Drawables[i].Screen }

func (c *StaticCore) OffscreenCount() int                        { return len(c.Offscreens) }
func (c *StaticCore) OffscreenOwnerPartIndex(i int) int          { return c.Offscreens[i].Owner }
func (c *StaticCore) OffscreenOpacity(i int) float32             { return c.Offscreens[i].Opacity }
func (c *StaticCore) OffscreenBlendMode(i int) int32             { return c.Offscreens[i].BlendMode.Encode() }
func (c *StaticCore) OffscreenConstantFlags(i int) ConstantFlags { return c.Offscreens[i].Flags }
func (c *StaticCore) OffscreenMasks(i int) []int                 { return c.Offscreens[i].Masks }
func (c *StaticCore) OffscreenMultiplyColor(i int) gfx.Color     { return c.Offscreens[i].Multiply }
func (c *StaticCore) OffscreenScreenColor(i int) gfx.Color       { return c.Offscreens[i].Screen }

func (c *StaticCore) PartCount() int                { return len(c.Parts) }
func (c *StaticCore) PartParentPartIndex(i int) int { return c.Parts[i] }

func (c *StaticCore) RenderOrders() []int {
	if c.Orders != nil {
		return c.Orders
	}
	out := make([]int, len(c.Drawables)+len(c.Offscreens))
	for i := range out {
		out[i] = i
	}
	return out
}

func (c *StaticCore) PixelsPerUnit() float32 {
	if c.PPU == 0 {
		return 1
	}
	return c.PPU
}
