// Package gfx defines the graphics capability set the cubism renderer draws
// through. A backend implements [Device]; surfaces, textures and pipelines
// are opaque handles owned by that backend.
//
// The renderer never talks to a graphics API directly. Everything it needs
// from a GPU (render-target allocation, binding, clearing, indexed draws
// with a fixed uniform block, surface copies and an optional texture
// barrier) is expressed here, so the mask-atlas and offscreen-tree logic is
// written once and shared by every backend.
package gfx

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Color is an RGBA color with float32 components in 0..1.
type Color struct {
	R, G, B, A float32
}

var (
	// Transparent is (0,0,0,0).
	Transparent = Color{}
	// White is (1,1,1,1). Mask buffers are cleared to it.
	White = Color{1, 1, 1, 1}
)

// Mul returns the component-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Premultiply returns c with RGB scaled by A.
func (c Color) Premultiply() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// Viewport is a pixel rectangle on the bound surface.
type Viewport struct {
	X, Y, Width, Height int
}

// Texture is anything a draw call can sample.
type Texture interface {
	Size() (width, height int)
}

// Surface is a texture that can also be bound as a draw target.
type Surface interface {
	Texture
	Format() gputypes.TextureFormat
}

// PipelineKind selects the shader family of a pipeline.
type PipelineKind uint8

const (
	// PipelineCopy samples one texture and multiplies by the base color.
	PipelineCopy PipelineKind = iota
	// PipelineSetupMask writes texture alpha into one channel of a mask buffer.
	PipelineSetupMask
	// PipelineDraw draws a drawable or an offscreen with optional masking
	// and blend-mode compositing.
	PipelineDraw
)

// String returns the kind name.
func (k PipelineKind) String() string {
	switch k {
	case PipelineCopy:
		return "copy"
	case PipelineSetupMask:
		return "setup-mask"
	case PipelineDraw:
		return "draw"
	}
	return "unknown"
}

// PipelineDesc describes one shader variant.
type PipelineDesc struct {
	Name          string
	Kind          PipelineKind
	ColorBlend    ColorBlend
	AlphaBlend    AlphaBlend
	Masked        bool
	Inverted      bool
	Premultiplied bool
	// Advanced is set when the variant composites against the blend
	// texture in the shader instead of with fixed-function blending.
	Advanced bool
	// Source optionally replaces the backend's built-in shader source.
	Source []byte
}

// Pipeline is a compiled shader variant.
type Pipeline interface {
	Desc() PipelineDesc
}

// BlendComponent is one half (color or alpha) of a fixed-function blend.
type BlendComponent struct {
	SrcFactor gputypes.BlendFactor
	DstFactor gputypes.BlendFactor
	Operation gputypes.BlendOperation
}

// BlendState is a separate color/alpha fixed-function blend.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// NewBlendState builds an additive blend state from four factors in the
// order source color, destination color, source alpha, destination alpha.
func NewBlendState(srcColor, dstColor, srcAlpha, dstAlpha gputypes.BlendFactor) BlendState {
	return BlendState{
		Color: BlendComponent{SrcFactor: srcColor, DstFactor: dstColor, Operation: gputypes.BlendOperationAdd},
		Alpha: BlendComponent{SrcFactor: srcAlpha, DstFactor: dstAlpha, Operation: gputypes.BlendOperationAdd},
	}
}

// DrawCall is one indexed triangle-list draw with the renderer's uniform
// block. Positions and UVs are x,y pairs.
type DrawCall struct {
	Pipeline Pipeline
	Blend    BlendState
	// Culling discards triangles that are clockwise after MVP.
	Culling bool

	Positions []float32
	UVs       []float32
	Indices   []uint16

	Texture      Texture
	MaskTexture  Texture
	BlendTexture Texture

	// MVP maps model space to clip space.
	MVP mgl32.Mat4
	// ClipMatrix maps model space to mask-buffer space: clip space of the
	// mask buffer for mask passes, 0..1 texture space for masked draws.
	ClipMatrix mgl32.Mat4

	BaseColor     Color
	MultiplyColor Color
	ScreenColor   Color
	ChannelFlag   Color
}

// Device is the capability set a backend provides.
type Device interface {
	NewSurface(width, height int) (Surface, error)
	DisposeSurface(s Surface)

	// Bind makes s the draw target. Bound returns the current target.
	Bind(s Surface)
	Bound() Surface

	Viewport() Viewport
	SetViewport(v Viewport)

	// Clear fills the bound surface.
	Clear(c Color)

	// TextureBarrier reports whether the bound surface may be sampled
	// by a draw into itself once Barrier has been issued.
	TextureBarrier() bool
	Barrier()

	// CopySurface copies src into dst; both have the same size.
	CopySurface(dst, src Surface)

	CompilePipeline(desc PipelineDesc) (Pipeline, error)

	// Draw submits call against the bound surface.
	Draw(call *DrawCall)
}

// AnisotropySetter is implemented by devices that support anisotropic
// texture filtering.
type AnisotropySetter interface {
	SetAnisotropy(t Texture, level float32)
}

// Fence orders CPU writes of a multi-buffer slot against GPU reads of the
// same slot from an earlier frame.
type Fence interface {
	// Wait blocks until the GPU no longer references slot.
	Wait(slot int)
	// Signal marks slot as submitted for the frame that just ended.
	Signal(slot int)
}

// NopFence trusts the host's present synchronisation.
type NopFence struct{}

func (NopFence) Wait(int)   {}
func (NopFence) Signal(int) {}
