package cubism

import (
	"fmt"
	"maps"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/cubism/gfx"
)

// Renderer draws one model through a gfx.Device. It is not safe for
// concurrent use.
type Renderer struct {
	dc   DeviceContext
	dev  gfx.Device
	opts Options

	model   Model
	shaders *ShaderStore
	pool    *OffscreenManager
	ownPool bool
	frames  *FrameRing

	drawableClipping  *ClippingManager
	offscreenClipping *ClippingManager

	// modelTargets[0] receives the model; [1] is the copy used as blend
	// source when the device has no texture barrier.
	modelTargets []*RenderTarget

	offscreens  []OffscreenRenderTarget
	sortedIndex []int
	sortedType  []ObjectType
	badOrder    bool // render-order error already logged

	textures map[int]gfx.Texture

	mvp           mgl32.Mat4
	modelColor    gfx.Color
	premultiplied bool
	culling       bool
	highPrecision bool
	anisotropy    float32
	rtWidth       int
	rtHeight      int

	clipForMask      *ClippingContext
	maskManager      *ClippingManager
	clipForDrawable  *ClippingContext
	clipForOffscreen *ClippingContext

	currentOffscreen int
	currentSurface   gfx.Surface
	root             gfx.Surface

	stats FrameStats
}

// NewRenderer returns a renderer on dc.Device. Call Initialize before
// drawing.
func NewRenderer(dc DeviceContext, opts Options) (*Renderer, error) {
	if dc.Device == nil {
		return nil, ErrNoDevice
	}
	if dc.BufferSetNum < 1 {
		if dc.BufferSetNum < 0 {
			Logger().Warn("cubism: buffer set count must be at least 1", "value", dc.BufferSetNum)
		}
		dc.BufferSetNum = 1
	}
	r := &Renderer{
		dc:               dc,
		dev:              dc.Device,
		opts:             opts,
		mvp:              mgl32.Ident4(),
		modelColor:       gfx.White,
		premultiplied:    opts.PremultipliedAlpha,
		highPrecision:    opts.HighPrecisionMask,
		rtWidth:          opts.RenderTargetWidth,
		rtHeight:         opts.RenderTargetHeight,
		textures:         make(map[int]gfx.Texture),
		currentOffscreen: NoIndex,
	}
	if r.rtWidth <= 0 || r.rtHeight <= 0 {
		if s := r.dev.Bound(); s != nil {
			r.rtWidth, r.rtHeight = s.Size()
		}
	}
	r.shaders = NewShaderStore(r.dev, dc.Loader)
	r.pool = dc.Offscreens
	if r.pool == nil {
		r.pool = NewOffscreenManager(r.dev)
		r.ownPool = true
	}
	return r, nil
}

// Initialize prepares the renderer for m. maskBufferCount below 1 is
// clamped to 1 with a warning.
func (r *Renderer) Initialize(m Model, maskBufferCount int) error {
	if m == nil {
		return ErrNoModel
	}
	if maskBufferCount < 1 {
		Logger().Warn("cubism: mask buffer count must be at least 1; using 1", "value", maskBufferCount)
		maskBufferCount = 1
	}
	r.releaseModelResources()
	r.model = m

	if m.IsBlendModeEnabled() {
		n := 2
		if r.dev.TextureBarrier() {
			n = 1
		}
		for range n {
			rt, err := NewRenderTarget(r.dev, r.rtWidth, r.rtHeight)
			if err != nil {
				return fmt.Errorf("cubism: model render target: %w", err)
			}
			r.modelTargets = append(r.modelTargets, rt)
		}
	}

	if IsUsingMasking(m) {
		r.drawableClipping = NewClippingManager(m, ObjectDrawable, maskBufferCount)
		if s := r.opts.MaskBufferSize; s > 0 {
			r.drawableClipping.SetClippingMaskBufferSize(s, s)
		}
		r.drawableClipping.EnsureBuffers(r.dev, r.dc.BufferSetNum)
	}
	if IsUsingMaskingForOffscreen(m) {
		r.offscreenClipping = NewClippingManager(m, ObjectOffscreen, maskBufferCount)
		if s := r.opts.OffscreenMaskBufferSize; s > 0 {
			r.offscreenClipping.SetClippingMaskBufferSize(s, s)
		}
		r.offscreenClipping.EnsureBuffers(r.dev, r.dc.BufferSetNum)
	}

	total := m.DrawableCount() + m.OffscreenCount()
	r.sortedIndex = make([]int, total)
	r.sortedType = make([]ObjectType, total)

	r.offscreens = make([]OffscreenRenderTarget, m.OffscreenCount())
	for i := range r.offscreens {
		r.offscreens[i] = OffscreenRenderTarget{Index: i, Parent: NoIndex, Old: NoIndex}
	}
	r.setupParentOffscreens()

	r.frames = NewFrameRing(r.dc.BufferSetNum, m.DrawableCount(), r.dc.Fence)
	return nil
}

// setupParentOffscreens links each offscreen to the nearest offscreen that
// owns a part on its owner's ancestor chain.
func (r *Renderer) setupParentOffscreens() {
	m := r.model
	for i := range r.offscreens {
		parent := NoIndex
		owner := m.OffscreenOwnerPartIndex(i)
		if owner == NoIndex {
			continue
		}
	walk:
		for p := m.PartParentPartIndex(owner); p != NoIndex; p = m.PartParentPartIndex(p) {
			for j := range r.offscreens {
				if m.OffscreenOwnerPartIndex(j) == p {
					parent = j
					break walk
				}
			}
		}
		r.offscreens[i].Parent = parent
	}
}

// Model returns the model passed to Initialize.
func (r *Renderer) Model() Model { return r.model }

// --- Settings ---

// SetMVPMatrix sets the model-to-clip-space matrix.
func (r *Renderer) SetMVPMatrix(m mgl32.Mat4) { r.mvp = m }

// MVPMatrix returns the model-to-clip-space matrix.
func (r *Renderer) MVPMatrix() mgl32.Mat4 { return r.mvp }

// SetModelColor sets the color the whole model is multiplied by.
func (r *Renderer) SetModelColor(red, green, blue, alpha float32) {
	r.modelColor = gfx.Color{R: red, G: green, B: blue, A: alpha}
}

// ModelColor returns the model color.
func (r *Renderer) ModelColor() gfx.Color { return r.modelColor }

// ModelColorWithOpacity returns the model color with its alpha scaled by
// opacity, premultiplied when the renderer expects premultiplied textures.
func (r *Renderer) ModelColorWithOpacity(opacity float32) gfx.Color {
	c := r.modelColor
	c.A *= opacity
	if r.premultiplied {
		c.R *= c.A
		c.G *= c.A
		c.B *= c.A
	}
	return c
}

// SetPremultipliedAlpha declares whether bound textures are premultiplied.
func (r *Renderer) SetPremultipliedAlpha(v bool) { r.premultiplied = v }

// IsPremultipliedAlpha reports the texture alpha mode.
func (r *Renderer) IsPremultipliedAlpha() bool { return r.premultiplied }

// SetCulling sets the culling state for the next draw.
func (r *Renderer) SetCulling(v bool) { r.culling = v }

// IsCulling reports the culling state for the next draw.
func (r *Renderer) IsCulling() bool { return r.culling }

// SetUseHighPrecisionMask switches between the shared mask atlas and one
// full-buffer mask pass per masked object.
func (r *Renderer) SetUseHighPrecisionMask(v bool) { r.highPrecision = v }

// IsUsingHighPrecisionMask reports the mask mode.
func (r *Renderer) IsUsingHighPrecisionMask() bool { return r.highPrecision }

// SetAnisotropy sets the anisotropic filtering level applied to bound
// textures. Levels below 1 leave filtering alone.
func (r *Renderer) SetAnisotropy(v float32) { r.anisotropy = v }

// Anisotropy returns the anisotropic filtering level.
func (r *Renderer) Anisotropy() float32 { return r.anisotropy }

// SetDrawableClippingMaskBufferSize resizes the drawable mask buffers.
func (r *Renderer) SetDrawableClippingMaskBufferSize(w, h int) {
	if r.drawableClipping == nil {
		return
	}
	r.drawableClipping.SetClippingMaskBufferSize(w, h)
}

// DrawableClippingMaskBufferSize returns the drawable mask buffer size, or
// zero when the model has no masked drawables.
func (r *Renderer) DrawableClippingMaskBufferSize() (int, int) {
	if r.drawableClipping == nil {
		return 0, 0
	}
	return r.drawableClipping.MaskBufferSize()
}

// SetOffscreenClippingMaskBufferSize resizes the offscreen mask buffers.
func (r *Renderer) SetOffscreenClippingMaskBufferSize(w, h int) {
	if r.offscreenClipping == nil {
		return
	}
	r.offscreenClipping.SetClippingMaskBufferSize(w, h)
}

// OffscreenClippingMaskBufferSize returns the offscreen mask buffer size,
// or zero when the model has no masked offscreens.
func (r *Renderer) OffscreenClippingMaskBufferSize() (int, int) {
	if r.offscreenClipping == nil {
		return 0, 0
	}
	return r.offscreenClipping.MaskBufferSize()
}

// DrawableRenderTextureCount returns the number of drawable mask buffers
// per frame slot.
func (r *Renderer) DrawableRenderTextureCount() int {
	if r.drawableClipping == nil {
		return 0
	}
	return r.drawableClipping.BufferCount()
}

// OffscreenRenderTextureCount returns the number of offscreen mask
// buffers per frame slot.
func (r *Renderer) OffscreenRenderTextureCount() int {
	if r.offscreenClipping == nil {
		return 0
	}
	return r.offscreenClipping.BufferCount()
}

// SetRenderTargetSize sets the size of the model render targets and
// offscreens. Targets are recreated at the next draw.
func (r *Renderer) SetRenderTargetSize(w, h int) {
	if w <= 0 || h <= 0 {
		Logger().Warn("cubism: ignoring render target size", "width", w, "height", h)
		return
	}
	r.rtWidth, r.rtHeight = w, h
}

// RenderTargetSize returns the model render-target size.
func (r *Renderer) RenderTargetSize() (int, int) { return r.rtWidth, r.rtHeight }

// BindTexture binds tex to the model's texture slot index.
func (r *Renderer) BindTexture(index int, tex gfx.Texture) {
	if tex == nil {
		delete(r.textures, index)
		return
	}
	r.textures[index] = tex
}

// BoundTextures returns a copy of the texture bindings.
func (r *Renderer) BoundTextures() map[int]gfx.Texture {
	return maps.Clone(r.textures)
}

// ClippingManager returns the manager for object kind t, or nil when the
// model has no masks of that kind.
func (r *Renderer) ClippingManager(t ObjectType) *ClippingManager {
	if t == ObjectOffscreen {
		return r.offscreenClipping
	}
	return r.drawableClipping
}

// OffscreenManager returns the render-target pool.
func (r *Renderer) OffscreenManager() *OffscreenManager { return r.pool }

// ShaderStore returns the pipeline cache.
func (r *Renderer) ShaderStore() *ShaderStore { return r.shaders }

// Offscreens returns the offscreen handles indexed by model offscreen.
func (r *Renderer) Offscreens() []OffscreenRenderTarget { return r.offscreens }

// CurrentOffscreen returns the innermost open offscreen or NoIndex.
func (r *Renderer) CurrentOffscreen() int { return r.currentOffscreen }

// CommandBufferCurrent returns the frame slot being recorded.
func (r *Renderer) CommandBufferCurrent() int {
	if r.frames == nil {
		return 0
	}
	return r.frames.Current()
}

// ModelRenderTarget returns model render target i, or nil.
func (r *Renderer) ModelRenderTarget(i int) *RenderTarget {
	if i < 0 || i >= len(r.modelTargets) {
		return nil
	}
	return r.modelTargets[i]
}

// --- Clipping context state ---

// SetClippingContextBufferForMask selects the group a mask pass draws
// into. A non-nil context makes DrawMesh emit mask draws.
func (r *Renderer) SetClippingContextBufferForMask(cm *ClippingManager, ctx *ClippingContext) {
	r.maskManager, r.clipForMask = cm, ctx
}

// ClippingContextBufferForMask returns the group of the mask pass in
// progress, or nil.
func (r *Renderer) ClippingContextBufferForMask() *ClippingContext { return r.clipForMask }

// SetClippingContextBufferForDrawable selects the mask the next drawable is
// clipped by.
func (r *Renderer) SetClippingContextBufferForDrawable(ctx *ClippingContext) {
	r.clipForDrawable = ctx
}

// ClippingContextBufferForDrawable returns the mask of the next drawable.
func (r *Renderer) ClippingContextBufferForDrawable() *ClippingContext { return r.clipForDrawable }

// SetClippingContextBufferForOffscreen selects the mask the next offscreen
// is clipped by.
func (r *Renderer) SetClippingContextBufferForOffscreen(ctx *ClippingContext) {
	r.clipForOffscreen = ctx
}

// ClippingContextBufferForOffscreen returns the mask of the next offscreen.
func (r *Renderer) ClippingContextBufferForOffscreen() *ClippingContext { return r.clipForOffscreen }

// IsGeneratingMask reports whether a mask pass is in progress.
func (r *Renderer) IsGeneratingMask() bool { return r.clipForMask != nil }

// --- Release ---

func (r *Renderer) releaseModelResources() {
	for _, rt := range r.modelTargets {
		rt.Release()
	}
	r.modelTargets = nil
	if r.drawableClipping != nil {
		r.drawableClipping.Release()
		r.drawableClipping = nil
	}
	if r.offscreenClipping != nil {
		r.offscreenClipping.Release()
		r.offscreenClipping = nil
	}
	for i := range r.offscreens {
		r.offscreens[i].release(r.pool)
	}
	r.offscreens = nil
}

// Release disposes every surface the renderer owns and drops its compiled
// pipelines. A shared offscreen pool is left to its owner.
func (r *Renderer) Release() {
	r.releaseModelResources()
	if r.ownPool {
		r.pool.ReleaseAllRenderTextures()
	}
	r.shaders.Release()
	r.model = nil
}
