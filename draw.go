package cubism

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/cubism/gfx"
)

// Full-target quad used to composite offscreens and the model target.
var (
	quadPositions = []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	quadUVs       = []float32{0, 0, 1, 0, 0, 1, 1, 1}
	quadIndices   = []uint16{0, 1, 2, 2, 1, 3}
)

// DrawModel draws the model into the surface bound on the device.
func (r *Renderer) DrawModel() {
	if r.model == nil {
		return
	}
	if r.ownPool {
		r.pool.BeginFrameProcess()
	}
	r.DoDrawModel()
	if r.ownPool {
		r.pool.EndFrameProcess()
		r.pool.ReleaseStaleRenderTextures()
	}
	r.debugLog()
}

// DoDrawModel renders the mask buffers, then every drawable and offscreen
// in render order, then composites the model target onto the surface that
// was bound on entry.
func (r *Renderer) DoDrawModel() {
	if r.model == nil {
		return
	}
	// Mask buffers and staging belong to the slot; nothing may touch them
	// before the slot is released.
	r.frames.Acquire()
	r.stats = FrameStats{}
	hostViewport := r.dev.Viewport()
	r.beforeDrawModelRenderTarget()

	lastSurface := r.dev.Bound()
	lastViewport := r.dev.Viewport()
	slot := r.frames.Current()

	for _, cm := range [...]*ClippingManager{r.drawableClipping, r.offscreenClipping} {
		if cm == nil {
			continue
		}
		r.preDraw()
		cm.EnsureBuffers(r.dev, r.frames.Len())
		if r.highPrecision {
			mvp := mgl32.Ident4()
			if cm.ObjectType() == ObjectOffscreen {
				mvp = r.mvp
			}
			r.stats.MaskGroups += cm.SetupMatrixForHighPrecision(r.model, mvp, r.model.PixelsPerUnit())
			continue
		}
		r.stats.MaskGroups += cm.SetupClippingContext(r.model, r.dev, slot, r.mvp,
			lastSurface, lastViewport, r.maskDrawer(cm))
	}

	r.preDraw()
	r.DrawObjectLoop(lastSurface)
	r.PostDraw()
	r.afterDrawModelRenderTarget(hostViewport)
}

func (r *Renderer) maskDrawer(cm *ClippingManager) MaskDrawFunc {
	return func(ctx *ClippingContext, drawable int) {
		r.culling = r.model.DrawableCulling(drawable)
		r.SetClippingContextBufferForMask(cm, ctx)
		r.DrawMesh(drawable)
	}
}

// preDraw applies per-pass texture state.
func (r *Renderer) preDraw() {
	if r.anisotropy < 1 {
		return
	}
	as, ok := r.dev.(gfx.AnisotropySetter)
	if !ok {
		return
	}
	for _, t := range r.textures {
		as.SetAnisotropy(t, r.anisotropy)
	}
}

// DrawObjectLoop draws every drawable and offscreen in render order into
// root, opening and flushing offscreens as the ownership chain requires.
func (r *Renderer) DrawObjectLoop(root gfx.Surface) {
	m := r.model
	drawables := m.DrawableCount()
	total := drawables + m.OffscreenCount()
	order := m.RenderOrders()

	r.currentOffscreen = NoIndex
	r.currentSurface = root
	r.root = root

	for i := range r.sortedIndex {
		r.sortedIndex[i] = NoIndex
	}
	invalid := max(total-len(order), 0)
	for i := 0; i < total && i < len(order); i++ {
		o := order[i]
		if o < 0 || o >= total || r.sortedIndex[o] != NoIndex {
			invalid++
			continue
		}
		if i < drawables {
			r.sortedIndex[o], r.sortedType[o] = i, ObjectDrawable
		} else {
			r.sortedIndex[o], r.sortedType[o] = i-drawables, ObjectOffscreen
		}
	}
	if invalid > 0 && !r.badOrder {
		Logger().Error("cubism: render orders are not a permutation; skipping objects",
			"invalid", invalid, "objects", total)
		r.badOrder = true
	}

	for i := range total {
		if r.sortedIndex[i] == NoIndex {
			continue
		}
		switch r.sortedType[i] {
		case ObjectDrawable:
			r.DrawDrawable(r.sortedIndex[i])
		case ObjectOffscreen:
			r.AddOffscreen(r.sortedIndex[i])
		}
	}

	for r.currentOffscreen != NoIndex {
		cur := r.currentOffscreen
		r.SubmitDrawToParentOffscreen(cur, ObjectOffscreen)
		if r.currentOffscreen == cur {
			// Ownerless offscreens never match a chain; flush directly.
			r.DrawOffscreen(cur)
		}
	}
}

// DrawDrawable draws drawable i, flushing open offscreens it does not
// belong to first.
func (r *Renderer) DrawDrawable(i int) {
	m := r.model
	if !m.DrawableDynamicFlags(i).IsVisible() {
		return
	}
	r.SubmitDrawToParentOffscreen(i, ObjectDrawable)

	var ctx *ClippingContext
	if r.drawableClipping != nil {
		ctx = r.drawableClipping.ContextFor(i)
	}
	if ctx != nil && r.highPrecision {
		r.drawHighPrecisionMask(r.drawableClipping, ctx)
	}

	r.SetClippingContextBufferForDrawable(ctx)
	r.culling = m.DrawableCulling(i)
	r.DrawMesh(i)
}

// SubmitDrawToParentOffscreen flushes the open offscreens that object i of
// kind t is not drawn into, innermost first.
func (r *Renderer) SubmitDrawToParentOffscreen(i int, t ObjectType) {
	if r.currentOffscreen == NoIndex || i == NoIndex {
		return
	}
	m := r.model
	currentOwner := m.OffscreenOwnerPartIndex(r.currentOffscreen)
	if currentOwner == NoIndex {
		return
	}

	parent := NoIndex
	switch t {
	case ObjectDrawable:
		parent = m.DrawableParentPartIndex(i)
	case ObjectOffscreen:
		if owner := m.OffscreenOwnerPartIndex(i); owner != NoIndex {
			parent = m.PartParentPartIndex(owner)
		}
	}
	for ; parent != NoIndex; parent = m.PartParentPartIndex(parent) {
		if parent == currentOwner {
			return
		}
	}

	r.DrawOffscreen(r.currentOffscreen)
	r.SubmitDrawToParentOffscreen(i, t)
}

// AddOffscreen opens offscreen i: it acquires a pooled target, binds it and
// makes it the current offscreen. An open offscreen that is not an
// ancestor of i is flushed first.
func (r *Renderer) AddOffscreen(i int) {
	m := r.model
	if cur := r.currentOffscreen; cur != NoIndex && cur != i {
		curOwner := m.OffscreenOwnerPartIndex(cur)
		isParent := false
		if owner := m.OffscreenOwnerPartIndex(i); owner != NoIndex {
			for p := m.PartParentPartIndex(owner); p != NoIndex; p = m.PartParentPartIndex(p) {
				if p == curOwner {
					isParent = true
					break
				}
			}
		}
		if !isParent {
			r.SubmitDrawToParentOffscreen(i, ObjectOffscreen)
		}
	}

	o := &r.offscreens[i]
	o.acquire(r.pool, r.rtWidth, r.rtHeight)
	o.Old = o.Parent

	var restore gfx.Surface
	if o.Old != NoIndex {
		if t := r.offscreens[o.Old].target; t.IsValid() {
			restore = t.Surface()
		}
	}
	if restore == nil {
		restore = r.root
	}

	r.currentOffscreen = i
	r.stats.OffscreenOpens++
	if !o.target.IsValid() {
		r.currentSurface = restore
		return
	}
	o.target.BeginDraw(restore)
	r.dev.SetViewport(gfx.Viewport{Width: r.rtWidth, Height: r.rtHeight})
	o.target.Clear(0, 0, 0, 0)
	r.currentSurface = o.target.Surface()
}

// DrawOffscreen closes offscreen i and composites it into its parent
// offscreen or the root.
func (r *Renderer) DrawOffscreen(i int) {
	var ctx *ClippingContext
	if r.offscreenClipping != nil {
		ctx = r.offscreenClipping.ContextFor(i)
	}
	if ctx != nil && r.highPrecision {
		r.drawHighPrecisionMask(r.offscreenClipping, ctx)
	}
	r.SetClippingContextBufferForOffscreen(ctx)
	r.culling = r.model.OffscreenCulling(i)
	r.drawOffscreenMesh(i)
}

func (r *Renderer) drawOffscreenMesh(i int) {
	m := r.model
	o := &r.offscreens[i]
	ctx := r.clipForOffscreen
	r.clipForOffscreen = nil

	if o.target.IsValid() {
		o.target.EndDraw()
		r.currentSurface = o.target.RestoreSurface()
	}
	r.currentOffscreen = o.Old
	r.stats.OffscreenFlushes++
	defer o.release(r.pool)

	if !o.target.IsValid() {
		return
	}

	begin := ShaderNamesBegin(m.OffscreenBlendMode(i))
	blend, advanced := BlendStateFor(begin)
	op := m.OffscreenOpacity(i)
	call := gfx.DrawCall{
		Pipeline:      r.shaders.Pipeline(begin + VariantOffset(ctx != nil, m.OffscreenInvertedMask(i), true)),
		Blend:         blend,
		Culling:       r.culling,
		Positions:     quadPositions,
		UVs:           quadUVs,
		Indices:       quadIndices,
		Texture:       o.target.Surface(),
		MVP:           mgl32.Ident4(),
		ClipMatrix:    mgl32.Ident4(),
		BaseColor:     gfx.Color{R: op, G: op, B: op, A: op},
		MultiplyColor: m.OffscreenMultiplyColor(i),
		ScreenColor:   m.OffscreenScreenColor(i),
	}
	if advanced {
		var src *RenderTarget
		if o.Old != NoIndex {
			src = r.offscreens[o.Old].target
		} else {
			src = r.ModelRenderTarget(0)
		}
		call.BlendTexture = surfaceOf(r.CopyRenderTarget(src))
	}
	if ctx != nil {
		r.applyMask(&call, r.offscreenClipping, ctx)
	}
	if call.Pipeline == nil {
		r.stats.Skipped++
		return
	}
	r.dev.Draw(&call)
	r.stats.Draws++
}

// drawHighPrecisionMask renders ctx's mask alone into buffer 0 before the
// object it clips is drawn.
func (r *Renderer) drawHighPrecisionMask(cm *ClippingManager, ctx *ClippingContext) {
	if !ctx.IsUsing {
		return
	}
	buf := cm.MaskBuffer(r.frames.Current(), ctx.BufferIndex)
	if !buf.IsValid() {
		return
	}
	m := r.model
	prev := r.dev.Viewport()
	w, h := cm.MaskBufferSize()
	r.dev.SetViewport(gfx.Viewport{Width: w, Height: h})
	r.preDraw()

	buf.BeginDraw(r.currentSurface)
	buf.Clear(1, 1, 1, 1)
	for _, idx := range ctx.MaskIndices {
		if !m.DrawableDynamicFlags(idx).VertexPositionsDidChange() {
			continue
		}
		r.culling = m.DrawableCulling(idx)
		r.SetClippingContextBufferForMask(cm, ctx)
		r.DrawMesh(idx)
	}
	buf.EndDraw()
	r.SetClippingContextBufferForMask(nil, nil)
	r.dev.SetViewport(prev)
}

// DrawMesh draws drawable i with the state selected by the clipping
// context setters: as a mask when a mask context is set, otherwise with
// its blend mode and optional clip mask. Drawables without indices, with
// no opacity outside mask passes, or without a bound texture are skipped.
func (r *Renderer) DrawMesh(i int) {
	m := r.model
	maskCtx, maskCM := r.clipForMask, r.maskManager
	clip := r.clipForDrawable
	r.SetClippingContextBufferForMask(nil, nil)
	r.clipForDrawable = nil

	indices := m.DrawableIndices(i)
	if len(indices) == 0 {
		return
	}
	if maskCtx == nil && m.DrawableOpacity(i) <= 0 {
		return
	}
	tex, ok := r.textures[m.DrawableTextureIndex(i)]
	if !ok {
		r.stats.Skipped++
		return
	}

	pos, uvs := r.frames.Stage(i, m.DrawableVertexPositions(i), m.DrawableVertexUVs(i))
	call := gfx.DrawCall{
		Culling:       r.culling,
		Positions:     pos,
		UVs:           uvs,
		Indices:       indices,
		Texture:       tex,
		MultiplyColor: m.DrawableMultiplyColor(i),
		ScreenColor:   m.DrawableScreenColor(i),
	}
	if maskCtx != nil {
		r.setupMaskCall(&call, maskCM, maskCtx)
	} else {
		r.setupDrawableCall(&call, i, clip)
	}
	if call.Pipeline == nil {
		r.stats.Skipped++
		return
	}
	r.dev.Draw(&call)
	if maskCtx != nil {
		r.stats.MaskDraws++
	} else {
		r.stats.Draws++
	}
}

func (r *Renderer) setupMaskCall(call *gfx.DrawCall, cm *ClippingManager, ctx *ClippingContext) {
	l := ctx.LayoutBounds
	call.Pipeline = r.shaders.Pipeline(ShaderSetupMask)
	call.Blend = BlendStateMask
	call.MVP = ctx.MatrixForMask
	call.ClipMatrix = ctx.MatrixForMask
	call.ChannelFlag = cm.ChannelFlag(ctx.LayoutChannelIndex)
	// The layout rectangle in mask clip space; fragments outside it are
	// discarded so neighbouring cells stay untouched.
	call.BaseColor = gfx.Color{
		R: l.X*2 - 1, G: l.Y*2 - 1,
		B: l.Right()*2 - 1, A: l.Bottom()*2 - 1,
	}
}

func (r *Renderer) setupDrawableCall(call *gfx.DrawCall, i int, clip *ClippingContext) {
	m := r.model
	begin := ShaderNamesBegin(m.DrawableBlendMode(i))
	blend, advanced := BlendStateFor(begin)
	call.Pipeline = r.shaders.Pipeline(begin + VariantOffset(clip != nil, m.DrawableInvertedMask(i), r.premultiplied))
	call.Blend = blend
	call.MVP = r.mvp
	call.ClipMatrix = mgl32.Ident4()

	if advanced {
		var src *RenderTarget
		if r.currentOffscreen != NoIndex {
			src = r.offscreens[r.currentOffscreen].target
		} else {
			src = r.ModelRenderTarget(0)
		}
		call.BlendTexture = surfaceOf(r.CopyRenderTarget(src))
	}
	if clip != nil {
		r.applyMask(call, r.drawableClipping, clip)
	}

	op := m.DrawableOpacity(i)
	if m.IsBlendModeEnabled() {
		// The model color is applied once when the model target is
		// composited.
		call.BaseColor = gfx.Color{R: 1, G: 1, B: 1, A: op}
		if r.premultiplied {
			call.BaseColor = gfx.Color{R: op, G: op, B: op, A: op}
		}
	} else {
		call.BaseColor = r.ModelColorWithOpacity(op)
	}
}

func (r *Renderer) applyMask(call *gfx.DrawCall, cm *ClippingManager, ctx *ClippingContext) {
	if buf := cm.MaskBuffer(r.frames.Current(), ctx.BufferIndex); buf.IsValid() {
		call.MaskTexture = buf.Surface()
	}
	call.ClipMatrix = ctx.MatrixForDraw
	call.ChannelFlag = cm.ChannelFlag(ctx.LayoutChannelIndex)
}

// CopyRenderTarget makes src readable while it is the draw target. With a
// texture barrier src itself is returned; otherwise src is copied into
// model render target 1 and that copy is returned.
func (r *Renderer) CopyRenderTarget(src *RenderTarget) *RenderTarget {
	if !src.IsValid() {
		return src
	}
	if r.dev.TextureBarrier() {
		r.dev.Barrier()
		return src
	}
	dst := r.ModelRenderTarget(1)
	if dst == nil {
		return src
	}
	if err := CopyRenderTarget(r.dev, dst, src); err != nil {
		Logger().Error("cubism: copy render target", "error", err)
		return src
	}
	r.stats.Copies++
	return dst
}

func surfaceOf(rt *RenderTarget) gfx.Texture {
	if !rt.IsValid() {
		return nil
	}
	return rt.Surface()
}

// PostDraw ends the frame slot: the fence is signalled and the next slot
// becomes current.
func (r *Renderer) PostDraw() {
	r.frames.Advance()
}

func (r *Renderer) beforeDrawModelRenderTarget() {
	if len(r.modelTargets) == 0 {
		return
	}
	for i, rt := range r.modelTargets {
		if w, h := rt.Size(); w == r.rtWidth && h == r.rtHeight && rt.IsValid() {
			continue
		}
		if err := rt.Recreate(r.rtWidth, r.rtHeight); err != nil {
			Logger().Error("cubism: model render target", "index", i, "error", err)
		}
	}
	rt := r.modelTargets[0]
	rt.BeginDraw(nil)
	r.dev.SetViewport(gfx.Viewport{Width: r.rtWidth, Height: r.rtHeight})
	rt.Clear(0, 0, 0, 0)
}

// afterDrawModelRenderTarget composites model target 0 onto the host
// surface with the model color.
func (r *Renderer) afterDrawModelRenderTarget(hostViewport gfx.Viewport) {
	if len(r.modelTargets) == 0 {
		return
	}
	rt := r.modelTargets[0]
	rt.EndDraw()
	r.dev.SetViewport(hostViewport)

	if !rt.IsValid() {
		return
	}
	call := gfx.DrawCall{
		Pipeline:   r.shaders.Pipeline(ShaderCopy),
		Blend:      BlendStateNormal,
		Positions:  quadPositions,
		UVs:        quadUVs,
		Indices:    quadIndices,
		Texture:    rt.Surface(),
		MVP:        mgl32.Ident4(),
		ClipMatrix: mgl32.Ident4(),
		BaseColor:  r.modelColor.Premultiply(),
	}
	if call.Pipeline == nil {
		r.stats.Skipped++
		return
	}
	r.dev.Draw(&call)
	r.stats.Draws++
}
