package cubism

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/cubism/gfx"
)

// maskMargin widens a group's bounds before packing so antialiased edges
// are not cut off.
const maskMargin = 0.05

// ClippingContext is one mask group: the drawables whose union is the mask
// and the objects drawn through it.
type ClippingContext struct {
	// MaskIndices are drawable indices. Fixed after construction.
	MaskIndices []int
	// ClippedIndices are the drawables or offscreens sharing this mask.
	ClippedIndices []int

	// Per-frame state.
	IsUsing            bool
	AllClippedDrawRect Rect
	LayoutBounds       Rect
	LayoutChannelIndex int
	BufferIndex        int
	MatrixForMask      mgl32.Mat4
	MatrixForDraw      mgl32.Mat4
}

// ClippingManager packs the mask groups of one object kind into shared
// mask buffers and generates them each frame.
type ClippingManager struct {
	objectType  ObjectType
	contexts    []*ClippingContext
	forObject   []*ClippingContext
	children    [][]int // offscreen index -> drawables under its owner part
	bufferCount int
	width       int
	height      int

	channelFlags [ColorChannelCount]gfx.Color

	// buffers[slot][buffer]; one set per multi-buffer slot.
	buffers [][]*RenderTarget
	cleared []bool
}

// NewClippingManager groups the masked drawables (or offscreens) of m by
// identical mask sets. maskBufferCount below 1 is treated as 1.
func NewClippingManager(m Model, objectType ObjectType, maskBufferCount int) *ClippingManager {
	cm := &ClippingManager{
		objectType:  objectType,
		bufferCount: max(maskBufferCount, 1),
		width:       DefaultMaskBufferSize,
		height:      DefaultMaskBufferSize,
		channelFlags: [ColorChannelCount]gfx.Color{
			{R: 1}, {G: 1}, {B: 1}, {A: 1},
		},
	}
	n := objectCount(m, objectType)
	cm.forObject = make([]*ClippingContext, n)
	for i := range n {
		masks := objectMasks(m, objectType, i)
		if len(masks) == 0 {
			continue
		}
		ctx := cm.FindSameClip(masks)
		if ctx == nil {
			ctx = &ClippingContext{MaskIndices: slices.Clone(masks)}
			cm.contexts = append(cm.contexts, ctx)
		}
		ctx.ClippedIndices = append(ctx.ClippedIndices, i)
		cm.forObject[i] = ctx
	}
	if objectType == ObjectOffscreen {
		cm.children = make([][]int, n)
		for i, ctx := range cm.forObject {
			if ctx != nil {
				cm.children[i] = CollectOffscreenChildDrawables(m, i)
			}
		}
	}
	return cm
}

// FindSameClip returns the context whose mask set equals masks, or nil.
func (cm *ClippingManager) FindSameClip(masks []int) *ClippingContext {
	for _, ctx := range cm.contexts {
		if len(ctx.MaskIndices) != len(masks) {
			continue
		}
		same := true
		for _, idx := range masks {
			if !slices.Contains(ctx.MaskIndices, idx) {
				same = false
				break
			}
		}
		if same {
			return ctx
		}
	}
	return nil
}

// Contexts returns every mask group in creation order.
func (cm *ClippingManager) Contexts() []*ClippingContext { return cm.contexts }

// ContextFor returns the group that clips object i, or nil.
func (cm *ClippingManager) ContextFor(i int) *ClippingContext {
	if i < 0 || i >= len(cm.forObject) {
		return nil
	}
	return cm.forObject[i]
}

// ObjectType returns the kind of object the manager clips.
func (cm *ClippingManager) ObjectType() ObjectType { return cm.objectType }

// CollectOffscreenChildDrawables returns every drawable whose parent part
// is the owner of offscreen i or lies below it.
func CollectOffscreenChildDrawables(m Model, i int) []int {
	owner := m.OffscreenOwnerPartIndex(i)
	if owner == NoIndex {
		return nil
	}
	var out []int
	for d := range m.DrawableCount() {
		if isDescendantPart(m, m.DrawableParentPartIndex(d), owner) {
			out = append(out, d)
		}
	}
	return out
}

// CalcClippedTotalBounds sets ctx.AllClippedDrawRect to the union of the
// visible clipped geometry and IsUsing to whether there was any.
func (cm *ClippingManager) CalcClippedTotalBounds(m Model, ctx *ClippingContext) {
	b := newBounds()
	for _, idx := range ctx.ClippedIndices {
		switch cm.objectType {
		case ObjectDrawable:
			if m.DrawableDynamicFlags(idx).IsVisible() {
				b.addPositions(m.DrawableVertexPositions(idx))
			}
		case ObjectOffscreen:
			for _, d := range cm.children[idx] {
				if m.DrawableDynamicFlags(d).IsVisible() {
					b.addPositions(m.DrawableVertexPositions(d))
				}
			}
		}
	}
	ctx.AllClippedDrawRect = b.rect()
	ctx.IsUsing = !b.empty
}

// updateUsage refreshes the bounds of every group and returns how many
// have visible geometry.
func (cm *ClippingManager) updateUsage(m Model) int {
	using := 0
	for _, ctx := range cm.contexts {
		cm.CalcClippedTotalBounds(m, ctx)
		if ctx.IsUsing {
			using++
		}
	}
	return using
}

// SetupLayoutBounds assigns atlas cells to the using groups in order.
func (cm *ClippingManager) SetupLayoutBounds(usingClipCount int) {
	if usingClipCount <= 0 {
		return
	}
	layouts, ok := ComputeLayout(usingClipCount, cm.bufferCount)
	if !ok {
		Logger().Error("cubism: too many mask groups",
			"groups", usingClipCount, "max", LayoutCapacity(cm.bufferCount),
			"buffers", cm.bufferCount)
	}
	i := 0
	for _, ctx := range cm.contexts {
		if !ctx.IsUsing {
			continue
		}
		l := layouts[i]
		ctx.LayoutBounds = l.Bounds
		ctx.LayoutChannelIndex = l.Channel
		ctx.BufferIndex = l.Buffer
		i++
	}
}

// setMatrices builds both matrices of ctx from its layout and src.
func (cm *ClippingManager) setMatrices(ctx *ClippingContext, src Rect, scaleX, scaleY float32, mvp mgl32.Mat4) {
	ctx.MatrixForMask, ctx.MatrixForDraw = MaskMatrices(false, ctx.LayoutBounds, scaleX, scaleY, src)
	if cm.objectType == ObjectOffscreen {
		// Offscreens are drawn as a full-screen quad, so the draw matrix
		// starts from clip space.
		ctx.MatrixForDraw = ctx.MatrixForDraw.Mul4(InvertMatrix(mvp))
	}
}

// MaskDrawFunc draws drawable as part of ctx's mask into the bound buffer.
type MaskDrawFunc func(ctx *ClippingContext, drawable int)

// SetupClippingContext renders this frame's mask buffers for the given
// multi-buffer slot and returns the number of groups in use. Mask drawables
// whose positions did not change since the last update are not redrawn.
// The device's bound surface and viewport are restored to restore and
// restoreViewport.
func (cm *ClippingManager) SetupClippingContext(m Model, dev gfx.Device, slot int, mvp mgl32.Mat4,
	restore gfx.Surface, restoreViewport gfx.Viewport, draw MaskDrawFunc,
) int {
	using := cm.updateUsage(m)
	if using <= 0 {
		return 0
	}

	dev.SetViewport(gfx.Viewport{Width: cm.width, Height: cm.height})
	cm.SetupLayoutBounds(using)

	if len(cm.cleared) != cm.bufferCount {
		cm.cleared = make([]bool, cm.bufferCount)
	}
	clear(cm.cleared)

	var current *RenderTarget
	for _, ctx := range cm.contexts {
		if !ctx.IsUsing {
			continue
		}
		buf := cm.MaskBuffer(slot, ctx.BufferIndex)
		if !buf.IsValid() {
			continue
		}
		if buf != current {
			if current != nil {
				current.EndDraw()
			}
			current = buf
			current.BeginDraw(restore)
		}

		l := ctx.LayoutBounds
		src := ctx.AllClippedDrawRect.Expanded(
			ctx.AllClippedDrawRect.Width*maskMargin,
			ctx.AllClippedDrawRect.Height*maskMargin)
		var sx, sy float32
		if src.Width > 0 {
			sx = l.Width / src.Width
		}
		if src.Height > 0 {
			sy = l.Height / src.Height
		}
		cm.setMatrices(ctx, src, sx, sy, mvp)

		for _, idx := range ctx.MaskIndices {
			if !m.DrawableDynamicFlags(idx).VertexPositionsDidChange() {
				continue
			}
			if !cm.cleared[ctx.BufferIndex] {
				dev.Clear(gfx.White)
				cm.cleared[ctx.BufferIndex] = true
			}
			draw(ctx, idx)
		}
	}
	if current != nil {
		current.EndDraw()
	}
	dev.SetViewport(restoreViewport)
	return using
}

// SetupMatrixForHighPrecision prepares every using group for a dedicated
// full-buffer mask pass and returns how many are in use. Groups that fit
// the buffer at ppu pixels per unit are drawn at that resolution; larger
// ones are scaled down with the usual margin.
func (cm *ClippingManager) SetupMatrixForHighPrecision(m Model, mvp mgl32.Mat4, ppu float32) int {
	using := cm.updateUsage(m)
	if using <= 0 {
		return 0
	}
	for _, ctx := range cm.contexts {
		if !ctx.IsUsing {
			continue
		}
		ctx.LayoutBounds = fullRect
		ctx.LayoutChannelIndex = 0
		ctx.BufferIndex = 0

		l := ctx.LayoutBounds
		physW := l.Width * float32(cm.width)
		physH := l.Height * float32(cm.height)
		src := ctx.AllClippedDrawRect

		var sx, sy float32
		if src.Width*ppu > physW {
			src = src.Expanded(src.Width*maskMargin, 0)
			sx = l.Width / src.Width
		} else if physW > 0 {
			sx = ppu / physW
		}
		if src.Height*ppu > physH {
			src = src.Expanded(0, src.Height*maskMargin)
			sy = l.Height / src.Height
		} else if physH > 0 {
			sy = ppu / physH
		}
		cm.setMatrices(ctx, src, sx, sy, mvp)
	}
	return using
}

// ChannelFlag returns the color that selects channel i of a mask buffer.
func (cm *ClippingManager) ChannelFlag(i int) gfx.Color {
	if i < 0 || i >= ColorChannelCount {
		return gfx.Color{R: 1}
	}
	return cm.channelFlags[i]
}

// --- Mask buffers ---

// BufferCount returns the number of mask buffers per slot.
func (cm *ClippingManager) BufferCount() int { return cm.bufferCount }

// MaskBufferSize returns the mask buffer size in pixels.
func (cm *ClippingManager) MaskBufferSize() (int, int) { return cm.width, cm.height }

// SetClippingMaskBufferSize changes the mask buffer size. Buffers are
// reallocated on the next EnsureBuffers.
func (cm *ClippingManager) SetClippingMaskBufferSize(w, h int) {
	if w <= 0 || h <= 0 {
		Logger().Warn("cubism: ignoring mask buffer size", "width", w, "height", h)
		return
	}
	cm.width, cm.height = w, h
}

// EnsureBuffers allocates missing mask buffers for slots multi-buffer slots
// and recreates those whose size changed.
func (cm *ClippingManager) EnsureBuffers(dev gfx.Device, slots int) {
	for len(cm.buffers) < slots {
		cm.buffers = append(cm.buffers, make([]*RenderTarget, cm.bufferCount))
	}
	for s := range slots {
		for i, rt := range cm.buffers[s] {
			if rt == nil {
				rt = &RenderTarget{dev: dev}
				cm.buffers[s][i] = rt
			}
			if w, h := rt.Size(); w == cm.width && h == cm.height && rt.IsValid() {
				continue
			}
			if err := rt.Recreate(cm.width, cm.height); err != nil {
				Logger().Error("cubism: mask buffer", "slot", s, "buffer", i, "error", err)
			}
		}
	}
}

// MaskBuffer returns mask buffer i of slot, or nil.
func (cm *ClippingManager) MaskBuffer(slot, i int) *RenderTarget {
	if slot < 0 || slot >= len(cm.buffers) || i < 0 || i >= len(cm.buffers[slot]) {
		return nil
	}
	return cm.buffers[slot][i]
}

// Release disposes every mask buffer.
func (cm *ClippingManager) Release() {
	for _, set := range cm.buffers {
		for _, rt := range set {
			if rt != nil {
				rt.Release()
			}
		}
	}
	cm.buffers = nil
}
