package cubism

import "github.com/phanxgames/cubism/gfx"

// NoIndex marks a missing parent part, owner or offscreen.
const NoIndex = -1

// ObjectType distinguishes the two kinds of objects in the render order.
type ObjectType uint8

const (
	ObjectDrawable ObjectType = iota
	ObjectOffscreen
)

func (t ObjectType) String() string {
	if t == ObjectOffscreen {
		return "offscreen"
	}
	return "drawable"
}

// DynamicFlags are the per-frame drawable flags reported by the Core.
type DynamicFlags uint8

const (
	FlagIsVisible DynamicFlags = 1 << iota
	FlagVisibilityDidChange
	FlagOpacityDidChange
	FlagDrawOrderDidChange
	FlagRenderOrderDidChange
	FlagVertexPositionsDidChange
	FlagBlendColorDidChange
)

// IsVisible reports FlagIsVisible.
func (f DynamicFlags) IsVisible() bool { return f&FlagIsVisible != 0 }

// VertexPositionsDidChange reports FlagVertexPositionsDidChange.
func (f DynamicFlags) VertexPositionsDidChange() bool { return f&FlagVertexPositionsDidChange != 0 }

// Model is the read-only model state the renderer consumes each frame.
// Index arguments are always in range; implementations may panic otherwise.
//
// Render orders cover drawables first, then offscreens: RenderOrders()[i]
// is the draw position of drawable i for i < DrawableCount, and of
// offscreen i-DrawableCount after that.
type Model interface {
	DrawableCount() int
	DrawableVertexPositions(i int) []float32
	DrawableVertexUVs(i int) []float32
	DrawableIndices(i int) []uint16
	DrawableTextureIndex(i int) int
	DrawableOpacity(i int) float32
	DrawableBlendMode(i int) BlendMode
	DrawableParentPartIndex(i int) int
	DrawableMasks(i int) []int
	DrawableInvertedMask(i int) bool
	// DrawableCulling reports whether back faces are culled, after any
	// user override.
	DrawableCulling(i int) bool
	DrawableDynamicFlags(i int) DynamicFlags
	DrawableMultiplyColor(i int) gfx.Color
	DrawableScreenColor(i int) gfx.Color

	OffscreenCount() int
	OffscreenOwnerPartIndex(i int) int
	OffscreenOpacity(i int) float32
	OffscreenBlendMode(i int) BlendMode
	OffscreenMasks(i int) []int
	OffscreenInvertedMask(i int) bool
	OffscreenCulling(i int) bool
	OffscreenMultiplyColor(i int) gfx.Color
	OffscreenScreenColor(i int) gfx.Color

	PartCount() int
	PartParentPartIndex(i int) int

	RenderOrders() []int
	PixelsPerUnit() float32
	// IsBlendModeEnabled reports whether the model was authored with the
	// blend-mode feature set (advanced blends and offscreens).
	IsBlendModeEnabled() bool
}

// IsUsingMasking reports whether any drawable of m is clipped.
func IsUsingMasking(m Model) bool {
	for i := range m.DrawableCount() {
		if len(m.DrawableMasks(i)) > 0 {
			return true
		}
	}
	return false
}

// IsUsingMaskingForOffscreen reports whether any offscreen of m is clipped.
func IsUsingMaskingForOffscreen(m Model) bool {
	for i := range m.OffscreenCount() {
		if len(m.OffscreenMasks(i)) > 0 {
			return true
		}
	}
	return false
}

func objectCount(m Model, t ObjectType) int {
	if t == ObjectOffscreen {
		return m.OffscreenCount()
	}
	return m.DrawableCount()
}

func objectMasks(m Model, t ObjectType, i int) []int {
	if t == ObjectOffscreen {
		return m.OffscreenMasks(i)
	}
	return m.DrawableMasks(i)
}

// isDescendantPart reports whether part is owner or lies below it.
func isDescendantPart(m Model, part, owner int) bool {
	for p := part; p != NoIndex; p = m.PartParentPartIndex(p) {
		if p == owner {
			return true
		}
	}
	return false
}
