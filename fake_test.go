package cubism

import (
	"github.com/phanxgames/cubism/gfx"
)

// --- Test model ---

type fakeDrawable struct {
	positions []float32
	uvs       []float32
	indices   []uint16
	texture   int
	opacity   float32
	blend     BlendMode
	parent    int
	masks     []int
	inverted  bool
	culling   bool
	flags     DynamicFlags
	multiply  gfx.Color
	screen    gfx.Color
}

type fakeOffscreen struct {
	owner    int
	opacity  float32
	blend    BlendMode
	masks    []int
	inverted bool
}

type fakeModel struct {
	drawables    []fakeDrawable
	offscreens   []fakeOffscreen
	parts        []int // parent part index per part
	orders       []int
	ppu          float32
	blendEnabled bool
}

// quadDrawable returns a visible, opaque, counter-clockwise quad spanning
// (x0,y0)-(x1,y1) in model space.
func quadDrawable(x0, y0, x1, y1 float32) fakeDrawable {
	return fakeDrawable{
		positions: []float32{x0, y0, x1, y0, x0, y1, x1, y1},
		uvs:       []float32{0, 0, 1, 0, 0, 1, 1, 1},
		indices:   []uint16{0, 1, 2, 2, 1, 3},
		opacity:   1,
		parent:    NoIndex,
		flags:     FlagIsVisible | FlagVertexPositionsDidChange,
		multiply:  gfx.White,
	}
}

func (m *fakeModel) DrawableCount() int                        { return len(m.drawables) }
func (m *fakeModel) DrawableVertexPositions(i int) []float32   { return m.drawables[i].positions }
func (m *fakeModel) DrawableVertexUVs(i int) []float32         { return m.drawables[i].uvs }
func (m *fakeModel) DrawableIndices(i int) []uint16            { return m.drawables[i].indices }
func (m *fakeModel) DrawableTextureIndex(i int) int            { return m.drawables[i].texture }
func (m *fakeModel) DrawableOpacity(i int) float32             { return m.drawables[i].opacity }
func (m *fakeModel) DrawableBlendMode(i int) BlendMode         { return m.drawables[i].blend }
func (m *fakeModel) DrawableParentPartIndex(i int) int         { return m.drawables[i].parent }
func (m *fakeModel) DrawableMasks(i int) []int                 { return m.drawables[i].masks }
func (m *fakeModel) DrawableInvertedMask(i int) bool           { return m.drawables[i].inverted }
func (m *fakeModel) DrawableCulling(i int) bool                { return m.drawables[i].culling }
func (m *fakeModel) DrawableDynamicFlags(i int) DynamicFlags   { return m.drawables[i].flags }
func (m *fakeModel) DrawableMultiplyColor(i int) gfx.Color     { return m.drawables[i].multiply }
func (m *fakeModel) DrawableScreenColor(i int) gfx.Color       { return m.drawables[i].screen }
func (m *fakeModel) OffscreenCount() int                       { return len(m.offscreens) }
func (m *fakeModel) OffscreenOwnerPartIndex(i int) int         { return m.offscreens[i].owner }
func (m *fakeModel) OffscreenOpacity(i int) float32            { return m.offscreens[i].opacity }
func (m *fakeModel) OffscreenBlendMode(i int) BlendMode        { return m.offscreens[i].blend }
func (m *fakeModel) OffscreenMasks(i int) []int                { return m.offscreens[i].masks }
func (m *fakeModel) OffscreenInvertedMask(i int) bool          { return m.offscreens[i].inverted }
func (m *fakeModel) OffscreenCulling(int) bool                 { return false }
func (m *fakeModel) OffscreenMultiplyColor(int) gfx.Color      { return gfx.White }
func (m *fakeModel) OffscreenScreenColor(int) gfx.Color        { return gfx.Transparent }
func (m *fakeModel) PartCount() int                            { return len(m.parts) }
func (m *fakeModel) PartParentPartIndex(i int) int             { return m.parts[i] }
func (m *fakeModel) IsBlendModeEnabled() bool                  { return m.blendEnabled }

func (m *fakeModel) PixelsPerUnit() float32 {
	if m.ppu == 0 {
		return 1
	}
	return m.ppu
}

func (m *fakeModel) RenderOrders() []int {
	if m.orders != nil {
		return m.orders
	}
	n := len(m.drawables) + len(m.offscreens)
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// drawOrder builds render orders from a draw sequence of objects, where
// drawables are named by index and offscreens by -(index+1).
func (m *fakeModel) drawOrder(seq ...int) {
	nd := len(m.drawables)
	m.orders = make([]int, nd+len(m.offscreens))
	for pos, obj := range seq {
		if obj >= 0 {
			m.orders[obj] = pos
		} else {
			m.orders[nd-obj-1] = pos
		}
	}
}

// --- Test fence ---

// slotFence simulates a GPU that finishes a slot lag frames after it was
// submitted. Writing a slot that is still in flight is an error.
type slotFence struct {
	lag      int
	frame    int
	inFlight map[int]int // slot -> frame submitted
	waits    []int
	errs     []string
}

func newSlotFence(lag int) *slotFence {
	return &slotFence{lag: lag, inFlight: make(map[int]int)}
}

func (f *slotFence) Wait(slot int) {
	f.waits = append(f.waits, slot)
	if _, busy := f.inFlight[slot]; busy {
		f.errs = append(f.errs, "slot reused while in flight")
	}
}

func (f *slotFence) Signal(slot int) {
	f.inFlight[slot] = f.frame
	f.frame++
	for s, submitted := range f.inFlight {
		if f.frame-submitted > f.lag {
			delete(f.inFlight, s)
		}
	}
}
