package cubism

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Rect is an axis-aligned rectangle. In model space Y grows upward; in mask
// atlas space both axes run 0..1.
type Rect struct {
	X, Y, Width, Height float32
}

// Right returns X + Width.
func (r Rect) Right() float32 { return r.X + r.Width }

// Bottom returns Y + Height.
func (r Rect) Bottom() float32 { return r.Y + r.Height }

// Expanded grows r by w on the left and right and h on the top and bottom.
func (r Rect) Expanded(w, h float32) Rect {
	return Rect{X: r.X - w, Y: r.Y - h, Width: r.Width + 2*w, Height: r.Height + 2*h}
}

// Contains reports whether (x, y) lies within r (inclusive of edges).
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Overlaps reports whether r and o share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// fullRect is the whole 0..1 atlas square.
var fullRect = Rect{Width: 1, Height: 1}

// bounds accumulates the bounding box of vertex positions.
type bounds struct {
	minX, minY, maxX, maxY float32
	empty                  bool
}

func newBounds() bounds {
	return bounds{
		minX: math.MaxFloat32, minY: math.MaxFloat32,
		maxX: -math.MaxFloat32, maxY: -math.MaxFloat32,
		empty: true,
	}
}

// addPositions adds x,y pairs.
func (b *bounds) addPositions(pos []float32) {
	for i := 0; i+1 < len(pos); i += 2 {
		x, y := pos[i], pos[i+1]
		b.minX = min(b.minX, x)
		b.maxX = max(b.maxX, x)
		b.minY = min(b.minY, y)
		b.maxY = max(b.maxY, y)
		b.empty = false
	}
}

func (b bounds) rect() Rect {
	if b.empty {
		return Rect{}
	}
	return Rect{X: b.minX, Y: b.minY, Width: b.maxX - b.minX, Height: b.maxY - b.minY}
}

// --- Matrices ---

// Column-vector convention: M·p. Composing "relative" operations in the
// order they are listed means right-multiplying.

func translate(x, y float32) mgl32.Mat4 { return mgl32.Translate3D(x, y, 0) }
func scale(x, y float32) mgl32.Mat4     { return mgl32.Scale3D(x, y, 1) }

// MaskMatrices returns the matrix that places model-space geometry inside
// layout (as clip space of the mask buffer) and the matrix that maps the
// same geometry to 0..1 mask texture coordinates for the masked draw.
// src is the margin-expanded model rectangle being packed.
func MaskMatrices(rightHanded bool, layout Rect, scaleX, scaleY float32, src Rect) (forMask, forDraw mgl32.Mat4) {
	forMask = translate(-1, -1).
		Mul4(scale(2, 2)).
		Mul4(translate(layout.X, layout.Y)).
		Mul4(scale(scaleX, scaleY)).
		Mul4(translate(-src.X, -src.Y))

	flip := float32(1)
	if rightHanded {
		flip = -1
	}
	forDraw = translate(layout.X, layout.Y*flip).
		Mul4(scale(scaleX, scaleY*flip)).
		Mul4(translate(-src.X, -src.Y))
	return forMask, forDraw
}

// invertEpsilon bounds the determinant below which a matrix is treated as
// singular.
const invertEpsilon = 1e-10

// InvertMatrix returns the inverse of m, or identity when m is singular.
func InvertMatrix(m mgl32.Mat4) mgl32.Mat4 {
	det := m.Det()
	if det > -invertEpsilon && det < invertEpsilon {
		return mgl32.Ident4()
	}
	return m.Inv()
}

// ApplyMatrix transforms the point (x, y, 0, 1) by m.
func ApplyMatrix(m mgl32.Mat4, x, y float32) (float32, float32) {
	p := m.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	return p.X(), p.Y()
}
