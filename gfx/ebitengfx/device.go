// Package ebitengfx implements gfx.Device on Ebitengine. Draws go through
// DrawTrianglesShader with a Kage shader generated per pipeline variant.
//
// Surfaces are stored bottom-up, the same way as the headless backend:
// clip-space y = -1 is pixel row 0 and texture v = 0 samples row 0. Use
// [Device.Present] to show the root surface the right way up, and
// [NewTextureFromImage] to load image files in that orientation.
package ebitengfx

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/cubism"
	"github.com/phanxgames/cubism/gfx"
)

// ErrSurfaceSize is returned by NewSurface for non-positive dimensions.
var ErrSurfaceSize = errors.New("ebitengfx: surface size must be positive")

// Image wraps an *ebiten.Image as a gfx texture and surface.
type Image struct {
	img *ebiten.Image
}

// NewTexture wraps img without copying it.
func NewTexture(img *ebiten.Image) *Image {
	return &Image{img: img}
}

// NewTextureFromImage uploads src flipped vertically, so that v = 0 is the
// bottom row of the picture.
func NewTextureFromImage(src image.Image) *Image {
	up := ebiten.NewImageFromImage(src)
	w, h := up.Bounds().Dx(), up.Bounds().Dy()
	out := ebiten.NewImage(w, h)
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(1, -1)
	op.GeoM.Translate(0, float64(h))
	op.Blend = ebiten.BlendCopy
	out.DrawImage(up, &op)
	up.Deallocate()
	return &Image{img: out}
}

// Ebiten returns the wrapped image.
func (i *Image) Ebiten() *ebiten.Image { return i.img }

func (i *Image) Size() (int, int) {
	b := i.img.Bounds()
	return b.Dx(), b.Dy()
}

func (i *Image) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

type pipeline struct {
	desc   gfx.PipelineDesc
	shader *ebiten.Shader
}

func (p *pipeline) Desc() gfx.PipelineDesc { return p.desc }

// Device is a gfx.Device drawing into ebiten images. The zero value is not
// usable; create one with New.
type Device struct {
	root     *Image
	bound    *Image
	viewport gfx.Viewport

	verts    []ebiten.Vertex
	indices  []uint16
	uniforms map[string]any
	colors   [4][4]float32
	op       ebiten.DrawTrianglesShaderOptions
}

// New returns a device whose default target is a transparent w×h image.
func New(w, h int) *Device {
	d := &Device{root: &Image{img: ebiten.NewImage(w, h)}}
	d.bound = d.root
	d.uniforms = map[string]any{
		"BaseColor":     d.colors[0][:],
		"MultiplyColor": d.colors[1][:],
		"ScreenColor":   d.colors[2][:],
		"ChannelFlag":   d.colors[3][:],
	}
	return d
}

// Root returns the default draw target.
func (d *Device) Root() *Image { return d.root }

// Present draws the root surface onto screen, flipped upright and scaled
// to fill it.
func (d *Device) Present(screen *ebiten.Image) {
	w, h := d.root.Size()
	sb := screen.Bounds()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(1, -1)
	op.GeoM.Translate(0, float64(h))
	op.GeoM.Scale(float64(sb.Dx())/float64(w), float64(sb.Dy())/float64(h))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(d.root.img, &op)
}

func (d *Device) NewSurface(w, h int) (gfx.Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("ebitengfx: allocate %dx%d: %w", w, h, ErrSurfaceSize)
	}
	return &Image{img: ebiten.NewImage(w, h)}, nil
}

// DisposeSurface deallocates s. Disposing the root is ignored.
func (d *Device) DisposeSurface(s gfx.Surface) {
	img, ok := s.(*Image)
	if !ok || img == nil || img == d.root {
		return
	}
	img.img.Deallocate()
}

// Bind makes s the draw target; nil binds the root.
func (d *Device) Bind(s gfx.Surface) {
	img, ok := s.(*Image)
	if !ok || img == nil {
		img = d.root
	}
	d.bound = img
}

func (d *Device) Bound() gfx.Surface { return d.bound }

func (d *Device) Viewport() gfx.Viewport { return d.viewport }

func (d *Device) SetViewport(v gfx.Viewport) { d.viewport = v }

// Clear fills the bound surface with c, taken as premultiplied.
func (d *Device) Clear(c gfx.Color) {
	d.bound.img.Fill(toRGBA(c))
}

// TextureBarrier reports false: ebiten cannot sample the image it draws to.
func (d *Device) TextureBarrier() bool { return false }

func (d *Device) Barrier() {}

func (d *Device) CopySurface(dst, src gfx.Surface) {
	di, ok1 := dst.(*Image)
	si, ok2 := src.(*Image)
	if !ok1 || !ok2 || di == nil || si == nil {
		return
	}
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	di.img.DrawImage(si.img, &op)
}

// CompilePipeline compiles desc.Source, or the generated Kage source when
// it is empty.
func (d *Device) CompilePipeline(desc gfx.PipelineDesc) (gfx.Pipeline, error) {
	src := desc.Source
	if len(src) == 0 {
		src = ShaderSource(desc)
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("ebitengfx: compile %s: %w", desc.Name, err)
	}
	cubism.Logger().Debug("pipeline compiled", "name", desc.Name, "kind", desc.Kind)
	return &pipeline{desc: desc, shader: s}, nil
}

// Draw submits call against the bound surface. Draws without a texture
// are dropped.
func (d *Device) Draw(call *gfx.DrawCall) {
	p, ok := call.Pipeline.(*pipeline)
	if !ok || p == nil {
		return
	}
	tex, ok := call.Texture.(*Image)
	if !ok || tex == nil {
		return
	}

	target := d.bound
	tw, th := target.Size()
	vp := d.viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = gfx.Viewport{Width: tw, Height: th}
	}

	d.buildVertices(call, vp, tex)
	d.buildIndices(call)
	if len(d.indices) == 0 {
		return
	}

	d.colors[0] = colorVec(call.BaseColor)
	d.colors[1] = colorVec(call.MultiplyColor)
	d.colors[2] = colorVec(call.ScreenColor)
	d.colors[3] = colorVec(call.ChannelFlag)

	d.op = ebiten.DrawTrianglesShaderOptions{}
	d.op.Blend = EbitenBlend(call.Blend)
	d.op.Uniforms = d.uniforms
	d.op.Images[0] = tex.img
	if m, ok := call.MaskTexture.(*Image); ok && m != nil {
		d.op.Images[1] = m.img
	}
	if b, ok := call.BlendTexture.(*Image); ok && b != nil {
		d.op.Images[2] = b.img
	}

	dst := target.img
	clip := image.Rect(vp.X, vp.Y, vp.X+vp.Width, vp.Y+vp.Height).Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	if clip != dst.Bounds() {
		dst = dst.SubImage(clip).(*ebiten.Image)
	}
	dst.DrawTrianglesShader(d.verts, d.indices, p.shader, &d.op)
}

func transform(m mgl32.Mat4, x, y float32) (float32, float32) {
	p := m.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	if w := p.W(); w != 0 && w != 1 {
		return p.X() / w, p.Y() / w
	}
	return p.X(), p.Y()
}

func (d *Device) buildVertices(call *gfx.DrawCall, vp gfx.Viewport, tex *Image) {
	w, h := tex.Size()
	n := len(call.Positions) / 2
	d.verts = d.verts[:0]
	for i := range n {
		px, py := call.Positions[2*i], call.Positions[2*i+1]
		nx, ny := transform(call.MVP, px, py)
		cx, cy := transform(call.ClipMatrix, px, py)
		var u, v float32
		if 2*i+1 < len(call.UVs) {
			u, v = call.UVs[2*i], call.UVs[2*i+1]
		}
		d.verts = append(d.verts, ebiten.Vertex{
			DstX:    float32(vp.X) + (nx+1)*0.5*float32(vp.Width),
			DstY:    float32(vp.Y) + (ny+1)*0.5*float32(vp.Height),
			SrcX:    u * float32(w),
			SrcY:    v * float32(h),
			ColorR:  1,
			ColorG:  1,
			ColorB:  1,
			ColorA:  1,
			Custom0: cx,
			Custom1: cy,
			Custom2: nx,
			Custom3: ny,
		})
	}
}

// buildIndices copies the valid triangles of call, dropping back faces when
// culling. Custom2/3 hold the device coordinates used for the winding test.
func (d *Device) buildIndices(call *gfx.DrawCall) {
	d.indices = d.indices[:0]
	n := len(d.verts)
	for t := 0; t+2 < len(call.Indices); t += 3 {
		i0, i1, i2 := call.Indices[t], call.Indices[t+1], call.Indices[t+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		if call.Culling {
			a, b, c := d.verts[i0], d.verts[i1], d.verts[i2]
			area := (b.Custom2-a.Custom2)*(c.Custom3-a.Custom3) - (c.Custom2-a.Custom2)*(b.Custom3-a.Custom3)
			if area < 0 {
				continue
			}
		}
		d.indices = append(d.indices, i0, i1, i2)
	}
}

func colorVec(c gfx.Color) [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

func to8(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

func toRGBA(c gfx.Color) color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}
