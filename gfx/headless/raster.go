package headless

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/phanxgames/cubism/gfx"
)

// vertex is a transformed vertex: window position, texture coordinates and
// the interpolated mask-space position.
type vertex struct {
	x, y   float32 // pixels
	nx, ny float32 // normalized device coordinates
	u, v   float32
	cx, cy float32
}

func transform(m mgl32.Mat4, x, y float32) (float32, float32) {
	p := m.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	if w := p.W(); w != 0 && w != 1 {
		return p.X() / w, p.Y() / w
	}
	return p.X(), p.Y()
}

func (d *Device) raster(call *gfx.DrawCall) {
	target := d.bound
	vp := d.viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = gfx.Viewport{Width: target.w, Height: target.h}
	}

	n := len(call.Positions) / 2
	verts := make([]vertex, n)
	for i := range verts {
		px, py := call.Positions[2*i], call.Positions[2*i+1]
		vt := &verts[i]
		vt.nx, vt.ny = transform(call.MVP, px, py)
		vt.x = float32(vp.X) + (vt.nx+1)*0.5*float32(vp.Width)
		vt.y = float32(vp.Y) + (vt.ny+1)*0.5*float32(vp.Height)
		if 2*i+1 < len(call.UVs) {
			vt.u, vt.v = call.UVs[2*i], call.UVs[2*i+1]
		}
		vt.cx, vt.cy = transform(call.ClipMatrix, px, py)
	}

	x0, y0 := max(vp.X, 0), max(vp.Y, 0)
	x1, y1 := min(vp.X+vp.Width, target.w), min(vp.Y+vp.Height, target.h)

	for t := 0; t+2 < len(call.Indices); t += 3 {
		i0, i1, i2 := int(call.Indices[t]), int(call.Indices[t+1]), int(call.Indices[t+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		a, b, c := verts[i0], verts[i1], verts[i2]

		// Counter-clockwise in device space is the front face.
		area := (b.nx-a.nx)*(c.ny-a.ny) - (c.nx-a.nx)*(b.ny-a.ny)
		if area == 0 || (call.Culling && area < 0) {
			continue
		}

		minX := max(int(min(a.x, b.x, c.x)), x0)
		maxX := min(int(max(a.x, b.x, c.x))+1, x1)
		minY := max(int(min(a.y, b.y, c.y)), y0)
		maxY := min(int(max(a.y, b.y, c.y))+1, y1)

		pa := (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
		for py := minY; py < maxY; py++ {
			fy := float32(py) + 0.5
			for px := minX; px < maxX; px++ {
				fx := float32(px) + 0.5
				w0 := ((b.x-fx)*(c.y-fy) - (c.x-fx)*(b.y-fy)) / pa
				w1 := ((c.x-fx)*(a.y-fy) - (a.x-fx)*(c.y-fy)) / pa
				w2 := 1 - w0 - w1
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				f := fragment{
					u:  w0*a.u + w1*b.u + w2*c.u,
					v:  w0*a.v + w1*b.v + w2*c.v,
					cx: w0*a.cx + w1*b.cx + w2*c.cx,
					cy: w0*a.cy + w1*b.cy + w2*c.cy,
					px: px, py: py,
				}
				src := shade(call, f)
				dst := target.At(px, py)
				target.Set(px, py, applyBlend(call.Blend, src, dst))
			}
		}
	}
}

type fragment struct {
	u, v   float32
	cx, cy float32
	px, py int
}

func sampleTexture(t gfx.Texture, u, v float32) gfx.Color {
	img, ok := t.(*Image)
	if !ok || img == nil || img.w == 0 || img.h == 0 {
		return gfx.White
	}
	return img.sample(u, v)
}

func step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

// shade evaluates the fragment stage for one pixel.
func shade(call *gfx.DrawCall, f fragment) gfx.Color {
	desc := call.Pipeline.Desc()
	switch desc.Kind {
	case gfx.PipelineCopy:
		return sampleTexture(call.Texture, f.u, f.v).Mul(call.BaseColor)

	case gfx.PipelineSetupMask:
		// The base color carries the layout rectangle in mask clip space.
		r := call.BaseColor
		inside := step(r.R, f.cx) * step(r.G, f.cy) * step(f.cx, r.B) * step(f.cy, r.A)
		a := sampleTexture(call.Texture, f.u, f.v).A * inside
		fl := call.ChannelFlag
		return gfx.Color{R: fl.R * a, G: fl.G * a, B: fl.B * a, A: fl.A * a}
	}

	tex := sampleTexture(call.Texture, f.u, f.v)
	mul, scr := call.MultiplyColor, call.ScreenColor
	var col gfx.Color
	if desc.Premultiplied {
		tex.R, tex.G, tex.B = tex.R*mul.R, tex.G*mul.G, tex.B*mul.B
		tex.R = tex.R + scr.R*tex.A - tex.R*scr.R
		tex.G = tex.G + scr.G*tex.A - tex.G*scr.G
		tex.B = tex.B + scr.B*tex.A - tex.B*scr.B
		col = tex.Mul(call.BaseColor)
	} else {
		tex.R, tex.G, tex.B = tex.R*mul.R, tex.G*mul.G, tex.B*mul.B
		tex.R = tex.R + scr.R - tex.R*scr.R
		tex.G = tex.G + scr.G - tex.G*scr.G
		tex.B = tex.B + scr.B - tex.B*scr.B
		col = tex.Mul(call.BaseColor).Premultiply()
	}

	if desc.Masked {
		m := sampleTexture(call.MaskTexture, f.cx, f.cy)
		fl := call.ChannelFlag
		v := (1-m.R)*fl.R + (1-m.G)*fl.G + (1-m.B)*fl.B + (1-m.A)*fl.A
		if desc.Inverted {
			v = 1 - v
		}
		col = gfx.Color{R: col.R * v, G: col.G * v, B: col.B * v, A: col.A * v}
	}

	if desc.Advanced {
		var dst gfx.Color
		if img, ok := call.BlendTexture.(*Image); ok && img != nil {
			dst = img.At(f.px, f.py)
		}
		col = gfx.Composite(desc.ColorBlend, desc.AlphaBlend, col, dst)
	}
	return col
}

func factorRGB(f gputypes.BlendFactor, s, d gfx.Color) [3]float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return [3]float32{}
	case gputypes.BlendFactorSrc:
		return [3]float32{s.R, s.G, s.B}
	case gputypes.BlendFactorOneMinusSrc:
		return [3]float32{1 - s.R, 1 - s.G, 1 - s.B}
	case gputypes.BlendFactorSrcAlpha:
		return [3]float32{s.A, s.A, s.A}
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return [3]float32{1 - s.A, 1 - s.A, 1 - s.A}
	case gputypes.BlendFactorDst:
		return [3]float32{d.R, d.G, d.B}
	case gputypes.BlendFactorOneMinusDst:
		return [3]float32{1 - d.R, 1 - d.G, 1 - d.B}
	case gputypes.BlendFactorDstAlpha:
		return [3]float32{d.A, d.A, d.A}
	case gputypes.BlendFactorOneMinusDstAlpha:
		return [3]float32{1 - d.A, 1 - d.A, 1 - d.A}
	}
	return [3]float32{1, 1, 1}
}

func factorAlpha(f gputypes.BlendFactor, s, d gfx.Color) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrc, gputypes.BlendFactorSrcAlpha:
		return s.A
	case gputypes.BlendFactorOneMinusSrc, gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - s.A
	case gputypes.BlendFactorDst, gputypes.BlendFactorDstAlpha:
		return d.A
	case gputypes.BlendFactorOneMinusDst, gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - d.A
	}
	return 1
}

// applyBlend evaluates an additive fixed-function blend.
func applyBlend(b gfx.BlendState, s, d gfx.Color) gfx.Color {
	fs := factorRGB(b.Color.SrcFactor, s, d)
	fd := factorRGB(b.Color.DstFactor, s, d)
	as := factorAlpha(b.Alpha.SrcFactor, s, d)
	ad := factorAlpha(b.Alpha.DstFactor, s, d)
	return gfx.Color{
		R: s.R*fs[0] + d.R*fd[0],
		G: s.G*fs[1] + d.G*fd[1],
		B: s.B*fs[2] + d.B*fd[2],
		A: s.A*as + d.A*ad,
	}
}
