package gfx

import "math"

// ColorBlend is the color half of a model blend mode.
type ColorBlend uint8

// Color blend types, in model-file order.
const (
	ColorBlendNormal ColorBlend = iota
	ColorBlendAdd
	ColorBlendAddGlow
	ColorBlendDarken
	ColorBlendMultiply
	ColorBlendColorBurn
	ColorBlendLinearBurn
	ColorBlendLighten
	ColorBlendScreen
	ColorBlendColorDodge
	ColorBlendOverlay
	ColorBlendSoftLight
	ColorBlendHardLight
	ColorBlendLinearLight
	ColorBlendHue
	ColorBlendColor
	ColorBlendAddCompatible
	ColorBlendMultiplyCompatible

	ColorBlendCount = int(ColorBlendMultiplyCompatible) + 1
)

var colorBlendNames = [...]string{
	"Normal", "Add", "AddGlow", "Darken", "Multiply", "ColorBurn",
	"LinearBurn", "Lighten", "Screen", "ColorDodge", "Overlay",
	"SoftLight", "HardLight", "LinearLight", "Hue", "Color",
	"AddCompatible", "MultiplyCompatible",
}

// String returns the blend type name, or "" for unknown values.
func (b ColorBlend) String() string {
	if int(b) < len(colorBlendNames) {
		return colorBlendNames[b]
	}
	return ""
}

// AlphaBlend is the alpha-compositing half of a model blend mode.
type AlphaBlend uint8

// Alpha blend types, in model-file order.
const (
	AlphaBlendOver AlphaBlend = iota
	AlphaBlendAtop
	AlphaBlendOut
	AlphaBlendConjointOver
	AlphaBlendDisjointOver

	AlphaBlendCount = int(AlphaBlendDisjointOver) + 1
)

var alphaBlendNames = [...]string{"Over", "Atop", "Out", "ConjointOver", "DisjointOver"}

// String returns the blend type name, or "" for unknown values.
func (b AlphaBlend) String() string {
	if int(b) < len(alphaBlendNames) {
		return alphaBlendNames[b]
	}
	return ""
}

// --- CPU reference ---

// BlendRGB applies the color blend function to straight (non-premultiplied)
// source and destination colors. Backends without a shader compiler and the
// tests use it as the reference for the GPU variants.
func BlendRGB(mode ColorBlend, cs, cd [3]float32) [3]float32 {
	switch mode {
	case ColorBlendHue:
		return setLum(setSat(cs, sat(cd)), lum(cd))
	case ColorBlendColor:
		return setLum(cs, lum(cd))
	}
	var out [3]float32
	for i := range out {
		out[i] = blendChannel(mode, cs[i], cd[i])
	}
	return out
}

func blendChannel(mode ColorBlend, s, d float32) float32 {
	switch mode {
	case ColorBlendAdd:
		return min(s+d, 1)
	case ColorBlendAddGlow:
		return s + d
	case ColorBlendDarken:
		return min(s, d)
	case ColorBlendMultiply:
		return s * d
	case ColorBlendColorBurn:
		switch {
		case d >= 1:
			return 1
		case s <= 0:
			return 0
		}
		return 1 - min(1, (1-d)/s)
	case ColorBlendLinearBurn:
		return max(s+d-1, 0)
	case ColorBlendLighten:
		return max(s, d)
	case ColorBlendScreen:
		return s + d - s*d
	case ColorBlendColorDodge:
		switch {
		case d <= 0:
			return 0
		case s >= 1:
			return 1
		}
		return min(1, d/(1-s))
	case ColorBlendOverlay:
		return hardLight(d, s)
	case ColorBlendSoftLight:
		if s <= 0.5 {
			return d - (1-2*s)*d*(1-d)
		}
		var dd float32
		if d <= 0.25 {
			dd = ((16*d-12)*d + 4) * d
		} else {
			dd = float32(math.Sqrt(float64(d)))
		}
		return d + (2*s-1)*(dd-d)
	case ColorBlendHardLight:
		return hardLight(s, d)
	case ColorBlendLinearLight:
		return min(max(d+2*s-1, 0), 1)
	}
	return s
}

func hardLight(s, d float32) float32 {
	if s <= 0.5 {
		return d * 2 * s
	}
	s2 := 2*s - 1
	return d + s2 - d*s2
}

func lum(c [3]float32) float32 {
	return 0.3*c[0] + 0.59*c[1] + 0.11*c[2]
}

func clipColor(c [3]float32) [3]float32 {
	l := lum(c)
	n := min(c[0], c[1], c[2])
	x := max(c[0], c[1], c[2])
	if n < 0 && l != n {
		for i := range c {
			c[i] = l + (c[i]-l)*l/(l-n)
		}
	}
	if x > 1 && x != l {
		for i := range c {
			c[i] = l + (c[i]-l)*(1-l)/(x-l)
		}
	}
	return c
}

func setLum(c [3]float32, l float32) [3]float32 {
	d := l - lum(c)
	return clipColor([3]float32{c[0] + d, c[1] + d, c[2] + d})
}

func sat(c [3]float32) float32 {
	return max(c[0], c[1], c[2]) - min(c[0], c[1], c[2])
}

func setSat(c [3]float32, s float32) [3]float32 {
	lo := min(c[0], c[1], c[2])
	hi := max(c[0], c[1], c[2])
	if hi <= lo {
		return [3]float32{}
	}
	var out [3]float32
	for i := range c {
		out[i] = (c[i] - lo) * s / (hi - lo)
	}
	return out
}

// Composite blends premultiplied src over premultiplied dst with the given
// color blend and alpha-compositing operator and returns a premultiplied
// result.
func Composite(colorMode ColorBlend, alphaMode AlphaBlend, src, dst Color) Color {
	as, ad := src.A, dst.A
	cs := unpremultiply(src)
	cd := unpremultiply(dst)

	var p0, p1, p2 float32
	switch alphaMode {
	case AlphaBlendAtop:
		p0, p1, p2 = as*ad, 0, ad*(1-as)
	case AlphaBlendOut:
		p0, p1, p2 = 0, as*(1-ad), 0
	case AlphaBlendConjointOver:
		p0, p1, p2 = min(as, ad), max(as-ad, 0), max(ad-as, 0)
	case AlphaBlendDisjointOver:
		p0, p1, p2 = max(as+ad-1, 0), min(as, 1-ad), min(ad, 1-as)
	default:
		p0, p1, p2 = as*ad, as*(1-ad), ad*(1-as)
	}

	b := BlendRGB(colorMode, cs, cd)
	return Color{
		R: p0*b[0] + p1*cs[0] + p2*cd[0],
		G: p0*b[1] + p1*cs[1] + p2*cd[1],
		B: p0*b[2] + p1*cs[2] + p2*cd[2],
		A: p0 + p1 + p2,
	}
}

func unpremultiply(c Color) [3]float32 {
	if c.A <= 0 {
		return [3]float32{}
	}
	return [3]float32{c.R / c.A, c.G / c.A, c.B / c.A}
}
