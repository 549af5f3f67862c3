package ebitengfx

import (
	"strings"

	"github.com/phanxgames/cubism/gfx"
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Images[0] is the drawable texture,
// Images[1] the mask buffer and Images[2] the blend texture. custom.xy
// carries the clip-matrix position of the fragment.

const shaderHeader = `//kage:unit pixels
package main

var BaseColor vec4
var MultiplyColor vec4
var ScreenColor vec4
var ChannelFlag vec4
`

const copyFragment = `
func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	return imageSrc0At(srcPos) * BaseColor
}
`

// The base color carries the layout rectangle in mask clip space.
const setupMaskFragment = `
func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	r := BaseColor
	inside := step(r.x, custom.x) * step(r.y, custom.y) * step(custom.x, r.z) * step(custom.y, r.w)
	return ChannelFlag * (imageSrc0At(srcPos).a * inside)
}
`

const blendHelpers = `
func lum(c vec3) float {
	return 0.3*c.r + 0.59*c.g + 0.11*c.b
}

func clipColor(c vec3) vec3 {
	l := lum(c)
	n := min(min(c.r, c.g), c.b)
	x := max(max(c.r, c.g), c.b)
	if n < 0 && l != n {
		c = vec3(l) + (c-vec3(l))*l/(l-n)
	}
	if x > 1 && x != l {
		c = vec3(l) + (c-vec3(l))*(1-l)/(x-l)
	}
	return c
}

func setLum(c vec3, l float) vec3 {
	return clipColor(c + vec3(l-lum(c)))
}

func sat(c vec3) float {
	return max(max(c.r, c.g), c.b) - min(min(c.r, c.g), c.b)
}

func setSat(c vec3, s float) vec3 {
	lo := min(min(c.r, c.g), c.b)
	hi := max(max(c.r, c.g), c.b)
	if hi <= lo {
		return vec3(0)
	}
	return (c - vec3(lo)) * s / (hi - lo)
}

func hardLight(s, d float) float {
	if s <= 0.5 {
		return d * 2 * s
	}
	s2 := 2*s - 1
	return d + s2 - d*s2
}

func colorBurn(s, d float) float {
	if d >= 1 {
		return 1
	}
	if s <= 0 {
		return 0
	}
	return 1 - min(1, (1-d)/s)
}

func colorDodge(s, d float) float {
	if d <= 0 {
		return 0
	}
	if s >= 1 {
		return 1
	}
	return min(1, d/(1-s))
}

func softLight(s, d float) float {
	if s <= 0.5 {
		return d - (1-2*s)*d*(1-d)
	}
	dd := sqrt(d)
	if d <= 0.25 {
		dd = ((16*d-12)*d + 4) * d
	}
	return d + (2*s-1)*(dd-d)
}
`

// blendRGBBodies holds the body of blendRGB(s, d vec3) vec3 per color
// blend, on straight colors.
var blendRGBBodies = map[gfx.ColorBlend]string{
	gfx.ColorBlendNormal:      `return s`,
	gfx.ColorBlendAdd:         `return min(s+d, vec3(1))`,
	gfx.ColorBlendAddGlow:     `return s + d`,
	gfx.ColorBlendDarken:      `return min(s, d)`,
	gfx.ColorBlendMultiply:    `return s * d`,
	gfx.ColorBlendColorBurn:   `return vec3(colorBurn(s.r, d.r), colorBurn(s.g, d.g), colorBurn(s.b, d.b))`,
	gfx.ColorBlendLinearBurn:  `return max(s+d-vec3(1), vec3(0))`,
	gfx.ColorBlendLighten:     `return max(s, d)`,
	gfx.ColorBlendScreen:      `return s + d - s*d`,
	gfx.ColorBlendColorDodge:  `return vec3(colorDodge(s.r, d.r), colorDodge(s.g, d.g), colorDodge(s.b, d.b))`,
	gfx.ColorBlendOverlay:     `return vec3(hardLight(d.r, s.r), hardLight(d.g, s.g), hardLight(d.b, s.b))`,
	gfx.ColorBlendSoftLight:   `return vec3(softLight(s.r, d.r), softLight(s.g, d.g), softLight(s.b, d.b))`,
	gfx.ColorBlendHardLight:   `return vec3(hardLight(s.r, d.r), hardLight(s.g, d.g), hardLight(s.b, d.b))`,
	gfx.ColorBlendLinearLight: `return clamp(d+2*s-vec3(1), vec3(0), vec3(1))`,
	gfx.ColorBlendHue:         `return setLum(setSat(s, sat(d)), lum(d))`,
	gfx.ColorBlendColor:       `return setLum(s, lum(d))`,
}

// weightBodies holds the body of weights(sa, da float) vec3 per alpha
// operator: the coverage of both, source only and destination only.
var weightBodies = map[gfx.AlphaBlend]string{
	gfx.AlphaBlendOver:         `return vec3(sa*da, sa*(1-da), da*(1-sa))`,
	gfx.AlphaBlendAtop:         `return vec3(sa*da, 0, da*(1-sa))`,
	gfx.AlphaBlendOut:          `return vec3(0, sa*(1-da), 0)`,
	gfx.AlphaBlendConjointOver: `return vec3(min(sa, da), max(sa-da, 0), max(da-sa, 0))`,
	gfx.AlphaBlendDisjointOver: `return vec3(max(sa+da-1, 0), min(sa, 1-da), min(da, 1-sa))`,
}

const compositeFunc = `
func composite(src, dst vec4) vec4 {
	cs := vec3(0)
	if src.a > 0 {
		cs = src.rgb / src.a
	}
	cd := vec3(0)
	if dst.a > 0 {
		cd = dst.rgb / dst.a
	}
	p := weights(src.a, dst.a)
	b := blendRGB(cs, cd)
	return vec4(p.x*b+p.y*cs+p.z*cd, p.x+p.y+p.z)
}
`

// ShaderSource returns the Kage source for desc.
func ShaderSource(desc gfx.PipelineDesc) []byte {
	var b strings.Builder
	b.WriteString(shaderHeader)
	switch desc.Kind {
	case gfx.PipelineCopy:
		b.WriteString(copyFragment)
		return []byte(b.String())
	case gfx.PipelineSetupMask:
		b.WriteString(setupMaskFragment)
		return []byte(b.String())
	}

	if desc.Advanced {
		b.WriteString(blendHelpers)
		body, ok := blendRGBBodies[desc.ColorBlend]
		if !ok {
			body = blendRGBBodies[gfx.ColorBlendNormal]
		}
		b.WriteString("\nfunc blendRGB(s, d vec3) vec3 {\n\t" + body + "\n}\n")
		body, ok = weightBodies[desc.AlphaBlend]
		if !ok {
			body = weightBodies[gfx.AlphaBlendOver]
		}
		b.WriteString("\nfunc weights(sa, da float) vec3 {\n\t" + body + "\n}\n")
		b.WriteString(compositeFunc)
	}

	b.WriteString(`
func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	tex := imageSrc0At(srcPos)
	rgb := tex.rgb * MultiplyColor.rgb
`)
	if desc.Premultiplied {
		b.WriteString(`	rgb = rgb + ScreenColor.rgb*tex.a - rgb*ScreenColor.rgb
	col := vec4(rgb, tex.a) * BaseColor
`)
	} else {
		b.WriteString(`	rgb = rgb + ScreenColor.rgb - rgb*ScreenColor.rgb
	col := vec4(rgb, tex.a) * BaseColor
	col.rgb *= col.a
`)
	}
	if desc.Masked {
		b.WriteString(`	m := imageSrc1At(imageSrc1Origin() + custom.xy*imageSrc1Size())
	v := dot(vec4(1)-m, ChannelFlag)
`)
		if desc.Inverted {
			b.WriteString("\tv = 1 - v\n")
		}
		b.WriteString("\tcol *= v\n")
	}
	if desc.Advanced {
		b.WriteString(`	dst := imageSrc2At(imageSrc2Origin() + dstPos.xy - imageDstOrigin())
	col = composite(col, dst)
`)
	}
	b.WriteString("\treturn col\n}\n")
	return []byte(b.String())
}
