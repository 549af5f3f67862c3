package model

import (
	"github.com/phanxgames/cubism"
	"github.com/phanxgames/cubism/gfx"
)

type cullingOverride struct {
	overridden bool
	culling    bool
}

type colorOverride struct {
	overridden bool
	color      gfx.Color
}

// Model wraps a Core and implements cubism.Model. Setters with an
// out-of-range index do nothing.
type Model struct {
	core         Core
	blendEnabled bool
	partChildren [][]int
	partOwned    [][]int

	modelCullings       bool
	modelMultiplyColors bool
	modelScreenColors   bool

	drawableCullings       []cullingOverride
	drawableMultiplyColors []colorOverride
	drawableScreenColors   []colorOverride

	offscreenCullings       []cullingOverride
	offscreenMultiplyColors []colorOverride
	offscreenScreenColors   []colorOverride

	partMultiplyColors []colorOverride
	partScreenColors   []colorOverride
}

var _ cubism.Model = (*Model)(nil)

// New wraps core. The blend-mode feature set is enabled when the model has
// offscreens or any drawable uses a blend other than Normal/Over and the
// two compatible modes.
func New(core Core) *Model {
	m := &Model{core: core}
	m.blendEnabled = detectBlendModes(core)

	nd, no, np := core.DrawableCount(), core.OffscreenCount(), core.PartCount()
	m.drawableCullings = make([]cullingOverride, nd)
	m.drawableMultiplyColors = neutralColors(nd, gfx.White)
	m.drawableScreenColors = neutralColors(nd, gfx.Color{A: 1})
	m.offscreenCullings = make([]cullingOverride, no)
	m.offscreenMultiplyColors = neutralColors(no, gfx.White)
	m.offscreenScreenColors = neutralColors(no, gfx.Color{A: 1})
	m.partMultiplyColors = neutralColors(np, gfx.White)
	m.partScreenColors = neutralColors(np, gfx.Color{A: 1})

	m.partChildren = make([][]int, np)
	for i := range nd {
		if p := core.DrawableParentPartIndex(i); p >= 0 && p < np {
			m.partChildren[p] = append(m.partChildren[p], i)
		}
	}
	m.partOwned = make([][]int, np)
	for i := range no {
		if p := core.OffscreenOwnerPartIndex(i); p >= 0 && p < np {
			m.partOwned[p] = append(m.partOwned[p], i)
		}
	}

	cubism.Logger().Debug("model: wrapped core",
		"drawables", nd, "offscreens", no, "parts", np,
		"blend_modes", m.blendEnabled)
	return m
}

func neutralColors(n int, c gfx.Color) []colorOverride {
	out := make([]colorOverride, n)
	for i := range out {
		out[i].color = c
	}
	return out
}

func detectBlendModes(core Core) bool {
	if core.OffscreenCount() > 0 {
		return true
	}
	for i := range core.DrawableCount() {
		bm := cubism.DecodeBlendMode(core.DrawableBlendMode(i))
		switch {
		case bm.Color == gfx.ColorBlendNormal && bm.Alpha == gfx.AlphaBlendOver:
		case bm.Color == gfx.ColorBlendAddCompatible, bm.Color == gfx.ColorBlendMultiplyCompatible:
		default:
			return true
		}
	}
	return false
}

// Core returns the wrapped core.
func (m *Model) Core() Core { return m.core }

// IsBlendModeEnabled implements cubism.Model.
func (m *Model) IsBlendModeEnabled() bool { return m.blendEnabled }

// IsUsingMasking reports whether any drawable is clipped.
func (m *Model) IsUsingMasking() bool { return cubism.IsUsingMasking(m) }

// IsUsingMaskingForOffscreen reports whether any offscreen is clipped.
func (m *Model) IsUsingMaskingForOffscreen() bool { return cubism.IsUsingMaskingForOffscreen(m) }

// --- Drawables ---

func (m *Model) DrawableCount() int                      { return m.core.DrawableCount() }
func (m *Model) DrawableVertexPositions(i int) []float32 { return m.core.DrawableVertexPositions(i) }
func (m *Model) DrawableVertexUVs(i int) []float32       { return m.core.DrawableVertexUVs(i) }
func (m *Model) DrawableIndices(i int) []uint16          { return m.core.DrawableIndices(i) }
func (m *Model) DrawableTextureIndex(i int) int          { return m.core.DrawableTextureIndex(i) }
func (m *Model) DrawableOpacity(i int) float32           { return m.core.DrawableOpacity(i) }
func (m *Model) DrawableParentPartIndex(i int) int       { return m.core.DrawableParentPartIndex(i) }
func (m *Model) DrawableMasks(i int) []int               { return m.core.DrawableMasks(i) }

func (m *Model) DrawableDynamicFlags(i int) cubism.DynamicFlags {
	return m.core.DrawableDynamicFlags(i)
}

// DrawableBlendMode decodes the packed blend mode. Legacy constant flags
// map to the compatible modes when no blend mode was authored.
func (m *Model) DrawableBlendMode(i int) cubism.BlendMode {
	bm := cubism.DecodeBlendMode(m.core.DrawableBlendMode(i))
	if bm != (cubism.BlendMode{}) {
		return bm
	}
	flags := m.core.DrawableConstantFlags(i)
	switch {
	case flags&BlendAdditive != 0:
		bm.Color = gfx.ColorBlendAddCompatible
	case flags&BlendMultiplicative != 0:
		bm.Color = gfx.ColorBlendMultiplyCompatible
	}
	return bm
}

func (m *Model) DrawableInvertedMask(i int) bool {
	return m.core.DrawableConstantFlags(i)&IsInvertedMask != 0
}

// DrawableCulling returns the user culling setting when the model or the
// drawable is overridden, else whether the drawable is one-sided.
func (m *Model) DrawableCulling(i int) bool {
	if o := m.drawableCullings[i]; m.modelCullings || o.overridden {
		return o.culling
	}
	return m.core.DrawableConstantFlags(i)&IsDoubleSided == 0
}

// DrawableMultiplyColor returns the overridden or authored multiply color.
func (m *Model) DrawableMultiplyColor(i int) gfx.Color {
	if o := m.drawableMultiplyColors[i]; m.modelMultiplyColors || o.overridden {
		return o.color
	}
	return m.core.DrawableMultiplyColor(i)
}

// DrawableScreenColor returns the overridden or authored screen color.
func (m *Model) DrawableScreenColor(i int) gfx.Color {
	if o := m.drawableScreenColors[i]; m.modelScreenColors || o.overridden {
		return o.color
	}
	return m.core.DrawableScreenColor(i)
}

// --- Offscreens ---

func (m *Model) OffscreenCount() int               { return m.core.OffscreenCount() }
func (m *Model) OffscreenOwnerPartIndex(i int) int { return m.core.OffscreenOwnerPartIndex(i) }
func (m *Model) OffscreenOpacity(i int) float32    { return m.core.OffscreenOpacity(i) }
func (m *Model) OffscreenMasks(i int) []int        { return m.core.OffscreenMasks(i) }

func (m *Model) OffscreenBlendMode(i int) cubism.BlendMode {
	return cubism.DecodeBlendMode(m.core.OffscreenBlendMode(i))
}

func (m *Model) OffscreenInvertedMask(i int) bool {
	return m.core.OffscreenConstantFlags(i)&IsInvertedMask != 0
}

func (m *Model) OffscreenCulling(i int) bool {
	if o := m.offscreenCullings[i]; m.modelCullings || o.overridden {
		return o.culling
	}
	return m.core.OffscreenConstantFlags(i)&IsDoubleSided == 0
}

func (m *Model) OffscreenMultiplyColor(i int) gfx.Color {
	if o := m.offscreenMultiplyColors[i]; m.modelMultiplyColors || o.overridden {
		return o.color
	}
	return m.core.OffscreenMultiplyColor(i)
}

func (m *Model) OffscreenScreenColor(i int) gfx.Color {
	if o := m.offscreenScreenColors[i]; m.modelScreenColors || o.overridden {
		return o.color
	}
	return m.core.OffscreenScreenColor(i)
}

// --- Parts and canvas ---

func (m *Model) PartCount() int                { return m.core.PartCount() }
func (m *Model) PartParentPartIndex(i int) int { return m.core.PartParentPartIndex(i) }
func (m *Model) RenderOrders() []int           { return m.core.RenderOrders() }
func (m *Model) PixelsPerUnit() float32        { return m.core.PixelsPerUnit() }

// --- Culling overrides ---

// SetOverrideFlagForModelCullings makes every drawable and offscreen use
// its user culling setting.
func (m *Model) SetOverrideFlagForModelCullings(v bool) { m.modelCullings = v }

// OverrideFlagForModelCullings reports the model-wide culling override.
func (m *Model) OverrideFlagForModelCullings() bool { return m.modelCullings }

// SetOverrideFlagForDrawableCullings makes drawable i use its user culling
// setting.
func (m *Model) SetOverrideFlagForDrawableCullings(i int, v bool) {
	if inRange(i, m.drawableCullings) {
		m.drawableCullings[i].overridden = v
	}
}

// OverrideFlagForDrawableCullings reports the culling override of drawable i.
func (m *Model) OverrideFlagForDrawableCullings(i int) bool {
	return inRange(i, m.drawableCullings) && m.drawableCullings[i].overridden
}

// SetDrawableCulling sets the user culling setting of drawable i. It takes
// effect while an override flag is set.
func (m *Model) SetDrawableCulling(i int, culling bool) {
	if inRange(i, m.drawableCullings) {
		m.drawableCullings[i].culling = culling
	}
}

// SetOverrideFlagForOffscreenCullings makes offscreen i use its user
// culling setting.
func (m *Model) SetOverrideFlagForOffscreenCullings(i int, v bool) {
	if inRange(i, m.offscreenCullings) {
		m.offscreenCullings[i].overridden = v
	}
}

// SetOffscreenCulling sets the user culling setting of offscreen i.
func (m *Model) SetOffscreenCulling(i int, culling bool) {
	if inRange(i, m.offscreenCullings) {
		m.offscreenCullings[i].culling = culling
	}
}

// --- Color overrides ---

// SetOverrideFlagForModelMultiplyColors makes every drawable and offscreen
// use its user multiply color.
func (m *Model) SetOverrideFlagForModelMultiplyColors(v bool) { m.modelMultiplyColors = v }

// SetOverrideFlagForModelScreenColors makes every drawable and offscreen
// use its user screen color.
func (m *Model) SetOverrideFlagForModelScreenColors(v bool) { m.modelScreenColors = v }

// SetOverrideFlagForDrawableMultiplyColors makes drawable i use its user
// multiply color.
func (m *Model) SetOverrideFlagForDrawableMultiplyColors(i int, v bool) {
	setOverridden(m.drawableMultiplyColors, i, v)
}

// SetOverrideFlagForDrawableScreenColors makes drawable i use its user
// screen color.
func (m *Model) SetOverrideFlagForDrawableScreenColors(i int, v bool) {
	setOverridden(m.drawableScreenColors, i, v)
}

// SetDrawableMultiplyColor sets the user multiply color of drawable i.
func (m *Model) SetDrawableMultiplyColor(i int, c gfx.Color) { setColor(m.drawableMultiplyColors, i, c) }

// SetDrawableScreenColor sets the user screen color of drawable i.
func (m *Model) SetDrawableScreenColor(i int, c gfx.Color) { setColor(m.drawableScreenColors, i, c) }

// SetOverrideFlagForOffscreenMultiplyColors makes offscreen i use its user
// multiply color.
func (m *Model) SetOverrideFlagForOffscreenMultiplyColors(i int, v bool) {
	setOverridden(m.offscreenMultiplyColors, i, v)
}

// SetOverrideFlagForOffscreenScreenColors makes offscreen i use its user
// screen color.
func (m *Model) SetOverrideFlagForOffscreenScreenColors(i int, v bool) {
	setOverridden(m.offscreenScreenColors, i, v)
}

// SetOffscreenMultiplyColor sets the user multiply color of offscreen i.
func (m *Model) SetOffscreenMultiplyColor(i int, c gfx.Color) {
	setColor(m.offscreenMultiplyColors, i, c)
}

// SetOffscreenScreenColor sets the user screen color of offscreen i.
func (m *Model) SetOffscreenScreenColor(i int, c gfx.Color) {
	setColor(m.offscreenScreenColors, i, c)
}

// SetOverrideColorForPartMultiplyColors overrides the multiply color of
// every drawable directly under part, and of the offscreens part owns,
// with the part's color.
func (m *Model) SetOverrideColorForPartMultiplyColors(part int, v bool) {
	m.overridePart(part, v, m.partMultiplyColors, m.drawableMultiplyColors, m.offscreenMultiplyColors)
}

// SetOverrideColorForPartScreenColors is the screen-color counterpart of
// SetOverrideColorForPartMultiplyColors.
func (m *Model) SetOverrideColorForPartScreenColors(part int, v bool) {
	m.overridePart(part, v, m.partScreenColors, m.drawableScreenColors, m.offscreenScreenColors)
}

// SetPartMultiplyColor sets the multiply color of part. Drawables and
// offscreens under an overridden part follow it.
func (m *Model) SetPartMultiplyColor(part int, c gfx.Color) {
	m.setPartColor(part, c, m.partMultiplyColors, m.drawableMultiplyColors, m.offscreenMultiplyColors)
}

// SetPartScreenColor sets the screen color of part.
func (m *Model) SetPartScreenColor(part int, c gfx.Color) {
	m.setPartColor(part, c, m.partScreenColors, m.drawableScreenColors, m.offscreenScreenColors)
}

func (m *Model) overridePart(part int, v bool, parts, drawables, offscreens []colorOverride) {
	if !inRange(part, parts) {
		return
	}
	parts[part].overridden = v
	apply := func(o *colorOverride) {
		o.overridden = v
		if v {
			o.color = parts[part].color
		}
	}
	for _, d := range m.partChildren[part] {
		apply(&drawables[d])
	}
	for _, o := range m.partOwned[part] {
		apply(&offscreens[o])
	}
}

func (m *Model) setPartColor(part int, c gfx.Color, parts, drawables, offscreens []colorOverride) {
	if !inRange(part, parts) {
		return
	}
	parts[part].color = c
	if !parts[part].overridden {
		return
	}
	for _, d := range m.partChildren[part] {
		drawables[d].color = c
	}
	for _, o := range m.partOwned[part] {
		offscreens[o].color = c
	}
}

func inRange[T any](i int, s []T) bool { return i >= 0 && i < len(s) }

func setOverridden(s []colorOverride, i int, v bool) {
	if inRange(i, s) {
		s[i].overridden = v
	}
}

func setColor(s []colorOverride, i int, c gfx.Color) {
	if inRange(i, s) {
		s[i].color = c
	}
}
