package cubism

import (
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/phanxgames/cubism/gfx"
)

// BlendMode pairs a color blend with an alpha-compositing operator.
type BlendMode struct {
	Color gfx.ColorBlend
	Alpha gfx.AlphaBlend
}

// DecodeBlendMode unpacks the model's integer blend mode: color in the low
// byte, alpha in the next.
func DecodeBlendMode(v int32) BlendMode {
	return BlendMode{
		Color: gfx.ColorBlend(v & 0xFF),
		Alpha: gfx.AlphaBlend((v >> 8) & 0xFF),
	}
}

// Encode packs m back into the model's integer form.
func (m BlendMode) Encode() int32 {
	return int32(m.Color) | int32(m.Alpha)<<8
}

// String returns "Color/Alpha".
func (m BlendMode) String() string {
	return m.Color.String() + "/" + m.Alpha.String()
}

// IsLegacy reports whether m is drawn with fixed-function blending and the
// small pre-5.3 shader set.
func (m BlendMode) IsLegacy() bool {
	switch ShaderNamesBegin(m) {
	case ShaderNormal, ShaderAdd, ShaderMult:
		return true
	}
	return false
}

// --- Shader names ---

// ShaderName indexes the shader variant table. Every drawing family spans
// six consecutive entries: plain, masked, masked-inverted, then the same
// three for premultiplied-alpha textures.
type ShaderName int

const variantsPerFamily = 6

const (
	ShaderCopy ShaderName = iota
	ShaderSetupMask
	ShaderNormal
	ShaderAdd  = ShaderNormal + variantsPerFamily
	ShaderMult = ShaderAdd + variantsPerFamily

	// ShaderNormalAtop starts the Normal color blend with non-Over alpha
	// operators (Normal/Over itself is ShaderNormal).
	ShaderNormalAtop         = ShaderMult + variantsPerFamily
	ShaderNormalOut          = ShaderNormalAtop + variantsPerFamily
	ShaderNormalConjointOver = ShaderNormalOut + variantsPerFamily
	ShaderNormalDisjointOver = ShaderNormalConjointOver + variantsPerFamily

	// ShaderAdvanced is the first Add/Over family; color blends Add through
	// Color follow, each with all five alpha operators.
	ShaderAdvanced = ShaderNormalDisjointOver + variantsPerFamily

	advancedColorCount = int(gfx.ColorBlendColor) - int(gfx.ColorBlendAdd) + 1

	// ShaderNameCount is the size of the variant table.
	ShaderNameCount = ShaderAdvanced + ShaderName(advancedColorCount*gfx.AlphaBlendCount*variantsPerFamily)
)

// ShaderNamesBegin returns the first variant of the family that draws m.
func ShaderNamesBegin(m BlendMode) ShaderName {
	alpha := m.Alpha
	if int(alpha) >= gfx.AlphaBlendCount {
		alpha = gfx.AlphaBlendOver
	}
	switch m.Color {
	case gfx.ColorBlendAddCompatible:
		return ShaderAdd
	case gfx.ColorBlendMultiplyCompatible:
		return ShaderMult
	}
	if m.Color >= gfx.ColorBlendAdd && m.Color <= gfx.ColorBlendColor {
		family := int(m.Color-gfx.ColorBlendAdd)*gfx.AlphaBlendCount + int(alpha)
		return ShaderAdvanced + ShaderName(family*variantsPerFamily)
	}
	if alpha == gfx.AlphaBlendOver {
		return ShaderNormal
	}
	return ShaderNormalAtop + ShaderName((int(alpha)-1)*variantsPerFamily)
}

// VariantOffset returns the offset of a variant inside its family.
func VariantOffset(masked, inverted, premultiplied bool) ShaderName {
	var off ShaderName
	if masked {
		off = 1
		if inverted {
			off = 2
		}
	}
	if premultiplied {
		off += 3
	}
	return off
}

// PipelineDesc describes the variant at n. Out-of-range names describe the
// Copy pipeline.
func (n ShaderName) PipelineDesc() gfx.PipelineDesc {
	desc := n.desc()
	desc.Name = n.String()
	return desc
}

// desc is PipelineDesc without the name.
func (n ShaderName) desc() gfx.PipelineDesc {
	var desc gfx.PipelineDesc
	switch {
	case n == ShaderSetupMask:
		desc.Kind = gfx.PipelineSetupMask
		return desc
	case n < ShaderNormal || n >= ShaderNameCount:
		desc.Kind = gfx.PipelineCopy
		return desc
	}

	desc.Kind = gfx.PipelineDraw
	rel := int(n - ShaderNormal)
	family, variant := rel/variantsPerFamily, rel%variantsPerFamily
	desc.Masked = variant%3 != 0
	desc.Inverted = variant%3 == 2
	desc.Premultiplied = variant >= 3

	switch {
	case family == 0:
		desc.ColorBlend = gfx.ColorBlendNormal
	case family == 1:
		desc.ColorBlend = gfx.ColorBlendAddCompatible
	case family == 2:
		desc.ColorBlend = gfx.ColorBlendMultiplyCompatible
	case family < 7:
		desc.ColorBlend = gfx.ColorBlendNormal
		desc.AlphaBlend = gfx.AlphaBlend(family - 2)
		desc.Advanced = true
	default:
		adv := family - 7
		desc.ColorBlend = gfx.ColorBlendAdd + gfx.ColorBlend(adv/gfx.AlphaBlendCount)
		desc.AlphaBlend = gfx.AlphaBlend(adv % gfx.AlphaBlendCount)
		desc.Advanced = true
	}
	return desc
}

// String returns the variant name, e.g. "ScreenAtopMaskedPremultipliedAlpha".
func (n ShaderName) String() string {
	switch {
	case n == ShaderCopy:
		return "Copy"
	case n == ShaderSetupMask:
		return "SetupMask"
	case n < 0 || n >= ShaderNameCount:
		return "Unknown"
	}
	d := n.desc()
	var b strings.Builder
	switch {
	case n < ShaderAdd:
		b.WriteString("Normal")
	case n < ShaderMult:
		b.WriteString("Add")
	case n < ShaderNormalAtop:
		b.WriteString("Mult")
	default:
		b.WriteString(d.ColorBlend.String())
		b.WriteString(d.AlphaBlend.String())
	}
	if d.Masked {
		b.WriteString("Masked")
	}
	if d.Inverted {
		b.WriteString("Inverted")
	}
	if d.Premultiplied {
		b.WriteString("PremultipliedAlpha")
	}
	return b.String()
}

// --- Blend states ---

var (
	// BlendStateNormal is premultiplied source-over.
	BlendStateNormal = gfx.NewBlendState(
		gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha,
		gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)

	// BlendStateAdd adds color and keeps destination alpha.
	BlendStateAdd = gfx.NewBlendState(
		gputypes.BlendFactorOne, gputypes.BlendFactorOne,
		gputypes.BlendFactorZero, gputypes.BlendFactorOne)

	// BlendStateMult multiplies by destination color and keeps destination alpha.
	BlendStateMult = gfx.NewBlendState(
		gputypes.BlendFactorDst, gputypes.BlendFactorOneMinusSrcAlpha,
		gputypes.BlendFactorZero, gputypes.BlendFactorOne)

	// BlendStateReplace writes the shader output as is. Advanced blend
	// variants composite in the shader and use it.
	BlendStateReplace = gfx.NewBlendState(
		gputypes.BlendFactorOne, gputypes.BlendFactorZero,
		gputypes.BlendFactorOne, gputypes.BlendFactorZero)

	// BlendStateMask multiplies the cleared (1,1,1,1) mask buffer by one
	// minus the selected channel.
	BlendStateMask = gfx.NewBlendState(
		gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrc,
		gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrcAlpha)
)

// BlendStateFor returns the fixed-function state for a family start and
// whether the family composites against a blend texture.
func BlendStateFor(begin ShaderName) (gfx.BlendState, bool) {
	switch begin {
	case ShaderNormal:
		return BlendStateNormal, false
	case ShaderAdd:
		return BlendStateAdd, false
	case ShaderMult:
		return BlendStateMult, false
	}
	return BlendStateReplace, true
}
