package cubism

import (
	"testing"

	"github.com/phanxgames/cubism/gfx"
)

func TestShaderNameTable(t *testing.T) {
	if ShaderNormal != 2 || ShaderAdd != 8 || ShaderMult != 14 {
		t.Errorf("legacy families = %d %d %d", ShaderNormal, ShaderAdd, ShaderMult)
	}
	// Normal with four non-Over operators, then 15 advanced color blends
	// with five operators each, six variants per family.
	want := ShaderMult + variantsPerFamily + (4+15*5)*variantsPerFamily
	if ShaderNameCount != want {
		t.Errorf("ShaderNameCount = %d, want %d", ShaderNameCount, want)
	}
}

func TestShaderNamesBegin(t *testing.T) {
	tests := []struct {
		mode BlendMode
		want ShaderName
	}{
		{BlendMode{}, ShaderNormal},
		{BlendMode{Color: gfx.ColorBlendAddCompatible}, ShaderAdd},
		{BlendMode{Color: gfx.ColorBlendMultiplyCompatible}, ShaderMult},
		{BlendMode{Alpha: gfx.AlphaBlendAtop}, ShaderNormalAtop},
		{BlendMode{Alpha: gfx.AlphaBlendDisjointOver}, ShaderNormalDisjointOver},
		{BlendMode{Color: gfx.ColorBlendAdd}, ShaderAdvanced},
		{BlendMode{Color: gfx.ColorBlendAdd, Alpha: gfx.AlphaBlendOut}, ShaderAdvanced + 2*variantsPerFamily},
		{BlendMode{Color: gfx.ColorBlendColor, Alpha: gfx.AlphaBlendDisjointOver}, ShaderNameCount - variantsPerFamily},
		{BlendMode{Alpha: gfx.AlphaBlend(200)}, ShaderNormal},
	}
	for _, tt := range tests {
		if got := ShaderNamesBegin(tt.mode); got != tt.want {
			t.Errorf("ShaderNamesBegin(%v) = %d, want %d", tt.mode, got, tt.want)
		}
	}
}

func TestVariantOffset(t *testing.T) {
	tests := []struct {
		masked, inverted, premultiplied bool
		want                            ShaderName
	}{
		{false, false, false, 0},
		{true, false, false, 1},
		{true, true, false, 2},
		{false, true, false, 0},
		{false, false, true, 3},
		{true, false, true, 4},
		{true, true, true, 5},
	}
	for _, tt := range tests {
		if got := VariantOffset(tt.masked, tt.inverted, tt.premultiplied); got != tt.want {
			t.Errorf("VariantOffset(%v,%v,%v) = %d, want %d",
				tt.masked, tt.inverted, tt.premultiplied, got, tt.want)
		}
	}
}

func TestShaderNameDescRoundTrip(t *testing.T) {
	for n := ShaderNormal; n < ShaderNameCount; n++ {
		d := n.PipelineDesc()
		begin := ShaderNamesBegin(BlendMode{Color: d.ColorBlend, Alpha: d.AlphaBlend})
		if got := begin + VariantOffset(d.Masked, d.Inverted, d.Premultiplied); got != n {
			t.Fatalf("%s: desc maps back to %d, want %d", n, got, n)
		}
		_, advanced := BlendStateFor(begin)
		if advanced != d.Advanced {
			t.Errorf("%s: BlendStateFor advanced = %v, desc %v", n, advanced, d.Advanced)
		}
	}
}

func TestShaderNameString(t *testing.T) {
	tests := []struct {
		n    ShaderName
		want string
	}{
		{ShaderCopy, "Copy"},
		{ShaderSetupMask, "SetupMask"},
		{ShaderNormal, "Normal"},
		{ShaderAdd + 2, "AddMaskedInverted"},
		{ShaderMult + 3, "MultPremultipliedAlpha"},
		{ShaderNameCount, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.n.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPipelineDescNamesVariant(t *testing.T) {
	screenAtop := ShaderNamesBegin(BlendMode{Color: gfx.ColorBlendScreen, Alpha: gfx.AlphaBlendAtop})
	tests := []struct {
		n    ShaderName
		want string
	}{
		{ShaderCopy, "Copy"},
		{ShaderSetupMask, "SetupMask"},
		{ShaderNormal + 1, "NormalMasked"},
		{screenAtop + VariantOffset(true, false, true), "ScreenAtopMaskedPremultipliedAlpha"},
	}
	for _, tt := range tests {
		d := tt.n.PipelineDesc()
		if d.Name != tt.want {
			t.Errorf("PipelineDesc(%d).Name = %q, want %q", tt.n, d.Name, tt.want)
		}
		if d.Name != tt.n.String() {
			t.Errorf("PipelineDesc(%d).Name = %q, String = %q", tt.n, d.Name, tt.n.String())
		}
	}
}

func TestBlendModeEncoding(t *testing.T) {
	m := BlendMode{Color: gfx.ColorBlendScreen, Alpha: gfx.AlphaBlendAtop}
	if got := DecodeBlendMode(m.Encode()); got != m {
		t.Errorf("decode(encode) = %v, want %v", got, m)
	}
	if !(BlendMode{}).IsLegacy() || m.IsLegacy() {
		t.Error("IsLegacy")
	}
}
