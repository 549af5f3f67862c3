package gfx

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func nearColor(a, b Color) bool {
	return near(a.R, b.R) && near(a.G, b.G) && near(a.B, b.B) && near(a.A, b.A)
}

// --- Names ---

func TestColorBlendString(t *testing.T) {
	tests := []struct {
		b    ColorBlend
		want string
	}{
		{ColorBlendNormal, "Normal"},
		{ColorBlendLinearLight, "LinearLight"},
		{ColorBlendMultiplyCompatible, "MultiplyCompatible"},
		{ColorBlend(200), ""},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("ColorBlend(%d).String() = %q, want %q", tt.b, got, tt.want)
		}
	}
	if ColorBlendCount != 18 {
		t.Errorf("ColorBlendCount = %d, want 18", ColorBlendCount)
	}
}

func TestAlphaBlendString(t *testing.T) {
	if got := AlphaBlendDisjointOver.String(); got != "DisjointOver" {
		t.Errorf("got %q", got)
	}
	if got := AlphaBlend(9).String(); got != "" {
		t.Errorf("unknown alpha blend = %q, want empty", got)
	}
	if AlphaBlendCount != 5 {
		t.Errorf("AlphaBlendCount = %d, want 5", AlphaBlendCount)
	}
}

// --- BlendRGB ---

func TestBlendRGBSeparable(t *testing.T) {
	s := [3]float32{0.25, 0.5, 0.75}
	d := [3]float32{0.5, 0.5, 0.5}
	tests := []struct {
		mode ColorBlend
		want [3]float32
	}{
		{ColorBlendNormal, s},
		{ColorBlendAdd, [3]float32{0.75, 1, 1}},
		{ColorBlendAddGlow, [3]float32{0.75, 1, 1.25}},
		{ColorBlendDarken, [3]float32{0.25, 0.5, 0.5}},
		{ColorBlendLighten, [3]float32{0.5, 0.5, 0.75}},
		{ColorBlendMultiply, [3]float32{0.125, 0.25, 0.375}},
		{ColorBlendScreen, [3]float32{0.625, 0.75, 0.875}},
		{ColorBlendLinearBurn, [3]float32{0, 0, 0.25}},
		{ColorBlendLinearLight, [3]float32{0, 0.5, 1}},
	}
	for _, tt := range tests {
		got := BlendRGB(tt.mode, s, d)
		for i := range got {
			if !near(got[i], tt.want[i]) {
				t.Errorf("%v: channel %d = %v, want %v", tt.mode, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBlendRGBBurnDodgeEdges(t *testing.T) {
	if got := blendChannel(ColorBlendColorBurn, 0, 0.5); got != 0 {
		t.Errorf("burn with black source = %v, want 0", got)
	}
	if got := blendChannel(ColorBlendColorBurn, 0, 1); got != 1 {
		t.Errorf("burn over white = %v, want 1", got)
	}
	if got := blendChannel(ColorBlendColorDodge, 1, 0.5); got != 1 {
		t.Errorf("dodge with white source = %v, want 1", got)
	}
	if got := blendChannel(ColorBlendColorDodge, 0.5, 0); got != 0 {
		t.Errorf("dodge over black = %v, want 0", got)
	}
}

func TestBlendRGBColorKeepsDestinationLuminance(t *testing.T) {
	cs := [3]float32{1, 0, 0}
	cd := [3]float32{0.4, 0.4, 0.4}
	got := BlendRGB(ColorBlendColor, cs, cd)
	if !near(lum(got), lum(cd)) {
		t.Errorf("lum = %v, want %v", lum(got), lum(cd))
	}
	gray := BlendRGB(ColorBlendHue, [3]float32{0.2, 0.2, 0.2}, cd)
	if !near(gray[0], gray[1]) || !near(gray[1], gray[2]) {
		t.Errorf("hue of a gray source should stay gray, got %v", gray)
	}
}

// --- Composite ---

func TestCompositeNormalOverMatchesSourceOver(t *testing.T) {
	src := Color{0.5, 0, 0, 0.5}
	dst := Color{0, 0, 1, 1}
	got := Composite(ColorBlendNormal, AlphaBlendOver, src, dst)
	// Premultiplied source-over: src + dst*(1-as).
	want := Color{0.5, 0, 0.5, 1}
	if !nearColor(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCompositeAlphaOperators(t *testing.T) {
	src := Color{1, 1, 1, 1}
	dst := Color{0, 0, 0, 0}
	tests := []struct {
		mode AlphaBlend
		want float32
	}{
		{AlphaBlendOver, 1},
		{AlphaBlendAtop, 0},
		{AlphaBlendOut, 1},
		{AlphaBlendConjointOver, 1},
		{AlphaBlendDisjointOver, 1},
	}
	for _, tt := range tests {
		got := Composite(ColorBlendNormal, tt.mode, src, dst)
		if !near(got.A, tt.want) {
			t.Errorf("%v over empty: alpha = %v, want %v", tt.mode, got.A, tt.want)
		}
	}
}

func TestCompositeOutDropsCoveredArea(t *testing.T) {
	got := Composite(ColorBlendNormal, AlphaBlendOut, Color{1, 1, 1, 1}, Color{0, 0, 0, 1})
	if !nearColor(got, Transparent) {
		t.Errorf("out over opaque = %+v, want transparent", got)
	}
}

// --- Color ---

func TestColorPremultiply(t *testing.T) {
	got := Color{1, 0.5, 0.25, 0.5}.Premultiply()
	want := Color{0.5, 0.25, 0.125, 0.5}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if White.Mul(Color{0.5, 0.5, 0.5, 0.5}) != (Color{0.5, 0.5, 0.5, 0.5}) {
		t.Error("White.Mul should return the operand")
	}
}
