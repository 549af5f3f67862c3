package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phanxgames/cubism/gfx"
)

// ErrOverrideShape is returned when an override snapshot does not match the
// model's object counts.
var ErrOverrideShape = errors.New("model: override snapshot does not match model")

// CullingOverride is one persisted culling override.
type CullingOverride struct {
	Overridden bool `json:"overridden"`
	Culling    bool `json:"culling"`
}

// ColorOverride is one persisted color override.
type ColorOverride struct {
	Overridden bool      `json:"overridden"`
	Color      gfx.Color `json:"color"`
}

// Overrides is a snapshot of every user override of a Model.
type Overrides struct {
	ModelCullings       bool `json:"modelCullings"`
	ModelMultiplyColors bool `json:"modelMultiplyColors"`
	ModelScreenColors   bool `json:"modelScreenColors"`

	DrawableCullings       []CullingOverride `json:"drawableCullings"`
	DrawableMultiplyColors []ColorOverride   `json:"drawableMultiplyColors"`
	DrawableScreenColors   []ColorOverride   `json:"drawableScreenColors"`

	OffscreenCullings       []CullingOverride `json:"offscreenCullings"`
	OffscreenMultiplyColors []ColorOverride   `json:"offscreenMultiplyColors"`
	OffscreenScreenColors   []ColorOverride   `json:"offscreenScreenColors"`

	PartMultiplyColors []ColorOverride `json:"partMultiplyColors"`
	PartScreenColors   []ColorOverride `json:"partScreenColors"`
}

// Overrides returns a copy of the current overrides.
func (m *Model) Overrides() Overrides {
	return Overrides{
		ModelCullings:           m.modelCullings,
		ModelMultiplyColors:     m.modelMultiplyColors,
		ModelScreenColors:       m.modelScreenColors,
		DrawableCullings:        exportCullings(m.drawableCullings),
		DrawableMultiplyColors:  exportColors(m.drawableMultiplyColors),
		DrawableScreenColors:    exportColors(m.drawableScreenColors),
		OffscreenCullings:       exportCullings(m.offscreenCullings),
		OffscreenMultiplyColors: exportColors(m.offscreenMultiplyColors),
		OffscreenScreenColors:   exportColors(m.offscreenScreenColors),
		PartMultiplyColors:      exportColors(m.partMultiplyColors),
		PartScreenColors:        exportColors(m.partScreenColors),
	}
}

// ApplyOverrides replaces every override with o. Nothing changes when a
// slice length differs from the model's count.
func (m *Model) ApplyOverrides(o Overrides) error {
	checks := []struct {
		name      string
		got, want int
	}{
		{"drawable cullings", len(o.DrawableCullings), len(m.drawableCullings)},
		{"drawable multiply colors", len(o.DrawableMultiplyColors), len(m.drawableMultiplyColors)},
		{"drawable screen colors", len(o.DrawableScreenColors), len(m.drawableScreenColors)},
		{"offscreen cullings", len(o.OffscreenCullings), len(m.offscreenCullings)},
		{"offscreen multiply colors", len(o.OffscreenMultiplyColors), len(m.offscreenMultiplyColors)},
		{"offscreen screen colors", len(o.OffscreenScreenColors), len(m.offscreenScreenColors)},
		{"part multiply colors", len(o.PartMultiplyColors), len(m.partMultiplyColors)},
		{"part screen colors", len(o.PartScreenColors), len(m.partScreenColors)},
	}
	for _, c := range checks {
		if c.got != c.want {
			return fmt.Errorf("%w: %s: got %d, want %d", ErrOverrideShape, c.name, c.got, c.want)
		}
	}

	m.modelCullings = o.ModelCullings
	m.modelMultiplyColors = o.ModelMultiplyColors
	m.modelScreenColors = o.ModelScreenColors
	importCullings(m.drawableCullings, o.DrawableCullings)
	importColors(m.drawableMultiplyColors, o.DrawableMultiplyColors)
	importColors(m.drawableScreenColors, o.DrawableScreenColors)
	importCullings(m.offscreenCullings, o.OffscreenCullings)
	importColors(m.offscreenMultiplyColors, o.OffscreenMultiplyColors)
	importColors(m.offscreenScreenColors, o.OffscreenScreenColors)
	importColors(m.partMultiplyColors, o.PartMultiplyColors)
	importColors(m.partScreenColors, o.PartScreenColors)
	return nil
}

// MarshalOverrides encodes the current overrides as JSON.
func (m *Model) MarshalOverrides() ([]byte, error) {
	data, err := json.Marshal(m.Overrides())
	if err != nil {
		return nil, fmt.Errorf("model: marshal overrides: %w", err)
	}
	return data, nil
}

// UnmarshalOverrides decodes JSON produced by MarshalOverrides and applies
// it.
func (m *Model) UnmarshalOverrides(data []byte) error {
	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("model: unmarshal overrides: %w", err)
	}
	return m.ApplyOverrides(o)
}

func exportCullings(s []cullingOverride) []CullingOverride {
	out := make([]CullingOverride, len(s))
	for i, c := range s {
		out[i] = CullingOverride{Overridden: c.overridden, Culling: c.culling}
	}
	return out
}

func exportColors(s []colorOverride) []ColorOverride {
	out := make([]ColorOverride, len(s))
	for i, c := range s {
		out[i] = ColorOverride{Overridden: c.overridden, Color: c.color}
	}
	return out
}

func importCullings(dst []cullingOverride, src []CullingOverride) {
	for i, c := range src {
		dst[i] = cullingOverride{overridden: c.Overridden, culling: c.Culling}
	}
}

func importColors(dst []colorOverride, src []ColorOverride) {
	for i, c := range src {
		dst[i] = colorOverride{overridden: c.Overridden, color: c.Color}
	}
}
