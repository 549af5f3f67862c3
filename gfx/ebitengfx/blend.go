package ebitengfx

import (
	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/cubism/gfx"
)

// EbitenBlend returns the ebiten.Blend value corresponding to b.
func EbitenBlend(b gfx.BlendState) ebiten.Blend {
	return ebiten.Blend{
		BlendFactorSourceRGB:        ebitenFactor(b.Color.SrcFactor),
		BlendFactorSourceAlpha:      ebitenFactor(b.Alpha.SrcFactor),
		BlendFactorDestinationRGB:   ebitenFactor(b.Color.DstFactor),
		BlendFactorDestinationAlpha: ebitenFactor(b.Alpha.DstFactor),
		BlendOperationRGB:           ebitenOperation(b.Color.Operation),
		BlendOperationAlpha:         ebitenOperation(b.Alpha.Operation),
	}
}

func ebitenFactor(f gputypes.BlendFactor) ebiten.BlendFactor {
	switch f {
	case gputypes.BlendFactorZero:
		return ebiten.BlendFactorZero
	case gputypes.BlendFactorOne:
		return ebiten.BlendFactorOne
	case gputypes.BlendFactorSrc:
		return ebiten.BlendFactorSourceColor
	case gputypes.BlendFactorOneMinusSrc:
		return ebiten.BlendFactorOneMinusSourceColor
	case gputypes.BlendFactorSrcAlpha:
		return ebiten.BlendFactorSourceAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case gputypes.BlendFactorDst:
		return ebiten.BlendFactorDestinationColor
	case gputypes.BlendFactorOneMinusDst:
		return ebiten.BlendFactorOneMinusDestinationColor
	case gputypes.BlendFactorDstAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	}
	return ebiten.BlendFactorOne
}

func ebitenOperation(op gputypes.BlendOperation) ebiten.BlendOperation {
	switch op {
	case gputypes.BlendOperationSubtract:
		return ebiten.BlendOperationSubtract
	case gputypes.BlendOperationReverseSubtract:
		return ebiten.BlendOperationReverseSubtract
	case gputypes.BlendOperationMin:
		return ebiten.BlendOperationMin
	case gputypes.BlendOperationMax:
		return ebiten.BlendOperationMax
	}
	return ebiten.BlendOperationAdd
}
