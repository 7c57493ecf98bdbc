package texcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStateIdempotent(t *testing.T) {
	st := TransferDstState()
	emit, next := NextState(st, st)
	assert.False(t, emit)
	assert.Equal(t, st, next)
}

func TestNextStateSupersedes(t *testing.T) {
	current := TransferDstState()
	requested := ImageState{
		Stage:  StageFragmentShader,
		Access: AccessShaderRead,
		Layout: LayoutShaderReadOnly,
	}
	emit, next := NextState(current, requested)
	assert.True(t, emit)
	assert.Equal(t, requested, next)

	// The request replaces, never merges: a second different request wins
	// outright.
	emit, next = NextState(next, TransferSrcState())
	assert.True(t, emit)
	assert.Equal(t, TransferSrcState(), next)
}

func TestNextStateFromUndefined(t *testing.T) {
	undefined := ImageState{Stage: StageTopOfPipe, Layout: LayoutUndefined}
	emit, next := NextState(undefined, TransferDstState())
	assert.True(t, emit)
	assert.Equal(t, LayoutTransferDst, next.Layout)
}

func TestReadStateFollowsUsage(t *testing.T) {
	sampled := testParams2D(4, 4, 1)
	assert.Equal(t, LayoutShaderReadOnly, sampled.readState().Layout)

	depth := SurfaceParams{
		Width: 4, Height: 4, Depth: 1,
		Target: Target2D, Format: FormatD32F,
		NumLevels: 1, NumLayers: 1,
		Usage: UsageDepthStencil,
	}
	assert.Equal(t, LayoutDepthStencilAttachment, depth.readState().Layout)

	color := testParams2D(4, 4, 1)
	color.Usage = UsageRenderTarget
	assert.Equal(t, LayoutColorAttachment, color.readState().Layout)
}
