package texcache

// PipelineStage is a backend-neutral pipeline stage mask. The Vulkan
// implementation translates these one to one onto VkPipelineStageFlags.
type PipelineStage uint32

const (
	StageTopOfPipe PipelineStage = 1 << iota
	StageTransfer
	StageVertexShader
	StageFragmentShader
	StageEarlyFragmentTests
	StageColorAttachmentOutput
	StageAllCommands
)

// Access is a backend-neutral memory access mask.
type Access uint32

const (
	AccessTransferRead Access = 1 << iota
	AccessTransferWrite
	AccessShaderRead
	AccessShaderWrite
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilRead
	AccessDepthStencilWrite
)

// ImageLayout is the expected access pattern of an image's memory.
type ImageLayout int32

const (
	LayoutUndefined ImageLayout = iota
	LayoutGeneral
	LayoutTransferSrc
	LayoutTransferDst
	LayoutShaderReadOnly
	LayoutColorAttachment
	LayoutDepthStencilAttachment
)

// ImageState is the tracked {stage, access, layout} triple of a resource.
// Surfaces keep the last known state and only emit a barrier when a
// requested state differs.
type ImageState struct {
	Stage  PipelineStage
	Access Access
	Layout ImageLayout
}

// NextState decides whether moving from current to requested needs a barrier
// record. It is a pure function so the idempotence and supersession rules
// can be tested without any backend: an equal request emits nothing, and any
// emitted transition fully replaces the tracked state.
func NextState(current, requested ImageState) (emit bool, next ImageState) {
	if current == requested {
		return false, current
	}
	return true, requested
}

// TransferSrcState is the state required before an image is read by a
// transfer operation.
func TransferSrcState() ImageState {
	return ImageState{Stage: StageTransfer, Access: AccessTransferRead, Layout: LayoutTransferSrc}
}

// TransferDstState is the state required before an image is written by a
// transfer operation.
func TransferDstState() ImageState {
	return ImageState{Stage: StageTransfer, Access: AccessTransferWrite, Layout: LayoutTransferDst}
}

// readState is the state a surface settles into after an upload, chosen from
// its usage intent so the next consumer sees the layout it expects.
func (p SurfaceParams) readState() ImageState {
	switch {
	case p.Usage&UsageDepthStencil != 0:
		return ImageState{
			Stage:  StageEarlyFragmentTests,
			Access: AccessDepthStencilRead | AccessDepthStencilWrite,
			Layout: LayoutDepthStencilAttachment,
		}
	case p.Usage&UsageSampled != 0:
		return ImageState{
			Stage:  StageVertexShader | StageFragmentShader,
			Access: AccessShaderRead,
			Layout: LayoutShaderReadOnly,
		}
	case p.Usage&UsageRenderTarget != 0:
		return ImageState{
			Stage:  StageColorAttachmentOutput,
			Access: AccessColorAttachmentRead | AccessColorAttachmentWrite,
			Layout: LayoutColorAttachment,
		}
	default:
		return ImageState{Stage: StageAllCommands, Access: AccessShaderRead, Layout: LayoutGeneral}
	}
}
