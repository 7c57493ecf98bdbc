package texcache

// This file declares the contracts between the cache and its collaborators:
// the scheduler which owns command submission and fences, the memory manager
// which owns device allocations, and the backend which owns raw resource
// creation. The cache never reaches past these interfaces, which is also
// what makes the package testable without a device.

// Offset3D is a texel offset into an image.
type Offset3D struct {
	X, Y, Z int32
}

// Extent3D is a texel extent of an image region.
type Extent3D struct {
	Width, Height, Depth uint32
}

// SubresourceRange identifies a layer/level rectangle of an image.
type SubresourceRange struct {
	Aspect    ImageAspect
	BaseLevel uint32
	NumLevels uint32
	BaseLayer uint32
	NumLayers uint32
}

// SubresourceLayers identifies the layers of a single mip level.
type SubresourceLayers struct {
	Aspect    ImageAspect
	Level     uint32
	BaseLayer uint32
	NumLayers uint32
}

// BufferImageCopy describes one region of a buffer<->image transfer.
// RowLength/ImageHeight of zero mean tightly packed, as in Vulkan.
type BufferImageCopy struct {
	BufferOffset uint64
	RowLength    uint32
	ImageHeight  uint32
	Subresource  SubresourceLayers
	Offset       Offset3D
	Extent       Extent3D
}

// ImageCopy describes one region of an image to image transfer.
type ImageCopy struct {
	SrcSubresource SubresourceLayers
	DstSubresource SubresourceLayers
	SrcOffset      Offset3D
	DstOffset      Offset3D
	Extent         Extent3D
}

// BlitRegion describes a scaled blit. The two offsets bound the region;
// flipping is expressed by swapping the bound order, as in Vulkan.
type BlitRegion struct {
	SrcSubresource SubresourceLayers
	DstSubresource SubresourceLayers
	SrcOffsets     [2]Offset3D
	DstOffsets     [2]Offset3D
}

// BufferCopy describes one region of a buffer to buffer transfer.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// Filter selects blit sampling.
type Filter int32

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Barrier is one recorded pipeline barrier over an image sub-range.
type Barrier struct {
	Image     Image
	SrcStage  PipelineStage
	DstStage  PipelineStage
	SrcAccess Access
	DstAccess Access
	OldLayout ImageLayout
	NewLayout ImageLayout
	Range     SubresourceRange
}

// CommandRecorder is the surface of a command buffer the cache records onto.
// Implementations translate these records into native commands; the fake
// used in tests executes them against host memory instead.
type CommandRecorder interface {
	PipelineBarrier(b Barrier)
	CopyBufferToImage(src Buffer, dst Image, layout ImageLayout, regions []BufferImageCopy)
	CopyImageToBuffer(src Image, layout ImageLayout, dst Buffer, regions []BufferImageCopy)
	CopyImage(src Image, srcLayout ImageLayout, dst Image, dstLayout ImageLayout, regions []ImageCopy)
	BlitImage(src Image, srcLayout ImageLayout, dst Image, dstLayout ImageLayout, region BlitRegion, filter Filter)
	CopyBuffer(src Buffer, dst Buffer, regions []BufferCopy)
}

// Scheduler is the external component that batches recorded work, submits
// it, and reports completion. The cache relies on a single queue preserving
// program order: within one surface, a read transition is never observed out
// of order with the write it depends on.
type Scheduler interface {
	// Record appends work to the current command buffer. It returns
	// immediately; execution is deferred to submission.
	Record(fn func(CommandRecorder))

	// Finish flushes pending work and blocks until every previously
	// recorded command has retired. A wait that never signals surfaces as
	// ErrSchedulerTimeout and must be treated as fatal by the caller.
	Finish() error

	// CurrentTick is a monotonically increasing marker for recorded work,
	// used for coherency tracking and staging buffer reuse.
	CurrentTick() uint64

	// TickReached reports whether all work recorded at or before tick has
	// retired on the device.
	TickReached(tick uint64) bool

	// DeferOperation registers fn to run once no submitted command still
	// uses the resources it releases. Destruction of surfaces goes
	// through here; premature release is a correctness violation.
	DeferOperation(fn func())
}

// MemoryRequirements is a backend resource's memory request.
type MemoryRequirements struct {
	Size      uint64
	Alignment uint64
	TypeBits  uint32
}

// MemoryCommit is a slice of device memory bound to exactly one resource.
// Map is only valid for host-visible commits.
type MemoryCommit interface {
	Map() ([]byte, error)
	Unmap()
	Free()
}

// MemoryManager owns device memory. The cache only ever asks for a commit
// matching a resource's requirements and binds it; allocation strategy
// (chunking, suballocation) is the manager's business.
type MemoryManager interface {
	Commit(reqs MemoryRequirements, hostVisible bool) (MemoryCommit, error)
}

// BufferUsage describes what a backend buffer will be used for.
type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageTexelBuffer
)

// ImageViewInfo describes an image view to the backend: a sub-range of the
// parent image, a view target, and a channel remap.
type ImageViewInfo struct {
	Target  SurfaceTarget
	Format  PixelFormat
	Swizzle [4]SwizzleSource
	Range   SubresourceRange
}

// Image is a backend image handle.
type Image interface {
	MemoryRequirements() MemoryRequirements
	BindCommit(c MemoryCommit) error
	CreateView(info ImageViewInfo) (ImageView, error)
	Destroy()
}

// Buffer is a backend buffer handle.
type Buffer interface {
	MemoryRequirements() MemoryRequirements
	BindCommit(c MemoryCommit) error
	CreateTypedView(format PixelFormat) (BufferView, error)
	Destroy()
}

// ImageView is a backend image view handle, ready for binding.
type ImageView interface {
	Destroy()
}

// BufferView is a backend typed buffer view handle.
type BufferView interface {
	Destroy()
}

// Backend creates raw resources. Exactly one native implementation is
// targeted at a time; the Vulkan one lives in vulkan.go.
type Backend interface {
	CreateImage(params SurfaceParams) (Image, error)
	CreateBuffer(size uint64, usage BufferUsage) (Buffer, error)
}
