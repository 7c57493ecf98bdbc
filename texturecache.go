package texcache

import "fmt"

// CopyParams describe one region copy between two surfaces, in texels of
// the respective mip levels. For layered targets Z selects layers; for 3D
// targets it is a real depth offset.
type CopyParams struct {
	SrcX, SrcY, SrcZ uint32
	DstX, DstY, DstZ uint32
	SrcLevel         uint32
	DstLevel         uint32
	Width            uint32
	Height           uint32
	Depth            uint32
}

// BlitRect is a blit bound in texels. An inverted rect (right < left or
// bottom < top) expresses a flipped blit.
type BlitRect struct {
	Left, Top, Right, Bottom int32
}

// BlitConfig is the rasterizer's description of a 2D blit.
type BlitConfig struct {
	SrcRect BlitRect
	DstRect BlitRect
	Filter  Filter
}

// TextureCache is the backend-specific driver plugged into the generic
// address-indexed cache engine. The engine owns residency and eviction and
// calls back here to materialize surfaces and to move pixel data between
// them.
type TextureCache struct {
	backend   Backend
	memory    MemoryManager
	scheduler Scheduler
	staging   *StagingPool
}

// NewTextureCache wires the driver to its collaborators.
func NewTextureCache(backend Backend, memory MemoryManager, scheduler Scheduler) *TextureCache {
	return &TextureCache{
		backend:   backend,
		memory:    memory,
		scheduler: scheduler,
		staging:   NewStagingPool(backend, memory, scheduler),
	}
}

// StagingPool exposes the cache's staging pool so embedders can share it.
func (c *TextureCache) StagingPool() *StagingPool {
	return c.staging
}

// CreateSurface materializes a surface for a guest address the engine found
// no resident surface for.
func (c *TextureCache) CreateSurface(gpuAddr uint64, params SurfaceParams) (*Surface, error) {
	return newSurface(c.backend, c.memory, c.scheduler, c.staging, gpuAddr, params)
}

// ImageCopy records a region copy between two image-backed surfaces, used
// for mip propagation and partial updates. Both sides are transitioned to
// transfer states first; the copy itself is scheduled, not synchronous.
func (c *TextureCache) ImageCopy(src, dst *Surface, cp CopyParams) error {
	if src.IsBufferBacked() || dst.IsBufferBacked() {
		return fmt.Errorf("%w: ImageCopy on buffer-backed surface", ErrMalformedDescriptor)
	}

	src.FullTransition(TransferSrcState())
	dst.FullTransition(TransferDstState())

	region := imageCopyRegion(src.Params(), dst.Params(), cp)
	srcImage, dstImage := src.ImageHandle(), dst.ImageHandle()
	c.scheduler.Record(func(cmd CommandRecorder) {
		cmd.CopyImage(srcImage, LayoutTransferSrc, dstImage, LayoutTransferDst, []ImageCopy{region})
	})

	dst.MarkAsModified(c.scheduler.CurrentTick())
	return nil
}

func imageCopyRegion(src, dst SurfaceParams, cp CopyParams) ImageCopy {
	region := ImageCopy{
		SrcSubresource: SubresourceLayers{Aspect: src.Format.Aspect(), Level: cp.SrcLevel, NumLayers: 1},
		DstSubresource: SubresourceLayers{Aspect: dst.Format.Aspect(), Level: cp.DstLevel, NumLayers: 1},
		SrcOffset:      Offset3D{X: int32(cp.SrcX), Y: int32(cp.SrcY)},
		DstOffset:      Offset3D{X: int32(cp.DstX), Y: int32(cp.DstY)},
		Extent:         Extent3D{Width: cp.Width, Height: cp.Height, Depth: 1},
	}
	// The guest's Z axis means layers on array targets and depth on 3D.
	if src.Target == Target3D {
		region.SrcOffset.Z = int32(cp.SrcZ)
		region.Extent.Depth = cp.Depth
	} else {
		region.SrcSubresource.BaseLayer = cp.SrcZ
		region.SrcSubresource.NumLayers = maxU32(1, cp.Depth)
	}
	if dst.Target == Target3D {
		region.DstOffset.Z = int32(cp.DstZ)
		region.Extent.Depth = cp.Depth
	} else {
		region.DstSubresource.BaseLayer = cp.DstZ
		region.DstSubresource.NumLayers = maxU32(1, cp.Depth)
	}
	return region
}

// ImageBlit records a scaled, filtered rectangular blit between two views.
// A blit within one surface is not generally valid in-place, so that case is
// routed through a scratch surface automatically.
func (c *TextureCache) ImageBlit(src, dst *SurfaceView, cfg BlitConfig) error {
	if src.IsBufferView() || dst.IsBufferView() {
		return fmt.Errorf("%w: ImageBlit on buffer-backed view", ErrMalformedDescriptor)
	}
	if src.IsSameSurface(dst) {
		return c.blitThroughScratch(src, dst, cfg)
	}

	src.Transition(TransferSrcState())
	dst.Transition(TransferDstState())

	region := BlitRegion{
		SrcSubresource: src.SubresourceLayers(),
		DstSubresource: dst.SubresourceLayers(),
		SrcOffsets: [2]Offset3D{
			{X: cfg.SrcRect.Left, Y: cfg.SrcRect.Top, Z: 0},
			{X: cfg.SrcRect.Right, Y: cfg.SrcRect.Bottom, Z: 1},
		},
		DstOffsets: [2]Offset3D{
			{X: cfg.DstRect.Left, Y: cfg.DstRect.Top, Z: 0},
			{X: cfg.DstRect.Right, Y: cfg.DstRect.Bottom, Z: 1},
		},
	}
	srcImage, dstImage, filter := src.ImageHandle(), dst.ImageHandle(), cfg.Filter
	c.scheduler.Record(func(cmd CommandRecorder) {
		cmd.BlitImage(srcImage, LayoutTransferSrc, dstImage, LayoutTransferDst, region, filter)
	})

	dst.MarkAsModified(c.scheduler.CurrentTick())
	return nil
}

// blitThroughScratch copies the source sub-range into a temporary surface
// and blits from there, so the device never sees a same-image blit.
func (c *TextureCache) blitThroughScratch(src, dst *SurfaceView, cfg BlitConfig) error {
	params := src.surface.Params()
	scratchParams := SurfaceParams{
		Width:     src.Width(),
		Height:    src.Height(),
		Depth:     1,
		Target:    Target2D,
		Format:    params.Format,
		NumLevels: 1,
		NumLayers: src.NumLayers(),
		Storage:   StorageImage,
	}
	if scratchParams.NumLayers > 1 {
		scratchParams.Target = Target2DArray
	}
	scratch, err := c.CreateSurface(0, scratchParams)
	if err != nil {
		return fmt.Errorf("scratch surface for same-surface blit: %w", err)
	}
	defer scratch.Release()

	if err := c.ImageCopy(src.surface, scratch, CopyParams{
		SrcZ:     src.SubresourceLayers().BaseLayer,
		SrcLevel: src.BaseLevel(),
		Width:    src.Width(),
		Height:   src.Height(),
		Depth:    src.NumLayers(),
	}); err != nil {
		return err
	}

	scratchView := scratch.CreateView(WholeSurface(scratchParams))
	return c.ImageBlit(scratchView, dst, cfg)
}

// BufferCopy records a device to device copy between two buffer-backed
// surfaces.
func (c *TextureCache) BufferCopy(src, dst *Surface) error {
	if !src.IsBufferBacked() || !dst.IsBufferBacked() {
		return fmt.Errorf("%w: BufferCopy on image-backed surface", ErrMalformedDescriptor)
	}
	size := src.Params().HostSize()
	if dstSize := dst.Params().HostSize(); dstSize < size {
		size = dstSize
	}

	srcBuffer, dstBuffer := src.buffer, dst.buffer
	c.scheduler.Record(func(cmd CommandRecorder) {
		cmd.CopyBuffer(srcBuffer, dstBuffer, []BufferCopy{{Size: size}})
	})

	dst.MarkAsModified(c.scheduler.CurrentTick())
	return nil
}
