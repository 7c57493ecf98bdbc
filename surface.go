package texcache

import "fmt"

// Surface owns one backend resource representing a guest texture or render
// target: an image, or for linear texel buffers a buffer plus a typed view.
// It bridges guest memory bytes and device resident bytes through the
// staging pool, tracks the resource's layout state, and is the factory (and
// cache) for views over its sub-ranges.
//
// A Surface is shared by the external cache engine and by every view created
// from it. Destruction goes through Release, which defers the actual
// teardown to the scheduler so no in-flight command can observe a freed
// resource.
type Surface struct {
	gpuAddr uint64
	params  SurfaceParams

	backend   Backend
	memory    MemoryManager
	scheduler Scheduler
	staging   *StagingPool

	// Exactly one of image or buffer is set, per params.Storage.
	image      *TrackedImage
	buffer     Buffer
	bufferView BufferView
	commit     MemoryCommit

	views            map[ViewParams]*SurfaceView
	modificationTick uint64
	released         bool
}

func newSurface(backend Backend, memory MemoryManager, scheduler Scheduler, staging *StagingPool, gpuAddr uint64, params SurfaceParams) (*Surface, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Surface{
		gpuAddr:   gpuAddr,
		params:    params,
		backend:   backend,
		memory:    memory,
		scheduler: scheduler,
		staging:   staging,
		views:     make(map[ViewParams]*SurfaceView),
	}

	var err error
	if params.Storage == StorageBuffer {
		err = s.createBuffer()
	} else {
		err = s.createImage()
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"addr":    fmt.Sprintf("%#x", gpuAddr),
		"surface": params.String(),
	}).Debug("surface created")
	return s, nil
}

func (s *Surface) createImage() error {
	image, err := s.backend.CreateImage(s.params)
	if err != nil {
		return fmt.Errorf("surface image %s: %w", s.params, err)
	}
	commit, err := s.memory.Commit(image.MemoryRequirements(), false)
	if err != nil {
		image.Destroy()
		return fmt.Errorf("surface commit %s: %w", s.params, err)
	}
	if err := image.BindCommit(commit); err != nil {
		commit.Free()
		image.Destroy()
		return err
	}
	s.image = newTrackedImage(image, s.params)
	s.commit = commit
	return nil
}

func (s *Surface) createBuffer() error {
	size := s.params.HostSize()
	buffer, err := s.backend.CreateBuffer(size, BufferUsageTransferSrc|BufferUsageTransferDst|BufferUsageTexelBuffer)
	if err != nil {
		return fmt.Errorf("surface buffer %s: %w", s.params, err)
	}
	commit, err := s.memory.Commit(buffer.MemoryRequirements(), false)
	if err != nil {
		buffer.Destroy()
		return fmt.Errorf("surface commit %s: %w", s.params, err)
	}
	if err := buffer.BindCommit(commit); err != nil {
		commit.Free()
		buffer.Destroy()
		return err
	}
	view, err := buffer.CreateTypedView(s.params.Format)
	if err != nil {
		commit.Free()
		buffer.Destroy()
		return fmt.Errorf("surface buffer view %s: %w", s.params, err)
	}
	s.buffer = buffer
	s.bufferView = view
	s.commit = commit
	return nil
}

// GPUAddr returns the guest address the surface is keyed by.
func (s *Surface) GPUAddr() uint64 {
	return s.gpuAddr
}

// Params returns the surface's immutable description.
func (s *Surface) Params() SurfaceParams {
	return s.params
}

// IsBufferBacked reports whether the surface stores its texels in a buffer.
func (s *Surface) IsBufferBacked() bool {
	return s.buffer != nil
}

// ImageHandle returns the backend image, nil for buffer-backed surfaces.
func (s *Surface) ImageHandle() Image {
	if s.image == nil {
		return nil
	}
	return s.image.Handle()
}

// BufferViewHandle returns the typed buffer view, nil for image-backed
// surfaces.
func (s *Surface) BufferViewHandle() BufferView {
	return s.bufferView
}

// AspectMask returns the image aspect of the surface's format.
func (s *Surface) AspectMask() ImageAspect {
	return s.params.Format.Aspect()
}

// State returns the tracked image state, for callers composing barriers of
// their own. Buffer-backed surfaces have no tracked layout.
func (s *Surface) State() ImageState {
	if s.image == nil {
		return ImageState{}
	}
	return s.image.State()
}

// Transition records a layout/access transition over a sub-range of the
// surface. No-op when the tracked state already matches, and a no-op for
// buffer-backed surfaces, which have no layouts.
func (s *Surface) Transition(baseLayer, numLayers, baseLevel, numLevels uint32, st ImageState) {
	if s.image == nil {
		return
	}
	s.image.Transition(s.scheduler, baseLayer, numLayers, baseLevel, numLevels, st)
}

// FullTransition transitions the whole resource.
func (s *Surface) FullTransition(st ImageState) {
	if s.image == nil {
		return
	}
	s.image.FullTransition(s.scheduler, st)
}

// UploadTexture copies host-decoded bytes into the backend resource. The
// copy is recorded on the scheduler and the call returns immediately; the
// staging buffer is owned by the pool and recycled only after the transfer
// retires. The staging layout is level-major (see SurfaceParams.LevelOffset)
// and data must be exactly HostSize bytes.
func (s *Surface) UploadTexture(data []byte) error {
	if uint64(len(data)) != s.params.HostSize() {
		return fmt.Errorf("%w: upload of %d bytes into surface of %d", ErrMalformedDescriptor, len(data), s.params.HostSize())
	}
	if s.buffer != nil {
		return s.uploadBuffer(data)
	}
	return s.uploadImage(data)
}

func (s *Surface) uploadBuffer(data []byte) error {
	sb, err := s.staging.Request(uint64(len(data)))
	if err != nil {
		return err
	}
	dst, err := sb.Bytes()
	if err != nil {
		return err
	}
	copy(dst, data)
	sb.Unmap()

	src, buffer, size := sb.Buffer, s.buffer, uint64(len(data))
	s.scheduler.Record(func(cmd CommandRecorder) {
		cmd.CopyBuffer(src, buffer, []BufferCopy{{Size: size}})
	})
	return nil
}

func (s *Surface) uploadImage(data []byte) error {
	sb, err := s.staging.Request(uint64(len(data)))
	if err != nil {
		return err
	}
	dst, err := sb.Bytes()
	if err != nil {
		return err
	}
	copy(dst, data)
	sb.Unmap()

	s.FullTransition(TransferDstState())

	regions := s.bufferImageCopies()
	src, image := sb.Buffer, s.image.Handle()
	s.scheduler.Record(func(cmd CommandRecorder) {
		cmd.CopyBufferToImage(src, image, LayoutTransferDst, regions)
	})

	s.FullTransition(s.params.readState())
	return nil
}

// DownloadTexture copies the device resident bytes back into out. This is
// the one synchronous suspension point of the cache: the call blocks until
// the scheduler confirms the device to host copy retired, because the caller
// requires out to be valid on return.
func (s *Surface) DownloadTexture(out []byte) error {
	if uint64(len(out)) != s.params.HostSize() {
		return fmt.Errorf("%w: download of %d bytes from surface of %d", ErrMalformedDescriptor, len(out), s.params.HostSize())
	}

	sb, err := s.staging.Request(uint64(len(out)))
	if err != nil {
		return err
	}

	if s.buffer != nil {
		src, dst, size := s.buffer, sb.Buffer, uint64(len(out))
		s.scheduler.Record(func(cmd CommandRecorder) {
			cmd.CopyBuffer(src, dst, []BufferCopy{{Size: size}})
		})
	} else {
		s.FullTransition(TransferSrcState())
		regions := s.bufferImageCopies()
		image, dst := s.image.Handle(), sb.Buffer
		s.scheduler.Record(func(cmd CommandRecorder) {
			cmd.CopyImageToBuffer(image, LayoutTransferSrc, dst, regions)
		})
	}

	if err := s.scheduler.Finish(); err != nil {
		return fmt.Errorf("download of %s: %w", s.params, err)
	}

	data, err := sb.Bytes()
	if err != nil {
		return err
	}
	copy(out, data)
	sb.Unmap()
	return nil
}

// bufferImageCopies builds one region per mip level, covering every layer,
// matching the level-major staging layout.
func (s *Surface) bufferImageCopies() []BufferImageCopy {
	regions := make([]BufferImageCopy, s.params.NumLevels)
	for level := uint32(0); level < s.params.NumLevels; level++ {
		regions[level] = BufferImageCopy{
			BufferOffset: s.params.LevelOffset(level),
			Subresource: SubresourceLayers{
				Aspect:    s.AspectMask(),
				Level:     level,
				BaseLayer: 0,
				NumLayers: s.params.NumLayers,
			},
			Extent: Extent3D{
				Width:  s.params.MipWidth(level),
				Height: s.params.MipHeight(level),
				Depth:  s.params.MipDepth(level),
			},
		}
	}
	return regions
}

// CreateView returns the view for the given sub-range, building it on first
// request. Two calls with identical params return the same view, so no
// duplicate backend objects exist for one logical window.
func (s *Surface) CreateView(vp ViewParams) *SurfaceView {
	vp.checkBounds(s.params)
	if v, ok := s.views[vp]; ok {
		return v
	}
	v := newSurfaceView(s, vp, s.buffer != nil)
	s.views[vp] = v
	return v
}

// MarkAsModified bumps the surface's modification tick. The external
// coherency layer compares ticks to decide whether guest memory needs
// resynchronization.
func (s *Surface) MarkAsModified(tick uint64) {
	if tick > s.modificationTick {
		s.modificationTick = tick
	}
}

// ModificationTick returns the tick of the last recorded write.
func (s *Surface) ModificationTick() uint64 {
	return s.modificationTick
}

// Release schedules destruction of the surface's backend objects and memory
// commit. The teardown runs only once the scheduler attests no submitted
// command still touches the resource; calling Release twice is a no-op.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.released = true

	views := s.views
	s.views = nil
	image := s.image
	buffer := s.buffer
	bufferView := s.bufferView
	commit := s.commit

	s.scheduler.DeferOperation(func() {
		for _, v := range views {
			v.release()
		}
		if bufferView != nil {
			bufferView.Destroy()
		}
		if buffer != nil {
			buffer.Destroy()
		}
		if image != nil {
			image.Handle().Destroy()
		}
		if commit != nil {
			commit.Free()
		}
	})
}
