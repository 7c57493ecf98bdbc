package texcache

import (
	"fmt"
)

// The fakes in this file stand in for the external collaborators so the
// cache's behavior is observable without a device: the fake scheduler runs
// recorded closures immediately (preserving program order, as a single
// queue would), the fake recorder executes transfers against host memory,
// and every fake handle counts its destructions.

type fakeScheduler struct {
	recorder *fakeRecorder

	tick     uint64
	done     uint64
	deferred []func()

	// holdDeferred keeps deferred operations pending until runDeferred,
	// modeling a queue that still has the resources in flight.
	holdDeferred bool
	finishErr    error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{recorder: &fakeRecorder{}, tick: 1}
}

func (s *fakeScheduler) Record(fn func(CommandRecorder)) {
	fn(s.recorder)
}

func (s *fakeScheduler) Finish() error {
	if s.finishErr != nil {
		return s.finishErr
	}
	s.done = s.tick
	s.tick++
	if !s.holdDeferred {
		s.runDeferred()
	}
	return nil
}

func (s *fakeScheduler) CurrentTick() uint64 { return s.tick }

func (s *fakeScheduler) TickReached(tick uint64) bool { return tick <= s.done }

func (s *fakeScheduler) DeferOperation(fn func()) {
	s.deferred = append(s.deferred, fn)
}

func (s *fakeScheduler) runDeferred() {
	ops := s.deferred
	s.deferred = nil
	for _, fn := range ops {
		fn()
	}
}

type fakeBackend struct {
	images  []*fakeImage
	buffers []*fakeBuffer

	imageErr  error
	bufferErr error
}

func (b *fakeBackend) CreateImage(params SurfaceParams) (Image, error) {
	if b.imageErr != nil {
		return nil, b.imageErr
	}
	img := &fakeImage{params: params, pix: make(map[uint64][]byte)}
	b.images = append(b.images, img)
	return img, nil
}

func (b *fakeBackend) CreateBuffer(size uint64, usage BufferUsage) (Buffer, error) {
	if b.bufferErr != nil {
		return nil, b.bufferErr
	}
	buf := &fakeBuffer{data: make([]byte, size)}
	b.buffers = append(b.buffers, buf)
	return buf, nil
}

type fakeMemoryManager struct {
	commits   []*fakeCommit
	commitErr error
}

func (m *fakeMemoryManager) Commit(reqs MemoryRequirements, hostVisible bool) (MemoryCommit, error) {
	if m.commitErr != nil {
		return nil, m.commitErr
	}
	c := &fakeCommit{data: make([]byte, reqs.Size), hostVisible: hostVisible}
	m.commits = append(m.commits, c)
	return c, nil
}

type fakeCommit struct {
	data        []byte
	hostVisible bool
	freed       int
}

func (c *fakeCommit) Map() ([]byte, error) {
	if !c.hostVisible {
		return nil, fmt.Errorf("mapping device-local fake commit")
	}
	return c.data, nil
}

func (c *fakeCommit) Unmap() {}

func (c *fakeCommit) Free() { c.freed++ }

type fakeImage struct {
	params SurfaceParams
	pix    map[uint64][]byte

	viewsCreated int
	destroyed    int
}

func subKey(layer, level uint32) uint64 {
	return uint64(layer)<<32 | uint64(level)
}

func (f *fakeImage) level(layer, level uint32) []byte {
	k := subKey(layer, level)
	if _, ok := f.pix[k]; !ok {
		f.pix[k] = make([]byte, f.params.LevelSize(level))
	}
	return f.pix[k]
}

func (f *fakeImage) MemoryRequirements() MemoryRequirements {
	return MemoryRequirements{Size: f.params.HostSize(), Alignment: 16, TypeBits: 1}
}

func (f *fakeImage) BindCommit(c MemoryCommit) error { return nil }

func (f *fakeImage) CreateView(info ImageViewInfo) (ImageView, error) {
	f.viewsCreated++
	return &fakeImageView{image: f, info: info}, nil
}

func (f *fakeImage) Destroy() { f.destroyed++ }

type fakeImageView struct {
	image     *fakeImage
	info      ImageViewInfo
	destroyed int
}

func (v *fakeImageView) Destroy() { v.destroyed++ }

type fakeBuffer struct {
	data      []byte
	destroyed int
}

func (b *fakeBuffer) MemoryRequirements() MemoryRequirements {
	return MemoryRequirements{Size: uint64(len(b.data)), Alignment: 16, TypeBits: 1}
}

func (b *fakeBuffer) BindCommit(c MemoryCommit) error {
	// Alias the commit so host-visible writes land in "device" memory.
	size := len(b.data)
	b.data = c.(*fakeCommit).data[:size]
	return nil
}

func (b *fakeBuffer) CreateTypedView(format PixelFormat) (BufferView, error) {
	return &fakeBufferView{buffer: b}, nil
}

func (b *fakeBuffer) Destroy() { b.destroyed++ }

type fakeBufferView struct {
	buffer    *fakeBuffer
	destroyed int
}

func (v *fakeBufferView) Destroy() { v.destroyed++ }

// fakeRecorder executes records against host memory and keeps counters for
// the ordering and idempotence assertions.
type fakeRecorder struct {
	barriers  []Barrier
	blitPairs [][2]Image
}

func (r *fakeRecorder) PipelineBarrier(b Barrier) {
	r.barriers = append(r.barriers, b)
}

func (r *fakeRecorder) CopyBufferToImage(src Buffer, dst Image, layout ImageLayout, regions []BufferImageCopy) {
	buf := src.(*fakeBuffer)
	img := dst.(*fakeImage)
	for _, reg := range regions {
		size := img.params.LevelSize(reg.Subresource.Level)
		for li := uint32(0); li < reg.Subresource.NumLayers; li++ {
			off := reg.BufferOffset + uint64(li)*size
			copy(img.level(reg.Subresource.BaseLayer+li, reg.Subresource.Level), buf.data[off:off+size])
		}
	}
}

func (r *fakeRecorder) CopyImageToBuffer(src Image, layout ImageLayout, dst Buffer, regions []BufferImageCopy) {
	img := src.(*fakeImage)
	buf := dst.(*fakeBuffer)
	for _, reg := range regions {
		size := img.params.LevelSize(reg.Subresource.Level)
		for li := uint32(0); li < reg.Subresource.NumLayers; li++ {
			off := reg.BufferOffset + uint64(li)*size
			copy(buf.data[off:off+size], img.level(reg.Subresource.BaseLayer+li, reg.Subresource.Level))
		}
	}
}

func (r *fakeRecorder) CopyImage(src Image, srcLayout ImageLayout, dst Image, dstLayout ImageLayout, regions []ImageCopy) {
	s := src.(*fakeImage)
	d := dst.(*fakeImage)
	for _, reg := range regions {
		bpp := s.params.Format.BytesPerBlock()
		sw := s.params.MipWidth(reg.SrcSubresource.Level)
		dw := d.params.MipWidth(reg.DstSubresource.Level)
		for li := uint32(0); li < reg.SrcSubresource.NumLayers; li++ {
			sl := s.level(reg.SrcSubresource.BaseLayer+li, reg.SrcSubresource.Level)
			dl := d.level(reg.DstSubresource.BaseLayer+li, reg.DstSubresource.Level)
			for y := uint32(0); y < reg.Extent.Height; y++ {
				so := ((uint32(reg.SrcOffset.Y)+y)*sw + uint32(reg.SrcOffset.X)) * bpp
				do := ((uint32(reg.DstOffset.Y)+y)*dw + uint32(reg.DstOffset.X)) * bpp
				copy(dl[do:do+reg.Extent.Width*bpp], sl[so:so+reg.Extent.Width*bpp])
			}
		}
	}
}

func (r *fakeRecorder) BlitImage(src Image, srcLayout ImageLayout, dst Image, dstLayout ImageLayout, region BlitRegion, filter Filter) {
	s := src.(*fakeImage)
	d := dst.(*fakeImage)
	r.blitPairs = append(r.blitPairs, [2]Image{src, dst})

	bpp := s.params.Format.BytesPerBlock()
	sw := s.params.MipWidth(region.SrcSubresource.Level)
	dw := d.params.MipWidth(region.DstSubresource.Level)
	srcW := region.SrcOffsets[1].X - region.SrcOffsets[0].X
	srcH := region.SrcOffsets[1].Y - region.SrcOffsets[0].Y
	dstW := region.DstOffsets[1].X - region.DstOffsets[0].X
	dstH := region.DstOffsets[1].Y - region.DstOffsets[0].Y

	for li := uint32(0); li < region.DstSubresource.NumLayers; li++ {
		sl := s.level(region.SrcSubresource.BaseLayer+li, region.SrcSubresource.Level)
		dl := d.level(region.DstSubresource.BaseLayer+li, region.DstSubresource.Level)
		for dy := int32(0); dy < dstH; dy++ {
			sy := region.SrcOffsets[0].Y + dy*srcH/dstH
			for dx := int32(0); dx < dstW; dx++ {
				sx := region.SrcOffsets[0].X + dx*srcW/dstW
				so := (uint32(sy)*sw + uint32(sx)) * bpp
				do := (uint32(region.DstOffsets[0].Y+dy)*dw + uint32(region.DstOffsets[0].X+dx)) * bpp
				copy(dl[do:do+bpp], sl[so:so+bpp])
			}
		}
	}
}

func (r *fakeRecorder) CopyBuffer(src Buffer, dst Buffer, regions []BufferCopy) {
	s := src.(*fakeBuffer)
	d := dst.(*fakeBuffer)
	for _, reg := range regions {
		copy(d.data[reg.DstOffset:reg.DstOffset+reg.Size], s.data[reg.SrcOffset:reg.SrcOffset+reg.Size])
	}
}

// newTestCache wires a cache onto fresh fakes.
func newTestCache() (*TextureCache, *fakeBackend, *fakeMemoryManager, *fakeScheduler) {
	backend := &fakeBackend{}
	memory := &fakeMemoryManager{}
	scheduler := newFakeScheduler()
	return NewTextureCache(backend, memory, scheduler), backend, memory, scheduler
}

func testParams2D(w, h uint32, levels uint32) SurfaceParams {
	return SurfaceParams{
		Width: w, Height: h, Depth: 1,
		Target:    Target2D,
		Format:    FormatABGR8,
		NumLevels: levels,
		NumLayers: 1,
		Usage:     UsageSampled,
	}
}

func fillPattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	return data
}
