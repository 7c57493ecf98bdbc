package texcache

import (
	"fmt"
	"math/bits"
)

// StagingBuffer is a host-visible buffer used as the intermediate for
// uploads and downloads. It stays owned by the pool; callers use it for one
// recorded transfer and must not hold onto it across frames.
type StagingBuffer struct {
	Buffer Buffer
	commit MemoryCommit
	size   uint64
	tick   uint64
}

// Bytes maps the buffer's commit and returns its backing bytes.
func (s *StagingBuffer) Bytes() ([]byte, error) {
	b, err := s.commit.Map()
	if err != nil {
		return nil, err
	}
	return b[:s.size], nil
}

// Unmap releases the mapping established by Bytes.
func (s *StagingBuffer) Unmap() {
	s.commit.Unmap()
}

// StagingPool recycles host-visible staging buffers. Buffers are grouped in
// power-of-two size classes and a buffer is only handed out again once the
// scheduler tick of its last transfer has retired, so a reused buffer can
// never alias an in-flight copy.
type StagingPool struct {
	backend   Backend
	memory    MemoryManager
	scheduler Scheduler

	classes map[uint32][]*StagingBuffer
}

// NewStagingPool creates an empty pool on the given collaborators.
func NewStagingPool(backend Backend, memory MemoryManager, scheduler Scheduler) *StagingPool {
	return &StagingPool{
		backend:   backend,
		memory:    memory,
		scheduler: scheduler,
		classes:   make(map[uint32][]*StagingBuffer),
	}
}

// Request returns a staging buffer of at least size bytes and stamps it with
// the current scheduler tick.
func (p *StagingPool) Request(size uint64) (*StagingBuffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("texcache: zero sized staging request")
	}
	class := sizeClass(size)

	for _, sb := range p.classes[class] {
		if p.scheduler.TickReached(sb.tick) {
			sb.tick = p.scheduler.CurrentTick()
			return sb, nil
		}
	}

	sb, err := p.grow(class)
	if err != nil {
		return nil, err
	}
	sb.tick = p.scheduler.CurrentTick()
	return sb, nil
}

func (p *StagingPool) grow(class uint32) (*StagingBuffer, error) {
	size := uint64(1) << class
	buffer, err := p.backend.CreateBuffer(size, BufferUsageTransferSrc|BufferUsageTransferDst)
	if err != nil {
		return nil, fmt.Errorf("staging buffer of %d bytes: %w", size, err)
	}
	commit, err := p.memory.Commit(buffer.MemoryRequirements(), true)
	if err != nil {
		buffer.Destroy()
		return nil, fmt.Errorf("staging commit of %d bytes: %w", size, err)
	}
	if err := buffer.BindCommit(commit); err != nil {
		commit.Free()
		buffer.Destroy()
		return nil, err
	}

	sb := &StagingBuffer{Buffer: buffer, commit: commit, size: size}
	p.classes[class] = append(p.classes[class], sb)
	log.WithFields(map[string]interface{}{
		"class": class,
		"count": len(p.classes[class]),
	}).Debug("staging pool grew")
	return sb, nil
}

// Destroy frees every pooled buffer. The caller must have drained the
// scheduler first.
func (p *StagingPool) Destroy() {
	for class, list := range p.classes {
		for _, sb := range list {
			sb.commit.Free()
			sb.Buffer.Destroy()
		}
		delete(p.classes, class)
	}
}

func sizeClass(size uint64) uint32 {
	return uint32(bits.Len64(size - 1))
}
