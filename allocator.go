package texcache

import "fmt"

// Allocation is a carved-out range of a memory chunk.
type Allocation struct {
	Offset uint64
	Size   uint64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

// linearAllocator hands out ranges of a fixed-size chunk, first fit. The
// Vulkan memory manager keeps one per device allocation and carves commits
// out of it; the number of raw allocations an implementation may make is
// limited, so commits must not map one to one onto device allocations.
type linearAllocator struct {
	size   uint64
	allocs []*Allocation
}

func alignUp(a, align uint64) uint64 {
	m := a % align
	if m == 0 {
		return a
	}
	return (a - m) + align
}

// Allocate returns a free aligned range of the requested size, or nil when
// the chunk cannot fit it.
func (p *linearAllocator) Allocate(size, align uint64) *Allocation {
	if align == 0 {
		align = 1
	}
	if len(p.allocs) == 0 {
		if size > p.size {
			return nil
		}
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}

	// Head gap.
	if p.allocs[0].Offset >= size {
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append([]*Allocation{na}, p.allocs...)
		return na
	}

	// Gaps between neighbours.
	for i := 0; i+1 < len(p.allocs); i++ {
		c := p.allocs[i]
		n := p.allocs[i+1]

		l := alignUp(c.Offset+c.Size, align)
		if n.Offset >= l && n.Offset-l >= size {
			na := &Allocation{Offset: l, Size: size}
			p.allocs = append(p.allocs[:i+1], append([]*Allocation{na}, p.allocs[i+1:]...)...)
			return na
		}
	}

	// Tail.
	last := p.allocs[len(p.allocs)-1]
	nl := alignUp(last.Offset+last.Size, align)
	if p.size >= nl && p.size-nl >= size {
		na := &Allocation{Offset: nl, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}
	return nil
}

// Free releases a previously returned range.
func (p *linearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// Empty reports whether nothing is allocated from the chunk.
func (p *linearAllocator) Empty() bool {
	return len(p.allocs) == 0
}

func (p *linearAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
