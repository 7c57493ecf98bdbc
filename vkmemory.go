package texcache

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// vulkanChunkSize is the granularity of raw device allocations. Drivers cap
// the total number of allocations, so commits are carved out of big chunks
// instead of mapping one to one onto vkAllocateMemory calls.
const vulkanChunkSize uint64 = 64 << 20

// VulkanMemoryManager is the reference MemoryManager over a Vulkan device.
// It keeps one chunk list per (memory type, visibility) pair and suballocates
// commits within chunks.
type VulkanMemoryManager struct {
	device vk.Device
	types  []vk.MemoryType
	chunks []*vulkanChunk
}

// NewVulkanMemoryManager reads the physical device's memory properties and
// returns an empty manager.
func NewVulkanMemoryManager(physical vk.PhysicalDevice, device vk.Device) *VulkanMemoryManager {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physical, &props)
	props.Deref()

	types := make([]vk.MemoryType, props.MemoryTypeCount)
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		mt := props.MemoryTypes[i]
		mt.Deref()
		types[i] = mt
	}
	return &VulkanMemoryManager{device: device, types: types}
}

// Commit returns a slice of device memory satisfying reqs. Host-visible
// commits are host-coherent as well, so staging writes need no explicit
// flush.
func (m *VulkanMemoryManager) Commit(reqs MemoryRequirements, hostVisible bool) (MemoryCommit, error) {
	wanted := vk.MemoryPropertyFlagBits(vk.MemoryPropertyDeviceLocalBit)
	if hostVisible {
		wanted = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	}
	typeIndex, err := m.findMemoryType(reqs.TypeBits, wanted)
	if err != nil {
		return nil, err
	}

	for _, chunk := range m.chunks {
		if chunk.typeIndex != typeIndex || chunk.hostVisible != hostVisible {
			continue
		}
		if alloc := chunk.allocator.Allocate(reqs.Size, reqs.Alignment); alloc != nil {
			return &VulkanCommit{chunk: chunk, alloc: alloc}, nil
		}
	}

	chunk, err := m.grow(typeIndex, hostVisible, reqs.Size)
	if err != nil {
		return nil, err
	}
	alloc := chunk.allocator.Allocate(reqs.Size, reqs.Alignment)
	if alloc == nil {
		return nil, fmt.Errorf("%w: fresh chunk cannot fit %d bytes", ErrResourceExhausted, reqs.Size)
	}
	return &VulkanCommit{chunk: chunk, alloc: alloc}, nil
}

func (m *VulkanMemoryManager) grow(typeIndex uint32, hostVisible bool, atLeast uint64) (*vulkanChunk, error) {
	size := vulkanChunkSize
	if atLeast > size {
		size = atLeast
	}

	info := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: typeIndex,
	}

	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(m.device, &info, nil, &memory)); err != nil {
		return nil, fmt.Errorf("%w: vkAllocateMemory of %d bytes: %v", ErrResourceExhausted, size, err)
	}

	chunk := &vulkanChunk{
		device:      m.device,
		memory:      memory,
		typeIndex:   typeIndex,
		hostVisible: hostVisible,
		allocator:   &linearAllocator{size: size},
	}
	m.chunks = append(m.chunks, chunk)
	log.WithFields(map[string]interface{}{
		"size":        size,
		"type":        typeIndex,
		"hostVisible": hostVisible,
	}).Debug("device memory chunk allocated")
	return chunk, nil
}

func (m *VulkanMemoryManager) findMemoryType(typeBits uint32, wanted vk.MemoryPropertyFlagBits) (uint32, error) {
	for i, mt := range m.types {
		if typeBits&(1<<uint32(i)) != 0 &&
			vk.MemoryPropertyFlagBits(mt.PropertyFlags)&wanted == wanted {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("%w: no memory type matches bits %#x props %#x", ErrResourceExhausted, typeBits, wanted)
}

// Destroy frees every chunk. All commits must have been freed first.
func (m *VulkanMemoryManager) Destroy() {
	for _, chunk := range m.chunks {
		vk.FreeMemory(m.device, chunk.memory, nil)
	}
	m.chunks = nil
}

type vulkanChunk struct {
	device      vk.Device
	memory      vk.DeviceMemory
	typeIndex   uint32
	hostVisible bool
	allocator   *linearAllocator
}

// VulkanCommit is one suballocated range of a chunk, bound to exactly one
// resource.
type VulkanCommit struct {
	chunk *vulkanChunk
	alloc *Allocation
}

// Memory returns the chunk's native memory handle, for binding.
func (c *VulkanCommit) Memory() vk.DeviceMemory {
	return c.chunk.memory
}

// Offset returns the commit's byte offset inside the chunk.
func (c *VulkanCommit) Offset() uint64 {
	return c.alloc.Offset
}

// Map maps the commit's range. Only one commit of a chunk may be mapped at a
// time, which holds here because only staging buffers are ever mapped and
// each maps around a single transfer.
func (c *VulkanCommit) Map() ([]byte, error) {
	if !c.chunk.hostVisible {
		return nil, fmt.Errorf("texcache: mapping a device-local commit")
	}
	var ptr unsafe.Pointer
	err := vk.Error(vk.MapMemory(c.chunk.device, c.chunk.memory,
		vk.DeviceSize(c.alloc.Offset), vk.DeviceSize(c.alloc.Size), 0, &ptr))
	if err != nil {
		return nil, fmt.Errorf("vkMapMemory: %v", err)
	}
	const m = 0x7fffffff
	return (*[m]byte)(ptr)[:c.alloc.Size], nil
}

// Unmap releases the mapping established by Map.
func (c *VulkanCommit) Unmap() {
	vk.UnmapMemory(c.chunk.device, c.chunk.memory)
}

// Free returns the range to its chunk.
func (c *VulkanCommit) Free() {
	c.chunk.allocator.Free(c.alloc)
}
