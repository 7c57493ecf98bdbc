package texcache

import vk "github.com/vulkan-go/vulkan"

// QueueFamily is one queue family of a physical device.
type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

// SupportsGraphics reports whether the family accepts graphics work, which
// implies transfer capability.
func (q *QueueFamily) SupportsGraphics() bool {
	return vk.QueueFlagBits(q.VKQueueFamilyProperties.QueueFlags)&vk.QueueGraphicsBit != 0
}

// SupportsTransfer reports whether the family accepts transfer work.
func (q *QueueFamily) SupportsTransfer() bool {
	flags := vk.QueueFlagBits(q.VKQueueFamilyProperties.QueueFlags)
	return flags&(vk.QueueTransferBit|vk.QueueGraphicsBit|vk.QueueComputeBit) != 0
}

type QueueFamilySlice []*QueueFamily

// FilterGraphics keeps only the graphics-capable families.
func (s QueueFamilySlice) FilterGraphics() QueueFamilySlice {
	ret := make(QueueFamilySlice, 0)
	for _, q := range s {
		if q.SupportsGraphics() {
			ret = append(ret, q)
		}
	}
	return ret
}
