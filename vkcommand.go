package texcache

import (
	vk "github.com/vulkan-go/vulkan"
)

// VulkanCommandBuffer adapts a native command buffer to the CommandRecorder
// interface. Scheduler implementations wrap the command buffer they are
// currently recording into and hand it to the cache's deferred closures.
type VulkanCommandBuffer struct {
	cmd vk.CommandBuffer
}

// NewVulkanCommandBuffer wraps an allocated native command buffer.
func NewVulkanCommandBuffer(cmd vk.CommandBuffer) *VulkanCommandBuffer {
	return &VulkanCommandBuffer{cmd: cmd}
}

// VK is a utility for accessing the native command buffer when the embedder
// needs commands this package does not wrap.
func (c *VulkanCommandBuffer) VK() vk.CommandBuffer {
	return c.cmd
}

// Begin starts capturing work for this command buffer.
func (c *VulkanCommandBuffer) Begin() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	return vk.Error(vk.BeginCommandBuffer(c.cmd, &beginInfo))
}

// BeginOneTime starts capturing work that will be submitted exactly once.
func (c *VulkanCommandBuffer) BeginOneTime() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	return vk.Error(vk.BeginCommandBuffer(c.cmd, &beginInfo))
}

// End finishes capturing work for this command buffer.
func (c *VulkanCommandBuffer) End() error {
	return vk.Error(vk.EndCommandBuffer(c.cmd))
}

// Reset clears the command buffer for re-recording.
func (c *VulkanCommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(c.cmd, 0))
}

func (c *VulkanCommandBuffer) PipelineBarrier(b Barrier) {
	barrier := vk.ImageMemoryBarrier{}
	barrier.SType = vk.StructureTypeImageMemoryBarrier
	barrier.SrcAccessMask = vkAccess(b.SrcAccess)
	barrier.DstAccessMask = vkAccess(b.DstAccess)
	barrier.OldLayout = vkLayout(b.OldLayout)
	barrier.NewLayout = vkLayout(b.NewLayout)
	barrier.SrcQueueFamilyIndex = vk.QueueFamilyIgnored
	barrier.DstQueueFamilyIndex = vk.QueueFamilyIgnored
	barrier.Image = b.Image.(*vulkanImage).handle
	barrier.SubresourceRange = vkRange(b.Range)

	vk.CmdPipelineBarrier(c.cmd, vkStage(b.SrcStage), vkStage(b.DstStage), 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (c *VulkanCommandBuffer) CopyBufferToImage(src Buffer, dst Image, layout ImageLayout, regions []BufferImageCopy) {
	vk.CmdCopyBufferToImage(c.cmd, src.(*vulkanBuffer).handle, dst.(*vulkanImage).handle,
		vkLayout(layout), uint32(len(regions)), vkBufferImageCopies(regions))
}

func (c *VulkanCommandBuffer) CopyImageToBuffer(src Image, layout ImageLayout, dst Buffer, regions []BufferImageCopy) {
	vk.CmdCopyImageToBuffer(c.cmd, src.(*vulkanImage).handle, vkLayout(layout),
		dst.(*vulkanBuffer).handle, uint32(len(regions)), vkBufferImageCopies(regions))
}

func (c *VulkanCommandBuffer) CopyImage(src Image, srcLayout ImageLayout, dst Image, dstLayout ImageLayout, regions []ImageCopy) {
	converted := make([]vk.ImageCopy, len(regions))
	for i, r := range regions {
		converted[i] = vk.ImageCopy{
			SrcSubresource: vkLayers(r.SrcSubresource),
			SrcOffset:      vkOffset(r.SrcOffset),
			DstSubresource: vkLayers(r.DstSubresource),
			DstOffset:      vkOffset(r.DstOffset),
			Extent:         vkExtent(r.Extent),
		}
	}
	vk.CmdCopyImage(c.cmd, src.(*vulkanImage).handle, vkLayout(srcLayout),
		dst.(*vulkanImage).handle, vkLayout(dstLayout), uint32(len(converted)), converted)
}

func (c *VulkanCommandBuffer) BlitImage(src Image, srcLayout ImageLayout, dst Image, dstLayout ImageLayout, region BlitRegion, filter Filter) {
	blit := vk.ImageBlit{
		SrcSubresource: vkLayers(region.SrcSubresource),
		SrcOffsets:     [2]vk.Offset3D{vkOffset(region.SrcOffsets[0]), vkOffset(region.SrcOffsets[1])},
		DstSubresource: vkLayers(region.DstSubresource),
		DstOffsets:     [2]vk.Offset3D{vkOffset(region.DstOffsets[0]), vkOffset(region.DstOffsets[1])},
	}
	vk.CmdBlitImage(c.cmd, src.(*vulkanImage).handle, vkLayout(srcLayout),
		dst.(*vulkanImage).handle, vkLayout(dstLayout), 1, []vk.ImageBlit{blit}, vkFilter(filter))
}

func (c *VulkanCommandBuffer) CopyBuffer(src Buffer, dst Buffer, regions []BufferCopy) {
	converted := make([]vk.BufferCopy, len(regions))
	for i, r := range regions {
		converted[i] = vk.BufferCopy{
			SrcOffset: vk.DeviceSize(r.SrcOffset),
			DstOffset: vk.DeviceSize(r.DstOffset),
			Size:      vk.DeviceSize(r.Size),
		}
	}
	vk.CmdCopyBuffer(c.cmd, src.(*vulkanBuffer).handle, dst.(*vulkanBuffer).handle,
		uint32(len(converted)), converted)
}

func vkBufferImageCopies(regions []BufferImageCopy) []vk.BufferImageCopy {
	converted := make([]vk.BufferImageCopy, len(regions))
	for i, r := range regions {
		converted[i] = vk.BufferImageCopy{
			BufferOffset:      vk.DeviceSize(r.BufferOffset),
			BufferRowLength:   r.RowLength,
			BufferImageHeight: r.ImageHeight,
			ImageSubresource:  vkLayers(r.Subresource),
			ImageOffset:       vkOffset(r.Offset),
			ImageExtent:       vkExtent(r.Extent),
		}
	}
	return converted
}
