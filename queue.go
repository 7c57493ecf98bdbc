package texcache

import vk "github.com/vulkan-go/vulkan"

// Queue is a device queue work is submitted to. The cache itself never
// submits; scheduler implementations do.
type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

// SubmitWithFence submits the command buffers and signals fence when they
// retire.
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*VulkanCommandBuffer) error {
	cmds := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		cmds[i] = buffers[i].VK()
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(cmds)),
		PCommandBuffers:    cmds,
	}

	var f vk.Fence
	if fence != nil {
		f = fence.VKFence
	}
	return vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, f))
}

// WaitIdle blocks until the queue drained.
func (q *Queue) WaitIdle() error {
	return vk.Error(vk.QueueWaitIdle(q.VKQueue))
}
