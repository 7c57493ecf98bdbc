package texcache

import vk "github.com/vulkan-go/vulkan"

// CommandPool allocates the command buffers a scheduler records into.
type CommandPool struct {
	Device        *Device
	QueueFamily   *QueueFamily
	VKCommandPool vk.CommandPool
}

// CreateCommandPool creates a resettable command pool on the given family.
func (d *Device) CreateCommandPool(qf *QueueFamily) (*CommandPool, error) {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(qf.Index),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(d.VKDevice, &info, nil, &pool)); err != nil {
		return nil, err
	}
	return &CommandPool{Device: d, QueueFamily: qf, VKCommandPool: pool}, nil
}

// AllocateBuffer allocates one primary command buffer from the pool.
func (c *CommandPool) AllocateBuffer() (*VulkanCommandBuffer, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.VKCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}

	cmds := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(c.Device.VKDevice, &info, cmds)); err != nil {
		return nil, err
	}
	return NewVulkanCommandBuffer(cmds[0]), nil
}

// FreeBuffer returns a command buffer to the pool.
func (c *CommandPool) FreeBuffer(b *VulkanCommandBuffer) {
	vk.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, 1, []vk.CommandBuffer{b.VK()})
}

func (c *CommandPool) Destroy() {
	vk.DestroyCommandPool(c.Device.VKDevice, c.VKCommandPool, nil)
}
