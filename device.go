package texcache

import vk "github.com/vulkan-go/vulkan"

// Device wraps a logical device together with the physical device it was
// created from.
type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device
}

// GetQueue retrieves queue 0 of the given family.
func (d *Device) GetQueue(qf *QueueFamily) *Queue {
	var vkq vk.Queue
	vk.GetDeviceQueue(d.VKDevice, uint32(qf.Index), 0, &vkq)
	return &Queue{Device: d, QueueFamily: qf, VKQueue: vkq}
}

// WaitIdle blocks until the device finished all submitted work.
func (d *Device) WaitIdle() {
	vk.DeviceWaitIdle(d.VKDevice)
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.VKDevice, nil)
}
