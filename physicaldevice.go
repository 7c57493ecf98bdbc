package texcache

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDevice is one enumerated hardware device.
type PhysicalDevice struct {
	DeviceName       string
	VKPhysicalDevice vk.PhysicalDevice
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

// QueueFamilies returns the device's queue families.
func (p *PhysicalDevice) QueueFamilies() (QueueFamilySlice, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, nil)
	if count == 0 {
		return nil, nil
	}

	queues := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, queues)

	ret := make(QueueFamilySlice, count)
	for i, q := range queues {
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: q}
		ret[i].VKQueueFamilyProperties.Deref()
	}
	return ret, nil
}

// CreateLogicalDevice creates a logical device with one queue from each of
// the given families.
func (p *PhysicalDevice) CreateLogicalDevice(qfs QueueFamilySlice) (*Device, error) {
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(qfs))
	for i, q := range qfs {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(q.Index),
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	createInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(qfs)),
		PQueueCreateInfos:    queueCreateInfos,
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(p.VKPhysicalDevice, &createInfo, nil, &device)); err != nil {
		return nil, fmt.Errorf("vkCreateDevice: %v", err)
	}
	return &Device{PhysicalDevice: p, VKDevice: device}, nil
}
