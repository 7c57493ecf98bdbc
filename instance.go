package texcache

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// The helpers in this file and its siblings (physicaldevice.go, device.go,
// queue.go, fence.go, commandpool.go) stand up just enough Vulkan for an
// embedder - or the example under examples/ - to construct the cache's
// collaborators. The cache itself never touches them; device and queue
// initialization belong to the embedding emulator.

// InitializeVulkan loads the Vulkan library for headless (non-presenting)
// use. Must be called once before any other call in this package.
func InitializeVulkan() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("loading vulkan: %w", err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("initializing vulkan: %w", err)
	}
	return nil
}

// Instance wraps the Vulkan runtime instance.
type Instance struct {
	VKInstance vk.Instance
}

// CreateInstance creates an instance identified by the given application
// name, with no layers or extensions enabled.
func CreateInstance(appName string) (*Instance, error) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(appName),
		PEngineName:        safeString("texcache"),
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(0, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return nil, fmt.Errorf("vkCreateInstance: %v", err)
	}
	return &Instance{VKInstance: instance}, nil
}

// PhysicalDevices enumerates the instance's physical devices.
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no vulkan capable devices found")
	}

	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &count, devices)); err != nil {
		return nil, err
	}

	ret := make([]*PhysicalDevice, count)
	for j, d := range devices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(d, &props)
		props.Deref()
		ret[j] = &PhysicalDevice{
			DeviceName:       vk.ToString(props.DeviceName[:]),
			VKPhysicalDevice: d,
		}
	}
	return ret, nil
}

func (i *Instance) Destroy() {
	vk.DestroyInstance(i.VKInstance, nil)
}

var end = "\x00"

func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != '\x00' {
		return s + end
	}
	return s
}
