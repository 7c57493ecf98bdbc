package texcache

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// Fence signals completion of submitted work.
type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

// CreateFence creates a fence, optionally in the signaled state.
func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(d.VKDevice, &info, nil, &fence)); err != nil {
		return nil, err
	}
	return &Fence{Device: d, VKFence: fence}, nil
}

// Wait blocks until the fence signals or the timeout elapses. A timeout
// surfaces as ErrSchedulerTimeout; schedulers forward it from Finish.
func (f *Fence) Wait(timeout time.Duration) error {
	res := vk.WaitForFences(f.Device.VKDevice, 1, []vk.Fence{f.VKFence}, vk.True, uint64(timeout.Nanoseconds()))
	if res == vk.Timeout {
		return ErrSchedulerTimeout
	}
	return vk.Error(res)
}

// IsSignaled polls the fence without blocking.
func (f *Fence) IsSignaled() bool {
	return vk.GetFenceStatus(f.Device.VKDevice, f.VKFence) == vk.Success
}

// Reset returns the fence to the unsignaled state.
func (f *Fence) Reset() error {
	return vk.Error(vk.ResetFences(f.Device.VKDevice, 1, []vk.Fence{f.VKFence}))
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.Device.VKDevice, f.VKFence, nil)
}
