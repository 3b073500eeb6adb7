package vkbackend

import (
	vk "github.com/vulkan-go/vulkan"

	"voxedit/internal/render"
)

// submitFence maps the frame ring's monotonically increasing fence values
// onto Vulkan's binary fences: every submission registers its value with
// the vk.Fence the queue will signal, and the completed counter advances
// only over a contiguous run of signaled values.
type submitFence struct {
	dev       vk.Device
	pending   map[uint64]vk.Fence
	completed uint64
}

func newSubmitFence(dev vk.Device) *submitFence {
	return &submitFence{
		dev:     dev,
		pending: make(map[uint64]vk.Fence),
	}
}

// register associates a ring value with the binary fence signaled by its
// submission. Values arrive strictly increasing.
func (f *submitFence) register(value uint64, fence vk.Fence) {
	f.pending[value] = fence
}

// Completed polls pending fences in value order and returns the highest
// contiguously signaled value.
func (f *submitFence) Completed() uint64 {
	for {
		next := f.completed + 1
		fence, ok := f.pending[next]
		if !ok {
			return f.completed
		}
		if vk.GetFenceStatus(f.dev, fence) != vk.Success {
			return f.completed
		}
		delete(f.pending, next)
		f.completed = next
	}
}

// WaitFor blocks until the fence reaches at least value. A stalled GPU
// blocks here forever; there is no recovery path past a dead queue.
func (f *submitFence) WaitFor(value uint64) {
	for f.completed < value {
		next := f.completed + 1
		fence, ok := f.pending[next]
		if !ok {
			return
		}
		vk.WaitForFences(f.dev, 1, []vk.Fence{fence}, vk.True, ^uint64(0))
		delete(f.pending, next)
		f.completed = next
	}
}

var _ render.Fence = (*submitFence)(nil)
