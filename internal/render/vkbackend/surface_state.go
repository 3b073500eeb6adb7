package vkbackend

import "fmt"

// surfaceImageState is the resource state of one swapchain image as the
// barrier protocol sees it.
type surfaceImageState int

const (
	statePresentable surfaceImageState = iota
	stateRenderTarget
)

func (s surfaceImageState) String() string {
	switch s {
	case statePresentable:
		return "presentable"
	case stateRenderTarget:
		return "render-target"
	default:
		return "unknown"
	}
}

// surfaceStateTracker enforces the barrier ordering on swapchain images:
// an image must be moved to render-target state before drawing and back to
// presentable state before presenting, strictly alternating. A violation
// here means a frame would present a target mid-write or draw into a
// presentable image.
type surfaceStateTracker struct {
	states []surfaceImageState
}

func newSurfaceStateTracker(imageCount int) *surfaceStateTracker {
	return &surfaceStateTracker{
		states: make([]surfaceImageState, imageCount),
	}
}

// toRenderTarget transitions image i presentable -> render-target.
func (t *surfaceStateTracker) toRenderTarget(i int) error {
	if i < 0 || i >= len(t.states) {
		return fmt.Errorf("vkbackend: image index %d out of range", i)
	}
	if t.states[i] != statePresentable {
		return fmt.Errorf("vkbackend: image %d is %v, expected presentable", i, t.states[i])
	}
	t.states[i] = stateRenderTarget
	return nil
}

// toPresent transitions image i render-target -> presentable.
func (t *surfaceStateTracker) toPresent(i int) error {
	if i < 0 || i >= len(t.states) {
		return fmt.Errorf("vkbackend: image index %d out of range", i)
	}
	if t.states[i] != stateRenderTarget {
		return fmt.Errorf("vkbackend: image %d is %v, expected render-target", i, t.states[i])
	}
	t.states[i] = statePresentable
	return nil
}

// state returns the tracked state of image i.
func (t *surfaceStateTracker) state(i int) surfaceImageState {
	return t.states[i]
}
