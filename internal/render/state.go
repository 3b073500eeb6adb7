package render

// ContextState is the lifecycle state of a Context. Transitions only move
// forward (resize loops Presentable back onto itself via swap-chain
// teardown-and-recreate); Shutdown returns the context to Uninitialized.
type ContextState int

const (
	// StateUninitialized is the zero state; no device exists.
	StateUninitialized ContextState = iota

	// StateDeviceReady means the device/context exists but no presentation
	// target has been designated.
	StateDeviceReady

	// StateViewportBound means a viewport surface handle has been recorded
	// but no swap chain exists yet.
	StateViewportBound

	// StatePresentable means a swap chain is bound to the viewport surface
	// and frames can be rendered.
	StatePresentable
)

func (s ContextState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateDeviceReady:
		return "DeviceReady"
	case StateViewportBound:
		return "ViewportBound"
	case StatePresentable:
		return "Presentable"
	default:
		return "Unknown"
	}
}
