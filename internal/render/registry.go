package render

import "sync"

// Backend identifiers.
const (
	BackendOpenGL   = "opengl"
	BackendVulkan   = "vulkan"
	BackendOpenGL21 = "opengl21"
	BackendWebGPU   = "webgpu"
)

// DeviceFactory creates a new device instance for a backend.
type DeviceFactory func() Device

var (
	registryMu sync.RWMutex
	factories  = make(map[string]DeviceFactory)
	// Selection order for Default (first registered wins). The stub WebGPU
	// backend is last on purpose: it registers but reports not-available.
	priority = []string{BackendOpenGL, BackendVulkan, BackendOpenGL21, BackendWebGPU}
)

// Register registers a device factory under name. Called from init()
// functions in the backend packages; importing a backend makes it available.
func Register(name string, factory DeviceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Available returns the registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// NewDevice returns a fresh device for the named backend, or nil when the
// backend is not registered.
func NewDevice(name string) Device {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := factories[name]
	if !ok {
		return nil
	}
	return factory()
}

// DefaultDevice returns a device for the highest-priority registered
// backend, or nil when none are registered.
func DefaultDevice() Device {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range priority {
		if factory, ok := factories[name]; ok {
			if dev := factory(); dev != nil {
				return dev
			}
		}
	}
	for _, factory := range factories {
		if dev := factory(); dev != nil {
			return dev
		}
	}
	return nil
}
