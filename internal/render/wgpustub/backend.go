// Package wgpustub registers a placeholder WebGPU backend. It conforms to
// the render.Device contract but reports not-available from Init, so
// selecting it falls through cleanly until the wgpu path is realized.
package wgpustub

import (
	"github.com/cogentcore/webgpu/wgpu"

	"voxedit/internal/render"
)

func init() {
	render.Register(render.BackendWebGPU, func() render.Device {
		return &Device{}
	})
}

// Device is the future wgpu device. Fields are laid out for the port; no
// operation ever reaches them today because Init always refuses.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface
}

func (d *Device) Name() string { return render.BackendWebGPU }

// Init reports the backend as unavailable. TODO: adapter request and
// device setup via wgpuglfw.GetSurfaceDescriptor once the wgpu swapchain
// path lands.
func (d *Device) Init(window render.WindowHandle) error {
	return render.ErrBackendNotAvailable
}

func (d *Device) CreateSwapChain(surface render.WindowHandle, width, height int) error {
	return render.ErrBackendNotAvailable
}

func (d *Device) DestroySwapChain() {}

func (d *Device) BeginFrame() error { return render.ErrBackendNotAvailable }
func (d *Device) EndFrame() error   { return render.ErrBackendNotAvailable }

func (d *Device) Draw(call render.DrawCall) error { return render.ErrBackendNotAvailable }

func (d *Device) WaitIdle() {}
func (d *Device) Shutdown() {}

func (d *Device) CreateVertexBuffer(data []byte) (render.Buffer, error) {
	return nil, render.ErrBackendNotAvailable
}

func (d *Device) CreateIndexBuffer(data []byte) (render.Buffer, error) {
	return nil, render.ErrBackendNotAvailable
}

func (d *Device) CreateUniformBuffer(size int) (render.Buffer, error) {
	return nil, render.ErrBackendNotAvailable
}

func (d *Device) CreateTexture(width, height int, pixels []byte) (render.Texture, error) {
	return nil, render.ErrBackendNotAvailable
}

func (d *Device) CreateShader(vertexSrc, fragmentSrc string) (render.Shader, error) {
	return nil, render.ErrBackendNotAvailable
}
