// Package vkbackend implements the render.Device contract on Vulkan with
// the explicit command-list discipline: per-frame command buffers rotated
// through a fence-guarded ring, and swapchain images moved between
// presentable and render-target states with explicit pipeline barriers.
package vkbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"voxedit/internal/config"
	"voxedit/internal/render"
)

func init() {
	render.Register(render.BackendVulkan, func() render.Device {
		return &Device{}
	})
}

var errFrameNotOpen = errors.New("vkbackend: draw outside BeginFrame/EndFrame")

// Device drives one Vulkan instance/device pair. The swapchain, its views
// and the per-frame ring are owned by the swapchain half and rebuilt on
// every resize; everything here survives resizes.
type Device struct {
	window *glfw.Window

	instance    vk.Instance
	gpu         vk.PhysicalDevice
	dev         vk.Device
	queue       vk.Queue
	queueFamily uint32
	commandPool vk.CommandPool

	sc *swapchain

	initialized bool
	inFrame     bool
	imageIndex  uint32
	slot        int
}

func (d *Device) Name() string { return render.BackendVulkan }

// Init brings up instance, physical device, logical device, queue and
// command pool. No surface or swapchain exists afterwards.
func (d *Device) Init(window render.WindowHandle) error {
	win, ok := window.(*glfw.Window)
	if !ok || win == nil {
		return render.ErrNilHandle
	}
	if !glfw.VulkanSupported() {
		return render.ErrBackendNotAvailable
	}

	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("vkbackend: loader: %w", err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vkbackend: init: %w", err)
	}

	if err := d.createInstance(); err != nil {
		return err
	}
	if err := d.pickPhysicalDevice(); err != nil {
		return err
	}
	if err := d.createLogicalDevice(); err != nil {
		return err
	}
	if err := d.createCommandPool(); err != nil {
		return err
	}

	d.window = win
	d.initialized = true
	return nil
}

// CreateSwapChain binds presentation to the viewport surface. See
// swapchain.go for the creation order; the fresh images are cleared before
// the first real frame so nothing stale is presented.
func (d *Device) CreateSwapChain(surface render.WindowHandle, width, height int) error {
	if !d.initialized {
		return render.ErrNotInitialized
	}
	sfc, ok := surface.(*glfw.Window)
	if !ok || sfc == nil {
		return render.ErrNilHandle
	}
	if d.sc != nil {
		return errors.New("vkbackend: swap chain already exists")
	}

	sc, err := newSwapchain(d, sfc, width, height)
	if err != nil {
		return err
	}
	d.sc = sc
	return nil
}

// DestroySwapChain drains the queue and releases swapchain-dependent
// objects in reverse dependency order.
func (d *Device) DestroySwapChain() {
	if d.sc == nil {
		return
	}
	vk.DeviceWaitIdle(d.dev)
	d.sc.destroy(d)
	d.sc = nil
	d.inFrame = false
}

// BeginFrame rotates the ring to the next slot, blocking until that slot's
// previously assigned fence value is complete, acquires the next swapchain
// image, and records the barrier taking it from presentable to
// render-target state.
func (d *Device) BeginFrame() error {
	if d.sc == nil {
		return render.ErrNoSwapChain
	}
	if d.inFrame {
		return errors.New("vkbackend: BeginFrame while frame open")
	}

	d.slot = d.sc.ring.Acquire()

	var imageIndex uint32
	res := vk.AcquireNextImage(d.dev, d.sc.handle, ^uint64(0),
		d.sc.imageAvailable[d.slot], vk.NullFence, &imageIndex)
	if res != vk.Success && res != vk.Suboptimal {
		return fmt.Errorf("vkbackend: acquire image: %d", res)
	}
	d.imageIndex = imageIndex

	cmd := d.sc.commandBuffers[d.slot]
	vk.ResetCommandBuffer(cmd, 0)
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cmd, &beginInfo); res != vk.Success {
		return fmt.Errorf("vkbackend: begin command buffer: %d", res)
	}

	if err := d.sc.surfaces.toRenderTarget(int(imageIndex)); err != nil {
		return err
	}
	recordImageBarrier(cmd, d.sc.images[imageIndex],
		vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal,
		vk.AccessFlags(0), vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit))

	cr, cg, cb := config.GetClearColor()
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{cr, cg, cb, 1.0})
	clearValues[1].SetDepthStencil(1.0, 0)
	rpBegin := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  d.sc.renderPass,
		Framebuffer: d.sc.framebuffers[imageIndex],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{},
			Extent: vk.Extent2D{Width: uint32(d.sc.width), Height: uint32(d.sc.height)},
		},
		ClearValueCount: 2,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cmd, &rpBegin, vk.SubpassContentsInline)

	d.inFrame = true
	return nil
}

// EndFrame closes the render pass, records the barrier back to presentable
// state, submits the command buffer with the slot's fence, and presents.
func (d *Device) EndFrame() error {
	if !d.inFrame {
		return errFrameNotOpen
	}
	d.inFrame = false

	cmd := d.sc.commandBuffers[d.slot]
	vk.CmdEndRenderPass(cmd)

	if err := d.sc.surfaces.toPresent(int(d.imageIndex)); err != nil {
		return err
	}
	recordImageBarrier(cmd, d.sc.images[d.imageIndex],
		vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutPresentSrc,
		vk.AccessFlags(vk.AccessColorAttachmentWriteBit), vk.AccessFlags(0),
		vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit))

	if res := vk.EndCommandBuffer(cmd); res != vk.Success {
		return fmt.Errorf("vkbackend: end command buffer: %d", res)
	}

	fence := d.sc.fences[d.slot]
	vk.ResetFences(d.dev, 1, []vk.Fence{fence})

	waitStage := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{d.sc.imageAvailable[d.slot]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{waitStage},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{d.sc.renderDone[d.slot]},
	}
	if res := vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{submit}, fence); res != vk.Success {
		return fmt.Errorf("vkbackend: queue submit: %d", res)
	}

	value := d.sc.ring.Submit()
	d.sc.fence.register(value, fence)

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{d.sc.renderDone[d.slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{d.sc.handle},
		PImageIndices:      []uint32{d.imageIndex},
	}
	res := vk.QueuePresent(d.queue, &presentInfo)
	if res != vk.Success && res != vk.Suboptimal {
		return fmt.Errorf("vkbackend: present: %d", res)
	}
	return nil
}

// Draw records one indexed draw into the current frame's command buffer.
func (d *Device) Draw(call render.DrawCall) error {
	if !d.inFrame {
		return errFrameNotOpen
	}
	shader, ok := call.Shader.(*vkShader)
	if !ok || shader == nil {
		return errors.New("vkbackend: foreign shader in draw call")
	}
	vb, ok := call.Vertex.(*vkBuffer)
	if !ok || vb == nil {
		return errors.New("vkbackend: foreign vertex buffer in draw call")
	}
	ib, ok := call.Index.(*vkBuffer)
	if !ok || ib == nil {
		return errors.New("vkbackend: foreign index buffer in draw call")
	}

	pipeline, err := shader.ensurePipeline(d)
	if err != nil {
		return err
	}

	cmd := d.sc.commandBuffers[d.slot]
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline)
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{vb.buf}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cmd, ib.buf, 0, vk.IndexTypeUint32)

	mvp := call.MVP
	pushMVP(cmd, shader.layout, &mvp)
	vk.CmdDrawIndexed(cmd, uint32(call.IndexCount), 1, 0, 0, 0)
	return nil
}

// WaitIdle blocks until the GPU has drained all submitted work.
func (d *Device) WaitIdle() {
	if d.initialized {
		vk.DeviceWaitIdle(d.dev)
	}
}

// Shutdown drains the device and releases everything in reverse dependency
// order: swapchain objects, command pool, device, instance.
func (d *Device) Shutdown() {
	if !d.initialized {
		return
	}
	vk.DeviceWaitIdle(d.dev)
	d.DestroySwapChain()

	if d.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.dev, d.commandPool, nil)
		d.commandPool = vk.NullCommandPool
	}
	if d.dev != nil {
		vk.DestroyDevice(d.dev, nil)
		d.dev = nil
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
	d.window = nil
	d.initialized = false
}
