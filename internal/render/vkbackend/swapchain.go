package vkbackend

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"voxedit/internal/config"
	"voxedit/internal/render"
)

// swapchain bundles everything that dies and is reborn on a resize: the
// surface binding, the swapchain and its image views, the depth buffer,
// render pass, framebuffers, and the per-frame ring resources.
type swapchain struct {
	surface vk.Surface
	handle  vk.Swapchain
	format  vk.Format
	width   int
	height  int

	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer

	depthImage  vk.Image
	depthMemory vk.DeviceMemory
	depthView   vk.ImageView

	renderPass vk.RenderPass

	// frame ring: one command buffer, fence and semaphore pair per slot.
	// Slot count comes from the frames_in_flight setting, fixed for the
	// life of this swapchain.
	slots          int
	commandBuffers []vk.CommandBuffer
	fences         []vk.Fence
	imageAvailable []vk.Semaphore
	renderDone     []vk.Semaphore
	fence          *submitFence
	ring           *render.FrameRing

	surfaces *surfaceStateTracker
}

func newSwapchain(d *Device, window *glfw.Window, width, height int) (*swapchain, error) {
	sc := &swapchain{
		width:  width,
		height: height,
		slots:  config.GetFramesInFlight(),
	}

	surfacePtr, err := window.CreateWindowSurface(d.instance, nil)
	if err != nil {
		return nil, fmt.Errorf("vkbackend: create surface: %w", err)
	}
	sc.surface = vk.SurfaceFromPointer(surfacePtr)

	var supported vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(d.gpu, d.queueFamily, sc.surface, &supported)
	if supported != vk.True {
		sc.destroy(d)
		return nil, fmt.Errorf("vkbackend: queue family %d cannot present", d.queueFamily)
	}

	if err := sc.createSwapchain(d); err != nil {
		sc.destroy(d)
		return nil, err
	}
	if err := sc.createDepth(d); err != nil {
		sc.destroy(d)
		return nil, err
	}
	if err := sc.createRenderPass(d); err != nil {
		sc.destroy(d)
		return nil, err
	}
	if err := sc.createFramebuffers(d); err != nil {
		sc.destroy(d)
		return nil, err
	}
	if err := sc.createFrameResources(d); err != nil {
		sc.destroy(d)
		return nil, err
	}
	sc.surfaces = newSurfaceStateTracker(len(sc.images))
	return sc, nil
}

func (sc *swapchain) createSwapchain(d *Device) error {
	var caps vk.SurfaceCapabilities
	vk.GetPhysicalDeviceSurfaceCapabilities(d.gpu, sc.surface, &caps)
	caps.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(d.gpu, sc.surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(d.gpu, sc.surface, &formatCount, formats)

	sc.format = vk.FormatB8g8r8a8Unorm
	colorSpace := vk.ColorSpaceSrgbNonlinear
	for i := range formats {
		formats[i].Deref()
		if formats[i].Format == vk.FormatB8g8r8a8Unorm {
			colorSpace = formats[i].ColorSpace
			break
		}
	}

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          sc.surface,
		MinImageCount:    imageCount,
		ImageFormat:      sc.format,
		ImageColorSpace:  colorSpace,
		ImageExtent:      vk.Extent2D{Width: uint32(sc.width), Height: uint32(sc.height)},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
	}
	var handle vk.Swapchain
	if res := vk.CreateSwapchain(d.dev, &createInfo, nil, &handle); res != vk.Success {
		return fmt.Errorf("vkbackend: create swapchain: %d", res)
	}
	sc.handle = handle

	var count uint32
	vk.GetSwapchainImages(d.dev, sc.handle, &count, nil)
	sc.images = make([]vk.Image, count)
	vk.GetSwapchainImages(d.dev, sc.handle, &count, sc.images)

	sc.views = make([]vk.ImageView, count)
	for i, img := range sc.images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   sc.format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		if res := vk.CreateImageView(d.dev, &viewInfo, nil, &sc.views[i]); res != vk.Success {
			return fmt.Errorf("vkbackend: create image view: %d", res)
		}
	}
	return nil
}

const depthFormat = vk.FormatD32Sfloat

func (sc *swapchain) createDepth(d *Device) error {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    depthFormat,
		Extent: vk.Extent3D{
			Width:  uint32(sc.width),
			Height: uint32(sc.height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if res := vk.CreateImage(d.dev, &imageInfo, nil, &sc.depthImage); res != vk.Success {
		return fmt.Errorf("vkbackend: create depth image: %d", res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.dev, sc.depthImage, &memReqs)
	memReqs.Deref()
	memType, err := d.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	if res := vk.AllocateMemory(d.dev, &allocInfo, nil, &sc.depthMemory); res != vk.Success {
		return fmt.Errorf("vkbackend: allocate depth memory: %d", res)
	}
	vk.BindImageMemory(d.dev, sc.depthImage, sc.depthMemory, 0)

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    sc.depthImage,
		ViewType: vk.ImageViewType2d,
		Format:   depthFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	if res := vk.CreateImageView(d.dev, &viewInfo, nil, &sc.depthView); res != vk.Success {
		return fmt.Errorf("vkbackend: create depth view: %d", res)
	}
	return nil
}

// createRenderPass keeps both the initial and final color layout at
// color-attachment; the presentable transitions happen through the
// explicit barriers recorded in BeginFrame/EndFrame.
func (sc *swapchain) createRenderPass(d *Device) error {
	colorAttachment := vk.AttachmentDescription{
		Format:         sc.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutColorAttachmentOptimal,
		FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
	}
	depthAttachment := vk.AttachmentDescription{
		Format:         depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorRef},
		PDepthStencilAttachment: &depthRef,
	}

	rpInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}
	if res := vk.CreateRenderPass(d.dev, &rpInfo, nil, &sc.renderPass); res != vk.Success {
		return fmt.Errorf("vkbackend: create render pass: %d", res)
	}
	return nil
}

func (sc *swapchain) createFramebuffers(d *Device) error {
	sc.framebuffers = make([]vk.Framebuffer, len(sc.views))
	for i, view := range sc.views {
		fbInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      sc.renderPass,
			AttachmentCount: 2,
			PAttachments:    []vk.ImageView{view, sc.depthView},
			Width:           uint32(sc.width),
			Height:          uint32(sc.height),
			Layers:          1,
		}
		if res := vk.CreateFramebuffer(d.dev, &fbInfo, nil, &sc.framebuffers[i]); res != vk.Success {
			return fmt.Errorf("vkbackend: create framebuffer: %d", res)
		}
	}
	return nil
}

func (sc *swapchain) createFrameResources(d *Device) error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(sc.slots),
	}
	sc.commandBuffers = make([]vk.CommandBuffer, sc.slots)
	if res := vk.AllocateCommandBuffers(d.dev, &allocInfo, sc.commandBuffers); res != vk.Success {
		return fmt.Errorf("vkbackend: allocate command buffers: %d", res)
	}

	sc.fences = make([]vk.Fence, sc.slots)
	sc.imageAvailable = make([]vk.Semaphore, sc.slots)
	sc.renderDone = make([]vk.Semaphore, sc.slots)
	for i := 0; i < sc.slots; i++ {
		fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
		if res := vk.CreateFence(d.dev, &fenceInfo, nil, &sc.fences[i]); res != vk.Success {
			return fmt.Errorf("vkbackend: create fence: %d", res)
		}
		semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
		if res := vk.CreateSemaphore(d.dev, &semInfo, nil, &sc.imageAvailable[i]); res != vk.Success {
			return fmt.Errorf("vkbackend: create semaphore: %d", res)
		}
		if res := vk.CreateSemaphore(d.dev, &semInfo, nil, &sc.renderDone[i]); res != vk.Success {
			return fmt.Errorf("vkbackend: create semaphore: %d", res)
		}
	}

	sc.fence = newSubmitFence(d.dev)
	sc.ring = render.NewFrameRing(sc.slots, sc.fence)
	return nil
}

// destroy releases in reverse dependency order. The queue must already be
// idle.
func (sc *swapchain) destroy(d *Device) {
	if sc.ring != nil {
		sc.ring.WaitAll()
	}
	for _, f := range sc.fences {
		if f != vk.NullFence {
			vk.DestroyFence(d.dev, f, nil)
		}
	}
	for _, s := range sc.imageAvailable {
		if s != vk.NullSemaphore {
			vk.DestroySemaphore(d.dev, s, nil)
		}
	}
	for _, s := range sc.renderDone {
		if s != vk.NullSemaphore {
			vk.DestroySemaphore(d.dev, s, nil)
		}
	}
	if len(sc.commandBuffers) > 0 {
		vk.FreeCommandBuffers(d.dev, d.commandPool, uint32(len(sc.commandBuffers)), sc.commandBuffers)
	}
	for _, fb := range sc.framebuffers {
		if fb != vk.NullFramebuffer {
			vk.DestroyFramebuffer(d.dev, fb, nil)
		}
	}
	if sc.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(d.dev, sc.renderPass, nil)
	}
	if sc.depthView != vk.NullImageView {
		vk.DestroyImageView(d.dev, sc.depthView, nil)
	}
	if sc.depthImage != vk.NullImage {
		vk.DestroyImage(d.dev, sc.depthImage, nil)
	}
	if sc.depthMemory != vk.NullDeviceMemory {
		vk.FreeMemory(d.dev, sc.depthMemory, nil)
	}
	for _, view := range sc.views {
		if view != vk.NullImageView {
			vk.DestroyImageView(d.dev, view, nil)
		}
	}
	if sc.handle != vk.NullSwapchain {
		vk.DestroySwapchain(d.dev, sc.handle, nil)
	}
	if sc.surface != vk.NullSurface {
		vk.DestroySurface(d.instance, sc.surface, nil)
	}
}
