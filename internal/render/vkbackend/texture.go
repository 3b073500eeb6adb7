package vkbackend

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"voxedit/internal/render"
)

// vkTexture is a linearly tiled, host-visible sampled image. Linear tiling
// trades some sampling speed for a direct map-copy upload path, which is
// fine for the small editor textures this backend sees.
type vkTexture struct {
	dev    *Device
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	width  int
	height int

	// driver-reported layout of the linear image; RowPitch may exceed
	// width*4 and dataOffset may be non-zero
	rowPitch   int
	dataOffset vk.DeviceSize

	handle uintptr
	refs   *render.RefCount
}

func (d *Device) CreateTexture(width, height int, pixels []byte) (render.Texture, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("vkbackend: invalid texture size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("vkbackend: pixel data %d bytes, want %d", len(pixels), width*height*4)
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{
			Width:  uint32(width),
			Height: uint32(height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingLinear,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		InitialLayout: vk.ImageLayoutPreinitialized,
	}
	var image vk.Image
	if res := vk.CreateImage(d.dev, &imageInfo, nil, &image); res != vk.Success {
		return nil, fmt.Errorf("vkbackend: create texture image: %d", res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.dev, image, &memReqs)
	memReqs.Deref()
	memType, err := d.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyImage(d.dev, image, nil)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(d.dev, &allocInfo, nil, &memory); res != vk.Success {
		vk.DestroyImage(d.dev, image, nil)
		return nil, fmt.Errorf("vkbackend: allocate texture memory: %d", res)
	}
	vk.BindImageMemory(d.dev, image, memory, 0)

	var layout vk.SubresourceLayout
	vk.GetImageSubresourceLayout(d.dev, image, &vk.ImageSubresource{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	}, &layout)
	layout.Deref()

	t := &vkTexture{
		dev:        d,
		image:      image,
		memory:     memory,
		width:      width,
		height:     height,
		rowPitch:   int(layout.RowPitch),
		dataOffset: layout.Offset,
		handle:     nextHandle(),
		refs:       render.NewRefCount(),
	}

	if err := t.upload(pixels); err != nil {
		t.Release()
		return nil, err
	}

	err = d.oneTimeCommands(func(cmd vk.CommandBuffer) {
		recordImageBarrier(cmd, image,
			vk.ImageLayoutPreinitialized, vk.ImageLayoutShaderReadOnlyOptimal,
			vk.AccessFlags(vk.AccessHostWriteBit), vk.AccessFlags(vk.AccessShaderReadBit),
			vk.PipelineStageFlags(vk.PipelineStageHostBit),
			vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit))
	})
	if err != nil {
		t.Release()
		return nil, err
	}

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   vk.FormatR8g8b8a8Unorm,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	if res := vk.CreateImageView(d.dev, &viewInfo, nil, &t.view); res != vk.Success {
		t.Release()
		return nil, fmt.Errorf("vkbackend: create texture view: %d", res)
	}
	return t, nil
}

func (t *vkTexture) upload(pixels []byte) error {
	data := padRows(pixels, t.height, t.width*4, t.rowPitch)
	var ptr unsafe.Pointer
	if res := vk.MapMemory(t.dev.dev, t.memory, t.dataOffset, vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		return fmt.Errorf("vkbackend: map texture memory: %d", res)
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(t.dev.dev, t.memory)
	return nil
}

// padRows re-packs tightly packed rows to the image's row pitch. When the
// pitch already matches the row width the input is returned as is.
func padRows(pixels []byte, height, rowBytes, pitch int) []byte {
	if pitch <= rowBytes {
		return pixels
	}
	out := make([]byte, height*pitch)
	for y := 0; y < height; y++ {
		copy(out[y*pitch:y*pitch+rowBytes], pixels[y*rowBytes:])
	}
	return out
}

// Bind is a no-op; sampling would go through a descriptor set, which the
// chunk pipeline does not use yet.
func (t *vkTexture) Bind(unit int) {}
func (t *vkTexture) Unbind()       {}

func (t *vkTexture) UpdateData(pixels []byte) error {
	if len(pixels) != t.width*t.height*4 {
		return fmt.Errorf("vkbackend: pixel data %d bytes, want %d", len(pixels), t.width*t.height*4)
	}
	return t.upload(pixels)
}

func (t *vkTexture) Width() int  { return t.width }
func (t *vkTexture) Height() int { return t.height }

func (t *vkTexture) NativeHandle() uintptr { return t.handle }

func (t *vkTexture) Retain() { t.refs.Retain() }

func (t *vkTexture) Release() {
	t.refs.Release(func() {
		if t.view != vk.NullImageView {
			vk.DestroyImageView(t.dev.dev, t.view, nil)
			t.view = vk.NullImageView
		}
		vk.DestroyImage(t.dev.dev, t.image, nil)
		vk.FreeMemory(t.dev.dev, t.memory, nil)
		t.image = vk.NullImage
		t.memory = vk.NullDeviceMemory
	})
}
