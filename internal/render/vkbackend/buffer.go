package vkbackend

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"voxedit/internal/render"
)

// handleCounter hands out process-unique ids for NativeHandle. Vulkan
// object handles are not stable uintptr values across drivers, so wrappers
// expose an identity id instead.
var handleCounter uint64

func nextHandle() uintptr {
	return uintptr(atomic.AddUint64(&handleCounter, 1))
}

// vkBuffer wraps one host-visible, host-coherent buffer with its memory.
// Host-visible keeps UpdateData a plain map-copy; chunk meshes are small
// enough that a staging path is not worth the extra submission.
type vkBuffer struct {
	dev    *Device
	buf    vk.Buffer
	mem    vk.DeviceMemory
	size   int
	handle uintptr
	refs   *render.RefCount
}

func (d *Device) createBuffer(size int, usage vk.BufferUsageFlags) (*vkBuffer, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if size <= 0 {
		return nil, errors.New("vkbackend: empty buffer")
	}

	bufInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var buf vk.Buffer
	if res := vk.CreateBuffer(d.dev, &bufInfo, nil, &buf); res != vk.Success {
		return nil, fmt.Errorf("vkbackend: create buffer: %d", res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.dev, buf, &memReqs)
	memReqs.Deref()
	memType, err := d.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(d.dev, buf, nil)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(d.dev, &allocInfo, nil, &mem); res != vk.Success {
		vk.DestroyBuffer(d.dev, buf, nil)
		return nil, fmt.Errorf("vkbackend: allocate buffer memory: %d", res)
	}
	vk.BindBufferMemory(d.dev, buf, mem, 0)

	return &vkBuffer{
		dev:    d,
		buf:    buf,
		mem:    mem,
		size:   size,
		handle: nextHandle(),
		refs:   render.NewRefCount(),
	}, nil
}

func (d *Device) CreateVertexBuffer(data []byte) (render.Buffer, error) {
	b, err := d.createBuffer(len(data), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, err
	}
	if err := b.UpdateData(data, 0); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (d *Device) CreateIndexBuffer(data []byte) (render.Buffer, error) {
	b, err := d.createBuffer(len(data), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		return nil, err
	}
	if err := b.UpdateData(data, 0); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// CreateUniformBuffer rounds the allocation up to the 256-byte uniform
// alignment; the buffer reports the aligned size.
func (d *Device) CreateUniformBuffer(size int) (render.Buffer, error) {
	alloc := render.AlignUniformSize(size, render.UniformAlignment)
	return d.createBuffer(alloc, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit))
}

// Bind is a no-op; Vulkan buffers are bound per draw through the command
// buffer.
func (b *vkBuffer) Bind()   {}
func (b *vkBuffer) Unbind() {}

// UpdateData maps the range and copies. The caller must not update a
// buffer referenced by an unfinished submission.
func (b *vkBuffer) UpdateData(data []byte, offset int) error {
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("vkbackend: update [%d,%d) exceeds buffer size %d", offset, offset+len(data), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	var ptr unsafe.Pointer
	if res := vk.MapMemory(b.dev.dev, b.mem, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		return fmt.Errorf("vkbackend: map memory: %d", res)
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(b.dev.dev, b.mem)
	return nil
}

func (b *vkBuffer) Size() int { return b.size }

func (b *vkBuffer) NativeHandle() uintptr { return b.handle }

func (b *vkBuffer) Retain() { b.refs.Retain() }

func (b *vkBuffer) Release() {
	b.refs.Release(func() {
		vk.DestroyBuffer(b.dev.dev, b.buf, nil)
		vk.FreeMemory(b.dev.dev, b.mem, nil)
		b.buf = vk.NullBuffer
		b.mem = vk.NullDeviceMemory
	})
}
