package vkbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

func (d *Device) createInstance() error {
	required := []string{}
	for _, ext := range glfw.GetRequiredInstanceExtensions() {
		required = append(required, ext+"\x00")
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   "voxedit\x00",
		ApplicationVersion: vk.MakeVersion(0, 1, 0),
		PEngineName:        "voxedit\x00",
		EngineVersion:      vk.MakeVersion(0, 1, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(required)),
		PpEnabledExtensionNames: required,
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkbackend: create instance: %d", res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return fmt.Errorf("vkbackend: init instance: %w", err)
	}
	d.instance = instance
	return nil
}

// pickPhysicalDevice selects the first GPU exposing a graphics queue
// family.
func (d *Device) pickPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(d.instance, &count, nil)
	if count == 0 {
		return errors.New("vkbackend: no Vulkan devices")
	}
	gpus := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(d.instance, &count, gpus)

	for _, gpu := range gpus {
		var qfCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &qfCount, nil)
		families := make([]vk.QueueFamilyProperties, qfCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &qfCount, families)
		for i, qf := range families {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				d.gpu = gpu
				d.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return errors.New("vkbackend: no graphics queue family")
}

func (d *Device) createLogicalDevice() error {
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	extensions := []string{vk.KhrSwapchainExtensionName + "\x00"}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueInfo},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	var dev vk.Device
	if res := vk.CreateDevice(d.gpu, &deviceInfo, nil, &dev); res != vk.Success {
		return fmt.Errorf("vkbackend: create device: %d", res)
	}
	d.dev = dev

	var queue vk.Queue
	vk.GetDeviceQueue(dev, d.queueFamily, 0, &queue)
	d.queue = queue
	return nil
}

func (d *Device) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(d.dev, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkbackend: create command pool: %d", res)
	}
	d.commandPool = pool
	return nil
}

// findMemoryType picks a memory type matching typeBits and properties.
func (d *Device) findMemoryType(typeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.gpu, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if typeBits&(1<<i) != 0 &&
			memProps.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, errors.New("vkbackend: no suitable memory type")
}

// recordImageBarrier records one layout transition on the whole color
// aspect of image.
func recordImageBarrier(cmd vk.CommandBuffer, image vk.Image,
	oldLayout, newLayout vk.ImageLayout,
	srcAccess, dstAccess vk.AccessFlags,
	srcStage, dstStage vk.PipelineStageFlags) {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// oneTimeCommands records fn into a throwaway command buffer and blocks
// until the queue has executed it. Used for texture layout transitions.
func (d *Device) oneTimeCommands(fn func(cmd vk.CommandBuffer)) error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cmds := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(d.dev, &allocInfo, cmds); res != vk.Success {
		return fmt.Errorf("vkbackend: allocate command buffer: %d", res)
	}
	cmd := cmds[0]
	defer vk.FreeCommandBuffers(d.dev, d.commandPool, 1, cmds)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cmd, &beginInfo); res != vk.Success {
		return fmt.Errorf("vkbackend: begin one-time commands: %d", res)
	}
	fn(cmd)
	if res := vk.EndCommandBuffer(cmd); res != vk.Success {
		return fmt.Errorf("vkbackend: end one-time commands: %d", res)
	}

	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmds,
	}
	if res := vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{submit}, vk.NullFence); res != vk.Success {
		return fmt.Errorf("vkbackend: submit one-time commands: %d", res)
	}
	vk.QueueWaitIdle(d.queue)
	return nil
}
