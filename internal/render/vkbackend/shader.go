package vkbackend

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"voxedit/internal/render"
)

// spirvMagic is the first word of every valid SPIR-V binary.
const spirvMagic = 0x07230203

// vkShader holds a vertex/fragment module pair plus the pipeline built
// from them. The pipeline is created lazily on first draw because it needs
// the swapchain's render pass, and rebuilt when a resize replaces that
// render pass.
type vkShader struct {
	dev  *Device
	vert vk.ShaderModule
	frag vk.ShaderModule

	layout     vk.PipelineLayout
	pipeline   vk.Pipeline
	renderPass vk.RenderPass

	handle uintptr
	refs   *render.RefCount
}

// CreateShader builds a shader from SPIR-V binaries passed as raw byte
// strings. Sources that are not SPIR-V are rejected with a diagnostic
// naming the bad stage.
func (d *Device) CreateShader(vertexSrc, fragmentSrc string) (render.Shader, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}

	vert, err := d.createShaderModule("vertex", []byte(vertexSrc))
	if err != nil {
		return nil, err
	}
	frag, err := d.createShaderModule("fragment", []byte(fragmentSrc))
	if err != nil {
		vk.DestroyShaderModule(d.dev, vert, nil)
		return nil, err
	}

	pushRange := vk.PushConstantRange{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       64,
	}
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PushConstantRangeCount: 1,
		PPushConstantRanges:    []vk.PushConstantRange{pushRange},
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(d.dev, &layoutInfo, nil, &layout); res != vk.Success {
		vk.DestroyShaderModule(d.dev, vert, nil)
		vk.DestroyShaderModule(d.dev, frag, nil)
		return nil, fmt.Errorf("vkbackend: create pipeline layout: %d", res)
	}

	return &vkShader{
		dev:    d,
		vert:   vert,
		frag:   frag,
		layout: layout,
		handle: nextHandle(),
		refs:   render.NewRefCount(),
	}, nil
}

func (d *Device) createShaderModule(stage string, code []byte) (vk.ShaderModule, error) {
	if len(code) < 4 || len(code)%4 != 0 {
		return vk.NullShaderModule, fmt.Errorf("vkbackend: %s shader is not SPIR-V (%d bytes)", stage, len(code))
	}
	if binary.LittleEndian.Uint32(code[:4]) != spirvMagic {
		return vk.NullShaderModule, fmt.Errorf("vkbackend: %s shader is not SPIR-V (bad magic)", stage)
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(d.dev, &createInfo, nil, &module); res != vk.Success {
		return vk.NullShaderModule, fmt.Errorf("vkbackend: create %s shader module: %d", stage, res)
	}
	return module, nil
}

func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// Bind is a no-op; the pipeline is bound per draw through the command
// buffer.
func (s *vkShader) Bind()   {}
func (s *vkShader) Unbind() {}

func (s *vkShader) NativeHandle() uintptr { return s.handle }

func (s *vkShader) Retain() { s.refs.Retain() }

func (s *vkShader) Release() {
	s.refs.Release(func() {
		s.destroyPipeline()
		if s.layout != vk.NullPipelineLayout {
			vk.DestroyPipelineLayout(s.dev.dev, s.layout, nil)
			s.layout = vk.NullPipelineLayout
		}
		vk.DestroyShaderModule(s.dev.dev, s.vert, nil)
		vk.DestroyShaderModule(s.dev.dev, s.frag, nil)
		s.vert = vk.NullShaderModule
		s.frag = vk.NullShaderModule
	})
}

func (s *vkShader) destroyPipeline() {
	if s.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(s.dev.dev, s.pipeline, nil)
		s.pipeline = vk.NullPipeline
	}
	s.renderPass = vk.NullRenderPass
}

// ensurePipeline returns the pipeline for the current swapchain's render
// pass, building or rebuilding it as needed.
func (s *vkShader) ensurePipeline(d *Device) (vk.Pipeline, error) {
	if d.sc == nil {
		return vk.NullPipeline, render.ErrNoSwapChain
	}
	if s.pipeline != vk.NullPipeline && s.renderPass == d.sc.renderPass {
		return s.pipeline, nil
	}
	s.destroyPipeline()

	pipeline, err := buildChunkPipeline(d, s)
	if err != nil {
		return vk.NullPipeline, err
	}
	s.pipeline = pipeline
	s.renderPass = d.sc.renderPass
	return pipeline, nil
}

func pushMVP(cmd vk.CommandBuffer, layout vk.PipelineLayout, mvp *mgl32.Mat4) {
	vk.CmdPushConstants(cmd, layout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, 64,
		unsafe.Pointer(&mvp[0]))
}
