package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"voxedit/internal/render"
)

// glShader wraps one linked GL program.
type glShader struct {
	program uint32
	refs    *render.RefCount
}

// CreateShader compiles and links a program from GLSL vertex and fragment
// source. Compiler and linker info logs are returned verbatim in the error.
func (d *Device) CreateShader(vertexSrc, fragmentSrc string) (render.Shader, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	program, err := compileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return &glShader{program: program, refs: render.NewRefCount()}, nil
}

func (s *glShader) Bind()   { gl.UseProgram(s.program) }
func (s *glShader) Unbind() { gl.UseProgram(0) }

func (s *glShader) NativeHandle() uintptr { return uintptr(s.program) }

func (s *glShader) Retain() { s.refs.Retain() }

func (s *glShader) Release() {
	s.refs.Release(func() {
		gl.DeleteProgram(s.program)
		s.program = 0
	})
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))

		gl.DeleteShader(vertexShader)
		gl.DeleteShader(fragmentShader)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))

		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", infoLog)
	}
	return shader, nil
}
