package graphics

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Tile shaders. The vertex stage computes perspective * view * model * position;
// the fragment stage samples diffuse_tex.
const (
	VertexShader = `#version 150

in vec3 position;
in vec2 tex_coords;

out vec2 v_tex_coords;

uniform mat4 perspective;
uniform mat4 model;
uniform mat4 view;

void main() {
    v_tex_coords = tex_coords;
    gl_Position = perspective * view * model * vec4(position, 1.0);
}
` + "\x00"

	FragmentShader = `#version 140

in vec2 v_tex_coords;

out vec4 color;

uniform sampler2D diffuse_tex;

void main() {
    color = texture(diffuse_tex, v_tex_coords).rgba;
}
` + "\x00"
)

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("graphics: vertex shader: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("graphics: fragment shader: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("graphics: link failed: %s", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func uniformLocation(prog uint32, name string) (int32, error) {
	loc := gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("graphics: program has no uniform %q", name)
	}
	return loc, nil
}

func attribLocation(prog uint32, name string) (uint32, error) {
	loc := gl.GetAttribLocation(prog, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("graphics: program has no input %q", name)
	}
	return uint32(loc), nil
}
