// Command viewer is a minimal top-down visualizer: it drives the
// simulation core through internal/hostapi and renders the agent
// positions in each step's Outputs as point sprites. It carries no simulation logic of its own.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/magv-sim/citysim/internal/hostapi"
)

func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

const (
	windowWidth  = 1024
	windowHeight = 768
)

func initWindow() (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "citysim viewer", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	return window, nil
}

const spriteVertSrc = `#version 410 core

layout(location = 0) in vec2 aWorldPos;
layout(location = 1) in float aSize;
layout(location = 2) in vec3 aColor;

uniform vec2 uCamera;
uniform float uZoom;
uniform vec2 uResolution;

out vec3 vColor;

void main() {
    vec2 screenPos = (aWorldPos - uCamera) * uZoom + uResolution * 0.5;
    vec2 ndc = (screenPos / uResolution) * 2.0 - 1.0;
    ndc.y = -ndc.y;
    gl_Position = vec4(ndc, 0.0, 1.0);
    gl_PointSize = max(2.0, aSize * uZoom);
    vColor = aColor;
}
` + "\x00"

const spriteFragSrc = `#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
    vec2 p = gl_PointCoord * 2.0 - 1.0;
    if (dot(p, p) > 1.0) {
        discard;
    }
    FragColor = vec4(vColor, 1.0);
}
` + "\x00"

func compileShader(src string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return program, nil
}

// spriteRenderer draws one GL_POINTS draw call per frame from a flat
// (x, y, size, r, g, b) vertex buffer.
type spriteRenderer struct {
	program        uint32
	vao, vbo       uint32
	uCamera, uZoom int32
	uResolution    int32
}

func newSpriteRenderer() (*spriteRenderer, error) {
	program, err := newProgram(spriteVertSrc, spriteFragSrc)
	if err != nil {
		return nil, err
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	stride := int32(6 * 4)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, glOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, stride, glOffset(2*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, glOffset(3*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	return &spriteRenderer{
		program:     program,
		vao:         vao,
		vbo:         vbo,
		uCamera:     gl.GetUniformLocation(program, gl.Str("uCamera\x00")),
		uZoom:       gl.GetUniformLocation(program, gl.Str("uZoom\x00")),
		uResolution: gl.GetUniformLocation(program, gl.Str("uResolution\x00")),
	}, nil
}

func (r *spriteRenderer) draw(verts []float32, camX, camY, zoom float32, fbW, fbH int) {
	if len(verts) == 0 {
		return
	}
	gl.UseProgram(r.program)
	gl.Uniform2f(r.uCamera, camX, camY)
	gl.Uniform1f(r.uZoom, zoom)
	gl.Uniform2f(r.uResolution, float32(fbW), float32(fbH))

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STREAM_DRAW)
	gl.DrawArrays(gl.POINTS, 0, int32(len(verts)/6))
	gl.BindVertexArray(0)
}

// snapshotSprites flattens a step's Outputs into (x, y, size, r, g, b)
// tuples: bus in red, ambient vehicles in yellow, pedestrians in cyan.
func snapshotSprites(out hostapi.Outputs, verts []float32) []float32 {
	verts = verts[:0]
	verts = append(verts, out.BusPos.X, out.BusPos.Y, 16, 0.95, 0.25, 0.2)
	for _, v := range out.Vehicles {
		verts = append(verts, float32(v.X), float32(v.Y), 10, 0.95, 0.85, 0.2)
	}
	for _, p := range out.Pedestrians {
		verts = append(verts, float32(p.X), float32(p.Y), 6, 0.25, 0.85, 0.95)
	}
	return verts
}

func main() {
	var (
		vehGraph  = flag.String("veh-graph", "", "path to the vehicle navigation graph file")
		pedGraph  = flag.String("ped-graph", "", "path to the pedestrian navigation graph file")
		semFile   = flag.String("semaphores", "", "path to the semaphore timing file")
		numVeh    = flag.Int("vehicles", 20, "number of ambient vehicles to spawn")
		numPed    = flag.Int("pedestrians", 20, "number of ambient pedestrians to spawn")
		seed      = flag.Uint64("seed", 1, "deterministic PRNG seed")
		zoomStart = flag.Float64("zoom", 8.0, "initial pixels-per-meter zoom")
	)
	flag.Parse()

	if *vehGraph == "" {
		fmt.Fprintln(os.Stderr, "viewer: -veh-graph is required")
		os.Exit(2)
	}

	runtime.LockOSThread()

	window, err := initWindow()
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "viewer: gl init: %v\n", err)
		os.Exit(1)
	}

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.ClearColor(0.08, 0.09, 0.10, 1.0)

	rend, err := newSpriteRenderer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}

	host := hostapi.NewHost(hostapi.Config{
		VehGraphPath:   *vehGraph,
		PedGraphPath:   *pedGraph,
		SemaphorePath:  *semFile,
		NumVehicles:    *numVeh,
		NumPedestrians: *numPed,
		Seed:           *seed,
	})
	if _, ok := host.Dispatch(hostapi.ModeInitialize, hostapi.Inputs{}); !ok {
		fmt.Fprintln(os.Stderr, "viewer: initialize failed")
		os.Exit(1)
	}
	defer host.Dispatch(hostapi.ModeFinalize, hostapi.Inputs{})

	zoom := float32(*zoomStart)
	last := glfw.GetTime()
	verts := make([]float32, 0, 256)

	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := now - last
		last = now
		if dt > 0.1 {
			dt = 0.1
		}

		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}

		accel := float32(0)
		if window.GetKey(glfw.KeyUp) == glfw.Press {
			accel = 1.0
		}
		brake := float32(0)
		if window.GetKey(glfw.KeyDown) == glfw.Press {
			brake = 1.0
		}
		steer := float32(0)
		if window.GetKey(glfw.KeyLeft) == glfw.Press {
			steer = -1.0
		} else if window.GetKey(glfw.KeyRight) == glfw.Press {
			steer = 1.0
		}

		out, ok := host.Dispatch(hostapi.ModeStep, hostapi.Inputs{
			Steer: steer, Accel: accel, Brake: brake, Dt: float32(dt),
		})
		if !ok {
			continue
		}

		fbW, fbH := window.GetFramebufferSize()
		if fbW <= 0 || fbH <= 0 {
			continue
		}

		gl.Viewport(0, 0, int32(fbW), int32(fbH))
		gl.Clear(gl.COLOR_BUFFER_BIT)

		verts = snapshotSprites(out, verts)
		rend.draw(verts, out.BusPos.X, out.BusPos.Y, zoom, fbW, fbH)

		window.SwapBuffers()
		time.Sleep(time.Millisecond) // yield even at high swap rates
	}
}
