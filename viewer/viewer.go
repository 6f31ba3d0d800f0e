// Package viewer displays a progressive render in an opengl window and maps
// keyboard and mouse input to camera motion.
package viewer

import (
	"fmt"
	"runtime"
	"time"

	"github.com/achilleasa/tiletrace/log"
	"github.com/achilleasa/tiletrace/renderer"
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed
	cameraMoveSpeed float32 = 0.05

	// Height in pixels for the frame time series widget
	seriesHeight uint32 = 20
)

const (
	leftMouseButton  = 0
	rightMouseButton = 1
)

// An interactive opengl window that drives a renderer.
type Viewer struct {
	logger   log.Logger
	renderer *renderer.Renderer
	scene    *scene.Scene
	opts     renderer.Options

	// opengl handles
	window  *glfw.Window
	texture uint32
	texFbo  uint32

	// state
	lastCursorPos types.Vec2
	mousePressed  [2]bool
	lastTitle     string

	// Display options
	showUI          bool
	frameTimeSeries *stackedSeries
}

func init() {
	// glfw event handling must run on the main thread.
	runtime.LockOSThread()
}

// Create a new viewer for an initialized renderer. The window dimensions
// match the renderer frame.
func New(r *renderer.Renderer, sc *scene.Scene) (*Viewer, error) {
	if !r.Initialized() {
		return nil, renderer.ErrNotInitialized
	}

	v := &Viewer{
		logger:   log.New("viewer"),
		renderer: r,
		scene:    sc,
		opts:     r.Options(),
	}

	if err := v.initGL(); err != nil {
		v.Close()
		return nil, err
	}

	v.frameTimeSeries = makeStackedSeries(2, int(v.opts.FrameW))
	return v, nil
}

// Close the window.
func (v *Viewer) Close() {
	if v.window != nil {
		v.window.Destroy()
		v.window = nil
	}
	glfw.Terminate()
}

func (v *Viewer) initGL() error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	v.window, err = glfw.CreateWindow(int(v.opts.FrameW), int(v.opts.FrameH), "tiletrace", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	v.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for image data
	gl.GenTextures(1, &v.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, v.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(v.opts.FrameW), int32(v.opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &v.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, v.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, v.texture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Setup ortho projection for UI bits
	gl.Disable(gl.DEPTH_TEST)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(v.opts.FrameW), float64(v.opts.FrameH), 0, -1, 1)
	gl.Viewport(0, 0, int32(v.opts.FrameW), int32(v.opts.FrameH))
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	// Bind event callbacks
	v.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	v.window.SetKeyCallback(v.onKeyEvent)
	v.window.SetMouseButtonCallback(v.onMouseEvent)
	v.window.SetCursorPosCallback(v.onCursorPosEvent)

	return nil
}

// Render frames until the window is closed. Transient renderer errors skip
// the affected frame; any other error aborts the loop.
func (v *Viewer) Run() error {
	lastFrame := time.Now()
	for !v.window.ShouldClose() {
		glfw.PollEvents()

		now := time.Now()
		elapsed := now.Sub(lastFrame).Seconds()
		lastFrame = now

		err := v.renderer.RenderFrame(v.scene.Snapshot(), elapsed)
		if err != nil && !renderer.IsTransient(err) {
			return err
		}

		presented := v.renderer.Present()
		if presented.Surface == nil {
			continue
		}

		// Upload tonemapped frame and blit it upside down as row 0 of the
		// surface is the top of the image.
		img := presented.Surface.Image(v.opts.Exposure)
		gl.BindTexture(gl.TEXTURE_2D, v.texture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(v.opts.FrameW), int32(v.opts.FrameH), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, v.texFbo)
		gl.BlitFramebuffer(0, 0, int32(v.opts.FrameW), int32(v.opts.FrameH), 0, int32(v.opts.FrameH), int32(v.opts.FrameW), 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		stats := v.renderer.Stats()
		v.updateTitle(stats)
		if err == nil {
			v.frameTimeSeries.AppendFrame(stats)
		}
		if v.showUI {
			v.renderUI(stats)
		}

		v.window.SwapBuffers()
	}
	return nil
}

func (v *Viewer) updateTitle(stats renderer.FrameStats) {
	title := fmt.Sprintf("tiletrace - pass %d (%3.0f%%)", stats.SampleCounter, stats.Progress*100)
	if stats.Mode == renderer.Invalidated {
		title = "tiletrace - preview"
	}
	if title != v.lastTitle {
		v.window.SetTitle(title)
		v.lastTitle = title
	}
}

// Draw a progress bar for the current pass and the frame time history.
func (v *Viewer) renderUI(stats renderer.FrameStats) {
	frameW := float32(v.opts.FrameW)
	barY := float32(v.opts.FrameH - seriesHeight - 4)

	gl.LineWidth(2.0)
	gl.Color3f(1, 1, 1)
	gl.Begin(gl.LINES)
	gl.Vertex2f(0, barY)
	gl.Vertex2f(stats.Progress*frameW, barY)
	gl.End()

	v.frameTimeSeries.Render(v.opts.FrameH-seriesHeight, seriesHeight)
}

func (v *Viewer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir scene.CameraDirection
	switch key {
	case glfw.KeyEscape:
		v.window.SetShouldClose(true)
		return
	case glfw.KeyUp:
		moveDir = scene.Forward
	case glfw.KeyDown:
		moveDir = scene.Backward
	case glfw.KeyLeft:
		moveDir = scene.Left
	case glfw.KeyRight:
		moveDir = scene.Right
	case glfw.KeyPageUp:
		moveDir = scene.Up
	case glfw.KeyPageDown:
		moveDir = scene.Down
	case glfw.KeyTab:
		v.showUI = !v.showUI
		if v.showUI {
			v.frameTimeSeries.Clear()
		}
		return
	default:
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}
	v.scene.Camera.Move(moveDir, speedScaler*cameraMoveSpeed)
}

func (v *Viewer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft && button != glfw.MouseButtonRight {
		return
	}

	v.mousePressed[leftMouseButton] = false
	v.mousePressed[rightMouseButton] = false

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		v.lastCursorPos[0], v.lastCursorPos[1] = float32(xPos), float32(yPos)

		buttonIndex := leftMouseButton
		if button == glfw.MouseButtonRight {
			buttonIndex = rightMouseButton
		}

		v.mousePressed[buttonIndex] = true
	}
}

func (v *Viewer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !v.mousePressed[leftMouseButton] && !v.mousePressed[rightMouseButton] {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.XY(float32(xPos), float32(yPos))
	delta := v.lastCursorPos.Sub(newPos)
	delta[0] *= mouseSensitivityX
	delta[1] *= mouseSensitivityY
	v.lastCursorPos = newPos

	switch {
	case v.mousePressed[leftMouseButton]:
		// The left mouse button rotates the camera around its position
		v.scene.Camera.Orbit(delta[0], delta[1])
	case v.mousePressed[rightMouseButton]:
		// The right mouse button pans the camera
		v.scene.Camera.Move(scene.Right, -delta[0])
		v.scene.Camera.Move(scene.Up, delta[1])
	}
}
