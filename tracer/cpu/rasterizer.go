package cpu

import (
	"math"

	"github.com/achilleasa/tiletrace/log"
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/surface"
	"github.com/achilleasa/tiletrace/tracer"
	"github.com/achilleasa/tiletrace/types"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	zNear = 0.01
	zFar  = 10000.0

	// Fraction of the albedo visible on faces pointing away from the camera.
	ambientTerm = 0.2
)

// A Rasterizer draws a flat-shaded preview of the scene. Each instance is
// splatted into the screen-space rectangle covered by its projected bounds
// and resolved with a depth test.
type Rasterizer struct {
	logger log.Logger
	ready  bool
}

// Create a new cpu rasterizer. The rasterizer must be initialized before use.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		logger: log.New("cpu rasterizer"),
	}
}

// Initialize rasterizer.
func (rs *Rasterizer) Init() error {
	rs.ready = true
	rs.logger.Info("cpu fallback rasterizer ready")
	return nil
}

// Shutdown rasterizer.
func (rs *Rasterizer) Close() {
	rs.ready = false
}

// Report whether the rasterizer can accept work.
func (rs *Rasterizer) Ready() bool {
	return rs.ready
}

// Render a preview frame.
func (rs *Rasterizer) RasterizeFrame(p *tracer.Params, color, depth *surface.Surface) error {
	if !rs.ready {
		return tracer.ErrNotReady
	}
	if color.W != p.FrameW || color.H != p.FrameH {
		return surface.ErrSizeMismatch
	}
	if depth != nil && (depth.W != p.FrameW || depth.H != p.FrameH) {
		return surface.ErrSizeMismatch
	}

	cam := basisFromParams(p)
	eye := mgl32.Vec3(cam.position)
	view := mgl32.LookAtV(eye, eye.Add(mgl32.Vec3(cam.forward)), mgl32.Vec3(cam.up))
	proj := mgl32.Perspective(mgl32.DegToRad(p.Camera.FOV), cam.aspect, zNear, zFar)

	zbuf := make([]float32, p.FrameW*p.FrameH)
	for i := range zbuf {
		zbuf[i] = maxHitDist
	}

	// Background
	for y := 0; y < p.FrameH; y++ {
		for x := 0; x < p.FrameW; x++ {
			dir := pixelDir(cam, p, x, y)
			bg := missRadiance(dir, p.UseEnvMap, p.Environment, p.HDRMultiplier, p.BgColor)
			color.Set(x, y, bg.Vec4(1))
		}
	}

	for index := range p.Instances {
		inst := &p.Instances[index]
		x0, y0, x1, y1 := screenBounds(inst, view, proj, p.FrameW, p.FrameH)
		mat := &p.Materials[inst.Material]

		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				r := ray{origin: cam.position, dir: pixelDir(cam, p, x, y)}
				t := intersectSphere(r, inst, zbuf[y*p.FrameW+x])
				if t < 0 {
					continue
				}
				zbuf[y*p.FrameW+x] = t
				color.Set(x, y, shade(r, t, inst, mat).Vec4(1))
			}
		}
	}

	if depth != nil {
		for i, z := range zbuf {
			if z == maxHitDist {
				z = 0
			}
			depth.Pix[i] = types.XYZW(z, z, z, 1)
		}
	}

	return nil
}

func shade(r ray, t float32, inst *scene.Instance, mat *scene.Material) types.Vec3 {
	if mat.IsEmissive() {
		return mat.Emission
	}
	normal := r.origin.Add(r.dir.Mul(t)).Sub(inst.Center).Normalize()
	facing := float32(math.Max(0, float64(-normal.Dot(r.dir))))
	return mat.Albedo.Mul(ambientTerm + (1-ambientTerm)*facing)
}

// Direction through the center of pixel (x, y).
func pixelDir(cam *cameraBasis, p *tracer.Params, x, y int) types.Vec3 {
	u := 2*(float32(x)+0.5)/float32(p.FrameW) - 1
	v := 1 - 2*(float32(y)+0.5)/float32(p.FrameH)
	return primaryDir(cam, u, v).Normalize()
}

// Calculate the clamped pixel rectangle covered by a sphere. If any corner
// of the sphere's bounding box lies behind the near plane the whole frame
// is returned.
func screenBounds(inst *scene.Instance, view, proj mgl32.Mat4, frameW, frameH int) (int, int, int, int) {
	minX, minY := float32(frameW), float32(frameH)
	var maxX, maxY float32

	c := mgl32.Vec3(inst.Center)
	r := inst.Radius
	for corner := 0; corner < 8; corner++ {
		obj := c.Add(mgl32.Vec3{
			signBit(corner, 0) * r,
			signBit(corner, 1) * r,
			signBit(corner, 2) * r,
		})

		if eyeZ := view.Mul4x1(obj.Vec4(1)).Z(); eyeZ > -zNear {
			return 0, 0, frameW, frameH
		}

		win := mgl32.Project(obj, view, proj, 0, 0, frameW, frameH)

		// Window coordinates grow upwards; surface rows grow downwards.
		wx, wy := win.X(), float32(frameH)-win.Y()
		minX = min(minX, wx)
		maxX = max(maxX, wx)
		minY = min(minY, wy)
		maxY = max(maxY, wy)
	}

	return clampInt(int(math.Floor(float64(minX))), frameW),
		clampInt(int(math.Floor(float64(minY))), frameH),
		clampInt(int(math.Ceil(float64(maxX)))+1, frameW),
		clampInt(int(math.Ceil(float64(maxY)))+1, frameH)
}

func signBit(corner, axis int) float32 {
	if corner&(1<<axis) != 0 {
		return 1
	}
	return -1
}

func clampInt(v, limit int) int {
	return max(0, min(v, limit))
}
