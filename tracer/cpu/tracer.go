// Package cpu provides reference implementations of the tile tracing and
// fallback rasterization collaborators that run on the host CPU.
package cpu

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/achilleasa/tiletrace/log"
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/surface"
	"github.com/achilleasa/tiletrace/tracer"
	"github.com/achilleasa/tiletrace/types"
)

// Max number of instances per bvh leaf.
const leafItems = 2

// A single-threaded path tracer for sphere scenes with diffuse and emissive
// materials.
type Tracer struct {
	logger log.Logger
	ready  bool

	// The bvh is rebuilt whenever the instance list changes.
	index   *bvh
	indexed []scene.Instance
}

// Create a new cpu tracer. The tracer must be initialized before use.
func NewTracer() *Tracer {
	return &Tracer{
		logger: log.New("cpu tracer"),
	}
}

// Initialize tracer.
func (tr *Tracer) Init() error {
	tr.ready = true
	tr.logger.Info("cpu tile tracer ready")
	return nil
}

// Shutdown tracer.
func (tr *Tracer) Close() {
	tr.ready = false
	tr.index = nil
	tr.indexed = nil
}

// Report whether the tracer can accept work.
func (tr *Tracer) Ready() bool {
	return tr.ready
}

// Trace one tile.
func (tr *Tracer) TraceTile(p *tracer.Params, dst *surface.Surface) error {
	if !tr.ready {
		return tracer.ErrNotReady
	}
	if dst.W != p.TileW || dst.H != p.TileH {
		return tracer.ErrTileSize
	}

	tr.updateIndex(p.Instances)
	rng := rand.New(rand.NewPCG(seedBits(p.Seed), uint64(p.Tile.Y*p.FrameW+p.Tile.X)))
	cam := basisFromParams(p)
	originX, originY := p.TileOrigin()

	for y := 0; y < p.TileH; y++ {
		for x := 0; x < p.TileW; x++ {
			px := float32(originX+x) + rng.Float32()
			py := float32(originY+y) + rng.Float32()
			u := 2*px/float32(p.FrameW) - 1
			v := 1 - 2*py/float32(p.FrameH)

			r := cameraRay(cam, p, u, v, rng)
			dst.Set(x, y, tr.radiance(p, r, rng).Vec4(1))
		}
	}
	return nil
}

func (tr *Tracer) updateIndex(instances []scene.Instance) {
	if tr.index != nil && slices.Equal(tr.indexed, instances) {
		return
	}

	tr.index = buildBVH(instances, leafItems)
	tr.indexed = append(tr.indexed[:0], instances...)
}

func (tr *Tracer) radiance(p *tracer.Params, r ray, rng *rand.Rand) types.Vec3 {
	var out types.Vec3
	throughput := types.XYZ(1, 1, 1)

	for bounce := uint32(0); bounce <= p.MaxDepth; bounce++ {
		h, ok := tr.index.closestHit(r, p.Instances)
		if !ok {
			miss := missRadiance(r.dir, p.UseEnvMap, p.Environment, p.HDRMultiplier, p.BgColor)
			return out.Add(throughput.MulVec(miss))
		}

		mat := &p.Materials[p.Instances[h.instance].Material]
		out = out.Add(throughput.MulVec(mat.Emission))
		if mat.IsEmissive() {
			break
		}

		// Flip the normal for hits from inside a sphere.
		normal := h.normal
		if normal.Dot(r.dir) > 0 {
			normal = normal.Mul(-1)
		}

		throughput = throughput.MulVec(mat.Albedo)
		if throughput.MaxComponent() <= 0 {
			break
		}
		r = ray{
			origin: h.point.Add(normal.Mul(hitEpsilon)),
			dir:    cosineSampleHemisphere(normal, rng),
		}
	}

	return out
}

func basisFromParams(p *tracer.Params) *cameraBasis {
	return &cameraBasis{
		position:   p.Camera.Position,
		forward:    p.Camera.Forward,
		right:      p.Camera.Right,
		up:         p.Camera.Up,
		aspect:     float32(p.FrameW) / float32(p.FrameH),
		tanHalfFov: float32(math.Tan(float64(p.Camera.FOV) * math.Pi / 360)),
	}
}

// Generate a camera ray applying a thin lens model when the aperture is non-zero.
func cameraRay(cam *cameraBasis, p *tracer.Params, u, v float32, rng *rand.Rand) ray {
	dir := primaryDir(cam, u, v)
	if p.Camera.Aperture <= 0 || p.Camera.FocalDist <= 0 {
		return ray{origin: cam.position, dir: dir.Normalize()}
	}

	focusPoint := cam.position.Add(dir.Mul(p.Camera.FocalDist))
	dx, dy := concentricDisk(rng)
	lensOffset := cam.right.Mul(dx * p.Camera.Aperture).Add(cam.up.Mul(dy * p.Camera.Aperture))
	origin := cam.position.Add(lensOffset)
	return ray{origin: origin, dir: focusPoint.Sub(origin).Normalize()}
}

func cosineSampleHemisphere(normal types.Vec3, rng *rand.Rand) types.Vec3 {
	dx, dy := concentricDisk(rng)
	dz := float32(math.Sqrt(math.Max(0, float64(1-dx*dx-dy*dy))))

	// Build an orthonormal basis around the normal.
	helper := types.XYZ(1, 0, 0)
	if abs32(normal[0]) > 0.9 {
		helper = types.XYZ(0, 1, 0)
	}
	tangent := helper.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Mul(dx).Add(bitangent.Mul(dy)).Add(normal.Mul(dz)).Normalize()
}

// Map two uniform samples to the unit disk.
func concentricDisk(rng *rand.Rand) (float32, float32) {
	r := math.Sqrt(rng.Float64())
	theta := 2 * math.Pi * rng.Float64()
	return float32(r * math.Cos(theta)), float32(r * math.Sin(theta))
}

// Fold the seed triple into a 64-bit rng seed.
func seedBits(seed types.Vec3) uint64 {
	return uint64(math.Float32bits(seed[0]))<<32 ^
		uint64(math.Float32bits(seed[1]))<<16 ^
		uint64(math.Float32bits(seed[2]))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
