package cpu

import (
	"math"

	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/types"
)

const (
	hitEpsilon = 1e-3
	maxHitDist = float32(math.MaxFloat32)
)

type ray struct {
	origin types.Vec3
	dir    types.Vec3
}

type hit struct {
	dist     float32
	point    types.Vec3
	normal   types.Vec3
	instance int
}

// Intersect a ray with a single sphere returning the closest distance in
// (hitEpsilon, maxDist) or -1 if there is no hit.
func intersectSphere(r ray, inst *scene.Instance, maxDist float32) float32 {
	oc := r.origin.Sub(inst.Center)
	b := oc.Dot(r.dir)
	c := oc.Dot(oc) - inst.Radius*inst.Radius
	disc := b*b - c
	if disc < 0 {
		return -1
	}

	sq := float32(math.Sqrt(float64(disc)))
	if t := -b - sq; t > hitEpsilon && t < maxDist {
		return t
	}
	if t := -b + sq; t > hitEpsilon && t < maxDist {
		return t
	}
	return -1
}

// Find the closest instance hit by r. The ray direction must be normalized.
func closestHit(r ray, instances []scene.Instance) (hit, bool) {
	best := hit{dist: maxHitDist, instance: -1}
	for index := range instances {
		if t := intersectSphere(r, &instances[index], best.dist); t > 0 {
			best.dist = t
			best.instance = index
		}
	}

	if best.instance < 0 {
		return best, false
	}

	best.point = r.origin.Add(r.dir.Mul(best.dist))
	best.normal = best.point.Sub(instances[best.instance].Center).Normalize()
	return best, true
}

// Radiance for rays that escape the scene.
func missRadiance(dir types.Vec3, useEnvMap bool, env *scene.Environment, multiplier float32, bgColor types.Vec3) types.Vec3 {
	if useEnvMap && env != nil {
		return env.Radiance(dir).Mul(multiplier)
	}
	return bgColor
}

// Build the (unnormalized) primary ray direction through normalized device
// coordinates (u, v) in [-1, 1]. The forward component is always 1 so that
// the direction reaches the focal plane at distance FocalDist when scaled.
func primaryDir(cam *cameraBasis, u, v float32) types.Vec3 {
	return cam.forward.
		Add(cam.right.Mul(u * cam.aspect * cam.tanHalfFov)).
		Add(cam.up.Mul(v * cam.tanHalfFov))
}

type cameraBasis struct {
	position   types.Vec3
	forward    types.Vec3
	right      types.Vec3
	up         types.Vec3
	aspect     float32
	tanHalfFov float32
}
