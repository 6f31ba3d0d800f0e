package scene

import "github.com/achilleasa/tiletrace/types"

// A diffuse material with an optional emissive term.
type Material struct {
	Name     string
	Albedo   types.Vec3
	Emission types.Vec3
}

// Check whether the material emits light.
func (m *Material) IsEmissive() bool {
	return m.Emission.MaxComponent() > 0
}

// A gradient sky used as the environment light.
type Environment struct {
	Zenith  types.Vec3
	Horizon types.Vec3
}

// Sample the environment radiance for a normalized direction.
func (e *Environment) Radiance(dir types.Vec3) types.Vec3 {
	t := 0.5 * (dir[1] + 1.0)
	return e.Horizon.Mul(1 - t).Add(e.Zenith.Mul(t))
}
