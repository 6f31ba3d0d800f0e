package scene

import (
	"fmt"

	"github.com/achilleasa/tiletrace/types"
)

// Global render options consumed by the tracing kernel.
type RenderOptions struct {
	// Maximum number of path bounces.
	MaxDepth uint32

	// Environment lighting. UseEnvMap has no effect for scenes without an
	// environment.
	UseEnvMap     bool
	HDRMultiplier float32

	// Tile grid used by the progressive renderer.
	NumTilesX uint32
	NumTilesY uint32
}

// Default render options.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		MaxDepth:      4,
		UseEnvMap:     true,
		HDRMultiplier: 1.0,
		NumTilesX:     4,
		NumTilesY:     4,
	}
}

// A sphere instance. Instances reference materials by index.
type Instance struct {
	Name     string
	Center   types.Vec3
	Radius   float32
	Material int
}

type Scene struct {
	Camera  *Camera
	Options RenderOptions

	Materials []*Material
	Instances []Instance

	// Optional environment light; when nil BgColor is used for misses.
	Environment *Environment
	BgColor     types.Vec3

	instancesModified bool
}

func NewScene() *Scene {
	return &Scene{
		Camera:    NewCamera(45),
		Options:   DefaultRenderOptions(),
		Materials: make([]*Material, 0),
		Instances: make([]Instance, 0),
	}
}

// Add a material to the scene and return its index.
func (s *Scene) AddMaterial(material *Material) (int, error) {
	for _, mat := range s.Materials {
		if mat == material {
			return -1, fmt.Errorf("scene: material already added")
		}
	}
	s.Materials = append(s.Materials, material)
	return len(s.Materials) - 1, nil
}

// Add an instance to the scene.
func (s *Scene) AddInstance(inst Instance) error {
	if inst.Material < 0 || inst.Material >= len(s.Materials) {
		return fmt.Errorf("scene: instance %q references unknown material %d; ensure that the material is added to the scene before adding the instance", inst.Name, inst.Material)
	}
	if inst.Radius <= 0 {
		return fmt.Errorf("scene: instance %q has non-positive radius", inst.Name)
	}
	s.Instances = append(s.Instances, inst)
	s.instancesModified = true
	return nil
}

// Translate an instance. This invalidates any accumulated render state.
func (s *Scene) MoveInstance(index int, offset types.Vec3) error {
	if index < 0 || index >= len(s.Instances) {
		return fmt.Errorf("scene: unknown instance %d", index)
	}
	s.Instances[index].Center = s.Instances[index].Center.Add(offset)
	s.instancesModified = true
	return nil
}

// Count emissive instances.
func (s *Scene) NumLights() int {
	count := 0
	for _, inst := range s.Instances {
		if s.Materials[inst.Material].IsEmissive() {
			count++
		}
	}
	return count
}

// A read-only per-frame copy of everything the renderer and its
// collaborators need. Collaborators must not retain it across frames.
type FrameState struct {
	Camera  Camera
	Options RenderOptions

	// Invalidation signals for this frame.
	CameraMoving      bool
	InstancesModified bool

	Instances   []Instance
	Materials   []Material
	Environment *Environment
	BgColor     types.Vec3
	NumLights   int
}

// Check whether accumulated state must be discarded this frame.
func (fs *FrameState) Invalidated() bool {
	return fs.CameraMoving || fs.InstancesModified
}

// Capture the scene state for the next frame. Taking a snapshot consumes
// the camera moving and instance modification flags.
func (s *Scene) Snapshot() FrameState {
	fs := FrameState{
		Camera:            *s.Camera,
		Options:           s.Options,
		CameraMoving:      s.Camera.Moving,
		InstancesModified: s.instancesModified,
		Instances:         append([]Instance(nil), s.Instances...),
		Materials:         make([]Material, len(s.Materials)),
		BgColor:           s.BgColor,
		NumLights:         s.NumLights(),
	}
	for i, mat := range s.Materials {
		fs.Materials[i] = *mat
	}
	if s.Environment != nil {
		env := *s.Environment
		fs.Environment = &env
	}

	s.Camera.Moving = false
	s.instancesModified = false
	return fs
}
