package scene

import (
	"fmt"
	"sort"

	"github.com/achilleasa/tiletrace/types"
)

type builtinScene struct {
	description string
	build       func() *Scene
}

var builtinScenes = map[string]builtinScene{
	"spheres": {
		description: "three diffuse spheres and a small light under a gradient sky",
		build:       buildSpheres,
	},
	"studio": {
		description: "enclosed scene lit only by an emissive sphere",
		build:       buildStudio,
	},
}

// Get the names of the builtin scenes in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get a short description of a builtin scene.
func BuiltinDescription(name string) string {
	return builtinScenes[name].description
}

// Build a builtin scene by name.
func Builtin(name string) (*Scene, error) {
	def, exists := builtinScenes[name]
	if !exists {
		return nil, fmt.Errorf("scene: unknown builtin scene %q", name)
	}

	sc := def.build()
	sc.Camera.Moving = false
	sc.instancesModified = false
	return sc, nil
}

func mustAdd(sc *Scene, mat *Material, instances ...Instance) {
	index, err := sc.AddMaterial(mat)
	if err != nil {
		panic(err)
	}
	for _, inst := range instances {
		inst.Material = index
		if err = sc.AddInstance(inst); err != nil {
			panic(err)
		}
	}
}

func buildSpheres() *Scene {
	sc := NewScene()
	sc.Environment = &Environment{
		Zenith:  types.XYZ(0.5, 0.7, 1.0),
		Horizon: types.XYZ(1.0, 1.0, 1.0),
	}
	sc.Camera.LookAt(types.XYZ(0, 1, 5), types.XYZ(0, 0.5, 0))
	sc.Camera.FocalDist = 5

	mustAdd(sc, &Material{Name: "ground", Albedo: types.XYZ(0.5, 0.5, 0.5)},
		Instance{Name: "ground", Center: types.XYZ(0, -1000, 0), Radius: 1000},
	)
	mustAdd(sc, &Material{Name: "red", Albedo: types.XYZ(0.8, 0.2, 0.2)},
		Instance{Name: "left", Center: types.XYZ(-1.2, 0.5, 0), Radius: 0.5},
	)
	mustAdd(sc, &Material{Name: "green", Albedo: types.XYZ(0.2, 0.8, 0.2)},
		Instance{Name: "center", Center: types.XYZ(0, 0.5, 0), Radius: 0.5},
	)
	mustAdd(sc, &Material{Name: "blue", Albedo: types.XYZ(0.2, 0.2, 0.8)},
		Instance{Name: "right", Center: types.XYZ(1.2, 0.5, 0), Radius: 0.5},
	)
	mustAdd(sc, &Material{Name: "lamp", Emission: types.XYZ(8, 7, 6)},
		Instance{Name: "lamp", Center: types.XYZ(0, 2.5, 1), Radius: 0.25},
	)
	return sc
}

func buildStudio() *Scene {
	sc := NewScene()
	sc.Options.UseEnvMap = false
	sc.Options.MaxDepth = 6
	sc.Camera.LookAt(types.XYZ(0, 1, 3.5), types.XYZ(0, 1, 0))
	sc.Camera.FocalDist = 3.5

	mustAdd(sc, &Material{Name: "walls", Albedo: types.XYZ(0.73, 0.73, 0.73)},
		Instance{Name: "floor", Center: types.XYZ(0, -1000, 0), Radius: 1000},
		Instance{Name: "ceiling", Center: types.XYZ(0, 1003, 0), Radius: 1000},
		Instance{Name: "back", Center: types.XYZ(0, 0, -1002), Radius: 1000},
	)
	mustAdd(sc, &Material{Name: "red wall", Albedo: types.XYZ(0.65, 0.05, 0.05)},
		Instance{Name: "left", Center: types.XYZ(-1002, 0, 0), Radius: 1000},
	)
	mustAdd(sc, &Material{Name: "green wall", Albedo: types.XYZ(0.12, 0.45, 0.15)},
		Instance{Name: "right", Center: types.XYZ(1002, 0, 0), Radius: 1000},
	)
	mustAdd(sc, &Material{Name: "sphere", Albedo: types.XYZ(0.9, 0.9, 0.9)},
		Instance{Name: "sphere", Center: types.XYZ(0, 0.6, 0), Radius: 0.6},
	)
	mustAdd(sc, &Material{Name: "light", Emission: types.XYZ(15, 15, 15)},
		Instance{Name: "light", Center: types.XYZ(0, 2.7, 0), Radius: 0.3},
	)
	return sc
}
