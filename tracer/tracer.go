package tracer

import (
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/surface"
	"github.com/achilleasa/tiletrace/types"
)

// Tile grid coordinates.
type Tile struct {
	X int
	Y int
}

// Camera parameters bound for each kernel invocation.
type CameraParams struct {
	Position types.Vec3
	Right    types.Vec3
	Up       types.Vec3
	Forward  types.Vec3

	// Vertical field of view in degrees.
	FOV       float32
	FocalDist float32
	Aperture  float32
}

// The inputs of a tile trace or fallback raster invocation. Params are
// rebuilt every frame; collaborators must not retain them.
type Params struct {
	Camera CameraParams

	// Frame and tile geometry. Tile is only meaningful for TraceTile.
	FrameW int
	FrameH int
	Tile   Tile
	TileW  int
	TileH  int

	// Random seed triple in [0, 1). Pinned to zero while accumulation
	// is suspended.
	Seed types.Vec3

	// Global parameters.
	MaxDepth      uint32
	UseEnvMap     bool
	HDRMultiplier float32
	NumLights     int

	// Read-only scene tables.
	Instances   []scene.Instance
	Materials   []scene.Material
	Environment *scene.Environment
	BgColor     types.Vec3
}

// Get the pixel coordinates of the top-left corner of the current tile.
func (p *Params) TileOrigin() (int, int) {
	return p.Tile.X * p.TileW, p.Tile.Y * p.TileH
}

// A TileTracer computes radiance for a single tile of the frame.
type TileTracer interface {
	// Report whether the tracer can accept work.
	Ready() bool

	// Trace the tile described by p and write its radiance to dst. The
	// dst surface has the dimensions of a single tile.
	TraceTile(p *Params, dst *surface.Surface) error
}

// A Rasterizer renders a cheap full resolution preview of the scene.
type Rasterizer interface {
	// Report whether the rasterizer can accept work.
	Ready() bool

	// Render a preview frame into color. If depth is not nil it is
	// populated with the primary hit distance of each pixel.
	RasterizeFrame(p *Params, color, depth *surface.Surface) error
}
