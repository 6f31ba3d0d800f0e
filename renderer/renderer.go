package renderer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/achilleasa/tiletrace/log"
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/surface"
	"github.com/achilleasa/tiletrace/tracer"
	"github.com/achilleasa/tiletrace/types"
)

// The surface selected for display.
type Source uint8

const (
	NoSource Source = iota
	DisplaySource
	FallbackSource
)

func (s Source) String() string {
	switch s {
	case DisplaySource:
		return "display"
	case FallbackSource:
		return "fallback"
	}
	return "none"
}

// The result of a Present call. Index is the display surface index when
// Source is DisplaySource and -1 otherwise.
type Presented struct {
	Source  Source
	Index   int
	Surface *surface.Surface
}

// The Renderer drives a progressive tiled render. Each call to RenderFrame
// either traces and accumulates a single tile or, while the scene is being
// edited, rasterizes a full resolution preview.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	logger log.Logger

	tileTracer tracer.TileTracer
	rasterizer tracer.Rasterizer

	opts       Options
	surfaces   *surface.Set
	scheduler  *tracer.TileScheduler
	controller *Controller
	rng        *rand.Rand
	params     tracer.Params

	initialized bool
	lastSkip    error

	stats     FrameStats
	statsSink StatsSink
}

// Create a new renderer backed by the supplied tile tracer and fallback
// rasterizer. The renderer must be initialized before frames can be rendered.
func New(tileTracer tracer.TileTracer, rasterizer tracer.Rasterizer) *Renderer {
	return &Renderer{
		logger:     log.New("renderer"),
		tileTracer: tileTracer,
		rasterizer: rasterizer,
	}
}

// Allocate surfaces and set up the tile grid. Calling Initialize on an
// initialized renderer has no effect.
func (r *Renderer) Initialize(opts Options) error {
	if r.initialized {
		r.logger.Warning("renderer already initialized")
		return nil
	}

	if err := opts.validate(); err != nil {
		return err
	}

	tileW, tileH := opts.TileSize()
	surfaces, err := surface.NewSet(int(opts.FrameW), int(opts.FrameH), int(tileW), int(tileH))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDegenerateConfig, err)
	}
	scheduler, err := tracer.NewTileScheduler(int(opts.NumTilesX), int(opts.NumTilesY))
	if err != nil {
		surfaces.Release()
		return fmt.Errorf("%w: %v", ErrDegenerateConfig, err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	r.opts = opts
	r.surfaces = surfaces
	r.scheduler = scheduler
	r.controller = NewController(scheduler, surfaces.Accumulator())
	r.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.params = tracer.Params{
		FrameW: int(opts.FrameW),
		FrameH: int(opts.FrameH),
		TileW:  int(tileW),
		TileH:  int(tileH),
	}
	r.lastSkip = nil
	r.stats = FrameStats{SampleCounter: 1}
	r.initialized = true

	r.logger.Noticef(
		"initialized %dx%d frame; %dx%d tiles of %dx%d pixels",
		opts.FrameW, opts.FrameH, opts.NumTilesX, opts.NumTilesY, tileW, tileH,
	)
	if uncoveredW, uncoveredH := opts.FrameW-tileW*opts.NumTilesX, opts.FrameH-tileH*opts.NumTilesY; uncoveredW != 0 || uncoveredH != 0 {
		r.logger.Warningf("%d columns and %d rows are not covered by the tile grid", uncoveredW, uncoveredH)
	}
	return nil
}

// Release all surfaces. Calling Shutdown more than once is safe.
func (r *Renderer) Shutdown() {
	if !r.initialized {
		return
	}

	r.surfaces.Release()
	r.surfaces = nil
	r.scheduler = nil
	r.controller = nil
	r.initialized = false
	r.logger.Notice("shut down")
}

// Check whether the renderer is initialized.
func (r *Renderer) Initialized() bool {
	return r.initialized
}

// Render the next frame. The elapsed time since the previous frame is only
// used for bookkeeping.
//
// If the renderer is not initialized or one of its collaborators cannot
// accept work the frame is skipped without touching any state and a
// transient error is returned.
func (r *Renderer) RenderFrame(state scene.FrameState, elapsedSeconds float64) error {
	start := time.Now()

	if err := r.checkReady(); err != nil {
		r.skip(err)
		return err
	}

	prevMode := r.controller.Mode()
	mode := r.controller.Begin(&state)
	r.bindParams(&state, mode)

	var err error
	switch mode {
	case Invalidated:
		if prevMode != Invalidated {
			r.logger.Infof("accumulation suspended (camera moving: %t, instances modified: %t)", state.CameraMoving, state.InstancesModified)
		}
		err = r.renderFallback(&state)
	default:
		if prevMode == Invalidated {
			r.logger.Info("accumulation resumed")
		}
		err = r.renderTile()
	}
	if err != nil {
		r.skip(err)
		return err
	}

	r.lastSkip = nil
	r.stats.Frames++
	r.stats.Mode = mode
	r.stats.SampleCounter = r.controller.SampleCounter()
	r.stats.Progress = r.controller.Progress()
	r.stats.LastFrameTime = time.Since(start)
	r.stats.RenderTime += r.stats.LastFrameTime
	r.stats.TotalTime += time.Duration(elapsedSeconds * float64(time.Second))
	if r.statsSink != nil {
		r.statsSink.FrameRendered(r.stats)
	}
	return nil
}

// Trace the tile under the cursor, blend it into the accumulator and publish
// the accumulator to the display surface being written.
func (r *Renderer) renderTile() error {
	tile := r.surfaces.Tile()
	if err := r.tileTracer.TraceTile(&r.params, tile); err != nil {
		return fmt.Errorf("%w: trace tile %d,%d: %w", ErrResourceUnavailable, r.params.Tile.X, r.params.Tile.Y, err)
	}

	accum := r.surfaces.Accumulator()
	originX, originY := r.params.TileOrigin()
	if err := accum.BlendRect(tile, originX, originY, r.controller.BlendWeight()); err != nil {
		return err
	}
	if err := r.surfaces.Display(r.controller.CurrentBuffer()).CopyFrom(accum); err != nil {
		return err
	}
	r.stats.TilesTraced++

	if r.controller.TileDone() {
		r.stats.Passes++
		r.logger.Debugf("pass %d complete", r.controller.SampleCounter()-1)
	}
	return nil
}

// Rasterize a preview frame and seed the hidden display surface with it so
// that the first frames after the scene settles do not show stale content.
// The depth buffer is only refreshed when scene instances change.
func (r *Renderer) renderFallback(state *scene.FrameState) error {
	var depth *surface.Surface
	if state.InstancesModified {
		depth = r.surfaces.Depth()
	}

	fallback := r.surfaces.Fallback()
	if err := r.rasterizer.RasterizeFrame(&r.params, fallback, depth); err != nil {
		return fmt.Errorf("%w: rasterize fallback: %w", ErrResourceUnavailable, err)
	}
	if depth != nil {
		r.stats.DepthRefreshes++
	}

	if err := r.surfaces.Display(1 - r.controller.CurrentBuffer()).CopyFrom(fallback); err != nil {
		return err
	}
	r.stats.FallbackFrames++
	return nil
}

// Populate the kernel inputs for this frame.
func (r *Renderer) bindParams(state *scene.FrameState, mode Mode) {
	cam := &state.Camera
	r.params.Camera = tracer.CameraParams{
		Position:  cam.Position,
		Right:     cam.Right,
		Up:        cam.Up,
		Forward:   cam.Forward,
		FOV:       cam.FOV,
		FocalDist: cam.FocalDist,
		Aperture:  cam.Aperture,
	}

	r.params.Tile = r.controller.Tile()
	if mode == Invalidated {
		r.params.Seed = types.Vec3{}
	} else {
		r.params.Seed = types.XYZ(r.rng.Float32(), r.rng.Float32(), r.rng.Float32())
	}

	r.params.MaxDepth = state.Options.MaxDepth
	r.params.UseEnvMap = state.Options.UseEnvMap && state.Environment != nil
	r.params.HDRMultiplier = state.Options.HDRMultiplier
	r.params.NumLights = state.NumLights
	r.params.Instances = state.Instances
	r.params.Materials = state.Materials
	r.params.Environment = state.Environment
	r.params.BgColor = state.BgColor
}

func (r *Renderer) checkReady() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if r.tileTracer == nil || !r.tileTracer.Ready() {
		return fmt.Errorf("%w: tile tracer not ready", ErrResourceUnavailable)
	}
	if r.rasterizer == nil || !r.rasterizer.Ready() {
		return fmt.Errorf("%w: fallback rasterizer not ready", ErrResourceUnavailable)
	}
	return nil
}

// Record a skipped frame. Repeated skips for the same reason are only
// logged once.
func (r *Renderer) skip(err error) {
	r.stats.SkippedFrames++
	if r.lastSkip != nil && r.lastSkip.Error() == err.Error() {
		return
	}
	r.lastSkip = err
	if errors.Is(err, ErrNotInitialized) {
		r.logger.Warning("frame skipped: renderer is not initialized")
		return
	}
	r.logger.Warningf("frame skipped: %v", err)
}

// Select the surface to display. Present does not modify any renderer state.
func (r *Renderer) Present() Presented {
	if !r.initialized {
		return Presented{Source: NoSource, Index: -1}
	}

	if r.controller.Mode() == Invalidated {
		return Presented{
			Source:  FallbackSource,
			Index:   -1,
			Surface: r.surfaces.Fallback(),
		}
	}

	index := 1 - r.controller.CurrentBuffer()
	return Presented{
		Source:  DisplaySource,
		Index:   index,
		Surface: r.surfaces.Display(index),
	}
}

// Get the fraction of tiles blended in the current pass.
func (r *Renderer) Progress() float32 {
	if !r.initialized {
		return 0
	}
	return r.controller.Progress()
}

// Get the number of the pass currently being accumulated.
func (r *Renderer) SampleCounter() uint32 {
	if !r.initialized {
		return 0
	}
	return r.controller.SampleCounter()
}

// Get the index of the display surface being written.
func (r *Renderer) CurrentBuffer() int {
	if !r.initialized {
		return 0
	}
	return r.controller.CurrentBuffer()
}

// Get the accumulator surface. It returns nil if the renderer is not
// initialized.
func (r *Renderer) Accumulator() *surface.Surface {
	if !r.initialized {
		return nil
	}
	return r.surfaces.Accumulator()
}

// Get the depth buffer produced by the fallback rasterizer.
func (r *Renderer) Depth() *surface.Surface {
	if !r.initialized {
		return nil
	}
	return r.surfaces.Depth()
}

// Get the options the renderer was initialized with.
func (r *Renderer) Options() Options {
	return r.opts
}

// Get render statistics.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Attach a sink that receives the statistics of every rendered frame. Passing
// nil detaches the current sink.
func (r *Renderer) SetStatsSink(sink StatsSink) {
	r.statsSink = sink
}
