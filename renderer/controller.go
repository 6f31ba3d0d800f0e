package renderer

import (
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/surface"
	"github.com/achilleasa/tiletrace/tracer"
)

// The accumulation mode selected for a frame.
type Mode uint8

const (
	// Trace one tile and blend it into the accumulator.
	Progressive Mode = iota

	// Accumulation is suspended; a fallback preview is displayed.
	Invalidated
)

func (m Mode) String() string {
	switch m {
	case Progressive:
		return "progressive"
	case Invalidated:
		return "invalidated"
	}
	return "unknown"
}

// The Controller owns the pass counter, the display buffer selector and the
// tile cursor. It is the only component that clears the accumulator.
type Controller struct {
	scheduler *tracer.TileScheduler
	accum     *surface.Surface

	mode          Mode
	sampleCounter uint32
	currentBuffer int
}

// Create a controller driving the given scheduler and accumulator.
func NewController(scheduler *tracer.TileScheduler, accum *surface.Surface) *Controller {
	return &Controller{
		scheduler:     scheduler,
		accum:         accum,
		mode:          Progressive,
		sampleCounter: 1,
	}
}

// Select the mode for the next frame. Invalidation is level-triggered: every
// frame that observes a moving camera or modified instances resets the pass
// counter, the tile cursor and the accumulator.
//
// On the first progressive frame after a reset the cursor is re-seeded so
// that Tile returns the first tile of a pass.
func (c *Controller) Begin(state *scene.FrameState) Mode {
	if state.Invalidated() {
		c.mode = Invalidated
		c.sampleCounter = 1
		c.scheduler.Reset()
		c.accum.Clear()
		return c.mode
	}

	c.mode = Progressive
	if c.scheduler.Pending() {
		c.scheduler.Advance()
	}
	return c.mode
}

// Get the tile that should be traced by the current progressive frame.
func (c *Controller) Tile() tracer.Tile {
	return c.scheduler.Tile()
}

// Get the weight of the next tile sample in the running mean.
func (c *Controller) BlendWeight() float32 {
	return 1.0 / float32(c.sampleCounter)
}

// Mark the current tile as blended and move the cursor. When the cursor moves
// past the last tile the pass counter is incremented, the display buffers are
// swapped and the cursor is re-seeded. It returns true if a pass completed.
func (c *Controller) TileDone() bool {
	if !c.scheduler.Advance() {
		return false
	}

	c.sampleCounter++
	c.currentBuffer = 1 - c.currentBuffer
	c.scheduler.Seed()
	return true
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// Get the number of the pass currently being accumulated.
func (c *Controller) SampleCounter() uint32 {
	return c.sampleCounter
}

// Get the index of the display surface being written.
func (c *Controller) CurrentBuffer() int {
	return c.currentBuffer
}

// Get the fraction of the current pass that has been blended.
func (c *Controller) Progress() float32 {
	return c.scheduler.Progress()
}
