package renderer

import "time"

type FrameStats struct {
	// Frames rendered and frames skipped because the renderer or one of its
	// collaborators was not ready.
	Frames        uint64
	SkippedFrames uint64

	// Work performed.
	TilesTraced    uint64
	FallbackFrames uint64
	DepthRefreshes uint64
	Passes         uint64

	// Accumulation state after the last frame.
	Mode          Mode
	SampleCounter uint32
	Progress      float32

	// Time spent inside RenderFrame for the last frame and in total.
	LastFrameTime time.Duration
	RenderTime    time.Duration

	// Sum of the elapsed time reported by the application.
	TotalTime time.Duration
}

// A StatsSink receives the renderer statistics after every rendered frame.
type StatsSink interface {
	FrameRendered(FrameStats)
}
