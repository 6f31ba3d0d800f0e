package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/achilleasa/tiletrace/renderer"
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/surface"
	"github.com/achilleasa/tiletrace/tracer/cpu"
	"github.com/achilleasa/tiletrace/viewer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

const (
	// Camera orbit angle applied by --move-every.
	moveEveryYaw float32 = 0.02

	// Upper bound on frames rendered by render frame when --frames is not set.
	maxHeadlessFrames = 1 << 20
)

// The collaborators backing a renderer.
type session struct {
	scene      *scene.Scene
	tracer     *cpu.Tracer
	rasterizer *cpu.Rasterizer
	renderer   *renderer.Renderer
}

func (s *session) Close() {
	s.renderer.Shutdown()
	s.tracer.Close()
	s.rasterizer.Close()
}

// Load the scene named by the first command argument and set up an
// initialized renderer.
func setupSession(ctx *cli.Context) (*session, error) {
	sceneName := "spheres"
	if ctx.NArg() > 0 {
		sceneName = ctx.Args().First()
	}

	sc, err := scene.Builtin(sceneName)
	if err != nil {
		return nil, err
	}

	opts := renderer.Options{
		FrameW:    uint32(ctx.Int("width")),
		FrameH:    uint32(ctx.Int("height")),
		NumTilesX: sc.Options.NumTilesX,
		NumTilesY: sc.Options.NumTilesY,
		Exposure:  float32(ctx.Float64("exposure")),
		Seed:      uint64(ctx.Int64("seed")),
	}
	if tilesX := ctx.Int("tiles-x"); tilesX > 0 {
		opts.NumTilesX = uint32(tilesX)
	}
	if tilesY := ctx.Int("tiles-y"); tilesY > 0 {
		opts.NumTilesY = uint32(tilesY)
	}

	s := &session{
		scene:      sc,
		tracer:     cpu.NewTracer(),
		rasterizer: cpu.NewRasterizer(),
	}
	if err = s.tracer.Init(); err != nil {
		return nil, err
	}
	if err = s.rasterizer.Init(); err != nil {
		s.tracer.Close()
		return nil, err
	}

	s.renderer = renderer.New(s.tracer, s.rasterizer)
	if err = s.renderer.Initialize(opts); err != nil {
		s.tracer.Close()
		s.rasterizer.Close()
		return nil, err
	}

	logger.Noticef("rendering scene %q; %s", sceneName, sc.Camera)
	return s, nil
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	r := s.renderer
	frames := ctx.Int("frames")
	passes := uint64(ctx.Int("passes"))
	moveEvery := ctx.Int("move-every")
	if frames <= 0 && passes == 0 {
		return errors.New("either --frames or --passes must be greater than zero")
	}

	start := time.Now()
	lastFrame := start
	for frame := 0; ; frame++ {
		if frames > 0 && frame >= frames {
			break
		}
		if frames <= 0 && (r.Stats().Passes >= passes || frame >= maxHeadlessFrames) {
			break
		}

		if moveEvery > 0 && frame > 0 && frame%moveEvery == 0 {
			s.scene.Camera.Orbit(moveEveryYaw, 0)
		}

		now := time.Now()
		err = r.RenderFrame(s.scene.Snapshot(), now.Sub(lastFrame).Seconds())
		lastFrame = now
		if err != nil {
			if renderer.IsTransient(err) {
				continue
			}
			return err
		}
	}
	logger.Noticef("rendered %d passes in %d ms", r.Stats().Passes, time.Since(start).Nanoseconds()/1000000)

	// Display stats
	displayFrameStats(r.Stats())

	// Export PNG
	presented := r.Present()
	if presented.Surface == nil {
		return renderer.ErrNotInitialized
	}
	img, err := surface.ScaleImage(presented.Surface.Image(r.Options().Exposure), ctx.Float64("scale"))
	if err != nil {
		return err
	}
	imgFile := ctx.String("out")
	if err = writePNG(img, imgFile); err != nil {
		return err
	}
	logger.Noticef("wrote %s surface to %s", presented.Source, imgFile)

	if depthFile := ctx.String("depth-out"); depthFile != "" {
		if err = writePNG(r.Depth().DepthImage(), depthFile); err != nil {
			return err
		}
		logger.Noticef("wrote depth buffer to %s", depthFile)
	}

	return nil
}

// Use opengl to render a continuously updating view of the renderer output.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := viewer.New(s.renderer, s.scene)
	if err != nil {
		return err
	}
	defer v.Close()

	if err = v.Run(); err != nil {
		return err
	}

	displayFrameStats(s.renderer.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frames", "Skipped", "Tiles", "Fallback frames", "Depth refreshes", "Passes", "Progress", "Render time"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.Frames),
		fmt.Sprintf("%d", stats.SkippedFrames),
		fmt.Sprintf("%d", stats.TilesTraced),
		fmt.Sprintf("%d", stats.FallbackFrames),
		fmt.Sprintf("%d", stats.DepthRefreshes),
		fmt.Sprintf("%d", stats.Passes),
		fmt.Sprintf("%02.1f %%", stats.Progress*100),
		stats.RenderTime.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "", "TOTAL", stats.TotalTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
