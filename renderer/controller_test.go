package renderer

import (
	"testing"

	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/surface"
	"github.com/achilleasa/tiletrace/tracer"
	"github.com/achilleasa/tiletrace/types"
)

func newTestController(t *testing.T, tilesX, tilesY int) (*Controller, *tracer.TileScheduler, *surface.Surface) {
	sch, err := tracer.NewTileScheduler(tilesX, tilesY)
	if err != nil {
		t.Fatal(err)
	}
	accum := surface.New(tilesX*2, tilesY*2)
	return NewController(sch, accum), sch, accum
}

func TestControllerInvalidationIsIdempotent(t *testing.T) {
	ctrl, sch, accum := newTestController(t, 4, 2)
	progressive := &scene.FrameState{}
	moving := &scene.FrameState{CameraMoving: true}

	for i := 0; i < 5; i++ {
		ctrl.Begin(progressive)
		ctrl.TileDone()
	}
	accum.Fill(types.XYZW(1, 1, 1, 1))

	for i := 0; i < 2; i++ {
		if mode := ctrl.Begin(moving); mode != Invalidated {
			t.Fatalf("[frame %d] expected mode %s; got %s", i, Invalidated, mode)
		}
		if ctrl.SampleCounter() != 1 {
			t.Fatalf("[frame %d] expected sample counter 1; got %d", i, ctrl.SampleCounter())
		}
		if x, y := sch.Cursor(); x != -1 || y != 1 {
			t.Fatalf("[frame %d] expected cursor (-1, 1); got (%d, %d)", i, x, y)
		}
		if ctrl.Progress() != 0 {
			t.Fatalf("[frame %d] expected progress 0; got %f", i, ctrl.Progress())
		}
		for pixel, v := range accum.Pix {
			if v != (types.Vec4{}) {
				t.Fatalf("[frame %d] expected accumulator pixel %d to be cleared; got %v", i, pixel, v)
			}
		}
	}
}

func TestControllerInstanceEditInvalidates(t *testing.T) {
	ctrl, _, _ := newTestController(t, 2, 2)

	if mode := ctrl.Begin(&scene.FrameState{InstancesModified: true}); mode != Invalidated {
		t.Fatalf("expected mode %s; got %s", Invalidated, mode)
	}
	if mode := ctrl.Begin(&scene.FrameState{}); mode != Progressive {
		t.Fatalf("expected mode %s; got %s", Progressive, mode)
	}
}

func TestControllerPassCompletionAfterReset(t *testing.T) {
	ctrl, sch, _ := newTestController(t, 4, 2)
	ctrl.Begin(&scene.FrameState{CameraMoving: true})

	progressive := &scene.FrameState{}
	for i := 0; i < 8; i++ {
		ctrl.Begin(progressive)
		done := ctrl.TileDone()
		if expDone := i == 7; done != expDone {
			t.Fatalf("[frame %d] expected pass completion %t; got %t", i, expDone, done)
		}
	}

	if ctrl.SampleCounter() != 2 {
		t.Fatalf("expected sample counter 2; got %d", ctrl.SampleCounter())
	}
	if ctrl.CurrentBuffer() != 1 {
		t.Fatalf("expected current buffer 1; got %d", ctrl.CurrentBuffer())
	}
	if x, y := sch.Cursor(); x != 0 || y != 1 {
		t.Fatalf("expected cursor to be re-seeded at (0, 1); got (%d, %d)", x, y)
	}
}

func TestControllerReseedsOnce(t *testing.T) {
	ctrl, _, _ := newTestController(t, 3, 3)
	ctrl.Begin(&scene.FrameState{CameraMoving: true})

	progressive := &scene.FrameState{}
	expTile := tracer.Tile{X: 0, Y: 2}
	for i := 0; i < 3; i++ {
		ctrl.Begin(progressive)
		if tile := ctrl.Tile(); tile != expTile {
			t.Fatalf("[begin %d] expected tile %v; got %v", i, expTile, tile)
		}
	}

	ctrl.TileDone()
	ctrl.Begin(progressive)
	if tile, exp := ctrl.Tile(), (tracer.Tile{X: 1, Y: 2}); tile != exp {
		t.Fatalf("expected tile %v; got %v", exp, tile)
	}
}

func TestControllerBlendWeight(t *testing.T) {
	ctrl, _, _ := newTestController(t, 1, 1)
	progressive := &scene.FrameState{}

	expWeights := []float32{1, 0.5, 1.0 / 3.0, 0.25}
	for pass, exp := range expWeights {
		ctrl.Begin(progressive)
		if w := ctrl.BlendWeight(); w != exp {
			t.Fatalf("[pass %d] expected blend weight %f; got %f", pass, exp, w)
		}
		if !ctrl.TileDone() {
			t.Fatalf("[pass %d] expected a 1x1 grid to complete a pass every tile", pass)
		}
	}

	ctrl.Begin(&scene.FrameState{CameraMoving: true})
	if w := ctrl.BlendWeight(); w != 1 {
		t.Fatalf("expected blend weight 1 after reset; got %f", w)
	}
}
