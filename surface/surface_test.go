package surface

import (
	"errors"
	"math"
	"testing"

	"github.com/achilleasa/tiletrace/types"
)

func TestBlendRectRunningMean(t *testing.T) {
	dst := New(4, 4)
	tile := New(2, 2)

	samples := []float32{1, 3, 5, 7}
	for index, v := range samples {
		tile.Fill(types.XYZW(v, v, v, 1))
		if err := dst.BlendRect(tile, 2, 2, 1.0/float32(index+1)); err != nil {
			t.Fatal(err)
		}
	}

	// Mean of the samples inside the rect, untouched pixels outside.
	if got := dst.At(3, 3)[0]; math.Abs(float64(got-4)) > 1e-5 {
		t.Fatalf("expected running mean 4; got %f", got)
	}
	if got := dst.At(0, 0); got != (types.Vec4{}) {
		t.Fatalf("expected pixel outside rect to be untouched; got %v", got)
	}
}

func TestBlendRectBounds(t *testing.T) {
	dst := New(4, 4)
	tile := New(2, 2)

	if err := dst.BlendRect(tile, 3, 0, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds; got %v", err)
	}
	if err := dst.BlendRect(tile, -1, 0, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds; got %v", err)
	}
}

func TestCopyFrom(t *testing.T) {
	src := New(2, 2)
	src.Fill(types.XYZW(1, 2, 3, 1))

	dst := New(2, 2)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatal(err)
	}
	if dst.At(1, 1) != src.At(1, 1) {
		t.Fatalf("expected copied pixel %v; got %v", src.At(1, 1), dst.At(1, 1))
	}

	if err := New(3, 2).CopyFrom(src); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch; got %v", err)
	}
}

func TestImageTonemap(t *testing.T) {
	s := New(2, 1)
	s.Set(0, 0, types.XYZW(0, 0, 0, 1))
	s.Set(1, 0, types.XYZW(1000, 1000, 1000, 1))

	img := s.Image(1.0)
	if c := img.RGBAAt(0, 0); c.R != 0 || c.A != 255 {
		t.Fatalf("expected black opaque pixel; got %v", c)
	}
	if c := img.RGBAAt(1, 0); c.R < 250 {
		t.Fatalf("expected bright pixel to saturate; got %v", c)
	}
}

func TestSetLayout(t *testing.T) {
	set, err := NewSet(8, 4, 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	if set.Display(0) == set.Display(1) {
		t.Fatal("expected distinct display surfaces")
	}
	if set.Display(2) != set.Display(0) {
		t.Fatal("expected display index to wrap modulo 2")
	}
	if tile := set.Tile(); tile.W != 4 || tile.H != 2 {
		t.Fatalf("expected 4x2 tile surface; got %dx%d", tile.W, tile.H)
	}
	if acc := set.Accumulator(); acc.W != 8 || acc.H != 4 {
		t.Fatalf("expected 8x4 accumulator; got %dx%d", acc.W, acc.H)
	}

	set.Release()
	if set.Tile() != nil || set.Accumulator() != nil || set.Display(1) != nil {
		t.Fatal("expected surfaces to be released")
	}
}

func TestSetInvalidLayout(t *testing.T) {
	type spec struct {
		frameW, frameH, tileW, tileH int
	}
	specs := []spec{
		{0, 4, 1, 1},
		{4, 4, 0, 1},
		{4, 4, 5, 1},
		{4, -1, 1, 1},
	}

	for index, s := range specs {
		_, err := NewSet(s.frameW, s.frameH, s.tileW, s.tileH)
		if !errors.Is(err, ErrInvalidLayout) {
			t.Fatalf("[spec %d] expected ErrInvalidLayout; got %v", index, err)
		}
	}
}
