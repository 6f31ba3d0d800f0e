package surface

import (
	"image"
	"image/color"
	"testing"

	"github.com/achilleasa/tiletrace/types"
)

func TestDepthImage(t *testing.T) {
	s := New(3, 1)
	s.Set(0, 0, types.XYZW(2, 2, 2, 1))
	s.Set(1, 0, types.XYZW(4, 4, 4, 1))

	img := s.DepthImage()
	near, far, bg := img.GrayAt(0, 0).Y, img.GrayAt(1, 0).Y, img.GrayAt(2, 0).Y
	if bg != 0 {
		t.Fatalf("expected background to be black; got %d", bg)
	}
	if far == 0 || near <= far {
		t.Fatalf("expected closer points to be brighter; near %d far %d", near, far)
	}

	if img = New(2, 2).DepthImage(); img.GrayAt(1, 1).Y != 0 {
		t.Fatalf("expected an empty depth buffer to produce a black image")
	}
}

func TestScaleImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range src.Pix {
		src.Pix[i] = 200
	}

	type spec struct {
		factor    float64
		expW      int
		expH      int
		expectErr bool
	}
	specs := []spec{
		{1, 4, 2, false},
		{2, 8, 4, false},
		{0.5, 2, 1, false},
		{0, 0, 0, true},
		{-1, 0, 0, true},
		{0.1, 0, 0, true},
	}

	for index, s := range specs {
		img, err := ScaleImage(src, s.factor)
		if s.expectErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		if b := img.Bounds(); b.Dx() != s.expW || b.Dy() != s.expH {
			t.Fatalf("[spec %d] expected %dx%d image; got %dx%d", index, s.expW, s.expH, b.Dx(), b.Dy())
		}
		if c := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA); c.R < 199 || c.R > 201 {
			t.Fatalf("[spec %d] expected uniform images to stay uniform; got %v", index, c)
		}
	}
}
