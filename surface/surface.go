// Package surface provides the float32 image planes used by the renderer to
// hold tile results, the running accumulation and the displayed output.
package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/achilleasa/tiletrace/types"
)

// A Surface is a row-major RGBA float32 image. Row 0 is the top of the image.
type Surface struct {
	W, H int
	Pix  []types.Vec4
}

// Create a new surface with the given dimensions.
func New(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{
		W:   w,
		H:   h,
		Pix: make([]types.Vec4, w*h),
	}
}

// Get the pixel at (x, y).
func (s *Surface) At(x, y int) types.Vec4 {
	return s.Pix[y*s.W+x]
}

// Set the pixel at (x, y).
func (s *Surface) Set(x, y int, v types.Vec4) {
	s.Pix[y*s.W+x] = v
}

// Set all pixels to v.
func (s *Surface) Fill(v types.Vec4) {
	for i := range s.Pix {
		s.Pix[i] = v
	}
}

// Reset all pixels to zero.
func (s *Surface) Clear() {
	clear(s.Pix)
}

// Copy the contents of src which must have the same dimensions.
func (s *Surface) CopyFrom(src *Surface) error {
	if src.W != s.W || src.H != s.H {
		return ErrSizeMismatch
	}
	copy(s.Pix, src.Pix)
	return nil
}

// Blend src into the rectangle of s starting at (x0, y0) using the online
// mean update dst += (src - dst) * weight. A weight of 1 replaces dst.
func (s *Surface) BlendRect(src *Surface, x0, y0 int, weight float32) error {
	if x0 < 0 || y0 < 0 || x0+src.W > s.W || y0+src.H > s.H {
		return ErrOutOfBounds
	}

	for y := 0; y < src.H; y++ {
		dstRow := s.Pix[(y0+y)*s.W+x0 : (y0+y)*s.W+x0+src.W]
		srcRow := src.Pix[y*src.W : (y+1)*src.W]
		for x, v := range srcRow {
			dstRow[x] = dstRow[x].Lerp(v, weight)
		}
	}
	return nil
}

// Convert the surface to an 8-bit image, applying exposure, simple Reinhard
// tone-mapping and gamma correction.
func (s *Surface) Image(exposure float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.W, s.H))
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			v := s.Pix[y*s.W+x]
			img.SetRGBA(x, y, color.RGBA{
				R: tonemap(v[0], exposure),
				G: tonemap(v[1], exposure),
				B: tonemap(v[2], exposure),
				A: 255,
			})
		}
	}
	return img
}

func tonemap(c, exposure float32) uint8 {
	if c <= 0 || math.IsNaN(float64(c)) {
		return 0
	}
	c *= exposure
	c = c / (1 + c)
	c = float32(math.Pow(float64(c), 1.0/2.2))
	return uint8(math.Min(255, math.Floor(float64(c)*255+0.5)))
}
