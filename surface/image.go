package surface

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Convert a depth surface to a grayscale image. Closer points are brighter;
// pixels with a zero depth are treated as background and left black.
func (s *Surface) DepthImage() *image.Gray {
	var maxDepth float32
	for _, v := range s.Pix {
		if v[0] > maxDepth {
			maxDepth = v[0]
		}
	}

	img := image.NewGray(image.Rect(0, 0, s.W, s.H))
	if maxDepth == 0 {
		return img
	}
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			d := s.Pix[y*s.W+x][0]
			if d <= 0 {
				continue
			}
			img.SetGray(x, y, color.Gray{Y: uint8(255 * (1 - 0.9*d/maxDepth))})
		}
	}
	return img
}

// Resample img by the given factor. A factor of 1 returns img unchanged.
func ScaleImage(img image.Image, factor float64) (image.Image, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("invalid image scale %f", factor)
	}
	if factor == 1 {
		return img, nil
	}

	bounds := img.Bounds()
	dstW := int(float64(bounds.Dx())*factor + 0.5)
	dstH := int(float64(bounds.Dy())*factor + 0.5)
	if dstW < 1 || dstH < 1 {
		return nil, fmt.Errorf("image scale %f yields an empty image", factor)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst, nil
}
