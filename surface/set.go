package surface

import "fmt"

// Arena slots.
const (
	accumIndex = iota
	display0Index
	display1Index
	fallbackIndex
	depthIndex
	numFullResSurfaces
)

// A Set owns every surface used by the renderer. Full resolution surfaces
// live in a fixed arena and are addressed by index so that the two display
// surfaces can alternate roles without swapping pointers.
type Set struct {
	frameW, frameH int

	// The per-tile compute target.
	tile *Surface

	// Full resolution surfaces.
	arena [numFullResSurfaces]*Surface
}

// Allocate a surface set for the given frame and tile dimensions.
func NewSet(frameW, frameH, tileW, tileH int) (*Set, error) {
	if frameW <= 0 || frameH <= 0 || tileW <= 0 || tileH <= 0 || tileW > frameW || tileH > frameH {
		return nil, fmt.Errorf("%w: frame %dx%d, tile %dx%d", ErrInvalidLayout, frameW, frameH, tileW, tileH)
	}

	set := &Set{
		frameW: frameW,
		frameH: frameH,
		tile:   New(tileW, tileH),
	}
	for i := range set.arena {
		set.arena[i] = New(frameW, frameH)
	}
	return set, nil
}

// Release all surfaces. Accessors return nil after a release.
func (set *Set) Release() {
	set.tile = nil
	for i := range set.arena {
		set.arena[i] = nil
	}
}

// Get the frame dimensions.
func (set *Set) FrameSize() (int, int) {
	return set.frameW, set.frameH
}

// Get the tile compute surface.
func (set *Set) Tile() *Surface {
	return set.tile
}

// Get the accumulator surface.
func (set *Set) Accumulator() *Surface {
	return set.arena[accumIndex]
}

// Get display surface 0 or 1.
func (set *Set) Display(index int) *Surface {
	return set.arena[display0Index+(index&1)]
}

// Get the fallback preview surface.
func (set *Set) Fallback() *Surface {
	return set.arena[fallbackIndex]
}

// Get the auxiliary depth/feature surface populated by the fallback rasterizer.
func (set *Set) Depth() *Surface {
	return set.arena[depthIndex]
}
