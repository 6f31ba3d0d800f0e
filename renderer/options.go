package renderer

import "fmt"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Tile grid. Tile dimensions are FrameW/NumTilesX by FrameH/NumTilesY;
	// remainder pixels are not rendered.
	NumTilesX uint32
	NumTilesY uint32

	// Exposure for tonemapping.
	Exposure float32

	// Seed for the per-frame random seed generator. A zero value selects a
	// time-based seed.
	Seed uint64
}

// Get the tile dimensions.
func (o Options) TileSize() (uint32, uint32) {
	if o.NumTilesX == 0 || o.NumTilesY == 0 {
		return 0, 0
	}
	return o.FrameW / o.NumTilesX, o.FrameH / o.NumTilesY
}

func (o Options) validate() error {
	if o.FrameW == 0 || o.FrameH == 0 {
		return fmt.Errorf("%w: frame resolution %dx%d", ErrDegenerateConfig, o.FrameW, o.FrameH)
	}
	if o.NumTilesX == 0 || o.NumTilesY == 0 {
		return fmt.Errorf("%w: tile grid %dx%d", ErrDegenerateConfig, o.NumTilesX, o.NumTilesY)
	}
	if tileW, tileH := o.TileSize(); tileW == 0 || tileH == 0 {
		return fmt.Errorf("%w: %dx%d tile grid does not fit in a %dx%d frame", ErrDegenerateConfig, o.NumTilesX, o.NumTilesY, o.FrameW, o.FrameH)
	}
	return nil
}
