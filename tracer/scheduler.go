package tracer

import "fmt"

// The TileScheduler tracks the traversal position over a fixed tile grid.
// Tiles are visited left to right within a row and rows are visited with
// decreasing Y, starting from row NumTilesY-1.
//
// The scheduler never re-seeds itself when a pass completes; this is the
// responsibility of the caller which also owns the pass counter.
type TileScheduler struct {
	numTilesX int
	numTilesY int

	tileX int
	tileY int
}

// Create a new tile scheduler seeded at the first tile of a pass.
func NewTileScheduler(numTilesX, numTilesY int) (*TileScheduler, error) {
	if numTilesX <= 0 || numTilesY <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTileGrid, numTilesX, numTilesY)
	}

	sch := &TileScheduler{
		numTilesX: numTilesX,
		numTilesY: numTilesY,
	}
	sch.Seed()
	return sch, nil
}

// Move the cursor to the first tile of a pass.
func (sch *TileScheduler) Seed() {
	sch.tileX = 0
	sch.tileY = sch.numTilesY - 1
}

// Move the cursor to the "just reset" position. The next call to Advance
// yields the first tile of a pass.
func (sch *TileScheduler) Reset() {
	sch.tileX = -1
	sch.tileY = sch.numTilesY - 1
}

// Check whether the cursor holds the reset sentinel.
func (sch *TileScheduler) Pending() bool {
	return sch.tileX < 0
}

// Advance the cursor to the next tile. It returns true if the cursor moved
// past the last tile of the grid, in which case the cursor is left below
// row 0 until the caller re-seeds it.
func (sch *TileScheduler) Advance() bool {
	sch.tileX++
	if sch.tileX < sch.numTilesX {
		return false
	}

	sch.tileX = 0
	sch.tileY--
	return sch.tileY < 0
}

// Get the raw cursor position.
func (sch *TileScheduler) Cursor() (int, int) {
	return sch.tileX, sch.tileY
}

// Get the tile under the cursor.
func (sch *TileScheduler) Tile() Tile {
	return Tile{X: sch.tileX, Y: sch.tileY}
}

// Get the number of tiles in the grid.
func (sch *TileScheduler) NumTiles() int {
	return sch.numTilesX * sch.numTilesY
}

// Get the fraction of tiles completed in the current pass. The result is
// always in [0, 1).
func (sch *TileScheduler) Progress() float32 {
	completed := (sch.numTilesY-sch.tileY-1)*sch.numTilesX + sch.tileX
	total := sch.NumTiles()
	if completed <= 0 {
		return 0
	}
	if completed >= total {
		// The cursor wrapped but has not been re-seeded yet.
		return 0
	}
	return float32(completed) / float32(total)
}
