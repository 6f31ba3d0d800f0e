package tracer

import "errors"

var (
	ErrInvalidTileGrid = errors.New("tracer: tile grid dimensions must be positive")
	ErrNotReady        = errors.New("tracer: collaborator not ready")
	ErrTileSize        = errors.New("tracer: target surface does not match tile size")
)
