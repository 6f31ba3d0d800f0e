package surface

import "errors"

var (
	ErrSizeMismatch  = errors.New("surface: dimension mismatch")
	ErrOutOfBounds   = errors.New("surface: rectangle exceeds surface bounds")
	ErrInvalidLayout = errors.New("surface: invalid surface set layout")
)
