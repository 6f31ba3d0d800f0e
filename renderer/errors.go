package renderer

import "errors"

var (
	ErrNotInitialized      = errors.New("renderer: not initialized")
	ErrResourceUnavailable = errors.New("renderer: tracing resources unavailable")
	ErrDegenerateConfig    = errors.New("renderer: degenerate configuration")
)

// Report whether err only affects the current frame. Transient errors leave
// the renderer state untouched and the frame can be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNotInitialized) || errors.Is(err, ErrResourceUnavailable)
}
