package framerender

import "errors"

// Unit errors.
var (
	// ErrReleased is returned when a GPU-touching operation is requested
	// on a unit that has been released.
	ErrReleased = errors.New("framerender: unit released")

	// ErrNilFrame is returned when a render request carries no texture.
	ErrNilFrame = errors.New("framerender: frame has no texture")

	// ErrInvalidDimensions is returned for non-positive frame sizes.
	ErrInvalidDimensions = errors.New("framerender: invalid frame dimensions")

	// ErrScratchTooSmall is returned by CopyPixels when the scratch array
	// was sized for a smaller frame than the current staging buffer.
	ErrScratchTooSmall = errors.New("framerender: scratch array smaller than staging buffer")

	// ErrNoPixels is returned by CopyPixels before any staging buffer exists.
	ErrNoPixels = errors.New("framerender: no staging buffer allocated")

	// ErrUnknownRequest is returned by Handle for request types outside
	// the closed request set.
	ErrUnknownRequest = errors.New("framerender: unknown request")

	// ErrFilterNotPrepared is returned by KernelFilter.Draw before Prepare.
	ErrFilterNotPrepared = errors.New("framerender: filter not prepared")

	// ErrDispatcherClosed is returned when submitting to a closed Dispatcher.
	ErrDispatcherClosed = errors.New("framerender: dispatcher closed")
)
