package framerender

import "github.com/gogpu/framerender/internal/yuv"

// Filter is an image filter applied to each frame.
//
// A filter is exclusively owned by the Unit it is installed on. It is
// replaced wholesale through SetFilter and never mutated from outside
// while installed.
type Filter interface {
	// Prepare readies the filter's GPU state on dev. changed reports that
	// the filter's output configuration differs from the previous call
	// (first use, or a configuration toggle); the unit reallocates its
	// primary render path when it is true.
	Prepare(dev Device) (changed bool, err error)

	// Draw renders src into dst using the current viewport.
	Draw(dev Device, src, dst Texture) error

	// Release frees everything the filter holds. Safe to call more than
	// once.
	Release()
}

// Frame is a source frame borrowed for the duration of one render request.
type Frame struct {
	// Texture holds the frame pixels. Width and Height come from it.
	Texture Texture

	// Timestamp is the presentation time in nanoseconds.
	Timestamp int64
}

// Width returns the frame width in pixels.
func (f Frame) Width() int {
	if f.Texture == nil {
		return 0
	}
	return f.Texture.Width()
}

// Height returns the frame height in pixels.
func (f Frame) Height() int {
	if f.Texture == nil {
		return 0
	}
	return f.Texture.Height()
}

// NV12Size returns the byte size of an 8-bit NV12 image: a full
// resolution luma plane plus a half-height interleaved chroma plane.
func NV12Size(width, height int) int {
	return yuv.Size(width, height)
}

// ConversionSize returns the RGBA texture geometry that holds an NV12
// plane pair for a width x height image: four luma bytes per texel, and
// half as many extra rows for the chroma plane.
//
// Only widths that are multiples of 4 round-trip: otherwise each packed
// row holds 4*(width/4) luma bytes while NV12Size counts width, and the
// bytes in PixelsReady are not strided as NV12.
func ConversionSize(width, height int) (w, h int) {
	return yuv.PackedSize(width, height)
}
