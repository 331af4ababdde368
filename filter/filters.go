package filter

import (
	"image"

	"github.com/gogpu/framerender"
)

// Normal copies the frame unchanged. It runs the same kernel a Unit
// installs when no primary filter is given.
type Normal struct {
	*framerender.KernelFilter
}

// NewNormal creates a passthrough filter.
func NewNormal() *Normal {
	return &Normal{framerender.NewKernelFilter(framerender.PassthroughKernel)}
}

// Matrix applies a ColorMatrix.
type Matrix struct {
	*framerender.KernelFilter
	name   string
	matrix ColorMatrix
}

// NewMatrix creates a color matrix filter. name labels the kernel.
func NewMatrix(name string, m ColorMatrix) *Matrix {
	return &Matrix{
		KernelFilter: framerender.NewKernelFilter(m.Kernel(name)),
		name:         name,
		matrix:       m,
	}
}

// ColorMatrix returns the current matrix.
func (f *Matrix) ColorMatrix() ColorMatrix {
	return f.matrix
}

// SetColorMatrix replaces the matrix. The next Prepare reports a change.
func (f *Matrix) SetColorMatrix(m ColorMatrix) {
	f.matrix = m
	f.SetKernel(m.Kernel(f.name))
}

// Grayscale desaturates the frame.
type Grayscale struct {
	*Matrix
	strength float32
}

// NewGrayscale creates a fully desaturating filter.
func NewGrayscale() *Grayscale {
	return &Grayscale{Matrix: NewMatrix("grayscale", SaturationMatrix(0)), strength: 1}
}

// Strength returns the desaturation strength in [0, 1].
func (f *Grayscale) Strength() float32 {
	return f.strength
}

// SetStrength sets the desaturation strength, clamped to [0, 1]: 0 keeps
// the colors, 1 is fully gray. Changing it makes the next Prepare report
// a change.
func (f *Grayscale) SetStrength(s float32) {
	s = min(max(s, 0), 1)
	if s == f.strength {
		return
	}
	f.strength = s
	f.SetColorMatrix(SaturationMatrix(1 - s))
}

// NewInvert creates a filter that inverts RGB.
func NewInvert() *Matrix {
	return NewMatrix("invert", InvertMatrix())
}

// NewSepia creates a sepia tone filter.
func NewSepia() *Matrix {
	return NewMatrix("sepia", SepiaMatrix())
}

// Toggle switches a filter on and off. While disabled the frame passes
// through unchanged. Flipping the switch makes the next Prepare report a
// change.
type Toggle struct {
	inner   framerender.Filter
	bypass  *framerender.KernelFilter
	enabled bool
	flipped bool
}

// NewToggle wraps inner, initially enabled. The toggle owns inner.
func NewToggle(inner framerender.Filter) *Toggle {
	return &Toggle{
		inner:   inner,
		bypass:  framerender.NewKernelFilter(framerender.PassthroughKernel),
		enabled: true,
	}
}

// Enabled reports whether the wrapped filter is applied.
func (t *Toggle) Enabled() bool {
	return t.enabled
}

// SetEnabled turns the wrapped filter on or off.
func (t *Toggle) SetEnabled(on bool) {
	if on != t.enabled {
		t.enabled = on
		t.flipped = true
	}
}

// Prepare implements framerender.Filter.
func (t *Toggle) Prepare(dev framerender.Device) (bool, error) {
	innerChanged, err := t.inner.Prepare(dev)
	if err != nil {
		return false, err
	}
	bypassChanged, err := t.bypass.Prepare(dev)
	if err != nil {
		return false, err
	}
	changed := innerChanged || bypassChanged || t.flipped
	t.flipped = false
	return changed, nil
}

// Draw implements framerender.Filter.
func (t *Toggle) Draw(dev framerender.Device, src, dst framerender.Texture) error {
	if t.enabled {
		return t.inner.Draw(dev, src, dst)
	}
	return t.bypass.Draw(dev, src, dst)
}

// Release implements framerender.Filter.
func (t *Toggle) Release() {
	t.inner.Release()
	t.bypass.Release()
}

// eachPixel writes fn(src) into every dst pixel. Source coordinates are
// the destination coordinates clamped to the source bounds, the same
// addressing the WGSL kernels use.
func eachPixel(dst, src *image.RGBA, fn func(r, g, b, a uint8) (uint8, uint8, uint8, uint8)) {
	sb, db := src.Bounds(), dst.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return
	}
	for y := 0; y < db.Dy(); y++ {
		sy := min(y, sh-1)
		for x := 0; x < db.Dx(); x++ {
			sx := min(x, sw-1)
			si := src.PixOffset(sb.Min.X+sx, sb.Min.Y+sy)
			di := dst.PixOffset(db.Min.X+x, db.Min.Y+y)
			s := src.Pix[si : si+4 : si+4]
			d := dst.Pix[di : di+4 : di+4]
			d[0], d[1], d[2], d[3] = fn(s[0], s[1], s[2], s[3])
		}
	}
}
