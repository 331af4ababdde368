package framerender

import (
	_ "embed"
	"fmt"
	"image"

	"github.com/gogpu/framerender/internal/yuv"
)

//go:embed shaders/nv12.wgsl
var nv12ShaderSource string

//go:embed shaders/passthrough.wgsl
var passthroughShaderSource string

// KernelFilter is a Filter that runs a single Kernel.
//
// Prepare compiles the kernel on first use and after SetKernel, and
// reports changed exactly then.
type KernelFilter struct {
	kernel Kernel
	prog   Program
	dirty  bool
}

// NewKernelFilter creates a filter running k.
func NewKernelFilter(k Kernel) *KernelFilter {
	return &KernelFilter{kernel: k, dirty: true}
}

// Kernel returns the kernel the filter runs.
func (f *KernelFilter) Kernel() Kernel {
	return f.kernel
}

// SetKernel replaces the kernel. The next Prepare recompiles it and
// reports a change.
func (f *KernelFilter) SetKernel(k Kernel) {
	f.kernel = k
	f.dirty = true
}

// Prepare implements Filter.
func (f *KernelFilter) Prepare(dev Device) (bool, error) {
	if !f.dirty && f.prog != nil {
		return false, nil
	}
	prog, err := dev.CreateProgram(f.kernel)
	if err != nil {
		return false, fmt.Errorf("framerender: compile kernel %q: %w", f.kernel.Name, err)
	}
	if f.prog != nil {
		f.prog.Destroy()
	}
	f.prog = prog
	f.dirty = false
	return true, nil
}

// Draw implements Filter.
func (f *KernelFilter) Draw(_ Device, src, dst Texture) error {
	if f.prog == nil {
		return ErrFilterNotPrepared
	}
	return f.prog.Draw(src, dst)
}

// Release implements Filter. A released filter can be prepared again.
func (f *KernelFilter) Release() {
	if f.prog != nil {
		f.prog.Destroy()
		f.prog = nil
	}
	f.dirty = true
}

// NV12Kernel packs RGBA into the NV12 layout described by ConversionSize.
var NV12Kernel = Kernel{
	Name: "nv12",
	WGSL: nv12ShaderSource,
	CPU:  yuv.Pack,
}

// NewConversionFilter returns the default readback filter: RGBA to
// packed NV12, BT.601 limited range.
func NewConversionFilter() *KernelFilter {
	return NewKernelFilter(NV12Kernel)
}

// PassthroughKernel copies the source unchanged. Destination pixels past
// the source edge repeat the edge texel.
var PassthroughKernel = Kernel{
	Name: "passthrough",
	WGSL: passthroughShaderSource,
	CPU:  copyClamped,
}

// NewPassthroughFilter returns the default primary filter, which presents
// frames unchanged.
func NewPassthroughFilter() *KernelFilter {
	return NewKernelFilter(PassthroughKernel)
}

func copyClamped(dst, src *image.RGBA) {
	sb, db := src.Bounds(), dst.Bounds()
	if sb.Empty() {
		return
	}
	for y := 0; y < db.Dy(); y++ {
		sy := sb.Min.Y + min(y, sb.Dy()-1)
		for x := 0; x < db.Dx(); x++ {
			sx := sb.Min.X + min(x, sb.Dx()-1)
			si := src.PixOffset(sx, sy)
			di := dst.PixOffset(db.Min.X+x, db.Min.Y+y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
}
