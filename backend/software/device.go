// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements framerender.Device on the CPU.
//
// Textures are *image.RGBA, programs run the kernel's CPU function and
// render target readback copies pixels straight out of the bound
// texture. The device is the fallback backend and the reference the GPU
// backend is tested against.
package software

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/framerender"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Software device errors.
var (
	// ErrDestroyed is returned when using a destroyed resource.
	ErrDestroyed = errors.New("software: resource has been destroyed")

	// ErrForeignTexture is returned for textures created by another device.
	ErrForeignTexture = errors.New("software: texture not created by this device")

	// ErrUnsupportedFormat is returned for formats other than RGBA8Unorm.
	ErrUnsupportedFormat = errors.New("software: unsupported texture format")

	// ErrNoCPUKernel is returned when a kernel has no CPU function.
	ErrNoCPUKernel = errors.New("software: kernel has no CPU implementation")

	// ErrShortBuffer is returned when a pixel slice is too small.
	ErrShortBuffer = errors.New("software: buffer too small")
)

// Device is a CPU framerender.Device.
type Device struct {
	vw, vh int
	bound  *Target
}

// NewDevice creates a CPU device.
func NewDevice() *Device {
	framerender.Logger().Debug("software: device created")
	return &Device{}
}

// CreateTexture implements framerender.Device.
func (d *Device) CreateTexture(desc framerender.TextureDescriptor) (framerender.Texture, error) {
	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = framerender.DefaultFormat
	}
	if format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("software: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	return &Texture{
		label: desc.Label,
		img:   image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height)),
	}, nil
}

// CreateRenderTarget implements framerender.Device.
func (d *Device) CreateRenderTarget(tex framerender.Texture) (framerender.RenderTarget, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	return &Target{dev: d, tex: t}, nil
}

// CreatePixelBuffer implements framerender.Device.
func (d *Device) CreatePixelBuffer(size int) (framerender.PixelBuffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("software: invalid buffer size %d", size)
	}
	return &PixelBuffer{data: make([]byte, size)}, nil
}

// WriteTexture implements framerender.Device.
func (d *Device) WriteTexture(tex framerender.Texture, pixels []byte) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if len(pixels) < len(t.img.Pix) {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(pixels), len(t.img.Pix))
	}
	copy(t.img.Pix, pixels)
	return nil
}

// WriteImage scales src to cover tex and uploads it.
func (d *Device) WriteImage(tex framerender.Texture, src image.Image) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if src.Bounds().Size() == t.img.Bounds().Size() {
		draw.Draw(t.img, t.img.Bounds(), src, src.Bounds().Min, draw.Src)
		return nil
	}
	draw.ApproxBiLinear.Scale(t.img, t.img.Bounds(), src, src.Bounds(), draw.Src, nil)
	return nil
}

// CreateProgram implements framerender.Device.
func (d *Device) CreateProgram(k framerender.Kernel) (framerender.Program, error) {
	if k.CPU == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoCPUKernel, k.Name)
	}
	return &Program{dev: d, kernel: k}, nil
}

// SetViewport implements framerender.Device.
func (d *Device) SetViewport(width, height int) {
	d.vw, d.vh = width, height
}

// Viewport implements framerender.Device.
func (d *Device) Viewport() (int, int) {
	return d.vw, d.vh
}

func (d *Device) texture(tex framerender.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, ErrForeignTexture
	}
	if t.img == nil {
		return nil, ErrDestroyed
	}
	return t, nil
}

// Image returns the pixels backing tex, or nil if tex is not a live
// software texture.
func Image(tex framerender.Texture) *image.RGBA {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil
	}
	return t.img
}

// Texture is an image.RGBA texture.
type Texture struct {
	label string
	img   *image.RGBA
	w, h  int
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int {
	if t.img == nil {
		return t.w
	}
	return t.img.Rect.Dx()
}

// Height returns the texture height in pixels.
func (t *Texture) Height() int {
	if t.img == nil {
		return t.h
	}
	return t.img.Rect.Dy()
}

// Format returns RGBA8Unorm.
func (t *Texture) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Label returns the debug label.
func (t *Texture) Label() string {
	return t.label
}

// Destroy releases the pixels. Dimensions stay readable.
func (t *Texture) Destroy() {
	if t.img == nil {
		return
	}
	t.w, t.h = t.img.Rect.Dx(), t.img.Rect.Dy()
	t.img = nil
}

// Target is an offscreen render target.
type Target struct {
	dev       *Device
	tex       *Texture
	destroyed bool
}

// Texture returns the color attachment.
func (t *Target) Texture() framerender.Texture {
	return t.tex
}

// Bind makes the target current.
func (t *Target) Bind() (framerender.Binding, error) {
	if t.destroyed || t.tex.img == nil {
		return nil, ErrDestroyed
	}
	b := &binding{target: t, prev: t.dev.bound}
	t.dev.bound = t
	return b, nil
}

// Destroy releases the target. The texture stays alive.
func (t *Target) Destroy() {
	if t.dev.bound == t {
		t.dev.bound = nil
	}
	t.destroyed = true
}

type binding struct {
	target  *Target
	prev    *Target
	unbound bool
}

// ReadPixels copies the bound texture into dst as tightly packed rows.
func (b *binding) ReadPixels(dst []byte) error {
	if b.unbound {
		return errors.New("software: read from released binding")
	}
	img := b.target.tex.img
	if img == nil {
		return ErrDestroyed
	}
	if len(dst) < len(img.Pix) {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(dst), len(img.Pix))
	}
	copy(dst, img.Pix)
	return nil
}

func (b *binding) Unbind() {
	if b.unbound {
		return
	}
	b.unbound = true
	b.target.dev.bound = b.prev
}

// PixelBuffer is host memory.
type PixelBuffer struct {
	data []byte
}

// Bytes returns the buffer contents.
func (p *PixelBuffer) Bytes() []byte { return p.data }

// Len returns the buffer size.
func (p *PixelBuffer) Len() int { return len(p.data) }

// Destroy drops the memory.
func (p *PixelBuffer) Destroy() { p.data = nil }

// Program runs a kernel's CPU function.
type Program struct {
	dev       *Device
	kernel    framerender.Kernel
	destroyed bool
}

// Draw runs the kernel over the viewport, clipped to dst. A zero viewport
// covers all of dst.
func (p *Program) Draw(src, dst framerender.Texture) error {
	if p.destroyed {
		return ErrDestroyed
	}
	s, err := p.dev.texture(src)
	if err != nil {
		return fmt.Errorf("software: draw %q source: %w", p.kernel.Name, err)
	}
	d, err := p.dev.texture(dst)
	if err != nil {
		return fmt.Errorf("software: draw %q target: %w", p.kernel.Name, err)
	}
	area := d.img.Rect
	if p.dev.vw > 0 && p.dev.vh > 0 {
		area = area.Intersect(image.Rect(0, 0, p.dev.vw, p.dev.vh))
	}
	if area.Empty() {
		return nil
	}
	p.kernel.CPU(d.img.SubImage(area).(*image.RGBA), s.img)
	return nil
}

// Destroy releases the program.
func (p *Program) Destroy() { p.destroyed = true }
