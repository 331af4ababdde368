// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/framerender"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is a framerender.Device on a HAL device and queue.
//
// Device is NOT thread-safe; all calls must come from the goroutine that
// owns the GPU context.
type Device struct {
	device hal.Device
	queue  hal.Queue

	// instance is set when Open created the device; Close then destroys
	// both.
	instance hal.Instance

	vw, vh int
	bound  *Target

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
}

// New wraps a HAL device and queue owned by the caller. Close releases
// only what the Device created.
func New(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue}
}

// NewFromProvider wraps the HAL device of a host that implements
// HalDevice() any and HalQueue() any, such as a gogpu window.
func NewFromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue), nil
}

// HalDevice returns the underlying HAL device.
func (d *Device) HalDevice() hal.Device {
	return d.device
}

// Close releases the shared pipeline layouts and, for devices created by
// Open, the device and instance.
func (d *Device) Close() {
	if d.device == nil {
		return
	}
	_ = d.device.WaitIdle()
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.bindLayout != nil {
		d.device.DestroyBindGroupLayout(d.bindLayout)
		d.bindLayout = nil
	}
	if d.instance != nil {
		d.device.Destroy()
		d.instance.Destroy()
		d.instance = nil
	}
	d.device = nil
	d.queue = nil
}

// CreateTexture implements framerender.Device.
func (d *Device) CreateTexture(desc framerender.TextureDescriptor) (framerender.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, desc.Width, desc.Height)
	}
	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = framerender.DefaultFormat
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("native: create view %q: %w", desc.Label, err)
	}
	return &Texture{
		dev:    d,
		tex:    tex,
		view:   view,
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: format,
	}, nil
}

// CreatePixelBuffer implements framerender.Device. Pixel buffers are host
// memory; readback lands in the target's mapped staging buffer first.
func (d *Device) CreatePixelBuffer(size int) (framerender.PixelBuffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("native: invalid buffer size %d", size)
	}
	return &PixelBuffer{data: make([]byte, size)}, nil
}

// WriteTexture implements framerender.Device.
func (d *Device) WriteTexture(tex framerender.Texture, pixels []byte) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	need := t.width * t.height * 4
	if len(pixels) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(pixels), need)
	}
	w, h := uint32(t.width), uint32(t.height)
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		pixels[:need],
		&hal.ImageDataLayout{BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("native: write texture %q: %w", t.label, err)
	}
	return nil
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
	if !ok || t == nil || t.dev != d {
		return nil, ErrForeignTexture
	}
	if t.destroyed {
		return nil, ErrDestroyed
	}
	return t, nil
}

// submit ends encoding, submits and waits for the GPU to finish.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

// PixelBuffer is host staging memory.
type PixelBuffer struct {
	data []byte
}

// Bytes returns the buffer contents.
func (p *PixelBuffer) Bytes() []byte { return p.data }

// Len returns the buffer size.
func (p *PixelBuffer) Len() int { return len(p.data) }

// Destroy drops the memory.
func (p *PixelBuffer) Destroy() { p.data = nil }
