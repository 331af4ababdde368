// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/framerender"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// usageBarrier moves tex from one usage to another. Textures rest in
// RenderAttachment between commands.
func usageBarrier(tex hal.Texture, from, to gputypes.TextureUsage) []hal.TextureBarrier {
	return []hal.TextureBarrier{{
		Texture: tex,
		Usage:   hal.TextureUsageTransition{OldUsage: from, NewUsage: to},
	}}
}

// alignedStride returns the padded row pitch for a width-pixel RGBA row.
func alignedStride(width int) uint32 {
	return (uint32(width)*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// Target is an offscreen render target with a mapped staging buffer for
// readback.
type Target struct {
	dev     *Device
	tex     *Texture
	staging hal.Buffer
	stride  uint32
	size    uint64

	destroyed bool
}

// CreateRenderTarget implements framerender.Device.
func (d *Device) CreateRenderTarget(tex framerender.Texture) (framerender.RenderTarget, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	stride := alignedStride(t.width)
	size := uint64(stride) * uint64(t.height)
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: t.label + "_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	return &Target{dev: d, tex: t, staging: staging, stride: stride, size: size}, nil
}

// Texture returns the color attachment.
func (t *Target) Texture() framerender.Texture {
	return t.tex
}

// Bind makes the target current.
func (t *Target) Bind() (framerender.Binding, error) {
	if t.destroyed || t.tex.destroyed {
		return nil, ErrDestroyed
	}
	b := &binding{target: t, prev: t.dev.bound}
	t.dev.bound = t
	return b, nil
}

// Destroy releases the staging buffer. The texture stays alive.
func (t *Target) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.dev.bound == t {
		t.dev.bound = nil
	}
	if t.dev.device != nil {
		t.dev.device.DestroyBuffer(t.staging)
	}
	t.staging = nil
}

type binding struct {
	target  *Target
	prev    *Target
	unbound bool
}

// ReadPixels copies the target texture into dst as tightly packed RGBA
// rows.
func (b *binding) ReadPixels(dst []byte) error {
	if b.unbound {
		return errors.New("native: read from released binding")
	}
	t := b.target
	if t.destroyed || t.tex.destroyed {
		return ErrDestroyed
	}
	w, h := uint32(t.tex.width), uint32(t.tex.height)
	row := int(w) * 4
	if len(dst) < row*int(h) {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(dst), row*int(h))
	}

	dev := t.dev.device
	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "readback_encoder"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	encoder.TransitionTextures(usageBarrier(t.tex.tex,
		gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageCopySrc))
	encoder.CopyTextureToBuffer(t.tex.tex, t.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: t.stride, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex.tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures(usageBarrier(t.tex.tex,
		gputypes.TextureUsageCopySrc, gputypes.TextureUsageRenderAttachment))
	if err := t.dev.submit(encoder); err != nil {
		return fmt.Errorf("native: readback: %w", err)
	}

	mapping, err := dev.MapBuffer(t.staging, 0, t.size)
	if err != nil {
		return fmt.Errorf("native: map staging buffer: %w", err)
	}
	defer func() { _ = dev.UnmapBuffer(t.staging) }()

	src := unsafe.Slice((*byte)(mapping.Ptr), t.size)
	unpad(dst, src, row, int(t.stride), int(h))
	return nil
}

func (b *binding) Unbind() {
	if b.unbound {
		return
	}
	b.unbound = true
	b.target.dev.bound = b.prev
}

// unpad copies rows rows of row bytes from a stride-pitched src into a
// tightly packed dst.
func unpad(dst, src []byte, row, stride, rows int) {
	if row == stride {
		copy(dst, src[:row*rows])
		return
	}
	for y := 0; y < rows; y++ {
		copy(dst[y*row:(y+1)*row], src[y*stride:y*stride+row])
	}
}
