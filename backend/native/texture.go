// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a HAL texture with its default view.
type Texture struct {
	dev    *Device
	tex    hal.Texture
	view   hal.TextureView
	label  string
	width  int
	height int
	format gputypes.TextureFormat

	destroyed bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// HalTexture returns the underlying HAL texture, or nil once destroyed.
func (t *Texture) HalTexture() hal.Texture {
	if t.destroyed {
		return nil
	}
	return t.tex
}

// Destroy releases the view and the texture.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.dev.device == nil {
		return
	}
	t.dev.device.DestroyTextureView(t.view)
	t.dev.device.DestroyTexture(t.tex)
	t.view, t.tex = nil, nil
}
