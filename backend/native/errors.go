// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Native device errors.
var (
	// ErrDestroyed is returned when operating on a destroyed resource.
	ErrDestroyed = errors.New("native: resource has been destroyed")

	// ErrForeignTexture is returned for textures created by another device.
	ErrForeignTexture = errors.New("native: texture not created by this device")

	// ErrInvalidTextureSize is returned when texture dimensions are invalid.
	ErrInvalidTextureSize = errors.New("native: invalid texture size")

	// ErrShortBuffer is returned when a pixel slice is too small.
	ErrShortBuffer = errors.New("native: buffer too small")

	// ErrNoAdapter is returned when Open finds no GPU adapter.
	ErrNoAdapter = errors.New("native: no GPU adapters found")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("native: provider does not expose HAL types")
)
