// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements framerender.Device on gogpu/wgpu HAL.
//
// Kernels are compiled from WGSL to SPIR-V with gogpu/naga and run as a
// single full-screen triangle. Readback copies the render target into a
// row-aligned staging buffer, maps it and strips the row padding.
//
// A Device either wraps a HAL device owned by the host (New,
// NewFromProvider) or opens its own (Open). Importing this package
// registers the "native" backend:
//
//	import _ "github.com/gogpu/framerender/backend/native"
package native
