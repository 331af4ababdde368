// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/framerender"
	"github.com/gogpu/framerender/backend"
)

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() backend.RenderBackend {
		return &Backend{}
	})
}

// Backend is the registered "native" backend. Init opens a GPU device.
type Backend struct {
	device *Device
	open   func() (*Device, error)
}

// NewBackend creates a native backend that opens devices with open. A
// nil open means Open.
func NewBackend(open func() (*Device, error)) *Backend {
	return &Backend{open: open}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendNative
}

// Init opens the GPU device. Calling it again keeps the device.
func (b *Backend) Init() error {
	if b.device != nil {
		return nil
	}
	open := b.open
	if open == nil {
		open = Open
	}
	d, err := open()
	if err != nil {
		return err
	}
	b.device = d
	return nil
}

// Close destroys the device.
func (b *Backend) Close() {
	if b.device != nil {
		b.device.Close()
		b.device = nil
	}
}

// Device returns the GPU device.
func (b *Backend) Device() (framerender.Device, error) {
	if b.device == nil {
		return nil, backend.ErrNotInitialized
	}
	return b.device, nil
}
