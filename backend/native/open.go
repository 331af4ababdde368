// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/framerender"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Open creates a Device on the best available HAL backend, preferring a
// discrete or integrated GPU adapter. Close destroys the device.
func Open() (*Device, error) {
	b, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("native: select backend: %w", err)
	}
	return OpenBackend(b)
}

// OpenBackend creates a Device on a specific HAL backend.
func OpenBackend(b hal.Backend) (*Device, error) {
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	open, err := selected.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open adapter %q: %w", selected.Info.Name, err)
	}

	framerender.Logger().Info("native: device opened",
		"adapter", selected.Info.Name,
		"backend", b.Variant().String())

	d := New(open.Device, open.Queue)
	d.instance = instance
	return d, nil
}
