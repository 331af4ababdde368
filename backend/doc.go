// Package backend provides a pluggable device backend abstraction.
//
// A backend owns the framerender.Device that units render with. Two are
// provided:
//   - software: CPU kernels over image.RGBA, always available
//   - native: Pure Go GPU rendering through gogpu/wgpu
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import:
//
//	import _ "github.com/gogpu/framerender/backend"
//
// The native backend registers itself when its package is imported:
//
//	import _ "github.com/gogpu/framerender/backend/native"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name. Setting FRAMERENDER_BACKEND overrides the
// default choice:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	dev, _ := b.Device()
//	unit := framerender.NewUnit(dev, framerender.WithFilter(filter.NewNormal()))
package backend
