package backend

import (
	"os"
	"sort"

	"github.com/gogpu/framerender"
	"github.com/gogpu/gpucontext"
)

// EnvBackend names the environment variable that overrides backend
// selection in Default.
const EnvBackend = "FRAMERENDER_BACKEND"

// BackendFactory creates a new backend instance.
type BackendFactory func() RenderBackend

// Priority order for backend selection (first available wins).
// Native > Software (Software is the fallback).
var registry = gpucontext.NewRegistry[RenderBackend](
	gpucontext.WithPriority(BackendNative, BackendSoftware),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory BackendFactory) {
	registry.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	names := registry.Available()
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) RenderBackend {
	return registry.Get(name)
}

// Default returns the best available backend.
// If FRAMERENDER_BACKEND names a registered backend it wins; otherwise
// the priority order native > software applies.
// Returns nil if no backends are registered.
func Default() RenderBackend {
	if name := os.Getenv(EnvBackend); name != "" && registry.Has(name) {
		return registry.Get(name)
	}
	return registry.Best()
}

// MustDefault returns the default backend or panics.
func MustDefault() RenderBackend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// InitDefault initializes the default backend. If a GPU backend fails to
// initialize, the software backend is tried before giving up.
func InitDefault() (RenderBackend, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendNotAvailable
	}

	err := b.Init()
	if err == nil {
		return b, nil
	}
	if b.Name() == BackendSoftware || !registry.Has(BackendSoftware) {
		return nil, err
	}

	framerender.Logger().Warn("backend: falling back to software", "backend", b.Name(), "err", err)
	sw := registry.Get(BackendSoftware)
	if swErr := sw.Init(); swErr != nil {
		return nil, err
	}
	return sw, nil
}
