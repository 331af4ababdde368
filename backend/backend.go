package backend

import (
	"errors"

	"github.com/gogpu/framerender"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// RenderBackend is the interface for rendering backends.
// A backend owns one framerender.Device; units created on that device
// share its resources and must live on the goroutine that called Init.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type RenderBackend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Init initializes the backend and its device.
	// This should be called before Device.
	Init() error

	// Close releases all backend resources.
	// Units created on the device must be released first.
	Close()

	// Device returns the rendering device.
	// It returns ErrNotInitialized before Init.
	Device() (framerender.Device, error)
}
