package backend

import (
	"github.com/gogpu/framerender"
	"github.com/gogpu/framerender/backend/software"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU-based software backend.
	BackendSoftware = "software"
	// BackendNative is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendNative = "native"
)

// SoftwareBackend is a CPU-based rendering backend.
// Its device runs every kernel's CPU function over image.RGBA textures.
type SoftwareBackend struct {
	device *software.Device
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() RenderBackend {
		return &SoftwareBackend{}
	})
}

// NewSoftwareBackend creates a new software rendering backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend. Calling it again keeps the device.
func (b *SoftwareBackend) Init() error {
	if b.device == nil {
		b.device = software.NewDevice()
	}
	return nil
}

// Close releases all backend resources.
func (b *SoftwareBackend) Close() {
	b.device = nil
}

// Device returns the software device.
func (b *SoftwareBackend) Device() (framerender.Device, error) {
	if b.device == nil {
		return nil, ErrNotInitialized
	}
	return b.device, nil
}
