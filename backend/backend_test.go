package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/framerender"
)

func TestSoftwareBackendName(t *testing.T) {
	b := NewSoftwareBackend()
	if b.Name() != "software" {
		t.Errorf("Name() = %q, want %q", b.Name(), "software")
	}
}

func TestSoftwareBackendDeviceBeforeInit(t *testing.T) {
	b := NewSoftwareBackend()
	if _, err := b.Device(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Device() error = %v, want ErrNotInitialized", err)
	}
}

func TestSoftwareBackendInit(t *testing.T) {
	b := NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	dev, err := b.Device()
	if err != nil {
		t.Fatalf("Device() error = %v", err)
	}
	if err := b.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	again, _ := b.Device()
	if again != dev {
		t.Error("second Init() replaced the device")
	}

	b.Close()
	if _, err := b.Device(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Device() after Close error = %v, want ErrNotInitialized", err)
	}
}

func TestSoftwareBackendRunsUnit(t *testing.T) {
	b := NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer b.Close()
	dev, _ := b.Device()

	u := framerender.NewUnit(dev, framerender.WithoutConversion())
	defer u.Release()
	if u.State() != framerender.StateReady {
		t.Errorf("State() = %v, want ready", u.State())
	}
}

type stubBackend struct{ name string }

func (s *stubBackend) Name() string                        { return s.name }
func (s *stubBackend) Init() error                         { return nil }
func (s *stubBackend) Close()                              {}
func (s *stubBackend) Device() (framerender.Device, error) { return nil, ErrNotInitialized }

func TestRegistry(t *testing.T) {
	if !IsRegistered(BackendSoftware) {
		t.Fatal("software backend should self-register")
	}
	if b := Get(BackendSoftware); b == nil || b.Name() != BackendSoftware {
		t.Errorf("Get(software) = %v", b)
	}
	if b := Get("missing"); b != nil {
		t.Errorf("Get(missing) = %v, want nil", b)
	}

	Register("stub", func() RenderBackend { return &stubBackend{name: "stub"} })
	defer Unregister("stub")

	found := false
	for _, n := range Available() {
		if n == "stub" {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, missing stub", Available())
	}

	Unregister("stub")
	if IsRegistered("stub") {
		t.Error("stub still registered after Unregister")
	}
}

func TestDefaultPriority(t *testing.T) {
	t.Setenv(EnvBackend, "")
	Register(BackendNative, func() RenderBackend { return &stubBackend{name: BackendNative} })
	defer Unregister(BackendNative)

	if got := Default().Name(); got != BackendNative {
		t.Errorf("Default() = %q, want %q", got, BackendNative)
	}
}

func TestDefaultEnvOverride(t *testing.T) {
	Register(BackendNative, func() RenderBackend { return &stubBackend{name: BackendNative} })
	defer Unregister(BackendNative)

	t.Setenv(EnvBackend, BackendSoftware)
	if got := Default().Name(); got != BackendSoftware {
		t.Errorf("Default() = %q, want %q", got, BackendSoftware)
	}

	// Unknown names fall back to priority.
	t.Setenv(EnvBackend, "quantum")
	if got := Default().Name(); got != BackendNative {
		t.Errorf("Default() = %q, want %q", got, BackendNative)
	}
}

func TestInitDefault(t *testing.T) {
	t.Setenv(EnvBackend, BackendSoftware)
	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	defer b.Close()
	if _, err := b.Device(); err != nil {
		t.Errorf("Device() error = %v", err)
	}
}

func TestInitDefaultNoBackends(t *testing.T) {
	t.Setenv(EnvBackend, "")
	Unregister(BackendSoftware)
	defer Register(BackendSoftware, func() RenderBackend { return &SoftwareBackend{} })

	if _, err := InitDefault(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("InitDefault() error = %v, want ErrBackendNotAvailable", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustDefault() did not panic")
		}
	}()
	MustDefault()
}

type failingBackend struct{ stubBackend }

func (f *failingBackend) Init() error { return errors.New("no GPU") }

func TestInitDefaultFallsBackToSoftware(t *testing.T) {
	t.Setenv(EnvBackend, "")
	Register(BackendNative, func() RenderBackend {
		return &failingBackend{stubBackend{name: BackendNative}}
	})
	defer Unregister(BackendNative)

	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	defer b.Close()
	if b.Name() != BackendSoftware {
		t.Errorf("InitDefault() = %q, want software fallback", b.Name())
	}
}
