// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/framerender"
	"github.com/gogpu/framerender/backend"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice opens a Device on the noop HAL backend.
func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	d, err := OpenBackend(noop.API{})
	if err != nil {
		t.Fatalf("OpenBackend(noop) failed: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestOpenBackendOwnsDevice(t *testing.T) {
	d := createNoopDevice(t)
	if d.instance == nil {
		t.Error("OpenBackend should keep the instance for Close")
	}
	if d.HalDevice() == nil {
		t.Error("HalDevice() = nil")
	}
	d.Close()
	d.Close()
	if d.HalDevice() != nil {
		t.Error("Close() should drop the HAL device")
	}
}

type fakeProvider struct {
	dev   any
	queue any
}

func (p fakeProvider) HalDevice() any { return p.dev }
func (p fakeProvider) HalQueue() any  { return p.queue }

func TestNewFromProvider(t *testing.T) {
	owner := createNoopDevice(t)

	d, err := NewFromProvider(fakeProvider{dev: owner.device, queue: owner.queue})
	if err != nil {
		t.Fatalf("NewFromProvider() error = %v", err)
	}
	if d.instance != nil {
		t.Error("provider devices must not own an instance")
	}

	tests := []struct {
		name     string
		provider any
	}{
		{"no HAL methods", struct{}{}},
		{"wrong device type", fakeProvider{dev: 1, queue: owner.queue}},
		{"wrong queue type", fakeProvider{dev: owner.device, queue: "q"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFromProvider(tt.provider); !errors.Is(err, ErrNoHAL) {
				t.Errorf("error = %v, want ErrNoHAL", err)
			}
		})
	}
}

func TestCreateTexture(t *testing.T) {
	d := createNoopDevice(t)

	tex, err := d.CreateTexture(framerender.TextureDescriptor{Label: "frame", Width: 64, Height: 32})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if tex.Width() != 64 || tex.Height() != 32 {
		t.Errorf("size = %dx%d, want 64x32", tex.Width(), tex.Height())
	}
	if tex.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", tex.Format())
	}
	native := tex.(*Texture)
	if native.HalTexture() == nil {
		t.Error("HalTexture() = nil")
	}
	tex.Destroy()
	tex.Destroy()
	if native.HalTexture() != nil {
		t.Error("HalTexture() after Destroy should be nil")
	}

	if _, err := d.CreateTexture(framerender.TextureDescriptor{Width: 0, Height: 4}); !errors.Is(err, ErrInvalidTextureSize) {
		t.Errorf("CreateTexture(0x4) error = %v, want ErrInvalidTextureSize", err)
	}
}

func TestWriteTexture(t *testing.T) {
	d := createNoopDevice(t)
	tex, _ := d.CreateTexture(framerender.TextureDescriptor{Width: 4, Height: 4})

	if err := d.WriteTexture(tex, make([]byte, 64)); err != nil {
		t.Errorf("WriteTexture() error = %v", err)
	}
	if err := d.WriteTexture(tex, make([]byte, 63)); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short WriteTexture() error = %v, want ErrShortBuffer", err)
	}

	other := createNoopDevice(t)
	foreign, _ := other.CreateTexture(framerender.TextureDescriptor{Width: 4, Height: 4})
	if err := d.WriteTexture(foreign, make([]byte, 64)); !errors.Is(err, ErrForeignTexture) {
		t.Errorf("WriteTexture(foreign) error = %v, want ErrForeignTexture", err)
	}
}

func TestAlignedStride(t *testing.T) {
	tests := []struct {
		width int
		want  uint32
	}{
		{1, 256},
		{64, 256},
		{65, 512},
		{480, 2048},
	}
	for _, tt := range tests {
		if got := alignedStride(tt.width); got != tt.want {
			t.Errorf("alignedStride(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestUsageBarrier(t *testing.T) {
	d := createNoopDevice(t)
	tex, err := d.CreateTexture(framerender.TextureDescriptor{Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	ht := tex.(*Texture).tex

	tests := []struct {
		name     string
		from, to gputypes.TextureUsage
	}{
		{"sample", gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding},
		{"sample done", gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment},
		{"copy", gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageCopySrc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := usageBarrier(ht, tt.from, tt.to)
			if len(b) != 1 {
				t.Fatalf("len = %d, want 1", len(b))
			}
			if b[0].Texture != ht {
				t.Error("barrier targets the wrong texture")
			}
			if b[0].Usage.OldUsage != tt.from || b[0].Usage.NewUsage != tt.to {
				t.Errorf("usage = %v -> %v, want %v -> %v",
					b[0].Usage.OldUsage, b[0].Usage.NewUsage, tt.from, tt.to)
			}
		})
	}
}

// A rendered target is sampled by the next draw, as the conversion pass
// samples the primary target.
func TestDrawSamplesRenderedTarget(t *testing.T) {
	d := createNoopDevice(t)
	prog, err := d.CreateProgram(framerender.NV12Kernel)
	if err != nil {
		t.Fatal(err)
	}
	defer prog.Destroy()

	src, _ := d.CreateTexture(framerender.TextureDescriptor{Width: 16, Height: 8})
	primary, _ := d.CreateTexture(framerender.TextureDescriptor{Width: 16, Height: 8})
	cw, ch := framerender.ConversionSize(16, 8)
	conv, _ := d.CreateTexture(framerender.TextureDescriptor{Width: cw, Height: ch})

	if err := prog.Draw(src, primary); err != nil {
		t.Fatalf("Draw(src, primary) error = %v", err)
	}
	d.SetViewport(cw, ch)
	if err := prog.Draw(primary, conv); err != nil {
		t.Fatalf("Draw(primary, conv) error = %v", err)
	}
	if err := prog.Draw(primary, conv); err != nil {
		t.Fatalf("second Draw(primary, conv) error = %v", err)
	}
}

func TestUnpad(t *testing.T) {
	src := []byte{
		1, 2, 3, 4, 0, 0, 0, 0,
		5, 6, 7, 8, 0, 0, 0, 0,
	}
	dst := make([]byte, 8)
	unpad(dst, src, 4, 8, 2)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("unpad = %v, want %v", dst, want)
		}
	}
}

func TestRenderTargetReadback(t *testing.T) {
	d := createNoopDevice(t)
	tex, _ := d.CreateTexture(framerender.TextureDescriptor{Width: 10, Height: 3})
	target, err := d.CreateRenderTarget(tex)
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	if target.Texture() != tex {
		t.Error("Texture() is not the attachment")
	}

	b, err := target.Bind()
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if d.bound != target {
		t.Error("Bind() did not make the target current")
	}
	dst := make([]byte, 10*3*4)
	if err := b.ReadPixels(dst); err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	if err := b.ReadPixels(dst[:10]); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short ReadPixels() error = %v, want ErrShortBuffer", err)
	}
	b.Unbind()
	b.Unbind()
	if d.bound != nil {
		t.Error("Unbind() did not restore the previous binding")
	}

	target.Destroy()
	target.Destroy()
	if _, err := target.Bind(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Bind(destroyed) error = %v, want ErrDestroyed", err)
	}
}

func TestCreateProgramAndDraw(t *testing.T) {
	d := createNoopDevice(t)
	src, _ := d.CreateTexture(framerender.TextureDescriptor{Width: 16, Height: 8})
	dst, _ := d.CreateTexture(framerender.TextureDescriptor{Width: 4, Height: 12})

	prog, err := d.CreateProgram(framerender.NV12Kernel)
	if err != nil {
		t.Fatalf("CreateProgram(nv12) error = %v", err)
	}
	if d.pipeLayout == nil || d.bindLayout == nil {
		t.Error("CreateProgram should create the shared layouts")
	}
	layout := d.pipeLayout

	d.SetViewport(4, 12)
	if err := prog.Draw(src, dst); err != nil {
		t.Errorf("Draw() error = %v", err)
	}

	again, err := d.CreateProgram(framerender.NV12Kernel)
	if err != nil {
		t.Fatal(err)
	}
	if d.pipeLayout != layout {
		t.Error("second program replaced the shared pipeline layout")
	}
	again.Destroy()

	prog.Destroy()
	prog.Destroy()
	if err := prog.Draw(src, dst); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Draw(destroyed) error = %v, want ErrDestroyed", err)
	}
}

func TestCreateProgramCompileError(t *testing.T) {
	d := createNoopDevice(t)
	_, err := d.CreateProgram(framerender.Kernel{Name: "broken", WGSL: "fn fs_main( {"})
	if err == nil {
		t.Fatal("CreateProgram(invalid WGSL) succeeded")
	}
}

func TestUnitOnNoopDevice(t *testing.T) {
	d := createNoopDevice(t)
	var ready []framerender.PixelsReady
	u := framerender.NewUnit(d,
		framerender.WithFilter(framerender.NewKernelFilter(framerender.NV12Kernel)),
		framerender.WithNotifier(framerender.NotifierFunc(func(n framerender.Notification) {
			if p, ok := n.(framerender.PixelsReady); ok {
				ready = append(ready, p)
			}
		})),
	)
	defer u.Release()

	src, _ := d.CreateTexture(framerender.TextureDescriptor{Width: 32, Height: 16})
	err := u.Handle(framerender.RenderFilterRequest{Frame: framerender.Frame{Texture: src, Timestamp: 7}})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(ready) != 1 || len(ready[0].Pixels) != framerender.NV12Size(32, 16) {
		t.Fatalf("PixelsReady = %+v", ready)
	}
	if ready[0].Timestamp != 7 {
		t.Errorf("Timestamp = %d, want 7", ready[0].Timestamp)
	}
}

func TestBackendRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendNative) {
		t.Fatal("native backend should self-register")
	}

	b := NewBackend(func() (*Device, error) { return OpenBackend(noop.API{}) })
	if _, err := b.Device(); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("Device() before Init error = %v", err)
	}
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	dev, err := b.Device()
	if err != nil || dev == nil {
		t.Fatalf("Device() = %v, %v", dev, err)
	}
	b.Close()
	if _, err := b.Device(); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("Device() after Close error = %v", err)
	}

	failing := NewBackend(func() (*Device, error) { return nil, ErrNoAdapter })
	if err := failing.Init(); !errors.Is(err, ErrNoAdapter) {
		t.Errorf("Init() error = %v, want ErrNoAdapter", err)
	}
}
