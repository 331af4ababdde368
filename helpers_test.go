package framerender

import (
	"errors"
	"strings"

	"github.com/gogpu/gputypes"
)

// Test doubles shared across unit tests.

var errInjected = errors.New("injected failure")

// fakeDevice records every allocation and destruction.
type fakeDevice struct {
	vw, vh int

	nextID int
	live   map[int]string

	textures []TextureDescriptor
	buffers  []int
	targets  int
	programs []string
	draws    []string
	destroys []string
	binds    int
	unbinds  int
	reads    int

	// failure injection
	failTexture func(TextureDescriptor) bool
	failBuffer  bool
	failTarget  bool
	failProgram bool
	bindErr     error
	readErr     error
	drawErr     map[string]error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{live: make(map[int]string), drawErr: make(map[string]error)}
}

func (d *fakeDevice) track(kind string) int {
	d.nextID++
	d.live[d.nextID] = kind
	return d.nextID
}

func (d *fakeDevice) untrack(id int, name string) {
	delete(d.live, id)
	d.destroys = append(d.destroys, name)
}

// liveCount returns how many resources of kind are alive. Empty kind
// counts everything.
func (d *fakeDevice) liveCount(kind string) int {
	n := 0
	for _, k := range d.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

// createdWithSuffix counts textures whose label ends in suffix.
func (d *fakeDevice) createdWithSuffix(suffix string) int {
	n := 0
	for _, t := range d.textures {
		if strings.HasSuffix(t.Label, suffix) {
			n++
		}
	}
	return n
}

func (d *fakeDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if d.failTexture != nil && d.failTexture(desc) {
		return nil, errInjected
	}
	d.textures = append(d.textures, desc)
	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = DefaultFormat
	}
	return &fakeTexture{dev: d, id: d.track("texture"), w: desc.Width, h: desc.Height, label: desc.Label, format: format}, nil
}

func (d *fakeDevice) CreateRenderTarget(tex Texture) (RenderTarget, error) {
	if d.failTarget {
		return nil, errInjected
	}
	d.targets++
	return &fakeTarget{dev: d, id: d.track("target"), tex: tex}, nil
}

func (d *fakeDevice) CreatePixelBuffer(size int) (PixelBuffer, error) {
	if d.failBuffer {
		return nil, errInjected
	}
	d.buffers = append(d.buffers, size)
	return &fakeBuffer{dev: d, id: d.track("buffer"), data: make([]byte, size)}, nil
}

func (d *fakeDevice) WriteTexture(tex Texture, pixels []byte) error {
	return nil
}

func (d *fakeDevice) CreateProgram(k Kernel) (Program, error) {
	if d.failProgram {
		return nil, errInjected
	}
	d.programs = append(d.programs, k.Name)
	return &fakeProgram{dev: d, id: d.track("program"), name: k.Name}, nil
}

func (d *fakeDevice) SetViewport(w, h int) { d.vw, d.vh = w, h }

func (d *fakeDevice) Viewport() (int, int) { return d.vw, d.vh }

type fakeTexture struct {
	dev       *fakeDevice
	id        int
	w, h      int
	label     string
	format    gputypes.TextureFormat
	destroyed bool
}

func (t *fakeTexture) Width() int                     { return t.w }
func (t *fakeTexture) Height() int                    { return t.h }
func (t *fakeTexture) Format() gputypes.TextureFormat { return t.format }

func (t *fakeTexture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.dev.untrack(t.id, "texture:"+t.label)
}

type fakeTarget struct {
	dev       *fakeDevice
	id        int
	tex       Texture
	destroyed bool
}

func (t *fakeTarget) Texture() Texture { return t.tex }

func (t *fakeTarget) Bind() (Binding, error) {
	if t.dev.bindErr != nil {
		return nil, t.dev.bindErr
	}
	t.dev.binds++
	return &fakeBinding{dev: t.dev}, nil
}

func (t *fakeTarget) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.dev.untrack(t.id, "target")
}

type fakeBinding struct {
	dev     *fakeDevice
	unbound bool
}

func (b *fakeBinding) ReadPixels(dst []byte) error {
	if b.dev.readErr != nil {
		return b.dev.readErr
	}
	b.dev.reads++
	for i := range dst {
		dst[i] = byte(b.dev.reads)
	}
	return nil
}

func (b *fakeBinding) Unbind() {
	if b.unbound {
		return
	}
	b.unbound = true
	b.dev.unbinds++
}

type fakeBuffer struct {
	dev       *fakeDevice
	id        int
	data      []byte
	destroyed bool
}

func (b *fakeBuffer) Bytes() []byte { return b.data }
func (b *fakeBuffer) Len() int      { return len(b.data) }

func (b *fakeBuffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.dev.untrack(b.id, "buffer")
}

type fakeProgram struct {
	dev       *fakeDevice
	id        int
	name      string
	destroyed bool
}

func (p *fakeProgram) Draw(src, dst Texture) error {
	if err := p.dev.drawErr[p.name]; err != nil {
		return err
	}
	p.dev.draws = append(p.dev.draws, p.name)
	return nil
}

func (p *fakeProgram) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.dev.untrack(p.id, "program:"+p.name)
}

// fakeFilter is an instrumented primary filter. It reports a change on
// its first Prepare, or on every Prepare when always is set.
type fakeFilter struct {
	dev      *fakeDevice
	always   bool
	prepared bool

	prepares int
	draws    int
	releases int

	prepareErr error
	drawErr    error
}

func (f *fakeFilter) Prepare(Device) (bool, error) {
	f.prepares++
	if f.prepareErr != nil {
		return false, f.prepareErr
	}
	first := !f.prepared
	f.prepared = true
	return first || f.always, nil
}

func (f *fakeFilter) Draw(_ Device, src, dst Texture) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.draws++
	return nil
}

func (f *fakeFilter) Release() {
	f.releases++
	f.prepared = false
	if f.dev != nil {
		f.dev.destroys = append(f.dev.destroys, "filter")
	}
}

// recorder collects notifications.
type recorder struct {
	got []Notification
}

func (r *recorder) Notify(n Notification) { r.got = append(r.got, n) }

// kinds returns the notification type names in order.
func (r *recorder) kinds() []string {
	out := make([]string, 0, len(r.got))
	for _, n := range r.got {
		switch n.(type) {
		case RenderComplete:
			out = append(out, "RenderComplete")
		case Present:
			out = append(out, "Present")
		case PixelsReady:
			out = append(out, "PixelsReady")
		}
	}
	return out
}

// pixelsReady returns the PixelsReady notifications.
func (r *recorder) pixelsReady() []PixelsReady {
	var out []PixelsReady
	for _, n := range r.got {
		if p, ok := n.(PixelsReady); ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *recorder) reset() { r.got = nil }

// frame creates a source frame texture on dev.
func frame(dev *fakeDevice, w, h int, ts int64) Frame {
	tex, _ := dev.CreateTexture(TextureDescriptor{Label: "source", Width: w, Height: h})
	return Frame{Texture: tex, Timestamp: ts}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
