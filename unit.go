package framerender

import "fmt"

// State is the lifecycle state of a Unit.
type State int

const (
	// StateUninitialized is the state of a zero Unit. Use NewUnit.
	StateUninitialized State = iota

	// StateReady accepts render requests, filter swaps and dimension
	// changes.
	StateReady

	// StateReleased is terminal. GPU-touching operations fail with
	// ErrReleased.
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateReleased:
		return "Released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Unit renders frames through a pluggable filter and reads the result
// back as NV12.
//
// A Unit owns every GPU resource it allocates: the primary target, the
// conversion target, the offscreen render target bound to it, the pixel
// staging buffer and a host scratch array. Resources are allocated lazily
// on the first render request and sized from the frame.
//
// Unit is NOT safe for concurrent use. All methods must be called on the
// goroutine that owns the device; use a Dispatcher to serialize requests
// coming from elsewhere.
type Unit struct {
	dev      Device
	opts     unitOptions
	notifier Notifier

	filter Filter
	conv   Filter

	res            resourceSet
	primaryPending bool
	timestamp      int64
	state          State
}

// NewUnit creates a unit rendering on dev.
//
// The unit presents frames through NewPassthroughFilter unless WithFilter
// is given, and reads back through NewConversionFilter unless
// WithoutConversion or WithConversionFilter is given.
func NewUnit(dev Device, opts ...UnitOption) *Unit {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.filterSet {
		o.filter = NewPassthroughFilter()
	}
	conv := o.conversion
	if conv == nil && !o.noConversion {
		conv = NewConversionFilter()
	}
	return &Unit{
		dev:      dev,
		opts:     o,
		notifier: o.notifier,
		filter:   o.filter,
		conv:     conv,
		state:    StateReady,
	}
}

// State returns the lifecycle state.
func (u *Unit) State() State {
	return u.state
}

// Filter returns the installed primary filter, or nil after SetFilter(nil)
// or WithFilter(nil).
func (u *Unit) Filter() Filter {
	return u.filter
}

// Timestamp returns the timestamp of the most recently rendered frame. A
// request that fails to render leaves it unchanged.
func (u *Unit) Timestamp() int64 {
	return u.timestamp
}

// PrimaryTarget returns the primary render target, or nil before the
// first render.
func (u *Unit) PrimaryTarget() Texture {
	t, _ := u.res.primary.get()
	return t
}

// ConversionTarget returns the NV12 conversion target, or nil when none
// is allocated.
func (u *Unit) ConversionTarget() Texture {
	t, _ := u.res.conversion.get()
	return t
}

// StagingSize returns the pixel staging buffer size in bytes, or 0 when
// none is allocated.
func (u *Unit) StagingSize() int {
	if b, ok := u.res.pixels.get(); ok {
		return b.Len()
	}
	return 0
}

// ScratchSize returns the scratch pixel array size in bytes.
func (u *Unit) ScratchSize() int {
	return len(u.res.scratch)
}

func (u *Unit) checkState() error {
	switch u.state {
	case StateReady:
		return nil
	case StateReleased:
		return ErrReleased
	default:
		return fmt.Errorf("framerender: unit %s", u.state)
	}
}

// SetFilter replaces the primary filter, releasing the previous one. The
// unit takes ownership of f; nil uninstalls the filter. The next render
// request prepares f and reallocates if it reports a change.
func (u *Unit) SetFilter(f Filter) error {
	if err := u.checkState(); err != nil {
		return err
	}
	if old := u.filter; old != nil && old != f {
		old.Release()
	}
	u.filter = f
	return nil
}

// Render draws frame through the primary filter into the primary target,
// then emits RenderComplete and Present.
//
// Without a primary filter Render does nothing and returns nil. An
// allocation failure is returned and leaves the previous resources in
// place. Render does not read pixels back; see ReadPixels and Handle.
func (u *Unit) Render(frame Frame) error {
	_, err := u.render(frame)
	return err
}

func (u *Unit) render(frame Frame) (bool, error) {
	if err := u.checkState(); err != nil {
		return false, err
	}
	if u.filter == nil {
		return false, nil
	}
	if frame.Texture == nil {
		return false, ErrNilFrame
	}
	w, h := frame.Width(), frame.Height()
	if w <= 0 || h <= 0 {
		return false, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	if err := u.ensureResources(w, h); err != nil {
		return false, err
	}

	dst, _ := u.res.primary.get()
	u.dev.SetViewport(w, h)
	if err := u.filter.Draw(u.dev, frame.Texture, dst); err != nil {
		return false, fmt.Errorf("framerender: draw filter: %w", err)
	}
	u.timestamp = frame.Timestamp

	u.notify(RenderComplete{})
	u.notify(Present{Texture: dst, Width: u.res.width, Height: u.res.height})
	return true, nil
}

// ReadPixels reads the primary target back into the staging buffer and
// emits PixelsReady with the timestamp of the last rendered frame.
//
// The conversion filter draws into the offscreen target first; if that
// path fails, the bound target is read directly. When both reads fail the
// frame is dropped: nothing is emitted and ReadPixels returns false.
func (u *Unit) ReadPixels() bool {
	if u.state != StateReady {
		return false
	}
	target, ok := u.res.offscreen.get()
	if !ok {
		Logger().Debug("framerender: readback dropped, no offscreen target", "unit", u.opts.label)
		return false
	}
	pixels, ok := u.res.pixels.get()
	if !ok {
		Logger().Debug("framerender: readback dropped, no staging buffer", "unit", u.opts.label)
		return false
	}

	if !u.readBound(target, pixels) {
		return false
	}
	u.notify(PixelsReady{Pixels: pixels.Bytes(), Timestamp: u.timestamp})
	return true
}

// readBound fills pixels with the target bound for the whole read. The
// binding is released before it returns.
func (u *Unit) readBound(target RenderTarget, pixels PixelBuffer) bool {
	binding, err := target.Bind()
	if err != nil {
		Logger().Debug("framerender: readback dropped, bind failed", "unit", u.opts.label, "err", err)
		return false
	}
	defer binding.Unbind()

	if conv, ok := u.res.conversion.get(); ok && u.conv != nil {
		err := u.readConverted(binding, conv, pixels)
		if err == nil {
			return true
		}
		Logger().Debug("framerender: conversion readback failed", "unit", u.opts.label, "err", err)
	}
	if err := binding.ReadPixels(pixels.Bytes()); err != nil {
		Logger().Debug("framerender: readback dropped", "unit", u.opts.label, "err", err)
		return false
	}
	return true
}

func (u *Unit) readConverted(b Binding, conv Texture, pixels PixelBuffer) error {
	src, _ := u.res.primary.get()
	u.dev.SetViewport(conv.Width(), conv.Height())
	if err := u.conv.Draw(u.dev, src, conv); err != nil {
		return err
	}
	return b.ReadPixels(pixels.Bytes())
}

// CopyPixels copies the staging buffer into the scratch array and returns
// the scratch array. The result is reused by the next call.
//
// The scratch array is sized for the first rendered frame unless
// WithScratchResize is set, so CopyPixels fails with ErrScratchTooSmall
// after the frame grows.
func (u *Unit) CopyPixels() ([]byte, error) {
	if err := u.checkState(); err != nil {
		return nil, err
	}
	pixels, ok := u.res.pixels.get()
	if !ok {
		return nil, ErrNoPixels
	}
	if len(u.res.scratch) < pixels.Len() {
		return nil, fmt.Errorf("%w: %d < %d", ErrScratchTooSmall, len(u.res.scratch), pixels.Len())
	}
	n := copy(u.res.scratch, pixels.Bytes())
	return u.res.scratch[:n], nil
}

// Release frees everything the unit owns, in order: conversion filter,
// primary filter, scratch array, staging buffer, conversion target,
// primary target, offscreen render target. Calling Release again is a
// no-op.
func (u *Unit) Release() {
	if u.state == StateReleased {
		return
	}
	if u.conv != nil {
		u.conv.Release()
		u.conv = nil
	}
	if u.filter != nil {
		u.filter.Release()
		u.filter = nil
	}
	u.res.scratch = nil
	u.res.pixels.release()
	u.res.conversion.release()
	u.res.primary.release()
	u.res.offscreen.release()
	u.res.width, u.res.height = 0, 0
	u.res.convWidth, u.res.convHeight = 0, 0
	u.primaryPending = false
	u.state = StateReleased
	Logger().Info("framerender: unit released", "unit", u.opts.label)
}

func (u *Unit) notify(n Notification) {
	if u.notifier != nil {
		u.notifier.Notify(n)
	}
}
