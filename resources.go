package framerender

import "fmt"

// destroyer is anything a resource set owns.
type destroyer interface {
	Destroy()
}

// owned is a single-owner slot. Replacing the value destroys the previous
// one; releasing an empty slot is a no-op.
type owned[T destroyer] struct {
	v     T
	valid bool
}

// get returns the held value and whether the slot is occupied.
func (o *owned[T]) get() (T, bool) {
	return o.v, o.valid
}

// set installs v and then destroys the value it replaces.
func (o *owned[T]) set(v T) {
	old, had := o.v, o.valid
	o.v, o.valid = v, true
	if had {
		old.Destroy()
	}
}

// release destroys the held value, if any, and empties the slot.
func (o *owned[T]) release() {
	if !o.valid {
		return
	}
	v := o.v
	var zero T
	o.v, o.valid = zero, false
	v.Destroy()
}

// resourceSet is everything the unit allocates on the device.
type resourceSet struct {
	primary    owned[Texture]
	conversion owned[Texture]
	offscreen  owned[RenderTarget]
	pixels     owned[PixelBuffer]
	scratch    []byte

	// width and height of the primary target.
	width, height int

	// conversion target geometry.
	convWidth, convHeight int
}

// empty reports whether nothing is allocated.
func (r *resourceSet) empty() bool {
	_, p := r.primary.get()
	_, c := r.conversion.get()
	_, o := r.offscreen.get()
	_, b := r.pixels.get()
	return !p && !c && !o && !b && r.scratch == nil
}

// conversionPair is a freshly allocated conversion target and the
// offscreen render target bound to it, not yet installed.
type conversionPair struct {
	tex    Texture
	target RenderTarget
	w, h   int
}

func (p *conversionPair) destroy() {
	if p == nil {
		return
	}
	p.target.Destroy()
	p.tex.Destroy()
}

// primaryPair is a freshly allocated primary target and staging buffer,
// not yet installed.
type primaryPair struct {
	tex    Texture
	pixels PixelBuffer
	w, h   int
}

func (p *primaryPair) destroy() {
	if p == nil {
		return
	}
	p.pixels.Destroy()
	p.tex.Destroy()
}

func allocConversion(dev Device, label string, width, height int) (*conversionPair, error) {
	w, h := ConversionSize(width, height)
	tex, err := dev.CreateTexture(TextureDescriptor{
		Label:  label + "-conversion",
		Width:  w,
		Height: h,
		Format: DefaultFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("framerender: create conversion target %dx%d: %w", w, h, err)
	}
	target, err := dev.CreateRenderTarget(tex)
	if err != nil {
		tex.Destroy()
		return nil, fmt.Errorf("framerender: create offscreen target: %w", err)
	}
	return &conversionPair{tex: tex, target: target, w: w, h: h}, nil
}

func allocPrimary(dev Device, label string, width, height int) (*primaryPair, error) {
	tex, err := dev.CreateTexture(TextureDescriptor{
		Label:  label + "-primary",
		Width:  width,
		Height: height,
		Format: DefaultFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("framerender: create primary target %dx%d: %w", width, height, err)
	}
	pixels, err := dev.CreatePixelBuffer(NV12Size(width, height))
	if err != nil {
		tex.Destroy()
		return nil, fmt.Errorf("framerender: create staging buffer (%d bytes): %w", NV12Size(width, height), err)
	}
	return &primaryPair{tex: tex, pixels: pixels, w: width, h: height}, nil
}

// ensureResources makes the resource set match a width x height frame.
//
// New resources are built before anything is installed, so a failed
// allocation leaves the previous set untouched.
func (u *Unit) ensureResources(width, height int) error {
	if u.filter == nil {
		return nil
	}

	changed, err := u.filter.Prepare(u.dev)
	if err != nil {
		return fmt.Errorf("framerender: prepare filter: %w", err)
	}
	if _, ok := u.res.primary.get(); !ok || u.primaryPending {
		changed = true
	}
	if u.opts.reallocOnResize && (width != u.res.width || height != u.res.height) {
		changed = true
	}
	// A failed allocation must not swallow the change signal, since the
	// filter reports it only once.
	u.primaryPending = changed

	var conv *conversionPair
	dropConversion := false
	if u.conv != nil {
		if _, err := u.conv.Prepare(u.dev); err != nil {
			return fmt.Errorf("framerender: prepare conversion filter: %w", err)
		}
		cw, ch := ConversionSize(width, height)
		switch {
		case cw == 0 || ch == 0:
			dropConversion = true
		case u.opts.reuseConversion && u.res.convWidth == cw && u.res.convHeight == ch:
			if _, ok := u.res.conversion.get(); !ok {
				conv, err = allocConversion(u.dev, u.opts.label, width, height)
			}
		default:
			conv, err = allocConversion(u.dev, u.opts.label, width, height)
		}
		if err != nil {
			return err
		}
		if cw > 0 && width%4 != 0 {
			Logger().Debug("framerender: width not a multiple of 4, NV12 rows truncated",
				"unit", u.opts.label, "width", width, "luma_per_row", cw*4)
		}
	}

	var prim *primaryPair
	if changed {
		prim, err = allocPrimary(u.dev, u.opts.label, width, height)
		if err != nil {
			conv.destroy()
			return err
		}
	}

	// Commit. The offscreen target goes first so it never outlives the
	// texture it is bound to.
	if conv != nil {
		u.res.offscreen.set(conv.target)
		u.res.conversion.set(conv.tex)
		u.res.convWidth, u.res.convHeight = conv.w, conv.h
		Logger().Debug("framerender: conversion target allocated",
			"unit", u.opts.label, "width", conv.w, "height", conv.h)
	}
	if dropConversion {
		u.res.offscreen.release()
		u.res.conversion.release()
		u.res.convWidth, u.res.convHeight = 0, 0
		Logger().Debug("framerender: frame too small for conversion",
			"unit", u.opts.label, "width", width, "height", height)
	}
	if prim != nil {
		u.res.primary.set(prim.tex)
		u.res.pixels.set(prim.pixels)
		u.res.width, u.res.height = prim.w, prim.h
		u.primaryPending = false
		Logger().Debug("framerender: primary target allocated",
			"unit", u.opts.label, "width", prim.w, "height", prim.h,
			"staging", prim.pixels.Len())
	}

	size := NV12Size(width, height)
	if u.res.scratch == nil || (u.opts.resizeScratch && len(u.res.scratch) != size) {
		u.res.scratch = make([]byte, size)
	}
	return nil
}
