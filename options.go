package framerender

// UnitOption configures a Unit during creation.
// Use functional options to customize Unit behavior.
//
// Example:
//
//	// Default unit: passthrough primary filter, NV12 conversion filter
//	u := framerender.NewUnit(dev)
//
//	// Primary filter and a notifier wired at construction
//	u := framerender.NewUnit(dev,
//	    framerender.WithFilter(filter.NewNormal()),
//	    framerender.WithNotifier(sink),
//	)
type UnitOption func(*unitOptions)

// unitOptions holds optional configuration for Unit creation.
type unitOptions struct {
	filter          Filter
	filterSet       bool
	conversion      Filter
	noConversion    bool
	notifier        Notifier
	label           string
	reuseConversion bool
	resizeScratch   bool
	reallocOnResize bool
}

// defaultOptions returns the default unit options.
func defaultOptions() unitOptions {
	return unitOptions{
		filter:     nil, // NewUnit installs NewPassthroughFilter() unless set
		conversion: nil, // NewUnit installs NewConversionFilter() if nil
		notifier:   nil, // notifications are discarded if nil
		label:      "framerender",
	}
}

// WithFilter installs the primary filter at construction instead of
// NewPassthroughFilter. WithFilter(nil) starts the unit without one, so
// render requests are no-ops until SetFilter.
func WithFilter(f Filter) UnitOption {
	return func(o *unitOptions) {
		o.filter = f
		o.filterSet = true
	}
}

// WithConversionFilter replaces the default NV12 conversion filter used on
// the readback path. The filter must write the packed width/4 x height*3/2
// layout described by ConversionSize.
func WithConversionFilter(f Filter) UnitOption {
	return func(o *unitOptions) {
		o.conversion = f
		o.noConversion = f == nil
	}
}

// WithoutConversion disables the conversion path. Readback then always
// uses the direct read of the offscreen target, which only exists while a
// conversion filter is installed, so PixelsReady is never emitted.
func WithoutConversion() UnitOption {
	return func(o *unitOptions) {
		o.conversion = nil
		o.noConversion = true
	}
}

// WithNotifier sets the receiver of RenderComplete, Present and
// PixelsReady notifications.
//
// Example:
//
//	u := framerender.NewUnit(dev, framerender.WithNotifier(
//	    framerender.NotifierFunc(func(n framerender.Notification) {
//	        if p, ok := n.(framerender.PixelsReady); ok {
//	            encoder.Push(p.Pixels, p.Timestamp)
//	        }
//	    }),
//	))
func WithNotifier(n Notifier) UnitOption {
	return func(o *unitOptions) {
		o.notifier = n
	}
}

// WithLabel sets the prefix of GPU debug labels and the "unit" log
// attribute.
func WithLabel(label string) UnitOption {
	return func(o *unitOptions) {
		if label != "" {
			o.label = label
		}
	}
}

// WithReuseConversionTarget keeps the conversion target and offscreen
// render target across requests whose dimensions did not change. By
// default both are recreated on every render request.
func WithReuseConversionTarget(reuse bool) UnitOption {
	return func(o *unitOptions) {
		o.reuseConversion = reuse
	}
}

// WithScratchResize makes the scratch pixel array follow the staging
// buffer size. By default the scratch array is allocated once, for the
// first frame, and CopyPixels reports ErrScratchTooSmall after the frame
// grows.
func WithScratchResize(resize bool) UnitOption {
	return func(o *unitOptions) {
		o.resizeScratch = resize
	}
}

// WithReallocateOnResize reallocates the primary target and staging
// buffer whenever the frame dimensions differ from the current primary
// target, in addition to when the primary filter reports a change.
func WithReallocateOnResize(realloc bool) UnitOption {
	return func(o *unitOptions) {
		o.reallocOnResize = realloc
	}
}
