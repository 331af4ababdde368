package framerender

import (
	"context"
	"runtime"
	"sync"
)

// Dispatcher delivers requests to a Unit one at a time, in submission
// order, on a single goroutine.
//
// GPU APIs bind their context to an OS thread, so the dispatcher goroutine
// locks its thread for its whole life. Create the Unit's Device inside
// Init when the device must be made current on that thread.
type Dispatcher struct {
	reqs     chan envelope
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
}

type envelope struct {
	req  Request
	errc chan error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	queue    int
	teardown func()
}

// WithQueueSize sets how many requests may wait before Submit blocks.
// The default is 8.
func WithQueueSize(n int) DispatcherOption {
	return func(o *dispatcherOptions) {
		if n >= 0 {
			o.queue = n
		}
	}
}

// WithTeardown runs fn on the dispatcher goroutine after the unit is
// released, or after init fails. Resources created in init, such as the
// device and the frame textures, belong there.
func WithTeardown(fn func()) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.teardown = fn
	}
}

// NewDispatcher starts a dispatcher. init runs first on the dispatcher
// goroutine and returns the unit to drive; if it fails, the dispatcher
// is closed and the error is returned.
//
// Example:
//
//	d, err := framerender.NewDispatcher(func() (*framerender.Unit, error) {
//	    dev, err := b.Device()
//	    if err != nil {
//	        return nil, err
//	    }
//	    return framerender.NewUnit(dev, framerender.WithFilter(f)), nil
//	})
func NewDispatcher(init func() (*Unit, error), opts ...DispatcherOption) (*Dispatcher, error) {
	o := dispatcherOptions{queue: 8}
	for _, opt := range opts {
		opt(&o)
	}
	d := &Dispatcher{
		reqs:     make(chan envelope, o.queue),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	ready := make(chan error, 1)
	go d.run(init, o.teardown, ready)
	if err := <-ready; err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) run(init func() (*Unit, error), teardown func(), ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(d.finished)
	if teardown != nil {
		defer teardown()
	}

	u, err := init()
	ready <- err
	if err != nil {
		return
	}
	for {
		select {
		case e := <-d.reqs:
			e.errc <- u.Handle(e.req)
		case <-d.done:
			// Drain what was accepted before Close, then release.
			for {
				select {
				case e := <-d.reqs:
					e.errc <- u.Handle(e.req)
				default:
					u.Release()
					return
				}
			}
		}
	}
}

// Submit delivers req and waits for the unit to handle it. It returns
// the error from Unit.Handle, ctx.Err() if ctx ends first, or
// ErrDispatcherClosed after Close.
//
// A request whose wait was cancelled may still be handled.
func (d *Dispatcher) Submit(ctx context.Context, req Request) error {
	e := envelope{req: req, errc: make(chan error, 1)}
	select {
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}
	select {
	case d.reqs <- e:
	case <-d.done:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-e.errc:
		return err
	case <-d.finished:
		// The request may have been handled just before the goroutine
		// exited.
		select {
		case err := <-e.errc:
			return err
		default:
			return ErrDispatcherClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the unit on the dispatcher goroutine, runs the teardown
// set by WithTeardown and waits for the goroutine to exit. Requests already queued are handled first. Close is
// idempotent.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
	<-d.finished
}
