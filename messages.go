package framerender

import "fmt"

// Request is an inbound message for a Unit. The set of requests is closed:
// PrepareRequest, RenderFilterRequest, ReadPixelsRequest, SetFilterRequest
// and ReleaseRequest.
type Request interface {
	isRequest()
}

// PrepareRequest is a lifecycle hook. Handling it does nothing.
type PrepareRequest struct{}

// RenderFilterRequest renders one frame through the primary filter and
// then attempts a pixel readback.
type RenderFilterRequest struct {
	Frame Frame
}

// ReadPixelsRequest attempts a pixel readback of the last rendered frame.
type ReadPixelsRequest struct{}

// SetFilterRequest replaces the primary filter. The unit takes ownership
// of Filter when the request succeeds.
type SetFilterRequest struct {
	Filter Filter
}

// ReleaseRequest tears the unit down.
type ReleaseRequest struct{}

func (PrepareRequest) isRequest()      {}
func (RenderFilterRequest) isRequest() {}
func (ReadPixelsRequest) isRequest()   {}
func (SetFilterRequest) isRequest()    {}
func (ReleaseRequest) isRequest()      {}

// Notification is an outbound message emitted by a Unit. The set is
// closed: RenderComplete, Present and PixelsReady.
type Notification interface {
	isNotification()
}

// RenderComplete reports that a new rendered frame exists. It says
// nothing about readback.
type RenderComplete struct{}

// Present hands the primary target to the display compositor.
type Present struct {
	Texture Texture
	Width   int
	Height  int
}

// PixelsReady carries the NV12 readback of the last rendered frame.
//
// Pixels aliases the unit's staging buffer. It is valid until the next
// request delivered to the unit; copy it to keep it longer.
type PixelsReady struct {
	Pixels    []byte
	Timestamp int64
}

func (RenderComplete) isNotification() {}
func (Present) isNotification()        {}
func (PixelsReady) isNotification()    {}

// Notifier receives notifications from a Unit. Notify is called on the
// goroutine driving the unit and must not call back into it.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Handle delivers one request to the unit.
//
// A RenderFilterRequest runs Render and, when a frame was actually
// rendered, ReadPixels. Readback failures never surface here.
func (u *Unit) Handle(req Request) error {
	switch r := req.(type) {
	case PrepareRequest:
		return nil
	case RenderFilterRequest:
		rendered, err := u.render(r.Frame)
		if err != nil || !rendered {
			return err
		}
		u.ReadPixels()
		return nil
	case ReadPixelsRequest:
		u.ReadPixels()
		return nil
	case SetFilterRequest:
		return u.SetFilter(r.Filter)
	case ReleaseRequest:
		u.Release()
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownRequest, req)
	}
}
