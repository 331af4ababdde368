// Package framerender provides a per-frame GPU render unit for video
// pipelines.
//
// # Overview
//
// A Unit applies a pluggable image filter to an incoming frame texture,
// owns the GPU resources that filter needs and reads the rendered frame
// back into host memory as NV12 for non-GPU consumers such as encoders.
// The rendered texture is handed to the display compositor through a
// Present notification.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/framerender"
//	    "github.com/gogpu/framerender/backend"
//	    "github.com/gogpu/framerender/filter"
//	    _ "github.com/gogpu/framerender/backend/native"
//	)
//
//	b, err := backend.InitDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//	dev, _ := b.Device()
//
//	u := framerender.NewUnit(dev,
//	    framerender.WithFilter(filter.NewGrayscale()),
//	    framerender.WithNotifier(framerender.NotifierFunc(func(n framerender.Notification) {
//	        if p, ok := n.(framerender.PixelsReady); ok {
//	            sink.Write(p.Pixels)
//	        }
//	    })),
//	)
//	defer u.Release()
//
//	err = u.Handle(framerender.RenderFilterRequest{
//	    Frame: framerender.Frame{Texture: tex, Timestamp: pts},
//	})
//
// # Resources
//
// Resources are allocated on the first render request and sized from the
// frame:
//   - primary target: width x height RGBA, reallocated when the primary
//     filter reports a change
//   - conversion target: width/4 x height*3/2 RGBA holding the packed
//     NV12 planes, with an offscreen render target bound to it
//   - staging buffer: width*height*3/2 bytes
//   - scratch array: width*height*3/2 bytes, allocated once
//
// A failed allocation returns an error and keeps the previous resources.
//
// # Notifications
//
// Each rendered frame emits RenderComplete, then Present, then
// PixelsReady when readback succeeds. A failed readback drops the frame
// silently. PixelsReady.Timestamp is the timestamp of the frame that was
// rendered.
//
// # Threading
//
// A Unit is driven from the goroutine that owns its Device. Dispatcher
// serializes requests from other goroutines onto one locked OS thread.
package framerender
