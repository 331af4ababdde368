// Package filter provides primary filters for framerender units.
//
// Every filter runs a framerender.Kernel: a WGSL full-screen shader for
// GPU devices and an equivalent CPU function for the software device.
//   - Normal: passthrough
//   - Matrix: 4x5 color matrix (Grayscale, Invert, Sepia and friends)
//   - Toggle: switches a wrapped filter on and off
//
// Filters report a change from Prepare on first use and after any
// configuration change, which makes the owning unit reallocate its
// primary target.
//
// Filters are looked up by name through New:
//
//	f, err := filter.New("grayscale")
package filter
