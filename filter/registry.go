package filter

import (
	"fmt"
	"sort"

	"github.com/gogpu/framerender"
	"github.com/gogpu/gpucontext"
)

// Filter names.
const (
	NameNormal    = "normal"
	NameGrayscale = "grayscale"
	NameInvert    = "invert"
	NameSepia     = "sepia"
)

// registry holds the built-in filter factories. NameNormal is the best
// choice when nothing is asked for.
var registry = gpucontext.NewRegistry[framerender.Filter](
	gpucontext.WithPriority(NameNormal),
)

func init() {
	Register(NameNormal, func() framerender.Filter { return NewNormal() })
	Register(NameGrayscale, func() framerender.Filter { return NewGrayscale() })
	Register(NameInvert, func() framerender.Filter { return NewInvert() })
	Register(NameSepia, func() framerender.Filter { return NewSepia() })
}

// Register adds a named filter factory, replacing any existing one.
func Register(name string, factory func() framerender.Filter) {
	registry.Register(name, factory)
}

// New returns a fresh instance of the named filter. An empty name means
// NameNormal.
func New(name string) (framerender.Filter, error) {
	if name == "" {
		return registry.Best(), nil
	}
	if !registry.Has(name) {
		return nil, fmt.Errorf("filter: unknown filter %q (available: %v)", name, Available())
	}
	return registry.Get(name), nil
}

// Available returns the registered filter names, sorted.
func Available() []string {
	names := registry.Available()
	sort.Strings(names)
	return names
}
