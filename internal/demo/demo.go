package demo

import (
	"sort"

	"github.com/vango-dev/rcanvas/pkg/server"
)

// Factory creates one painter per connection.
type Factory func() server.Painter

var registry = map[string]Factory{
	"bounce": func() server.Painter { return NewBounce() },
	"sketch": func() server.Painter { return NewSketch() },
	"spiral": func() server.Painter { return NewSpiral() },
}

// DefaultName is the painter served when none is selected.
const DefaultName = "bounce"

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the registered painter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
