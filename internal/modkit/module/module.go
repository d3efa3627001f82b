// Package module defines the contract every API module satisfies
package module

import (
	phttp "brushline/internal/platform/net/http"
)

// Module mounts routes and exports ports for cross-module lookups
// kept apart from modkit so a module can import its own ports type without a cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

// MountAll registers every module's ports under its name, then mounts the routes
// ports go first so a handler may look up a sibling mounted after it
func MountAll(r phttp.Router, mods ...Module) {
	for _, m := range mods {
		if p := m.Ports(); p != nil {
			Register(m.Name(), p)
		}
	}
	for _, m := range mods {
		m.MountRoutes(r)
	}
}
