package modkit

import (
	"net/http"

	"brushline/internal/modkit/httpkit"
	str "brushline/internal/platform/strings"
)

// Built is the resolved option set of a module
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler

	Subrouter func(httpkit.Router) httpkit.Router
	Register  func(httpkit.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.subrouter == nil {
		c.subrouter = func(r httpkit.Router) httpkit.Router { return r }
	}
	if c.register == nil {
		c.register = func(httpkit.Router) {}
	}
	return Built{
		Name:      c.name,
		Prefix:    c.prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Subrouter: c.subrouter,
		Register:  c.register,
	}
}

// Mount routes own under the prefix, behind the module middleware, then the
// registered extras
func (b Built) Mount(r httpkit.Router, own func(httpkit.Router)) {
	r.Route(str.MustPrefix(b.Prefix), func(rr httpkit.Router) {
		for _, mw := range b.Mw {
			rr.Use(mw)
		}
		rr = b.Subrouter(rr)
		own(rr)
		b.Register(rr)
	})
}
