package mockapi

import (
	"net/http"

	"github.com/goliatone/go-regform/pkg/client"
)

// Component bundles a backend with its route configuration.
type Component struct {
	backend client.Collaborators
	opts    Options
}

// New constructs a component serving backend.
func New(backend client.Collaborators, fns ...OptionFn) *Component {
	return &Component{backend: backend, opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a mux serving all three routes at their configured paths.
func (c *Component) Handler() http.Handler {
	mux := http.NewServeMux()
	if c == nil || c.backend == nil {
		return mux
	}
	_, _ = c.RegisterRoutes(mux, "")
	return mux
}

// RegisterRoutes registers the component handlers under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) ([]string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath, nil)
	}
	opts := c.opts
	return RegisterRoutes(mux, basePath, c.backend, func(o *Options) { *o = opts })
}
