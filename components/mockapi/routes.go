package mockapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-regform/pkg/client"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts the three API routes under basePath on mux and
// returns the registered patterns.
func RegisterRoutes(mux Mux, basePath string, backend client.Collaborators, fns ...OptionFn) ([]string, error) {
	if mux == nil {
		return nil, fmt.Errorf("mockapi: missing mux")
	}
	if backend == nil {
		return nil, fmt.Errorf("mockapi: missing backend")
	}
	opts := NewOptions(fns...)
	routes := []struct {
		path    string
		handler http.Handler
	}{
		{opts.OfferPath, OfferHandler(backend, opts)},
		{opts.RegistrationFormPath, FormHandler(backend, opts)},
		{opts.RegistrationResponsePath, ResponseHandler(backend, opts)},
	}
	patterns := make([]string, 0, len(routes))
	for _, route := range routes {
		pattern := mountPath(basePath, route.path)
		mux.Handle(pattern, route.handler)
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
