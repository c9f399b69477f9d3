package soap

import (
	"context"
	"fmt"
	"sort"
)

// HandlerFunc implements one SOAP method. args already carries the caller's "ip".
type HandlerFunc func(ctx context.Context, args Args) (Map, error)

// Method is a registry entry together with its result policy.
type Method struct {
	Name    string
	Handler HandlerFunc
	// EmptyResultIsFault reports an empty result as a Server fault. Only methods
	// whose clients cannot cope with an empty body set it.
	EmptyResultIsFault bool
}

// Registry is the immutable method table built at startup.
type Registry struct {
	methods map[string]Method
}

// NewRegistry builds a registry. Names must be unique and handlers non-nil.
func NewRegistry(methods ...Method) (*Registry, error) {
	r := &Registry{methods: make(map[string]Method, len(methods))}
	for _, m := range methods {
		if m.Name == "" || m.Handler == nil {
			return nil, fmt.Errorf("soap: method %q has no name or handler", m.Name)
		}
		if _, dup := r.methods[m.Name]; dup {
			return nil, fmt.Errorf("soap: method %q registered twice", m.Name)
		}
		r.methods[m.Name] = m
	}
	return r, nil
}

// Lookup returns the method registered under name.
func (r *Registry) Lookup(name string) (Method, bool) {
	m, ok := r.methods[name]
	return m, ok
}

// Names lists registered methods in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
