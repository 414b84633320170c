package source

import (
	"fmt"

	"LookupBot/internal/ports"
)

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]ports.Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src ports.Source) {
	if r.sources == nil {
		r.sources = map[string]ports.Source{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// ResolveAll resolves names in order, which is the fallback priority.
func (r *Registry) ResolveAll(names []string) ([]ports.Source, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	resolved := make([]ports.Source, 0, len(names))
	for _, name := range names {
		src, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, src)
	}
	return resolved, nil
}

// Names lists registered source names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}
