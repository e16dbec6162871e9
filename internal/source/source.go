// Package source loads raw snapshots of the books from wherever they live:
// CSV masters on disk, the local snapshot cache, or the bookkeeping system
// itself.
package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
)

// Source produces one raw snapshot per Load.
type Source interface {
	Load(ctx context.Context) (model.RawSnapshot, []audit.Issue, error)
	Name() string
}

// Registry holds named sources.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Panics on duplicate name.
func (r *Registry) Register(s Source) {
	key := strings.ToLower(s.Name())
	if _, ok := r.sources[key]; ok {
		panic("duplicate source name: " + key)
	}
	r.sources[key] = s
}

// Get returns the source registered under name, or nil.
func (r *Registry) Get(name string) Source {
	return r.sources[strings.ToLower(strings.TrimSpace(name))]
}

// Lookup is Get with an error naming the known sources.
func (r *Registry) Lookup(name string) (Source, error) {
	if s := r.Get(name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("unknown source %q (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists the registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for n := range r.sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
