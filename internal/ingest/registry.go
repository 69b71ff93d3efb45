package ingest

import (
	"fmt"

	"vittrack/internal/core"
)

// Registry is the closed set of valid expense categories, loaded once at
// startup. Lookups are exact name matches; misses fall back to the default
// category. The registry is immutable after construction, so concurrent
// reads need no locking.
type Registry struct {
	byName     map[string]core.Category
	categories []core.Category
	fallback   core.Category
}

// NewRegistry builds a registry from the seeded categories. A missing
// default category is a configuration defect and refuses to start: the
// pipeline must never drop an expense for lack of a category.
func NewRegistry(categories []core.Category) (*Registry, error) {
	r := &Registry{
		byName:     make(map[string]core.Category, len(categories)),
		categories: categories,
	}
	for _, c := range categories {
		r.byName[c.Name] = c
	}

	fallback, ok := r.byName[core.DefaultCategoryName]
	if !ok {
		return nil, fmt.Errorf("category registry integrity: default category %q is missing", core.DefaultCategoryName)
	}
	r.fallback = fallback

	return r, nil
}

// Resolve maps a free-text category name to a registry entry. Unknown names
// resolve to the default category; the second return reports whether that
// fallback was taken.
func (r *Registry) Resolve(name string) (core.Category, bool) {
	if c, ok := r.byName[name]; ok {
		return c, false
	}
	return r.fallback, true
}

// Names returns the category names in seeded order, for prompt building.
func (r *Registry) Names() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}
