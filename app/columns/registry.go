package columns

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidColumn     = errors.New("invalid column")
	ErrDuplicateColumn   = errors.New("duplicate column key")
	ErrMissingFormatter  = errors.New("column has no formatter")
	ErrColorizerAndClass = errors.New("column has both a colorizer and a static class")
)

// Registry is an ordered set of column definitions keyed by column key.
// Registration order is preserved and determines the order of categories in
// the add-column picker.
type Registry struct {
	mu         sync.RWMutex
	columns    []*Column
	byKey      map[string]*Column
	categories []string
}

// Category groups the columns that share a category label.
type Category struct {
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byKey: make(map[string]*Column),
	}
}

// Register adds a column definition.
// The definition is copied; later changes to col have no effect.
func (r *Registry) Register(col Column) error {
	if err := col.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[col.Key]; exists {
		return fmt.Errorf("column %q: %w", col.Key, ErrDuplicateColumn)
	}

	c := col
	r.columns = append(r.columns, &c)
	r.byKey[c.Key] = &c

	found := false
	for _, name := range r.categories {
		if name == c.Category {
			found = true
			break
		}
	}
	if !found {
		r.categories = append(r.categories, c.Category)
	}
	return nil
}

// Get returns the column registered under key
func (r *Registry) Get(key string) (*Column, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byKey[key]
	return c, ok
}

// Has reports whether key is registered
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Columns returns all columns in registration order
func (r *Registry) Columns() []*Column {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Column, len(r.columns))
	copy(out, r.columns)
	return out
}

// Keys returns all column keys in registration order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.columns))
	for i, c := range r.columns {
		out[i] = c.Key
	}
	return out
}

// Filterable returns the columns flagged filterable
func (r *Registry) Filterable() []*Column {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Column
	for _, c := range r.columns {
		if c.Filterable {
			out = append(out, c)
		}
	}
	return out
}

// ByCategory returns the columns grouped by category, in the order each
// category was first registered.
func (r *Registry) ByCategory() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]Category, len(r.categories))
	index := make(map[string]int, len(r.categories))
	for i, name := range r.categories {
		groups[i].Name = name
		index[name] = i
	}
	for _, c := range r.columns {
		i := index[c.Category]
		groups[i].Columns = append(groups[i].Columns, c)
	}
	return groups
}

// Len returns the number of registered columns
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.columns)
}
