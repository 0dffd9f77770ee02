// Package stories holds the per-domain story configurations: the quick filter
// presets, default columns and sort that parameterize the shared table.
package stories

import (
	"errors"
	"fmt"

	"observatory/app/columns"
	"observatory/app/interfaces"
)

var (
	ErrUnknownStory = errors.New("unknown story")
	ErrInvalidStory = errors.New("invalid story")
)

// AllFilterID is the id of the quick filter every story starts with
const AllFilterID = "all"

// QuickFilter is one single-click filter preset
type QuickFilter struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Logic Logic  `json:"-"`
}

// Story is the configuration of one analysis domain
type Story struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Endpoint is the backend story id served under /api/stories/:id
	Endpoint string `json:"endpoint"`

	QuickFilters     []QuickFilter         `json:"quickFilters"`
	DefaultColumns   []string              `json:"defaultColumns"`
	DefaultSort      interfaces.SortConfig `json:"defaultSort"`
	FilterBarColumns []string              `json:"filterBarColumns"`
	PrimaryMetric    string                `json:"primaryMetric"`
}

// QuickFilter returns the preset with the given id
func (s *Story) QuickFilter(id string) (QuickFilter, bool) {
	for _, qf := range s.QuickFilters {
		if qf.ID == id {
			return qf, true
		}
	}
	return QuickFilter{}, false
}

// Validate checks the story against a column registry
func (s *Story) Validate(cols *columns.Registry) error {
	if s.ID == "" {
		return fmt.Errorf("story has no id: %w", ErrInvalidStory)
	}
	if len(s.QuickFilters) == 0 || s.QuickFilters[0].ID != AllFilterID || s.QuickFilters[0].Logic != nil {
		return fmt.Errorf("story %q must start with the %q quick filter: %w", s.ID, AllFilterID, ErrInvalidStory)
	}
	if len(s.DefaultColumns) == 0 {
		return fmt.Errorf("story %q has no default columns: %w", s.ID, ErrInvalidStory)
	}

	seen := make(map[string]bool, len(s.QuickFilters))
	for _, qf := range s.QuickFilters {
		if seen[qf.ID] {
			return fmt.Errorf("story %q: duplicate quick filter %q: %w", s.ID, qf.ID, ErrInvalidStory)
		}
		seen[qf.ID] = true
		for _, field := range logicFields(qf.Logic) {
			if !cols.Has(field) {
				return fmt.Errorf("story %q: quick filter %q references unknown column %q: %w", s.ID, qf.ID, field, ErrInvalidStory)
			}
		}
	}

	check := func(what string, keys ...string) error {
		for _, k := range keys {
			if !cols.Has(k) {
				return fmt.Errorf("story %q: %s references unknown column %q: %w", s.ID, what, k, ErrInvalidStory)
			}
		}
		return nil
	}
	if err := check("default columns", s.DefaultColumns...); err != nil {
		return err
	}
	if err := check("filter bar", s.FilterBarColumns...); err != nil {
		return err
	}
	if s.DefaultSort.Key != "" {
		if err := check("default sort", s.DefaultSort.Key); err != nil {
			return err
		}
	}
	if s.PrimaryMetric != "" {
		if err := check("primary metric", s.PrimaryMetric); err != nil {
			return err
		}
	}
	return nil
}

func logicFields(l Logic) []string {
	switch t := l.(type) {
	case Predicate:
		return []string{t.Field}
	case Extremum:
		return []string{t.Field}
	case Compound:
		out := make([]string, len(t.Filters))
		for i, p := range t.Filters {
			out[i] = p.Field
		}
		return out
	}
	return nil
}

// Registry is an ordered set of stories keyed by id
type Registry struct {
	stories []*Story
	byID    map[string]*Story
}

// NewRegistry creates a registry from stories, rejecting duplicate ids
func NewRegistry(list ...Story) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Story, len(list))}
	for i := range list {
		s := list[i]
		if _, exists := r.byID[s.ID]; exists {
			return nil, fmt.Errorf("duplicate story %q: %w", s.ID, ErrInvalidStory)
		}
		r.stories = append(r.stories, &s)
		r.byID[s.ID] = &s
	}
	return r, nil
}

// Get returns the story with the given id
func (r *Registry) Get(id string) (*Story, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("story %q: %w", id, ErrUnknownStory)
	}
	return s, nil
}

// List returns all stories in registration order
func (r *Registry) List() []*Story {
	out := make([]*Story, len(r.stories))
	copy(out, r.stories)
	return out
}

// Validate checks every story against a column registry
func (r *Registry) Validate(cols *columns.Registry) error {
	for _, s := range r.stories {
		if err := s.Validate(cols); err != nil {
			return err
		}
	}
	return nil
}
