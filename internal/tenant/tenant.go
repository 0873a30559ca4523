package tenant

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNoTenantSelected = errors.New("no garage selected")
	ErrInvalidTenant    = errors.New("invalid garage")
)

// Selection identifies the active garage database. It is set by a prior
// request and read-only to the question pipeline.
type Selection struct {
	Name string `json:"garage_name"`
	ID   int    `json:"garage_id"`
}

// Registry is the enumerated set of known garages. Garage ids outside the
// registry are rejected before any SQL generation happens.
type Registry struct {
	byID map[int]string
}

// NewRegistry parses a comma-separated "id:database_name" spec, for example
// "1:11motors_data,3:flag_data".
func NewRegistry(spec string) (*Registry, error) {
	registry := &Registry{byID: map[int]string{}}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("garage registry spec is empty")
	}

	for _, entry := range strings.Split(spec, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid garage entry %q: expected id:database_name", entry)
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid garage id in entry %q: %w", entry, err)
		}
		name := strings.TrimSpace(parts[1])
		if name == "" {
			return nil, fmt.Errorf("invalid garage entry %q: empty database name", entry)
		}
		if _, exists := registry.byID[id]; exists {
			return nil, fmt.Errorf("duplicate garage id %d", id)
		}
		registry.byID[id] = name
	}
	return registry, nil
}

func (r *Registry) DatabaseName(id int) (string, bool) {
	name, ok := r.byID[id]
	return name, ok
}

// Resolve validates a selection against the registry. A name mismatch for a
// known id is corrected to the registered database name.
func (r *Registry) Resolve(selection Selection) (Selection, error) {
	name, ok := r.byID[selection.ID]
	if !ok {
		return Selection{}, fmt.Errorf("%w: id %d", ErrInvalidTenant, selection.ID)
	}
	return Selection{Name: name, ID: selection.ID}, nil
}

func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
