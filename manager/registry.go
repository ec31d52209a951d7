package manager

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// Registry is the set of active managers for one host
// Preserves load order; not safe for concurrent use
type Registry struct {
	host     Host
	log      zerolog.Logger
	managers map[string]Manager
	order    []string
}

// NewRegistry creates an empty registry bound to host
func NewRegistry(host Host, log zerolog.Logger) *Registry {
	return &Registry{
		host:     host,
		log:      log.With().Str("component", "managers").Logger(),
		managers: make(map[string]Manager),
	}
}

// Load adds m to the active set
// Duplicate names are rejected without touching the set
// An Initializer hook runs before insertion; its failure leaves m unregistered
func (r *Registry) Load(m Manager) error {
	name := m.Name()
	if _, exists := r.managers[name]; exists {
		r.log.Debug().Str("manager", name).Msg("manager load failed: already loaded")
		return LoadRejectedError{Name: name}
	}

	r.log.Debug().Str("manager", name).Msg("loading manager")

	if init, ok := m.(Initializer); ok {
		if err := init.Init(r.host); err != nil {
			err = fmt.Errorf("manager %s init failed: %w", name, err)
			r.log.Error().Err(err).Str("manager", name).Msg("manager load error")
			return err
		}
	}

	r.managers[name] = m
	r.order = append(r.order, name)

	r.log.Debug().Str("manager", name).Msg("manager was correctly loaded")
	return nil
}

// Unload removes m from the active set once it has extracted its dependencies
// On extraction failure m stays registered and a DependencyExtractionError is returned
func (r *Registry) Unload(m Manager) error {
	name := m.Name()
	current, exists := r.managers[name]
	if !exists {
		r.log.Debug().Str("manager", name).Msg("manager unload failed: not loaded")
		return UnloadRejectedError{Name: name}
	}

	r.log.Debug().Str("manager", name).Msg("unloading manager")

	if err := current.ExtractDependencies(); err != nil {
		extractErr := DependencyExtractionError{Name: name, Err: err}
		r.log.Error().Err(extractErr).Str("manager", name).Msg("manager unload error")
		return extractErr
	}

	delete(r.managers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.log.Debug().Str("manager", name).Msg("manager was correctly unloaded")
	return nil
}

// LoadAll loads each manager in order, a failure does not stop the rest
func (r *Registry) LoadAll(ms ...Manager) error {
	var errs error
	for _, m := range ms {
		errs = multierr.Append(errs, r.Load(m))
	}
	return errs
}

// UnloadAll unloads each manager in order, a failure does not stop the rest
func (r *Registry) UnloadAll(ms ...Manager) error {
	var errs error
	for _, m := range ms {
		errs = multierr.Append(errs, r.Unload(m))
	}
	return errs
}

// Drain unloads every active manager, dependents before their dependencies
// Falls back to reverse load order when the dependency graph is unusable
func (r *Registry) Drain() error {
	order, err := r.topologicalSort()
	if err != nil {
		r.log.Warn().Err(err).Msg("manager dependency order unavailable, unloading in reverse load order")
		order = make([]string, len(r.order))
		copy(order, r.order)
	}

	ms := make([]Manager, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		ms = append(ms, r.managers[order[i]])
	}
	return r.UnloadAll(ms...)
}

// Contains reports whether a manager with m's name is active
func (r *Registry) Contains(m Manager) bool {
	_, ok := r.managers[m.Name()]
	return ok
}

// Get returns the active manager registered under name
func (r *Registry) Get(name string) (Manager, bool) {
	m, ok := r.managers[name]
	return m, ok
}

// Managers returns the active managers in load order
func (r *Registry) Managers() []Manager {
	out := make([]Manager, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.managers[name])
	}
	return out
}

// Len returns the number of active managers
func (r *Registry) Len() int {
	return len(r.order)
}

// Clear forgets every manager without extracting dependencies
func (r *Registry) Clear() {
	clear(r.managers)
	r.order = nil
}

// topologicalSort orders active managers so dependencies come first (Kahn's algorithm)
// Dependencies on managers that are not loaded are ignored
func (r *Registry) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(r.order))
	dependents := make(map[string][]string) // dep -> managers that depend on it

	for _, name := range r.order {
		inDegree[name] = 0
	}

	for _, name := range r.order {
		d, ok := r.managers[name].(Dependent)
		if !ok {
			continue
		}
		for _, dep := range d.Dependencies() {
			if _, exists := r.managers[dep]; !exists || dep == name {
				continue
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	// Seed in load order for a stable result
	var queue []string
	for _, name := range r.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]string, 0, len(r.order))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(r.order) {
		return nil, fmt.Errorf("circular dependency detected in managers")
	}

	return result, nil
}
