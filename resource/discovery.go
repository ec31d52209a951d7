package resource

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Failure records a requirement skipped during discovery
type Failure struct {
	Identity Identity
	Consumer Consumer
	Err      error
}

// Report summarizes one discovery pass
type Report struct {
	// Loaded counts identities added to the tree by this pass
	Loaded int
	// Linked counts dependents appended to entries that were already loaded
	Linked int
	// Skipped lists the per-item load failures
	Skipped []Failure
}

// Discovery resolves every declared requirement of the universe against the tree
// Loads each identity at most once and records dependents for repeated references
type Discovery struct {
	tree     *Tree
	universe Universe
	loader   Loader
	log      zerolog.Logger
	running  atomic.Bool
}

// NewDiscovery creates a discovery pass over tree
func NewDiscovery(tree *Tree, universe Universe, loader Loader, log zerolog.Logger) *Discovery {
	return &Discovery{
		tree:     tree,
		universe: universe,
		loader:   loader,
		log:      log.With().Str("component", "discovery").Logger(),
	}
}

// Run performs the scan
// Per-item failures are logged and reported; loader errors other than missing content abort the pass
func (d *Discovery) Run() (Report, error) {
	if !d.running.CompareAndSwap(false, true) {
		return Report{}, ErrDiscoveryRunning
	}
	defer d.running.Store(false)

	var report Report

	for _, consumer := range d.universe.Consumers() {
		for _, req := range d.universe.Requirements(consumer) {
			for _, name := range req.Names {
				id := Identity{Name: name, Type: req.Type}
				if err := d.resolve(id, consumer, &report); err != nil {
					return report, err
				}
			}
		}
	}

	d.tree.Range(func(id Identity, e *Entry) bool {
		deps := make([]string, 0, len(e.dependents))
		for _, c := range e.dependents {
			deps = append(deps, string(c))
		}
		d.log.Debug().
			Strs("dependents", deps).
			Str("resource", id.Name).
			Stringer("type", id.Type).
			Msg("types loaded resource")
		return true
	})

	return report, nil
}

func (d *Discovery) resolve(id Identity, consumer Consumer, report *Report) error {
	if d.tree.Contains(id) {
		added, err := d.tree.AddDependent(id, consumer)
		if err != nil {
			return err
		}
		if added {
			report.Linked++
		}
		return nil
	}

	v, err := d.loader.Load(id)
	switch {
	case errors.Is(err, ErrContentNotFound):
		d.skip(report, id, consumer, err)
		return nil
	case err != nil:
		return fmt.Errorf("load %s for %s: %w", id, consumer, err)
	case isNil(v):
		d.skip(report, id, consumer, fmt.Errorf("load %s: loader returned nil: %w", id, ErrContentNotFound))
		return nil
	}

	if actual := reflect.TypeOf(v); id.Type == nil || !actual.AssignableTo(id.Type) {
		expected := "<nil>"
		if id.Type != nil {
			expected = id.Type.String()
		}
		d.skip(report, id, consumer, TypeMismatchError{Identity: id, Expected: expected, Actual: actual.String()})
		return nil
	}

	if err := d.tree.Add(id, consumer, v); err != nil {
		return err
	}
	report.Loaded++
	return nil
}

func (d *Discovery) skip(report *Report, id Identity, consumer Consumer, err error) {
	d.log.Error().
		Err(err).
		Str("resource", id.Name).
		Stringer("type", id.Type).
		Str("consumer", string(consumer)).
		Msg("resource load failed, requirement skipped")
	report.Skipped = append(report.Skipped, Failure{Identity: id, Consumer: consumer, Err: err})
}
