package resource

import (
	"fmt"
	"reflect"
)

// Tree is the identity-keyed load-once cache of resources
// Entries are never replaced or evicted; the tree only grows until Reset
// Not safe for concurrent use
type Tree struct {
	entries map[Identity]*Entry
}

// NewTree creates an empty dependency tree
func NewTree() *Tree {
	return &Tree{
		entries: make(map[Identity]*Entry),
	}
}

// Contains reports whether id has been loaded
func (t *Tree) Contains(id Identity) bool {
	_, ok := t.entries[id]
	return ok
}

// Entry returns the entry stored under id or a NotFoundError
func (t *Tree) Entry(id Identity) (*Entry, error) {
	e, ok := t.entries[id]
	if !ok {
		return nil, NotFoundError{Identity: id}
	}
	return e, nil
}

// Add inserts a new entry with consumer as its first dependent
// The value's dynamic type must be assignable to id.Type
func (t *Tree) Add(id Identity, consumer Consumer, res any) error {
	if _, ok := t.entries[id]; ok {
		return DuplicateIdentityError{Identity: id}
	}
	if isNil(res) {
		return fmt.Errorf("add %s: %w", id, ErrNilResource)
	}
	if err := checkType(id, res); err != nil {
		return err
	}
	t.entries[id] = newEntry(consumer, res)
	return nil
}

// AddDependent records consumer as a dependent of an existing entry
// Returns true if the consumer was not already recorded
func (t *Tree) AddDependent(id Identity, consumer Consumer) (bool, error) {
	e, ok := t.entries[id]
	if !ok {
		return false, NotFoundError{Identity: id}
	}
	return e.addDependent(consumer), nil
}

// Len returns the number of loaded identities
func (t *Tree) Len() int {
	return len(t.entries)
}

// Identities returns all loaded identities in sorted order
func (t *Tree) Identities() []Identity {
	ids := make([]Identity, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sortIdentities(ids)
	return ids
}

// Range calls fn for every entry in identity order until fn returns false
func (t *Tree) Range(fn func(id Identity, e *Entry) bool) {
	for _, id := range t.Identities() {
		if !fn(id, t.entries[id]) {
			return
		}
	}
}

// Reset drops every entry
func (t *Tree) Reset() {
	clear(t.entries)
}

// Get returns a defensive copy of the resource stored under (name, T)
// Mutating the returned value never affects the cached instance
func Get[T any](t *Tree, name string) (T, error) {
	var zero T
	id := IdentityOf[T](name)

	e, err := t.Entry(id)
	if err != nil {
		return zero, err
	}

	v, ok := e.resource.(T)
	if !ok {
		return zero, TypeMismatchError{
			Identity: id,
			Expected: id.Type.String(),
			Actual:   fmt.Sprintf("%T", e.resource),
		}
	}
	return DeepCopy(v), nil
}

// isNil also catches typed nils stored in an interface
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

func checkType(id Identity, res any) error {
	if id.Type == nil {
		return fmt.Errorf("add %s: identity has no type", id.Name)
	}
	actual := reflect.TypeOf(res)
	if !actual.AssignableTo(id.Type) {
		return TypeMismatchError{
			Identity: id,
			Expected: id.Type.String(),
			Actual:   actual.String(),
		}
	}
	return nil
}
