package resource

// Entry is a loaded resource and the consumers depending on it
// Owned by Tree; callers only get read access
type Entry struct {
	resource   any
	dependents []Consumer
	index      map[Consumer]struct{}
}

func newEntry(consumer Consumer, res any) *Entry {
	e := &Entry{
		resource: res,
		index:    make(map[Consumer]struct{}, 1),
	}
	e.addDependent(consumer)
	return e
}

// Resource returns the stored value
// The reference is shared; use Get for a defensive copy
func (e *Entry) Resource() any {
	return e.resource
}

// Dependents returns the consumers in first-dependency order
func (e *Entry) Dependents() []Consumer {
	out := make([]Consumer, len(e.dependents))
	copy(out, e.dependents)
	return out
}

// DependsOn reports whether consumer is recorded as a dependent
func (e *Entry) DependsOn(consumer Consumer) bool {
	_, ok := e.index[consumer]
	return ok
}

// addDependent records consumer once, returns false if already present
func (e *Entry) addDependent(consumer Consumer) bool {
	if _, ok := e.index[consumer]; ok {
		return false
	}
	e.index[consumer] = struct{}{}
	e.dependents = append(e.dependents, consumer)
	return true
}
