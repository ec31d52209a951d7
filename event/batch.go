package event

import (
	"errors"
)

// ErrSealed is returned when subscribing to a Once batch that already fired
var ErrSealed = errors.New("event batch sealed")

// Handler is a subscriber callback
// A returned error aborts the remaining subscribers of the same fire
type Handler[A any] func(src Source, args A) error

// Subscription identifies a registered handler for later removal
// The zero value never matches a live subscription
type Subscription uint64

type subscriber[A any] struct {
	id Subscription
	fn Handler[A]
}

// Batch is an ordered multicast list of handlers for one lifecycle phase
// Not safe for concurrent use, all access is expected on the frame goroutine
type Batch[A any] struct {
	name   string
	kind   Kind
	subs   []subscriber[A]
	nextID Subscription
	sealed bool
}

// NewBatch creates an empty batch of the given kind
func NewBatch[A any](name string, kind Kind) *Batch[A] {
	return &Batch[A]{
		name: name,
		kind: kind,
	}
}

// Name returns the phase name used in diagnostics
func (b *Batch[A]) Name() string {
	return b.name
}

// Kind returns the cardinality of the batch
func (b *Batch[A]) Kind() Kind {
	return b.kind
}

// Sealed reports whether a Once batch has already fired
func (b *Batch[A]) Sealed() bool {
	return b.sealed
}

// Len returns the current patch size
func (b *Batch[A]) Len() int {
	return len(b.subs)
}

// Subscribe appends fn to the batch
// Nil handlers are ignored and return the zero Subscription
func (b *Batch[A]) Subscribe(fn Handler[A]) (Subscription, error) {
	if b.sealed {
		return 0, ErrSealed
	}
	if fn == nil {
		return 0, nil
	}
	b.nextID++
	b.subs = append(b.subs, subscriber[A]{id: b.nextID, fn: fn})
	return b.nextID, nil
}

// Unsubscribe removes the handler registered under id, preserving order of the rest
func (b *Batch[A]) Unsubscribe(id Subscription) bool {
	if id == 0 {
		return false
	}
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every subscriber without sealing
func (b *Batch[A]) Clear() {
	b.subs = nil
}

// Fire invokes the subscribers present at call time in subscription order
// Returns the patch size observed at fire time
// NextFrame batches are emptied afterwards, Once batches are sealed, both regardless of errors
func (b *Batch[A]) Fire(src Source, args A) (int, error) {
	if b.sealed {
		return 0, nil
	}

	// Snapshot so handlers can mutate the batch while it fires
	patch := make([]subscriber[A], len(b.subs))
	copy(patch, b.subs)

	var err error
	for _, s := range patch {
		if err = s.fn(src, args); err != nil {
			break
		}
	}

	switch b.kind {
	case NextFrame:
		b.subs = nil
	case Once:
		b.subs = nil
		b.sealed = true
	}

	return len(patch), err
}
