package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches lookups of identities that were never loaded
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateIdentity matches Add calls for identities already present
	ErrDuplicateIdentity = errors.New("duplicate resource identity")

	// ErrTypeMismatch matches values whose dynamic type does not fit the identity
	ErrTypeMismatch = errors.New("resource type mismatch")

	// ErrNilResource is returned when adding an entry without a value
	ErrNilResource = errors.New("nil resource")

	// ErrContentNotFound is returned by loaders when the named content does not exist
	// Discovery treats it as a per-item failure and skips the requirement
	ErrContentNotFound = errors.New("content not found")

	// ErrDiscoveryRunning is returned when a discovery pass is re-entered
	ErrDiscoveryRunning = errors.New("discovery pass already running")
)

// NotFoundError reports a lookup for an identity absent from the tree
type NotFoundError struct {
	Identity Identity
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Identity)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateIdentityError reports an Add for an identity already in the tree
type DuplicateIdentityError struct {
	Identity Identity
}

func (e DuplicateIdentityError) Error() string {
	return fmt.Sprintf("duplicate resource identity: %s", e.Identity)
}

func (e DuplicateIdentityError) Is(target error) bool {
	return target == ErrDuplicateIdentity
}

// TypeMismatchError reports a value whose dynamic type does not satisfy the identity type
type TypeMismatchError struct {
	Identity Identity
	Expected string
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("resource type mismatch for %s: expected=%s actual=%s",
		e.Identity, e.Expected, e.Actual)
}

func (e TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
