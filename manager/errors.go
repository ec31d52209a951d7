package manager

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadRejected matches loads of a manager already in the active set
	ErrLoadRejected = errors.New("manager load rejected")

	// ErrUnloadRejected matches unloads of a manager not in the active set
	ErrUnloadRejected = errors.New("manager unload rejected")

	// ErrDependencyExtraction matches unloads aborted by a failing ExtractDependencies
	ErrDependencyExtraction = errors.New("manager dependency extraction failed")
)

// LoadRejectedError reports a duplicate load
type LoadRejectedError struct {
	Name string
}

func (e LoadRejectedError) Error() string {
	return fmt.Sprintf("manager load rejected: %s already loaded", e.Name)
}

func (e LoadRejectedError) Is(target error) bool {
	return target == ErrLoadRejected
}

// UnloadRejectedError reports an unload of an unknown manager
type UnloadRejectedError struct {
	Name string
}

func (e UnloadRejectedError) Error() string {
	return fmt.Sprintf("manager unload rejected: %s not loaded", e.Name)
}

func (e UnloadRejectedError) Is(target error) bool {
	return target == ErrUnloadRejected
}

// DependencyExtractionError wraps the failure returned by ExtractDependencies
type DependencyExtractionError struct {
	Name string
	Err  error
}

func (e DependencyExtractionError) Error() string {
	return fmt.Sprintf("manager %s: failed to extract dependencies: %v", e.Name, e.Err)
}

func (e DependencyExtractionError) Is(target error) bool {
	return target == ErrDependencyExtraction
}

func (e DependencyExtractionError) Unwrap() error {
	return e.Err
}
