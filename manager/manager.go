package manager

import "github.com/lixenwraith/scape/event"

// Manager is a pluggable subsystem registered with the host
// Identity is the Name; a registry holds at most one manager per name
type Manager interface {
	// Name returns the unique identifier for this manager
	Name() string

	// ExtractDependencies releases everything the manager acquired from the host
	// Called before the manager leaves the active set; an error keeps it registered
	ExtractDependencies() error
}

// Initializer is implemented by managers needing the host at load time
// Typical use is subscribing to lifecycle batches
type Initializer interface {
	Init(h Host) error
}

// Dependent is implemented by managers that must outlive other managers
// Dependencies returns names of managers that must be unloaded after this one
type Dependent interface {
	Dependencies() []string
}

// Host is the view of the lifecycle host handed to managers
type Host interface {
	event.Source
	OnStart() *event.Batch[event.StartArgs]
	OnUpdate() *event.Batch[event.UpdateArgs]
	OnLoad() *event.Batch[event.LoadArgs]
	OnRender() *event.Batch[event.RenderArgs]
}
