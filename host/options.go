package host

import (
	"io"

	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

// Input reports the platform exit signal (back button, escape key)
type Input interface {
	ExitRequested() bool
}

// Renderer brackets the render phase of each frame
type Renderer interface {
	BeginFrame()
	EndFrame()
}

// Presentation is the window-level state configured at construction
type Presentation struct {
	// CursorVisible shows the pointer/cursor over the host surface
	CursorVisible bool

	// FixedTimestep makes the frame clock report a constant elapsed time per tick
	FixedTimestep bool

	// ContentRoot is the directory the content loader resolves names against
	ContentRoot string
}

// DefaultPresentation returns the state applied on construction and Reset
func DefaultPresentation() Presentation {
	return Presentation{
		CursorVisible: true,
		FixedTimestep: false,
		ContentRoot:   "content",
	}
}

// Options holds the collaborators of a host
// Nil collaborators are replaced with no-op implementations
type Options struct {
	// Presentation overrides the defaults when non-nil
	Presentation *Presentation

	Input    Input
	Renderer Renderer
	Logger   zerolog.Logger

	// Diagnostics is closed last during Shutdown (typically the log file)
	Diagnostics io.Closer

	// Status receives cycle and patch-size metrics; a private registry is used when nil
	Status *status.Registry
}

type nopInput struct{}

func (nopInput) ExitRequested() bool { return false }

type nopRenderer struct{}

func (nopRenderer) BeginFrame() {}
func (nopRenderer) EndFrame()   {}
