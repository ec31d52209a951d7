package event

import (
	"fmt"
	"time"
)

// Kind defines how a batch treats its subscriber list after firing
type Kind uint8

const (
	// Recurring batches keep their subscribers across frames
	Recurring Kind = iota
	// NextFrame batches are cleared after every fire, subscribers must re-register to run again
	NextFrame
	// Once batches fire a single time for the process lifetime and are sealed afterwards
	Once
)

func (k Kind) String() string {
	switch k {
	case Recurring:
		return "recurring"
	case NextFrame:
		return "next-frame"
	case Once:
		return "once"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Source identifies the object firing a batch
type Source interface {
	ID() string
}

// FrameTime is the timing snapshot handed to per-frame phases
// Updated by the frame clock before each tick
type FrameTime struct {
	// Now is the wall-clock time the tick was issued
	Now time.Time

	// Elapsed is the duration since the previous tick (fixed when the host uses a fixed timestep)
	Elapsed time.Duration

	// Total is the accumulated Elapsed since the clock started
	Total time.Duration

	// Frame is the tick counter, starting at 1
	Frame uint64
}

// StartArgs is passed to next-frame subscribers
type StartArgs struct {
	Info string
}

// UpdateArgs is passed to update subscribers every frame
type UpdateArgs struct {
	Time FrameTime
	Info string
}

// LoadArgs is passed to load subscribers when content becomes available
type LoadArgs struct {
	Info string
}

// RenderArgs is passed to render subscribers inside the renderer frame scope
type RenderArgs struct {
	Time FrameTime
	Info string
}
