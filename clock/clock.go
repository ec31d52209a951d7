package clock

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/lixenwraith/scape/event"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

// DefaultTickRate is used when Options.TickRate is zero
const DefaultTickRate = 60

// ErrRunning is returned when Run is entered twice
var ErrRunning = errors.New("frame clock already running")

// Ticker is driven once per frame
// Done closing stops the clock after the current frame
type Ticker interface {
	Tick(ft event.FrameTime) error
	Done() <-chan struct{}
}

// Options configures a Scheduler
type Options struct {
	// TickRate is the number of frames per second
	TickRate int

	// FixedTimestep reports the nominal interval as elapsed time instead of wall time
	FixedTimestep bool

	// Clock is the time source; the real clock when nil
	Clock bclock.Clock

	Logger zerolog.Logger
	Status *status.Registry
}

// Scheduler drives a Ticker at a fixed rate
type Scheduler struct {
	clock    bclock.Clock
	interval time.Duration
	fixed    bool
	log      zerolog.Logger

	frames  atomic.Uint64
	running atomic.Bool

	// Cached metric pointers
	statTicks *atomic.Int64
	statLate  *atomic.Int64
	statFPS   *status.AtomicFloat
}

// New creates a scheduler from opts
func New(opts Options) *Scheduler {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.Clock == nil {
		opts.Clock = bclock.New()
	}
	if opts.Status == nil {
		opts.Status = status.NewRegistry()
	}

	return &Scheduler{
		clock:     opts.Clock,
		interval:  time.Second / time.Duration(opts.TickRate),
		fixed:     opts.FixedTimestep,
		log:       opts.Logger.With().Str("component", "clock").Logger(),
		statTicks: opts.Status.Ints.Get("clock.ticks"),
		statLate:  opts.Status.Ints.Get("clock.late"),
		statFPS:   opts.Status.Floats.Get("clock.fps"),
	}
}

// Interval returns the nominal frame duration
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Frames returns the number of frames delivered so far
func (s *Scheduler) Frames() uint64 {
	return s.frames.Load()
}

// Run ticks t until ctx is cancelled, t.Done is closed or a tick fails
// Returns nil on a requested exit and ctx.Err on cancellation
func (s *Scheduler) Run(ctx context.Context, t Ticker) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	start := s.clock.Now()
	last := start
	s.log.Info().
		Dur("interval", s.interval).
		Bool("fixed", s.fixed).
		Msg("frame clock started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Uint64("frames", s.frames.Load()).Msg("frame clock cancelled")
			return ctx.Err()
		case <-t.Done():
			s.log.Info().Uint64("frames", s.frames.Load()).Msg("frame clock stopped")
			return nil
		case now := <-ticker.C:
			ft := s.frameTime(start, last, now)
			last = now

			if err := t.Tick(ft); err != nil {
				s.log.Error().Err(err).Uint64("frame", ft.Frame).Msg("tick failed")
				return err
			}
		}
	}
}

func (s *Scheduler) frameTime(start, last, now time.Time) event.FrameTime {
	frame := s.frames.Add(1)
	s.statTicks.Add(1)

	elapsed := now.Sub(last)
	if elapsed > s.interval*2 {
		s.statLate.Add(1)
	}
	if elapsed > 0 {
		s.statFPS.Set(float64(time.Second) / float64(elapsed))
	}

	ft := event.FrameTime{
		Now:     now,
		Elapsed: elapsed,
		Total:   now.Sub(start),
		Frame:   frame,
	}
	if s.fixed {
		ft.Elapsed = s.interval
		ft.Total = s.interval * time.Duration(frame)
	}
	return ft
}
