package host

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/lixenwraith/scape/event"
	"github.com/lixenwraith/scape/manager"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// ErrShutdown is returned by frame operations after Shutdown
var ErrShutdown = errors.New("lifecycle host shut down")

// Host is the single frame-driven coordination point
// It owns the manager registry and the four lifecycle batches
// All methods except Done and RequestExit must run on the frame goroutine
type Host struct {
	factory *Factory
	id      string
	log     zerolog.Logger
	opts    Options

	presentation Presentation
	input        Input
	renderer     Renderer
	managers     *manager.Registry

	start  *event.Batch[event.StartArgs]
	update *event.Batch[event.UpdateArgs]
	load   *event.Batch[event.LoadArgs]
	render *event.Batch[event.RenderArgs]

	done     chan struct{}
	exitOnce sync.Once
	closed   bool

	// Cached metric pointers
	statFrames       *atomic.Int64
	statStartCycles  *atomic.Int64
	statStartPatch   *atomic.Int64
	statUpdateCycles *atomic.Int64
	statUpdatePatch  *atomic.Int64
	statRenderCycles *atomic.Int64
	statRenderPatch  *atomic.Int64
	statManagers     *atomic.Int64
	statExit         *atomic.Bool
}

// New constructs a host owned by f
// Fails with ErrDuplicateInstance while another host from f is live
// Initial managers are loaded in order; a failure releases the slot
func (f *Factory) New(opts Options, managers ...manager.Manager) (*Host, error) {
	if opts.Input == nil {
		opts.Input = nopInput{}
	}
	if opts.Renderer == nil {
		opts.Renderer = nopRenderer{}
	}
	if opts.Status == nil {
		opts.Status = status.NewRegistry()
	}

	id := uuid.NewString()
	h := &Host{
		factory:  f,
		id:       id,
		log:      opts.Logger.With().Str("host", id).Logger(),
		opts:     opts,
		input:    opts.Input,
		renderer: opts.Renderer,
		start:    event.NewBatch[event.StartArgs]("start", event.NextFrame),
		update:   event.NewBatch[event.UpdateArgs]("update", event.Recurring),
		load:     event.NewBatch[event.LoadArgs]("load", event.Once),
		render:   event.NewBatch[event.RenderArgs]("render", event.Recurring),
		done:     make(chan struct{}),
	}
	h.cacheMetrics(opts.Status)

	if err := h.construct(); err != nil {
		return nil, err
	}

	h.managers = manager.NewRegistry(h, h.log)
	if err := h.LoadManagers(managers...); err != nil {
		// Managers loaded before the failure already hold host subscriptions
		err = multierr.Append(err, h.managers.Drain())
		f.release(h)
		return nil, fmt.Errorf("load initial managers: %w", err)
	}

	return h, nil
}

// construct claims the factory slot and applies default presentation
func (h *Host) construct() error {
	h.log.Info().Msg("constructing host")

	if err := h.factory.claim(h); err != nil {
		h.log.Error().Err(err).Msg("singleton claim failed")
		return err
	}
	h.log.Debug().Msg("singleton slot claimed")

	h.presentation = DefaultPresentation()
	if h.opts.Presentation != nil {
		h.presentation = *h.opts.Presentation
	}
	return nil
}

func (h *Host) cacheMetrics(reg *status.Registry) {
	h.statFrames = reg.Ints.Get("host.frames")
	h.statStartCycles = reg.Ints.Get("host.start.cycles")
	h.statStartPatch = reg.Ints.Get("host.start.patch")
	h.statUpdateCycles = reg.Ints.Get("host.update.cycles")
	h.statUpdatePatch = reg.Ints.Get("host.update.patch")
	h.statRenderCycles = reg.Ints.Get("host.render.cycles")
	h.statRenderPatch = reg.Ints.Get("host.render.patch")
	h.statManagers = reg.Ints.Get("host.managers")
	h.statExit = reg.Bools.Get("host.exit")
}

// ID returns the instance identifier used as the batch source
func (h *Host) ID() string {
	return h.id
}

// Presentation returns the active presentation state
func (h *Host) Presentation() Presentation {
	return h.presentation
}

// Status returns the metrics registry the host writes to
func (h *Host) Status() *status.Registry {
	return h.opts.Status
}

// OnStart returns the next-frame batch
func (h *Host) OnStart() *event.Batch[event.StartArgs] { return h.start }

// OnUpdate returns the every-frame update batch
func (h *Host) OnUpdate() *event.Batch[event.UpdateArgs] { return h.update }

// OnLoad returns the one-shot content load batch
func (h *Host) OnLoad() *event.Batch[event.LoadArgs] { return h.load }

// OnRender returns the every-frame render batch
func (h *Host) OnRender() *event.Batch[event.RenderArgs] { return h.render }

// OnNextFrame registers fn for the next tick only
func (h *Host) OnNextFrame(fn event.Handler[event.StartArgs]) (event.Subscription, error) {
	return h.start.Subscribe(fn)
}

// OnEveryFrame registers fn for every tick's update phase
func (h *Host) OnEveryFrame(fn event.Handler[event.UpdateArgs]) (event.Subscription, error) {
	return h.update.Subscribe(fn)
}

// Initialize registers the first-frame confirmation
// Call once before the frame clock starts
func (h *Host) Initialize() error {
	h.log.Info().Msg("initializing")
	_, err := h.start.Subscribe(func(event.Source, event.StartArgs) error {
		h.log.Info().Msg("load success")
		return nil
	})
	return err
}

// Tick runs one frame: exit poll, start, update, then render inside the renderer scope
// A failing subscriber aborts its phase and the rest of the frame
func (h *Host) Tick(ft event.FrameTime) error {
	if h.closed {
		return ErrShutdown
	}
	h.statFrames.Add(1)

	if h.input.ExitRequested() {
		h.RequestExit()
	}

	n, err := h.start.Fire(h, event.StartArgs{})
	h.logCycle("start", h.statStartCycles, h.statStartPatch, n)
	if err != nil {
		return h.phaseError("start", err)
	}

	n, err = h.update.Fire(h, event.UpdateArgs{Time: ft})
	h.logCycle("update", h.statUpdateCycles, h.statUpdatePatch, n)
	if err != nil {
		return h.phaseError("update", err)
	}

	n, err = h.draw(ft)
	h.logCycle("render", h.statRenderCycles, h.statRenderPatch, n)
	if err != nil {
		return h.phaseError("render", err)
	}

	return nil
}

func (h *Host) draw(ft event.FrameTime) (int, error) {
	h.renderer.BeginFrame()
	defer h.renderer.EndFrame()
	return h.render.Fire(h, event.RenderArgs{Time: ft})
}

func (h *Host) logCycle(phase string, cycles, patch *atomic.Int64, size int) {
	cycle := cycles.Add(1) - 1
	patch.Store(int64(size))
	h.log.Trace().
		Str("phase", phase).
		Int64("cycle", cycle).
		Int("patch", size).
		Msg("cycle")
}

func (h *Host) phaseError(phase string, err error) error {
	err = fmt.Errorf("%s phase: %w", phase, err)
	h.log.Error().Err(err).Msg("subscriber failed")
	return err
}

// LoadContent fires the load batch once
// Later calls are no-ops since the batch is sealed after the first fire
func (h *Host) LoadContent() error {
	if h.closed {
		return ErrShutdown
	}
	if h.load.Sealed() {
		h.log.Debug().Msg("content already loaded")
		return nil
	}

	h.log.Info().Msg("loading content")
	info := fmt.Sprintf("Load process | Patch size %d", h.load.Len())
	if _, err := h.load.Fire(h, event.LoadArgs{Info: info}); err != nil {
		return h.phaseError("load", err)
	}
	return nil
}

// RequestExit asks the frame clock to stop; safe from any goroutine
func (h *Host) RequestExit() {
	h.exitOnce.Do(func() {
		h.statExit.Store(true)
		h.log.Info().Msg("exit requested")
		close(h.done)
	})
}

// Done is closed once an exit has been requested
func (h *Host) Done() <-chan struct{} {
	return h.done
}

// LoadManager adds m to the active set
func (h *Host) LoadManager(m manager.Manager) error {
	err := h.managers.Load(m)
	h.statManagers.Store(int64(h.managers.Len()))
	return err
}

// UnloadManager removes m once it extracted its dependencies
func (h *Host) UnloadManager(m manager.Manager) error {
	err := h.managers.Unload(m)
	h.statManagers.Store(int64(h.managers.Len()))
	return err
}

// LoadManagers loads each manager independently
func (h *Host) LoadManagers(ms ...manager.Manager) error {
	err := h.managers.LoadAll(ms...)
	h.statManagers.Store(int64(h.managers.Len()))
	return err
}

// UnloadManagers unloads each manager independently
func (h *Host) UnloadManagers(ms ...manager.Manager) error {
	err := h.managers.UnloadAll(ms...)
	h.statManagers.Store(int64(h.managers.Len()))
	return err
}

// Managers returns the active managers in load order
func (h *Host) Managers() []manager.Manager {
	return h.managers.Managers()
}

// Reset recycles the host without a process restart
// Presentation returns to defaults and the manager set is cleared without extraction
// Batches and any resource tree are left untouched
func (h *Host) Reset() error {
	if h.closed {
		return ErrShutdown
	}
	h.factory.release(h)
	h.presentation = Presentation{}

	if err := h.construct(); err != nil {
		return err
	}
	h.managers.Clear()
	h.statManagers.Store(0)
	return nil
}

// Shutdown unloads every manager, closes diagnostics and frees the factory slot
// Blocks until cleanup completes; subsequent calls are no-ops
func (h *Host) Shutdown() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.log.Info().Msg("shutting down")

	errs := h.managers.Drain()
	h.statManagers.Store(int64(h.managers.Len()))
	if errs != nil {
		h.log.Error().Err(errs).Msg("manager unload errors during shutdown")
	}

	h.RequestExit()
	h.log.Info().Msg("host shut down")

	if h.opts.Diagnostics != nil {
		errs = multierr.Append(errs, h.opts.Diagnostics.Close())
	}
	h.factory.release(h)
	return errs
}
