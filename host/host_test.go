package host

import (
	"errors"
	"testing"

	"github.com/lixenwraith/scape/event"
	"github.com/lixenwraith/scape/manager"
	"github.com/lixenwraith/scape/resource"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

// recorder captures the order of frame calls across collaborators and subscribers
type recorder struct {
	calls []string
	exit  bool
}

func (r *recorder) ExitRequested() bool { return r.exit }
func (r *recorder) BeginFrame()         { r.calls = append(r.calls, "begin") }
func (r *recorder) EndFrame()           { r.calls = append(r.calls, "end") }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type testManager struct {
	name      string
	extracted int
	initErr   error
}

func (m *testManager) Name() string               { return m.name }
func (m *testManager) ExtractDependencies() error { m.extracted++; return nil }
func (m *testManager) Init(h manager.Host) error  { return m.initErr }

func newTestHost(t *testing.T, f *Factory, rec *recorder, ms ...manager.Manager) *Host {
	t.Helper()
	h, err := f.New(Options{Input: rec, Renderer: rec, Logger: zerolog.Nop()}, ms...)
	if err != nil {
		t.Fatalf("host construction failed: %v", err)
	}
	return h
}

func TestFactory_DuplicateInstance(t *testing.T) {
	f := NewFactory()
	h := newTestHost(t, f, &recorder{})

	if _, err := f.New(Options{Logger: zerolog.Nop()}); !errors.Is(err, ErrDuplicateInstance) {
		t.Fatalf("expected ErrDuplicateInstance, got %v", err)
	}

	live, ok := f.Live()
	if !ok || live != h {
		t.Error("first host should remain live")
	}
}

func TestFactory_ShutdownReleasesSlot(t *testing.T) {
	f := NewFactory()
	h := newTestHost(t, f, &recorder{})

	if err := h.Shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if _, ok := f.Live(); ok {
		t.Fatal("slot should be empty after shutdown")
	}

	h2 := newTestHost(t, f, &recorder{})
	if h2.ID() == h.ID() {
		t.Error("new host should get a fresh id")
	}
}

func TestHost_ResetReconstructs(t *testing.T) {
	f := NewFactory()
	m := &testManager{name: "m"}
	custom := Presentation{CursorVisible: false, FixedTimestep: true, ContentRoot: "assets"}
	h, err := f.New(Options{Logger: zerolog.Nop(), Presentation: &custom}, m)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	if err := h.Reset(); err != nil {
		t.Fatalf("reset should succeed, got %v", err)
	}
	if live, _ := f.Live(); live != h {
		t.Error("reset host should hold the slot again")
	}
	if len(h.Managers()) != 0 {
		t.Error("reset should clear managers")
	}
	if m.extracted != 0 {
		t.Error("reset clears without extraction")
	}
	if h.Presentation() != custom {
		t.Errorf("construction logic should re-apply configured presentation, got %+v", h.Presentation())
	}

	if _, err := f.New(Options{Logger: zerolog.Nop()}); !errors.Is(err, ErrDuplicateInstance) {
		t.Errorf("expected ErrDuplicateInstance after reset, got %v", err)
	}
}

func TestHost_DefaultPresentation(t *testing.T) {
	h := newTestHost(t, NewFactory(), &recorder{})
	p := h.Presentation()
	if !p.CursorVisible || p.FixedTimestep || p.ContentRoot != "content" {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestHost_InitialManagerFailureReleasesSlot(t *testing.T) {
	f := NewFactory()
	good := &testManager{name: "good"}
	bad := &testManager{name: "bad", initErr: errors.New("no device")}

	if _, err := f.New(Options{Logger: zerolog.Nop()}, good, bad); err == nil {
		t.Fatal("expected construction error")
	}
	if _, ok := f.Live(); ok {
		t.Error("failed construction must not hold the slot")
	}
	if good.extracted != 1 {
		t.Errorf("manager loaded before the failure extracted %d times, want 1", good.extracted)
	}
	if bad.extracted != 0 {
		t.Errorf("failed manager extracted %d times, want 0", bad.extracted)
	}
}

func TestHost_TickPhaseOrder(t *testing.T) {
	rec := &recorder{}
	h := newTestHost(t, NewFactory(), rec)

	_, _ = h.OnNextFrame(func(event.Source, event.StartArgs) error {
		rec.calls = append(rec.calls, "start")
		return nil
	})
	_, _ = h.OnEveryFrame(func(event.Source, event.UpdateArgs) error {
		rec.calls = append(rec.calls, "update")
		return nil
	})
	_, _ = h.OnRender().Subscribe(func(src event.Source, args event.RenderArgs) error {
		if src.ID() != h.ID() {
			t.Errorf("render source should be the host")
		}
		rec.calls = append(rec.calls, "render")
		return nil
	})

	for i := 0; i < 2; i++ {
		if err := h.Tick(event.FrameTime{Frame: uint64(i + 1)}); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}

	want := []string{
		"start", "update", "begin", "render", "end",
		"update", "begin", "render", "end",
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", rec.calls, want)
		}
	}

	reg := h.Status()
	if reg.Ints.Get("host.start.cycles").Load() != 2 || reg.Ints.Get("host.render.cycles").Load() != 2 {
		t.Errorf("cycle counters not updated: %v", reg.Snapshot())
	}
	if reg.Ints.Get("host.update.patch").Load() != 1 {
		t.Errorf("update patch size should be 1")
	}
}

func TestHost_TickPassesFrameTime(t *testing.T) {
	h := newTestHost(t, NewFactory(), &recorder{})
	var got event.FrameTime
	_, _ = h.OnEveryFrame(func(_ event.Source, args event.UpdateArgs) error {
		got = args.Time
		return nil
	})

	ft := event.FrameTime{Frame: 7}
	if err := h.Tick(ft); err != nil {
		t.Fatal(err)
	}
	if got.Frame != 7 {
		t.Errorf("update should receive frame time, got %+v", got)
	}
}

func TestHost_SubscriberErrorAbortsFrame(t *testing.T) {
	rec := &recorder{}
	h := newTestHost(t, NewFactory(), rec)
	boom := errors.New("boom")

	_, _ = h.OnRender().Subscribe(func(event.Source, event.RenderArgs) error { return boom })
	_, _ = h.OnRender().Subscribe(func(event.Source, event.RenderArgs) error {
		rec.calls = append(rec.calls, "second")
		return nil
	})

	err := h.Tick(event.FrameTime{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error to propagate, got %v", err)
	}
	if len(rec.calls) != 2 || rec.calls[0] != "begin" || rec.calls[1] != "end" {
		t.Errorf("renderer scope must close and later subscribers skip, got %v", rec.calls)
	}

	rec.calls = nil
	_, _ = h.OnEveryFrame(func(event.Source, event.UpdateArgs) error { return boom })
	if err := h.Tick(event.FrameTime{}); !errors.Is(err, boom) {
		t.Fatalf("expected update error, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("render must be skipped after update failure, got %v", rec.calls)
	}
}

func TestHost_ExitSignal(t *testing.T) {
	rec := &recorder{}
	h := newTestHost(t, NewFactory(), rec)

	if err := h.Tick(event.FrameTime{}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-h.Done():
		t.Fatal("exit should not be requested yet")
	default:
	}

	rec.exit = true
	if err := h.Tick(event.FrameTime{}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-h.Done():
	default:
		t.Fatal("exit signal should close Done")
	}

	// Repeated requests are safe
	h.RequestExit()
}

func TestHost_LoadContentOnce(t *testing.T) {
	h := newTestHost(t, NewFactory(), &recorder{})
	var calls int
	var info string
	_, _ = h.OnLoad().Subscribe(func(_ event.Source, args event.LoadArgs) error {
		calls++
		info = args.Info
		return nil
	})

	if err := h.LoadContent(); err != nil {
		t.Fatal(err)
	}
	if err := h.LoadContent(); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("load subscriber invoked %d times", calls)
	}
	if info != "Load process | Patch size 1" {
		t.Errorf("unexpected load info %q", info)
	}
	if _, err := h.OnLoad().Subscribe(func(event.Source, event.LoadArgs) error { return nil }); !errors.Is(err, event.ErrSealed) {
		t.Errorf("expected sealed load batch, got %v", err)
	}
}

func TestHost_Initialize(t *testing.T) {
	h := newTestHost(t, NewFactory(), &recorder{})
	if err := h.Initialize(); err != nil {
		t.Fatal(err)
	}
	if h.OnStart().Len() != 1 {
		t.Fatalf("expected the first-frame handler")
	}
	_ = h.Tick(event.FrameTime{})
	if h.OnStart().Len() != 0 {
		t.Error("first-frame handler should not survive the tick")
	}
}

func TestHost_ShutdownUnloadsAndCloses(t *testing.T) {
	f := NewFactory()
	a := &testManager{name: "a"}
	b := &testManager{name: "b"}
	var closed int
	h, err := f.New(Options{
		Logger:      zerolog.Nop(),
		Diagnostics: closerFunc(func() error { closed++; return nil }),
		Status:      status.NewRegistry(),
	}, a, b)
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if a.extracted != 1 || b.extracted != 1 {
		t.Errorf("managers should extract once: a=%d b=%d", a.extracted, b.extracted)
	}
	if closed != 1 {
		t.Errorf("diagnostics should close once, got %d", closed)
	}
	if h.Status().Ints.Get("host.managers").Load() != 0 {
		t.Error("manager gauge should be zero after shutdown")
	}

	if err := h.Shutdown(); err != nil {
		t.Errorf("second shutdown should be a no-op, got %v", err)
	}
	if closed != 1 {
		t.Errorf("diagnostics closed again")
	}
	if err := h.Tick(event.FrameTime{}); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown, got %v", err)
	}
}

func TestHost_ManagerDelegation(t *testing.T) {
	h := newTestHost(t, NewFactory(), &recorder{})
	m := &testManager{name: "m"}

	if err := h.LoadManager(m); err != nil {
		t.Fatal(err)
	}
	if err := h.LoadManager(m); !errors.Is(err, manager.ErrLoadRejected) {
		t.Errorf("expected ErrLoadRejected, got %v", err)
	}
	if err := h.UnloadManager(m); err != nil {
		t.Fatal(err)
	}
	if err := h.UnloadManager(m); !errors.Is(err, manager.ErrUnloadRejected) {
		t.Errorf("expected ErrUnloadRejected, got %v", err)
	}
}

type texture struct{ Name string }

func TestHost_ResourceDiscoveryOnLoad(t *testing.T) {
	tree := resource.NewTree()
	var loads int
	loader := resource.LoaderFunc(func(id resource.Identity) (any, error) {
		loads++
		if id.Name == "missing" {
			return nil, resource.ErrContentNotFound
		}
		return &texture{Name: id.Name}, nil
	})
	universe := &fixedUniverse{
		order: []resource.Consumer{"A", "B"},
		reqs: map[resource.Consumer][]resource.Requirement{
			"A": {resource.Require[*texture]("tex1", "missing")},
			"B": {resource.Require[*texture]("tex1")},
		},
	}

	rm := resource.NewManager(tree, universe, loader, zerolog.Nop())
	h := newTestHost(t, NewFactory(), &recorder{}, rm)

	if err := h.LoadContent(); err != nil {
		t.Fatal(err)
	}

	e, err := tree.Entry(resource.IdentityOf[*texture]("tex1"))
	if err != nil {
		t.Fatalf("tex1 not loaded: %v", err)
	}
	deps := e.Dependents()
	if len(deps) != 2 || deps[0] != "A" || deps[1] != "B" {
		t.Errorf("unexpected dependents %v", deps)
	}
	if loads != 2 {
		t.Errorf("expected tex1 and missing to be requested once each, got %d loads", loads)
	}

	// Reset leaves the tree alone
	if err := h.Reset(); err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 1 {
		t.Errorf("reset must not touch the resource tree")
	}
}

type fixedUniverse struct {
	order []resource.Consumer
	reqs  map[resource.Consumer][]resource.Requirement
}

func (u *fixedUniverse) Consumers() []resource.Consumer { return u.order }
func (u *fixedUniverse) Requirements(c resource.Consumer) []resource.Requirement {
	return u.reqs[c]
}
