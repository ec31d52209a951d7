package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen, *status.Registry) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	reg := status.NewRegistry()
	term, err := New(sim, zerolog.Nop(), reg)
	if err != nil {
		t.Fatal(err)
	}
	if err := term.Init(false); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	sim.SetSize(20, 5)
	term.updateSize()
	t.Cleanup(term.Fini)
	return term, sim, reg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestTerminal_EscapeRequestsExit(t *testing.T) {
	term, sim, _ := newSimTerminal(t)

	if term.ExitRequested() {
		t.Fatal("exit should not be requested initially")
	}
	sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	waitFor(t, term.ExitRequested)
}

func TestTerminal_CtrlCRequestsExit(t *testing.T) {
	term, sim, _ := newSimTerminal(t)
	sim.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	waitFor(t, term.ExitRequested)
}

func TestTerminal_KeysForwarded(t *testing.T) {
	term, sim, reg := newSimTerminal(t)
	sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)

	select {
	case ev := <-term.Keys():
		if ev.Rune() != 'x' {
			t.Errorf("unexpected rune %q", ev.Rune())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("key not forwarded")
	}
	if term.ExitRequested() {
		t.Error("regular keys must not request exit")
	}
	if reg.Ints.Get("terminal.keys").Load() != 1 {
		t.Error("key metric not updated")
	}
}

func TestTerminal_DrawText(t *testing.T) {
	term, sim, _ := newSimTerminal(t)

	term.BeginFrame()
	n := term.DrawText(17, 1, "hello", tcell.StyleDefault)
	term.DrawText(0, 9, "offscreen", tcell.StyleDefault)
	term.EndFrame()

	if n != 3 {
		t.Errorf("expected clipping to 3 cells, got %d", n)
	}
	for i, want := range "hel" {
		r, _, _, _ := sim.GetContent(17+i, 1)
		if r != want {
			t.Errorf("cell %d = %q, want %q", 17+i, r, want)
		}
	}

	term.BeginFrame()
	term.EndFrame()
	if r, _, _, _ := sim.GetContent(17, 1); r != ' ' {
		t.Errorf("begin frame should clear, got %q", r)
	}
}

func TestTerminal_DrawLines(t *testing.T) {
	term, sim, _ := newSimTerminal(t)
	term.DrawLines(0, 0, []string{"ab", "cd"}, tcell.StyleDefault)
	term.EndFrame()

	if r, _, _, _ := sim.GetContent(1, 1); r != 'd' {
		t.Errorf("expected 'd', got %q", r)
	}
}

func TestTerminal_FiniIdempotent(t *testing.T) {
	term, _, _ := newSimTerminal(t)
	term.Fini()
	term.Fini()
	if err := term.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTerminal_FiniBeforeInit(t *testing.T) {
	term, err := New(tcell.NewSimulationScreen(""), zerolog.Nop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	term.Fini()
}
