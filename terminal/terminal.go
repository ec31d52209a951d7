// Package terminal adapts a tcell screen to the host input and renderer roles
package terminal

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/scape/core"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

const keyBuffer = 64

// Terminal owns a tcell screen for the lifetime of the host
// Escape and Ctrl-C raise the exit signal; other keys are forwarded on Keys
type Terminal struct {
	screen tcell.Screen
	log    zerolog.Logger

	cursorVisible atomic.Bool
	exit          atomic.Bool
	width         atomic.Int32
	height        atomic.Int32

	keys chan *tcell.EventKey

	started  atomic.Bool
	finiOnce sync.Once
	wg       sync.WaitGroup

	statKeys    *atomic.Int64
	statDropped *atomic.Int64
	statResizes *atomic.Int64
}

// New wraps screen; a nil screen opens the controlling terminal
func New(screen tcell.Screen, log zerolog.Logger, reg *status.Registry) (*Terminal, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open screen: %w", err)
		}
		screen = s
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Terminal{
		screen:      screen,
		log:         log.With().Str("component", "terminal").Logger(),
		keys:        make(chan *tcell.EventKey, keyBuffer),
		statKeys:    reg.Ints.Get("terminal.keys"),
		statDropped: reg.Ints.Get("terminal.keys.dropped"),
		statResizes: reg.Ints.Get("terminal.resizes"),
	}, nil
}

// Init enters the alternate screen and starts the input loop
func (t *Terminal) Init(cursorVisible bool) error {
	if !t.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := t.screen.Init(); err != nil {
		t.started.Store(false)
		return fmt.Errorf("init screen: %w", err)
	}
	t.screen.SetStyle(tcell.StyleDefault)
	t.cursorVisible.Store(cursorVisible)
	t.updateSize()

	t.wg.Add(1)
	core.Go(t.pollLoop)

	w, h := t.Size()
	t.log.Info().Int("width", w).Int("height", h).Msg("terminal initialized")
	return nil
}

// Fini restores the terminal; safe to call multiple times
func (t *Terminal) Fini() {
	t.finiOnce.Do(func() {
		if !t.started.Load() {
			return
		}
		t.screen.Fini()
		t.wg.Wait()
		t.log.Info().Msg("terminal restored")
	})
}

// Close implements io.Closer for host diagnostics
func (t *Terminal) Close() error {
	t.Fini()
	return nil
}

func (t *Terminal) pollLoop() {
	defer t.wg.Done()
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		t.handle(ev)
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		t.statKeys.Add(1)
		if isExitKey(ev) {
			t.exit.Store(true)
			return
		}
		select {
		case t.keys <- ev:
		default:
			t.statDropped.Add(1)
		}

	case *tcell.EventResize:
		t.statResizes.Add(1)
		t.updateSize()
		t.screen.Sync()
	}
}

func isExitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'c' && ev.Modifiers()&tcell.ModCtrl != 0
	}
	return false
}

func (t *Terminal) updateSize() {
	w, h := t.screen.Size()
	t.width.Store(int32(w))
	t.height.Store(int32(h))
}

// ExitRequested implements host.Input
func (t *Terminal) ExitRequested() bool {
	return t.exit.Load()
}

// Keys delivers non-exit key presses; keys are dropped when the buffer is full
func (t *Terminal) Keys() <-chan *tcell.EventKey {
	return t.keys
}

// Size returns the last known screen dimensions
func (t *Terminal) Size() (width, height int) {
	return int(t.width.Load()), int(t.height.Load())
}

// SetCursorVisible controls the cursor shown after each frame
func (t *Terminal) SetCursorVisible(visible bool) {
	t.cursorVisible.Store(visible)
}

// BeginFrame implements host.Renderer
func (t *Terminal) BeginFrame() {
	t.screen.Clear()
}

// EndFrame implements host.Renderer
func (t *Terminal) EndFrame() {
	if t.cursorVisible.Load() {
		t.screen.ShowCursor(0, 0)
	} else {
		t.screen.HideCursor()
	}
	t.screen.Show()
}

// DrawText writes s starting at x,y clipped to the screen width
// Returns the number of cells written
func (t *Terminal) DrawText(x, y int, s string, style tcell.Style) int {
	w, h := t.Size()
	if y < 0 || y >= h {
		return 0
	}
	n := 0
	for _, r := range s {
		if x >= w {
			break
		}
		if x >= 0 {
			t.screen.SetContent(x, y, r, nil, style)
			n++
		}
		x++
	}
	return n
}

// DrawLines writes lines top-down starting at x,y
func (t *Terminal) DrawLines(x, y int, lines []string, style tcell.Style) {
	for i, line := range lines {
		t.DrawText(x, y+i, line, style)
	}
}
