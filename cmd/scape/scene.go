package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/scape/audio"
	"github.com/lixenwraith/scape/content"
	"github.com/lixenwraith/scape/event"
	"github.com/lixenwraith/scape/manager"
	"github.com/lixenwraith/scape/registry"
	"github.com/lixenwraith/scape/resource"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

const (
	sceneName                       = "scene"
	sceneConsumer resource.Consumer = "scene"

	bannerName = "banner"
	cueName    = "cue"
	toneFreq   = 660
)

var fallbackBanner = []string{"scape", "no banner content found", "press any key, esc to quit"}

func init() {
	registry.Register(sceneConsumer,
		resource.Require[content.Text](bannerName),
		resource.Require[content.Sound](cueName),
	)
}

// canvas is the drawing and key surface the scene renders to
type canvas interface {
	DrawLines(x, y int, lines []string, style tcell.Style)
	DrawText(x, y int, s string, style tcell.Style) int
	Size() (width, height int)
	Keys() <-chan *tcell.EventKey
}

// speaker plays cues for key presses
type speaker interface {
	Play(s content.Sound) bool
	Tone(freq float64, d time.Duration) bool
}

// scene draws the banner and plays the cue sound on key presses
// Resources are fetched once after the load batch, following the resource manager
type scene struct {
	tree   *resource.Tree
	canvas canvas
	audio  speaker
	log    zerolog.Logger

	banner  []string
	cue     content.Sound
	hasCue  bool
	frame   uint64
	pressed int

	subs   []func() bool
	inited bool
}

func newScene(tree *resource.Tree, c canvas, a speaker, log zerolog.Logger) *scene {
	return &scene{
		tree:   tree,
		canvas: c,
		audio:  a,
		log:    log.With().Str("manager", sceneName).Logger(),
		banner: fallbackBanner,
	}
}

func (s *scene) Name() string {
	return sceneName
}

// Dependencies orders the scene after the managers it reads from
func (s *scene) Dependencies() []string {
	return []string{resource.ManagerName, audio.ManagerName}
}

func (s *scene) Init(h manager.Host) error {
	if s.inited {
		return nil
	}

	load, err := h.OnLoad().Subscribe(s.fetch)
	if err != nil && !errors.Is(err, event.ErrSealed) {
		return err
	}
	if errors.Is(err, event.ErrSealed) {
		_ = s.fetch(h, event.LoadArgs{})
	} else {
		// The load batch drops its subscribers once fired
		s.subs = append(s.subs, func() bool { return h.OnLoad().Unsubscribe(load) || h.OnLoad().Sealed() })
	}

	update, err := h.OnUpdate().Subscribe(s.update)
	if err != nil {
		return err
	}
	render, err := h.OnRender().Subscribe(s.render)
	if err != nil {
		return err
	}
	s.subs = append(s.subs,
		func() bool { return h.OnUpdate().Unsubscribe(update) },
		func() bool { return h.OnRender().Unsubscribe(render) },
	)

	s.inited = true
	return nil
}

func (s *scene) ExtractDependencies() error {
	var err error
	for _, unsub := range s.subs {
		if !unsub() {
			err = multierr.Append(err, fmt.Errorf("%s: subscription already removed", sceneName))
		}
	}
	s.subs = nil
	s.inited = false
	return err
}

func (s *scene) fetch(event.Source, event.LoadArgs) error {
	if text, err := resource.Get[content.Text](s.tree, bannerName); err == nil && text.Len() > 0 {
		s.banner = text.Lines
	} else {
		s.log.Warn().Err(err).Msg("banner unavailable, using fallback")
	}

	if cue, err := resource.Get[content.Sound](s.tree, cueName); err == nil {
		s.cue = cue
		s.hasCue = true
	} else {
		s.log.Warn().Err(err).Msg("cue sound unavailable, using tone")
	}
	return nil
}

func (s *scene) update(_ event.Source, args event.UpdateArgs) error {
	s.frame = args.Time.Frame
	for {
		select {
		case <-s.canvas.Keys():
			s.pressed++
			s.playCue()
		default:
			return nil
		}
	}
}

func (s *scene) playCue() {
	if s.hasCue && s.audio.Play(s.cue) {
		return
	}
	s.audio.Tone(toneFreq, 80*time.Millisecond)
}

func (s *scene) render(event.Source, event.RenderArgs) error {
	_, h := s.canvas.Size()
	top := (h - len(s.banner)) / 2
	if top < 0 {
		top = 0
	}
	s.canvas.DrawLines(2, top, s.banner, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	s.canvas.DrawText(0, h-1,
		fmt.Sprintf("frame %d | keys %d", s.frame, s.pressed),
		tcell.StyleDefault.Foreground(tcell.ColorGray))
	return nil
}
