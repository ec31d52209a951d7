package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/lixenwraith/scape/content"
	"github.com/lixenwraith/scape/manager"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

const (
	ManagerName = "audio"

	DefaultSampleRate = beep.SampleRate(48000)
	resampleQuality   = 4
)

// Config controls the audio output
type Config struct {
	Enabled    bool
	SampleRate beep.SampleRate
	Buffer     time.Duration
}

// DefaultConfig returns a 48kHz output with a 100ms buffer
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		SampleRate: DefaultSampleRate,
		Buffer:     100 * time.Millisecond,
	}
}

// Player is a manager that mixes sounds into the speaker
// A failed device init leaves the player silent instead of failing the host
type Player struct {
	mu          sync.Mutex
	cfg         Config
	backend     Backend
	mixer       *beep.Mixer
	initialized bool
	muted       atomic.Bool
	log         zerolog.Logger

	statPlayed *atomic.Int64
	statSilent *atomic.Bool
}

// NewPlayer creates a player on the beep speaker
func NewPlayer(cfg Config, log zerolog.Logger, reg *status.Registry) *Player {
	return NewPlayerWithBackend(cfg, speakerBackend{}, log, reg)
}

// NewPlayerWithBackend creates a player on a custom backend
func NewPlayerWithBackend(cfg Config, backend Backend, log zerolog.Logger, reg *status.Registry) *Player {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultConfig().Buffer
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Player{
		cfg:        cfg,
		backend:    backend,
		mixer:      &beep.Mixer{},
		log:        log.With().Str("manager", ManagerName).Logger(),
		statPlayed: reg.Ints.Get("audio.played"),
		statSilent: reg.Bools.Get("audio.silent"),
	}
}

// Name implements manager.Manager
func (p *Player) Name() string {
	return ManagerName
}

// Init implements manager.Initializer
func (p *Player) Init(manager.Host) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if !p.cfg.Enabled {
		p.statSilent.Store(true)
		p.log.Info().Msg("audio disabled")
		return nil
	}

	if err := p.backend.Init(p.cfg.SampleRate, p.cfg.SampleRate.N(p.cfg.Buffer)); err != nil {
		p.statSilent.Store(true)
		p.log.Warn().Err(err).Msg("audio device unavailable, running silent")
		return nil
	}

	p.backend.Play(p.mixer)
	p.initialized = true
	p.log.Info().Int("sample_rate", int(p.cfg.SampleRate)).Msg("audio initialized")
	return nil
}

// ExtractDependencies implements manager.Manager
// Stops all sounds and closes the device
func (p *Player) ExtractDependencies() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}

	p.backend.Lock()
	p.mixer.Clear()
	p.backend.Unlock()
	p.backend.Close()

	p.initialized = false
	p.log.Info().Msg("audio closed")
	return nil
}

// Active reports whether sounds reach the device
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized && !p.muted.Load()
}

// SetMuted drops subsequent Play calls while set
func (p *Player) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// Play mixes s into the output, resampling when rates differ
// Returns false when the player is silent
func (p *Player) Play(s content.Sound) bool {
	if s.Len() == 0 {
		return false
	}
	streamer := beep.Streamer(s.Streamer())
	if from := s.Format().SampleRate; from != 0 && from != p.cfg.SampleRate {
		streamer = beep.Resample(resampleQuality, from, p.cfg.SampleRate, streamer)
	}
	return p.add(streamer)
}

// Tone plays a sine beep, used as the fallback cue for missing sounds
func (p *Player) Tone(freq float64, d time.Duration) bool {
	return p.add(beep.Take(p.cfg.SampleRate.N(d), NewSineGenerator(p.cfg.SampleRate, freq)))
}

// Playing returns the number of streams still in the mixer
func (p *Player) Playing() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return 0
	}
	p.backend.Lock()
	defer p.backend.Unlock()
	return p.mixer.Len()
}

func (p *Player) add(s beep.Streamer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.muted.Load() {
		return false
	}

	p.backend.Lock()
	p.mixer.Add(s)
	p.backend.Unlock()
	p.statPlayed.Add(1)
	return true
}
