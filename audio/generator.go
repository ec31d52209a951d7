package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// SineGenerator streams a sine wave with a short attack to avoid clicks
type SineGenerator struct {
	sr     beep.SampleRate
	freq   float64
	pos    int
	attack int
}

// NewSineGenerator creates an endless sine at freq Hz
func NewSineGenerator(sr beep.SampleRate, freq float64) *SineGenerator {
	return &SineGenerator{
		sr:     sr,
		freq:   freq,
		attack: sr.N(5 * time.Millisecond),
	}
}

func (g *SineGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		amplitude := 0.2
		if g.pos < g.attack {
			amplitude *= float64(g.pos) / float64(g.attack)
		}
		v := amplitude * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *SineGenerator) Err() error {
	return nil
}
