package audio

import (
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Backend is the output device the player mixes into
type Backend interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// speakerBackend routes to the process-wide beep speaker
type speakerBackend struct{}

func (speakerBackend) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (speakerBackend) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerBackend) Lock()                { speaker.Lock() }
func (speakerBackend) Unlock()              { speaker.Unlock() }
func (speakerBackend) Close()               { speaker.Close() }
