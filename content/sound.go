package content

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const SoundExt = ".wav"

// Sound is a fully decoded audio clip
// The buffer is never mutated after decode; Clone yields an independent copy
type Sound struct {
	buf *beep.Buffer
}

// NewSound buffers every sample of s
func NewSound(format beep.Format, s beep.Streamer) Sound {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return Sound{buf: buf}
}

// DecodeSound reads a WAV stream into memory
func DecodeSound(r io.Reader) (Sound, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return Sound{}, fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()
	return NewSound(format, streamer), nil
}

// Format returns the sample format, zero for an empty Sound
func (s Sound) Format() beep.Format {
	if s.buf == nil {
		return beep.Format{}
	}
	return s.buf.Format()
}

// Len returns the number of samples
func (s Sound) Len() int {
	if s.buf == nil {
		return 0
	}
	return s.buf.Len()
}

// Duration returns the playback length
func (s Sound) Duration() time.Duration {
	if s.buf == nil {
		return 0
	}
	return s.buf.Format().SampleRate.D(s.buf.Len())
}

// Streamer returns a fresh playback cursor over the whole clip
func (s Sound) Streamer() beep.StreamSeeker {
	if s.buf == nil {
		return nil
	}
	return s.buf.Streamer(0, s.buf.Len())
}

// Clone implements resource.Cloner
func (s Sound) Clone() Sound {
	if s.buf == nil {
		return Sound{}
	}
	return NewSound(s.buf.Format(), s.Streamer())
}
