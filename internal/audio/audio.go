// Package audio is a tiny, optional cue player for two simulation
// events: a vehicle plan losing a semaphore crossing, and a bus crash.
// Samples are synthesized procedurally rather than loaded from disk.
// Never load-bearing for simulation correctness — a nil *Cues silently
// drops every cue.
package audio

import (
	"io"
	"math"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

const (
	sampleRate   = 44100
	channelCount = 2
)

// Cues plays short synthesized stingers on demand. A nil *Cues is a
// valid, silent no-op, so callers that skip New on init failure can
// keep calling PlayRedLight/PlayCrash unconditionally.
type Cues struct {
	ctx   *oto.Context
	ready chan struct{}
}

// New opens the default audio output. Failure here is never fatal to
// the simulation — callers should log and continue with a nil *Cues.
func New() (*Cues, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channelCount, 0)
	if err != nil {
		return nil, err
	}
	return &Cues{ctx: ctx, ready: ready}, nil
}

// PlayRedLight fires when the bus's plan reports a collision against
// a red semaphore (navveh.Info.Semaphore != 0).
func (c *Cues) PlayRedLight() { c.play(genTone(220, 0.12)) }

// PlayCrash fires when another agent comes within the orchestrator's
// crash distance of the bus.
func (c *Cues) PlayCrash() { c.play(genTone(90, 0.35)) }

func (c *Cues) play(samples []byte) {
	if c == nil {
		return
	}
	select {
	case <-c.ready:
	default:
		return
	}
	go func() {
		player := c.ctx.NewPlayer(&byteReader{data: samples})
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// genTone synthesizes a square-wave stinger at freq Hz lasting dur
// seconds, with a linear release over its last 30%.
func genTone(freq, dur float64) []byte {
	n := int(sampleRate * dur)
	buf := make([]byte, n*8)
	release := dur * 0.3
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		env := 1.0
		if t > dur-release {
			env = (dur - t) / release
		}
		s := 0.6
		if math.Sin(2*math.Pi*freq*t) < 0 {
			s = -0.6
		}
		putStereoF32(buf, i, s*env)
	}
	return buf
}

func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := 0; ch < 2; ch++ {
		o := i*8 + ch*4
		buf[o] = byte(v)
		buf[o+1] = byte(v >> 8)
		buf[o+2] = byte(v >> 16)
		buf[o+3] = byte(v >> 24)
	}
}
