// Package sound synthesises the game's sound cues with beep and plays them
// through the ebiten audio context.
package sound

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type Wave uint8

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
	WaveNoise
)

// tone is a fixed-length oscillator. A sweep moves the frequency linearly
// from freq to freq+sweep over the tone.
type tone struct {
	freq   float64
	sweep  float64
	wave   Wave
	rate   beep.SampleRate
	length int
	pos    int
	phase  float64
	noise  *rand.Rand
}

// Tone returns a streamer of the given wave lasting d.
func Tone(wave Wave, freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return Sweep(wave, freq, freq, d, rate)
}

// Sweep returns a tone gliding from one frequency to another.
func Sweep(wave Wave, from, to float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &tone{
		freq:   from,
		sweep:  to - from,
		wave:   wave,
		rate:   rate,
		length: rate.N(d),
		// Fixed seed: cues sound the same every time.
		noise: rand.New(rand.NewPCG(1, 2)),
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.length {
			return i, i > 0
		}

		var v float64
		switch t.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * t.phase)
		case WaveSquare:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case WaveTriangle:
			v = 4*math.Abs(t.phase-0.5) - 1
		case WaveNoise:
			v = t.noise.Float64()*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v

		freq := t.freq + t.sweep*float64(t.pos)/float64(t.length)
		t.phase += freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// envelope fades a streamer in over attack and out over the last release of
// its length.
type envelope struct {
	s       beep.Streamer
	pos     int
	total   int
	attack  int
	release int
}

// Envelope shapes s, which is expected to last d.
func Envelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		s:       s,
		total:   rate.N(d),
		attack:  rate.N(attack),
		release: rate.N(release),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := range n {
		gain := 1.0
		if e.attack > 0 && e.pos < e.attack {
			gain = float64(e.pos) / float64(e.attack)
		}
		if left := e.total - e.pos; e.release > 0 && left < e.release {
			gain = math.Max(0, float64(left)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// Gain scales s linearly. A gain of zero or less is silence.
func Gain(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
