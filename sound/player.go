package sound

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/scene"
)

// maxCue bounds how long a cue may run once rendered.
const maxCue = 3 * time.Second

// PCM renders s to signed 16-bit little-endian stereo, the format ebiten
// audio plays. Rendering stops when s drains or after maxCue.
func PCM(s beep.Streamer, rate beep.SampleRate) []byte {
	limit := rate.N(maxCue)
	buf := make([][2]float64, 512)
	out := make([]byte, 0, 4*rate.N(time.Second/2))

	for total := 0; total < limit; {
		chunk := buf[:min(len(buf), limit-total)]
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(frame[0])))
			out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(frame[1])))
		}
		total += n
		if !ok || n == 0 {
			break
		}
	}
	return out
}

func toInt16(v float64) int16 {
	v = max(-1, min(1, v))
	return int16(v * 32767)
}

// Player plays rendered cues. A nil *Player is silent.
type Player struct {
	ctx   *audio.Context
	clips map[Cue][]byte
	log   *log.Logger
}

// NewPlayer renders every cue and prepares the audio context. It returns
// nil when audio is disabled.
func NewPlayer(cfg config.Audio, logger *log.Logger) (*Player, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(cfg.SampleRate)
	} else if ctx.SampleRate() != cfg.SampleRate {
		return nil, fmt.Errorf("sound: audio context already running at %d Hz", ctx.SampleRate())
	}

	rate := beep.SampleRate(cfg.SampleRate)
	p := &Player{
		ctx:   ctx,
		clips: make(map[Cue][]byte, len(Cues)),
		log:   logger,
	}
	for _, cue := range Cues {
		p.clips[cue] = PCM(Streamer(cue, rate, cfg.Volume), rate)
	}
	logger.Debug("sound cues rendered", "cues", len(p.clips), "sample_rate", cfg.SampleRate)
	return p, nil
}

// Play starts cue without waiting for it to finish.
func (p *Player) Play(cue Cue) {
	if p == nil {
		return
	}
	clip, ok := p.clips[cue]
	if !ok {
		return
	}
	p.ctx.NewPlayerFromBytes(clip).Play()
}

// HandleEvents plays the cue of every event.
func (p *Player) HandleEvents(events []scene.Event) {
	for _, e := range events {
		p.Play(CueFor(e))
	}
}
