package sound

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/plus3/staffclimb/scene"
)

// Cue is a named sound effect.
type Cue uint8

const (
	CueNone Cue = iota
	CueSpawn
	CueGameOver
	CueVictory
	CueRestart
)

var cueNames = map[Cue]string{
	CueSpawn:    "spawn",
	CueGameOver: "game_over",
	CueVictory:  "victory",
	CueRestart:  "restart",
}

func (c Cue) String() string {
	if name, ok := cueNames[c]; ok {
		return name
	}
	return "none"
}

// Cues lists every playable cue.
var Cues = []Cue{CueSpawn, CueGameOver, CueVictory, CueRestart}

// CueFor maps a scene event to the cue played for it.
func CueFor(e scene.Event) Cue {
	switch e.Kind {
	case scene.EventSpawn:
		return CueSpawn
	case scene.EventGameOver:
		return CueGameOver
	case scene.EventVictory:
		return CueVictory
	case scene.EventRestart:
		return CueRestart
	default:
		return CueNone
	}
}

const (
	spawnDuration    = 120 * time.Millisecond
	gameOverNote     = 180 * time.Millisecond
	victoryNote      = 110 * time.Millisecond
	victoryHold      = 400 * time.Millisecond
	restartDuration  = 150 * time.Millisecond
	shortAttack      = 5 * time.Millisecond
	shortRelease     = 40 * time.Millisecond
	sustainedRelease = 250 * time.Millisecond
)

func note(wave Wave, freq float64, d, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return Envelope(Tone(wave, freq, d, rate), d, shortAttack, release, rate)
}

// Streamer builds the streamer for cue at the given volume.
func Streamer(cue Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch cue {
	case CueSpawn:
		// A soft whoosh over a low sine.
		s = beep.Mix(
			Gain(Envelope(Tone(WaveNoise, 0, spawnDuration, rate), spawnDuration, shortAttack, spawnDuration/2, rate), 0.15),
			Gain(Envelope(Sweep(WaveSine, 220, 140, spawnDuration, rate), spawnDuration, shortAttack, shortRelease, rate), 0.5),
		)
	case CueGameOver:
		s = beep.Seq(
			note(WaveSquare, 392.00, gameOverNote, shortRelease, rate),
			note(WaveSquare, 311.13, gameOverNote, shortRelease, rate),
			Envelope(Sweep(WaveSquare, 261.63, 130.81, 2*gameOverNote, rate), 2*gameOverNote, shortAttack, sustainedRelease, rate),
		)
		s = Gain(s, 0.5)
	case CueVictory:
		s = beep.Seq(
			note(WaveTriangle, 523.25, victoryNote, shortRelease, rate),
			note(WaveTriangle, 659.25, victoryNote, shortRelease, rate),
			note(WaveTriangle, 783.99, victoryNote, shortRelease, rate),
			beep.Mix(
				Gain(note(WaveSine, 1046.50, victoryHold, sustainedRelease, rate), 0.7),
				Gain(note(WaveSine, 2093.00, victoryHold, sustainedRelease, rate), 0.3),
			),
		)
	case CueRestart:
		s = beep.Seq(
			note(WaveSine, 440, restartDuration/2, shortRelease, rate),
			note(WaveSine, 330, restartDuration/2, shortRelease, rate),
		)
	default:
		return nil
	}
	return Gain(s, volume)
}
