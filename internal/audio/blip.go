// Package audio voices bounces as short sine blips.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/vladimirvolkov/bouncer/internal/game"
)

const (
	sampleRate = beep.SampleRate(44100)
	blipLength = 40 * time.Millisecond

	edgeFreq   = 440.0
	paddleFreq = 880.0

	// maxBlipsPerTick keeps a crowded field from turning into noise.
	maxBlipsPerTick = 3
)

// Blipper plays one blip per bounce. The zero value is silent.
type Blipper struct {
	mu          sync.Mutex
	initialized bool
}

// Init opens the speaker. Hosts treat a failure as "run without sound".
func (bl *Blipper) Init() error {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	if bl.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	bl.initialized = true
	return nil
}

// Frequency picks the pitch for a bounce: paddles ring higher than edges.
func Frequency(b game.Bounce) float64 {
	if b.Paddle != "" {
		return paddleFreq
	}
	return edgeFreq
}

// Play voices up to maxBlipsPerTick of the bounces.
func (bl *Blipper) Play(bounces []game.Bounce) {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	if !bl.initialized {
		return
	}
	for i, b := range bounces {
		if i == maxBlipsPerTick {
			break
		}
		sine, err := generators.SineTone(sampleRate, Frequency(b))
		if err != nil {
			continue
		}
		speaker.Play(beep.Take(sampleRate.N(blipLength), sine))
	}
}

func (bl *Blipper) Close() {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	if bl.initialized {
		speaker.Close()
		bl.initialized = false
	}
}
