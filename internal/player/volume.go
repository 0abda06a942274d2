package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"
)

// SetVolume sets the linear volume level (0.0 to 1.0).
func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumeLevel = min(max(level, 0), 1)
	if p.volume != nil {
		speaker.Lock()
		p.applyVolumeLocked()
		speaker.Unlock()
	}
}

// Volume returns the current linear volume level.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volumeLevel
}

// applyVolumeLocked pushes volumeLevel into the effect. Caller holds p.mu.
func (p *Player) applyVolumeLocked() {
	if p.volume == nil {
		return
	}
	p.volume.Silent = p.volumeLevel <= 0
	p.volume.Volume = levelToVolume(p.volumeLevel)
}

// levelToVolume converts a 0.0-1.0 level to beep's base-2 Volume value.
// 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (silent anyway).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
