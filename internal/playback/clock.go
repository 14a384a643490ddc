package playback

import (
	"sync"
	"time"
)

// ClockPlayer tracks playback position against the wall clock without
// producing audio. It stands in for a real audio backend in the CLI and
// the TUI, where the telemetry and session lifecycle are the point.
type ClockPlayer struct {
	mu        sync.Mutex
	duration  time.Duration
	elapsed   time.Duration
	resumedAt time.Time
	playing   bool
}

// NewClockPlayer creates a stopped ClockPlayer for a track of the given
// duration.
func NewClockPlayer(duration time.Duration) *ClockPlayer {
	return &ClockPlayer{duration: duration}
}

func (p *ClockPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		p.playing = true
		p.resumedAt = time.Now()
	}
	return nil
}

func (p *ClockPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		p.elapsed += time.Since(p.resumedAt)
		p.playing = false
	}
	return nil
}

func (p *ClockPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.elapsed
	if p.playing {
		pos += time.Since(p.resumedAt)
	}
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	return pos
}

func (p *ClockPlayer) Duration() time.Duration {
	return p.duration
}

// ClockProvider opens ClockPlayers, resolving track durations through the
// Lookup callback keyed by audio URL.
type ClockProvider struct {
	Lookup func(audioURL string) time.Duration
}

func (p ClockProvider) Open(audioURL string) (Player, error) {
	var d time.Duration
	if p.Lookup != nil {
		d = p.Lookup(audioURL)
	}
	return NewClockPlayer(d), nil
}
