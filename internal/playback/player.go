package playback

import "time"

// Player is the opaque audio resource the controller drives. The core
// neither decodes nor transports audio; implementations wrap whatever
// engine actually produces sound (or nothing at all, for tests and
// headless runs).
type Player interface {
	Play() error
	Pause() error
	Position() time.Duration
	Duration() time.Duration
}

// Provider opens the audio resource for a track's stream URL.
// Consumer-defined: the TUI supplies a real player, tests a fake.
type Provider interface {
	Open(audioURL string) (Player, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(audioURL string) (Player, error)

func (f ProviderFunc) Open(audioURL string) (Player, error) { return f(audioURL) }
