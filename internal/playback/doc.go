// Package playback owns the audio resource and the active playback
// session.
//
// At most one session exists at a time. Starting a track tears down the
// previous session without touching its counters, opens the new track's
// audio resource through the configured Provider, and issues the
// session's single play-count increment when a signed-in identity is
// present. Guests play without counting.
//
// A configurable preview limit interrupts playback partway through and
// surfaces a continuation prompt with the track's external platform
// links. Resuming from the prompt re-arms the limit; the increment never
// fires twice for one session. Telemetry failures are logged and rolled
// back but never disturb audio.
package playback
