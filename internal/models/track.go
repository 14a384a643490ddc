package models

import (
	"fmt"
	"time"
)

// Track represents a playable track with its play counters and external
// platform links.
//
// PlayCount is the global counter from the counter service; UserPlays is
// the viewer-attributed count, meaningful only while a session identity
// is present.
type Track struct {
	id           string
	sequence     int
	title        string
	artist       string
	audioURL     string
	durationSecs int
	playCount    int
	userPlays    int
	spotifyURL   string
	appleURL     string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewTrack creates a Track with the given sequence number and metadata.
// The ID is assigned by the repository on Create.
func NewTrack(sequence int, title, artist, audioURL string) *Track {
	now := time.Now()
	return &Track{
		sequence:  sequence,
		title:     title,
		artist:    artist,
		audioURL:  audioURL,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *Track) ID() string            { return t.id }
func (t *Track) Sequence() int         { return t.sequence }
func (t *Track) Title() string         { return t.title }
func (t *Track) Artist() string        { return t.artist }
func (t *Track) AudioURL() string      { return t.audioURL }
func (t *Track) DurationSecs() int     { return t.durationSecs }
func (t *Track) PlayCount() int        { return t.playCount }
func (t *Track) UserPlays() int        { return t.userPlays }
func (t *Track) SpotifyURL() string    { return t.spotifyURL }
func (t *Track) AppleURL() string      { return t.appleURL }
func (t *Track) CreatedAt() time.Time  { return t.createdAt }
func (t *Track) UpdatedAt() time.Time  { return t.updatedAt }
func (t *Track) DeletedAt() *time.Time { return t.deletedAt }

func (t *Track) SetID(id string)           { t.id = id }
func (t *Track) SetCreatedAt(ts time.Time) { t.createdAt = ts }
func (t *Track) SetDurationSecs(secs int)  { t.durationSecs = secs }
func (t *Track) SetSpotifyURL(url string)  { t.spotifyURL = url }
func (t *Track) SetAppleURL(url string)    { t.appleURL = url }
func (t *Track) SetUpdatedAt(ts time.Time) { t.updatedAt = ts }
func (t *Track) SetDeletedAt(ts *time.Time) {
	t.deletedAt = ts
}

// SetPlayCount overwrites the cached global counter with an authoritative value.
func (t *Track) SetPlayCount(count int) {
	if count < 0 {
		count = 0
	}
	t.playCount = count
}

// SetUserPlays overwrites the cached viewer-attributed counter.
func (t *Track) SetUserPlays(count int) {
	if count < 0 {
		count = 0
	}
	t.userPlays = count
}

// PlatformLinks returns the configured external platform URLs for the
// track, skipping empty entries. Surfaced at the preview interruption
// decision point.
func (t *Track) PlatformLinks() []string {
	var links []string
	for _, link := range []string{t.spotifyURL, t.appleURL} {
		if link != "" {
			links = append(links, link)
		}
	}
	return links
}

// Validate checks the track's data integrity.
func (t *Track) Validate() error {
	if t.title == "" {
		return fmt.Errorf("track title is required")
	}
	if t.playCount < 0 || t.userPlays < 0 {
		return fmt.Errorf("play counters cannot be negative")
	}
	if t.durationSecs < 0 {
		return fmt.Errorf("duration cannot be negative: %d", t.durationSecs)
	}
	return nil
}
