package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// TrackRepository implements [models.Repository] for [models.Track] persistence.
//
// Tracks are the local catalog cache of playable audio; play counter columns
// hold the last authoritative values read from the counter service.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.Track] into the database with generated ID and sequence.
// A remote-assigned ID already present on the track is kept.
func (r *TrackRepository) Create(track *models.Track) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if track.ID() == "" {
		track.SetID(shared.GenerateID())
	}

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO tracks (id, sequence, title, artist, audio_url, duration_secs, play_count, user_plays, spotify_url, apple_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		track.ID(),
		sequence,
		track.Title(),
		track.Artist(),
		track.AudioURL(),
		track.DurationSecs(),
		track.PlayCount(),
		track.UserPlays(),
		track.SpotifyURL(),
		track.AppleURL(),
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *TrackRepository) Get(id string) (*models.Track, error) {
	query := `
		SELECT id, sequence, title, artist, audio_url, duration_secs, play_count, user_plays, spotify_url, apple_url, created_at, updated_at, deleted_at
		FROM tracks
		WHERE id = ? AND deleted_at IS NULL
	`

	track, err := scanTrack(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}

	return track, nil
}

// Update modifies an existing track in the database
func (r *TrackRepository) Update(track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	query := `
		UPDATE tracks
		SET title = ?, artist = ?, audio_url = ?, duration_secs = ?, play_count = ?, user_plays = ?, spotify_url = ?, apple_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		track.Title(),
		track.Artist(),
		track.AudioURL(),
		track.DurationSecs(),
		track.PlayCount(),
		track.UserPlays(),
		track.SpotifyURL(),
		track.AppleURL(),
		now,
		track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track not found or already deleted: %s", track.ID())
	}

	return nil
}

// UpdateCounters overwrites a track's cached play counters with
// authoritative values from the counter service.
func (r *TrackRepository) UpdateCounters(id string, playCount, userPlays int) error {
	if playCount < 0 {
		playCount = 0
	}
	if userPlays < 0 {
		userPlays = 0
	}

	query := `
		UPDATE tracks
		SET play_count = ?, user_plays = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, playCount, userPlays, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update track counters: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	return nil
}

// Delete soft-deletes a track by ID
func (r *TrackRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all tracks matching the given criteria, excluding soft-deleted tracks
func (r *TrackRepository) List(criteria map[string]any) ([]*models.Track, error) {
	query := `
		SELECT id, sequence, title, artist, audio_url, duration_secs, play_count, user_plays, spotify_url, apple_url, created_at, updated_at, deleted_at
		FROM tracks
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrack(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// scanTrack builds a [models.Track] from a row scan function.
func scanTrack(scan func(dest ...any) error) (*models.Track, error) {
	var (
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
		deletedAt    sql.NullTime
	)

	err := scan(&id, &sequence, &title, &artist, &audioURL, &durationSecs, &playCount, &userPlays, &spotifyURL, &appleURL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	track := models.NewTrack(sequence, title, artist, audioURL)
	track.SetID(id)
	track.SetDurationSecs(durationSecs)
	track.SetPlayCount(playCount)
	track.SetUserPlays(userPlays)
	track.SetSpotifyURL(spotifyURL)
	track.SetAppleURL(appleURL)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		track.SetDeletedAt(&deletedAt.Time)
	}

	return track, nil
}
