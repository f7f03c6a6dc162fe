package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// RecommendationRepository persists recommendation runs and their ordered tracks.
type RecommendationRepository struct {
	db *sql.DB
}

// NewRecommendationRepository creates a new [RecommendationRepository]
func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// NextSequence returns the next recommendation sequence number
func (r *RecommendationRepository) NextSequence() (int, error) {
	return NextSequence(r.db, "recommendations")
}

// Create inserts a run and its tracks in one transaction. The run keeps a
// caller-assigned sequence; ids are generated here.
func (r *RecommendationRepository) Create(rec *models.Recommendation) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if rec.ID() == "" {
		rec.SetID(shared.GenerateID())
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO recommendations (id, sequence, user_id, source_playlist_id, mode,
			saved_playlist_id, saved_playlist_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID(), rec.Sequence(), rec.UserID(), rec.SourcePlaylistID(), string(rec.Mode()),
		nullString(rec.SavedPlaylistID()), nullString(rec.SavedPlaylistURL()),
		rec.CreatedAt(), rec.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}

	for _, track := range rec.Tracks() {
		track.SetID(shared.GenerateID())
		track.SetRecommendationID(rec.ID())

		_, err = tx.Exec(`
			INSERT INTO recommended_tracks (id, recommendation_id, position, spotify_track_id,
				track_uri, spotify_url, track_name, artist_name, album_name, album_image_url,
				preview_url, duration_ms, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, track.ID(), track.RecommendationID(), track.Position(),
			nullString(track.SpotifyTrackID()), nullString(track.TrackURI()), nullString(track.SpotifyURL()),
			track.TrackName(), track.ArtistName(), nullString(track.AlbumName()),
			nullString(track.AlbumImageURL()), nullString(track.PreviewURL()),
			track.DurationMS(), nullString(track.Reason()))
		if err != nil {
			return fmt.Errorf("failed to insert recommended track: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recommendation: %w", err)
	}

	return nil
}

// Get retrieves a run with its tracks in position order, or nil when absent
func (r *RecommendationRepository) Get(id string) (*models.Recommendation, error) {
	rec, err := scanRecommendation(r.db.QueryRow(recommendationSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation: %w", err)
	}

	tracks, err := r.tracksFor(rec.ID())
	if err != nil {
		return nil, err
	}
	rec.SetTracks(tracks)

	return rec, nil
}

// MarkSaved records the exported playlist ids exactly once; a second call
// for the same run is rejected
func (r *RecommendationRepository) MarkSaved(id, playlistID, playlistURL string) error {
	query := `
		UPDATE recommendations
		SET saved_playlist_id = ?, saved_playlist_url = ?, updated_at = ?
		WHERE id = ? AND saved_playlist_url IS NULL
	`

	result, err := r.db.Exec(query, playlistID, playlistURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark recommendation saved: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("recommendation not found or already saved: %s", id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first, without tracks
func (r *RecommendationRepository) List(criteria map[string]any) ([]*models.Recommendation, error) {
	query := recommendationSelect + " WHERE 1=1"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if mode, ok := criteria["mode"].(string); ok && mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return recs, nil
}

func (r *RecommendationRepository) tracksFor(recommendationID string) ([]*models.RecommendedTrack, error) {
	rows, err := r.db.Query(`
		SELECT id, recommendation_id, position, spotify_track_id, track_uri, spotify_url,
			track_name, artist_name, album_name, album_image_url, preview_url, duration_ms, reason
		FROM recommended_tracks
		WHERE recommendation_id = ?
		ORDER BY position ASC
	`, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommended tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.RecommendedTrack
	for rows.Next() {
		var (
			id             string
			recID          string
			position       int
			spotifyTrackID sql.NullString
			trackURI       sql.NullString
			spotifyURL     sql.NullString
			trackName      string
			artistName     string
			albumName      sql.NullString
			albumImageURL  sql.NullString
			previewURL     sql.NullString
			durationMS     sql.NullInt64
			reason         sql.NullString
		)

		err := rows.Scan(&id, &recID, &position, &spotifyTrackID, &trackURI, &spotifyURL,
			&trackName, &artistName, &albumName, &albumImageURL, &previewURL, &durationMS, &reason)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommended track: %w", err)
		}

		track := models.NewRecommendedTrack(recID, position, models.ResolvedTrack{
			Suggestion: models.Suggestion{
				TrackName:  trackName,
				ArtistName: artistName,
				Reason:     reason.String,
			},
			SpotifyTrackID: spotifyTrackID.String,
			TrackURI:       trackURI.String,
			SpotifyURL:     spotifyURL.String,
			AlbumName:      albumName.String,
			AlbumImageURL:  albumImageURL.String,
			PreviewURL:     previewURL.String,
			DurationMS:     int(durationMS.Int64),
		})
		track.SetID(id)

		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

const recommendationSelect = `
	SELECT id, sequence, user_id, source_playlist_id, mode,
		saved_playlist_id, saved_playlist_url, created_at, updated_at
	FROM recommendations
`

func scanRecommendation(row rowScanner) (*models.Recommendation, error) {
	var (
		id               string
		sequence         int
		userID           string
		sourcePlaylistID string
		mode             string
		savedPlaylistID  sql.NullString
		savedPlaylistURL sql.NullString
		createdAt        time.Time
		updatedAt        time.Time
	)

	err := row.Scan(&id, &sequence, &userID, &sourcePlaylistID, &mode,
		&savedPlaylistID, &savedPlaylistURL, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec := models.NewRecommendation(sequence, userID, sourcePlaylistID, models.Mode(mode))
	rec.SetID(id)
	rec.SetSavedPlaylistID(savedPlaylistID.String)
	rec.SetSavedPlaylistURL(savedPlaylistURL.String)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)

	return rec, nil
}
