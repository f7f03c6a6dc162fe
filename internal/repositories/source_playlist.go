package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// SourcePlaylistRepository implements [models.Repository] for [models.SourcePlaylist].
//
// A user has at most one enabled source playlist: SetEnabled disables any
// prior selection in the same transaction.
type SourcePlaylistRepository struct {
	db *sql.DB
}

// NewSourcePlaylistRepository creates a new [SourcePlaylistRepository]
func NewSourcePlaylistRepository(db *sql.DB) *SourcePlaylistRepository {
	return &SourcePlaylistRepository{db: db}
}

// Create inserts a new source playlist with generated ID and sequence
func (r *SourcePlaylistRepository) Create(source *models.SourcePlaylist) error {
	sequence, err := NextSequence(r.db, "source_playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	source.SetID(shared.GenerateID())
	source.SetSequence(sequence)

	if err := source.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO source_playlists (id, sequence, user_id, spotify_playlist_id, name,
			image_url, track_count, enabled, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		source.ID(), sequence, source.UserID(), source.SpotifyPlaylistID(), source.Name(),
		source.ImageURL(), source.TrackCount(), source.Enabled(), nullString(source.LastError()),
		source.CreatedAt(), source.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert source playlist: %w", err)
	}

	return nil
}

// SetEnabled makes the playlist the user's single enabled selection,
// disabling any previously enabled playlist for the user first. The
// playlist is created when it has no id yet.
func (r *SourcePlaylistRepository) SetEnabled(source *models.SourcePlaylist) error {
	if source.ID() == "" {
		source.SetEnabled(true)
		if err := r.Create(source); err != nil {
			return err
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	_, err = tx.Exec(`
		UPDATE source_playlists
		SET enabled = 0, updated_at = ?
		WHERE user_id = ? AND id != ? AND enabled = 1 AND deleted_at IS NULL
	`, now, source.UserID(), source.ID())
	if err != nil {
		return fmt.Errorf("failed to disable prior selections: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE source_playlists
		SET enabled = 1, last_error = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, now, source.ID())
	if err != nil {
		return fmt.Errorf("failed to enable selection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit selection: %w", err)
	}

	source.SetEnabled(true)
	source.SetLastError("")
	source.SetUpdatedAt(now)

	return nil
}

// Enabled returns the user's enabled source playlist, or nil when none is selected
func (r *SourcePlaylistRepository) Enabled(userID string) (*models.SourcePlaylist, error) {
	query := sourcePlaylistSelect + " WHERE user_id = ? AND enabled = 1 AND deleted_at IS NULL"

	source, err := scanSourcePlaylist(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled source playlist: %w", err)
	}

	return source, nil
}

// ListEnabled returns every enabled source playlist across users
func (r *SourcePlaylistRepository) ListEnabled() ([]*models.SourcePlaylist, error) {
	return r.List(map[string]any{"enabled": true})
}

// SetLastError records the playlist's last archival error; an empty
// message clears it
func (r *SourcePlaylistRepository) SetLastError(id, message string) error {
	query := `
		UPDATE source_playlists
		SET last_error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, nullString(message), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source playlist not found or already deleted: %s", id)
	}

	return nil
}

// Get retrieves a source playlist by ID, excluding soft-deleted rows
func (r *SourcePlaylistRepository) Get(id string) (*models.SourcePlaylist, error) {
	query := sourcePlaylistSelect + " WHERE id = ? AND deleted_at IS NULL"

	source, err := scanSourcePlaylist(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source playlist not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source playlist: %w", err)
	}

	return source, nil
}

// Update modifies an existing source playlist
func (r *SourcePlaylistRepository) Update(source *models.SourcePlaylist) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	source.SetUpdatedAt(now)

	query := `
		UPDATE source_playlists
		SET name = ?, image_url = ?, track_count = ?, enabled = ?, last_error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		source.Name(), source.ImageURL(), source.TrackCount(), source.Enabled(),
		nullString(source.LastError()), now, source.ID())
	if err != nil {
		return fmt.Errorf("failed to update source playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source playlist not found or already deleted: %s", source.ID())
	}

	return nil
}

// Delete soft-deletes a source playlist by ID
func (r *SourcePlaylistRepository) Delete(id string) error {
	query := `
		UPDATE source_playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete source playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source playlist not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves source playlists matching the given criteria
func (r *SourcePlaylistRepository) List(criteria map[string]any) ([]*models.SourcePlaylist, error) {
	query := sourcePlaylistSelect + " WHERE deleted_at IS NULL"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if enabled, ok := criteria["enabled"].(bool); ok {
		query += " AND enabled = ?"
		args = append(args, enabled)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query source playlists: %w", err)
	}
	defer rows.Close()

	var sources []*models.SourcePlaylist
	for rows.Next() {
		source, err := scanSourcePlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source playlist: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sources, nil
}

const sourcePlaylistSelect = `
	SELECT id, sequence, user_id, spotify_playlist_id, name, image_url, track_count,
		enabled, last_error, created_at, updated_at, deleted_at
	FROM source_playlists
`

func scanSourcePlaylist(row rowScanner) (*models.SourcePlaylist, error) {
	var (
		id                string
		sequence          int
		userID            string
		spotifyPlaylistID string
		name              string
		imageURL          sql.NullString
		trackCount        int
		enabled           bool
		lastError         sql.NullString
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := row.Scan(&id, &sequence, &userID, &spotifyPlaylistID, &name, &imageURL, &trackCount,
		&enabled, &lastError, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	source := models.NewSourcePlaylist(sequence, userID, models.Playlist{
		ID:         spotifyPlaylistID,
		Name:       name,
		ImageURL:   imageURL.String,
		TrackCount: trackCount,
	})
	source.SetID(id)
	source.SetEnabled(enabled)
	source.SetLastError(lastError.String)
	source.SetCreatedAt(createdAt)
	source.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		source.SetDeletedAt(&deletedAt.Time)
	}

	return source, nil
}

// nullString maps "" to NULL so cleared errors read back as empty.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
