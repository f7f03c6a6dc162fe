package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// SnapshotRepository persists archive snapshots and their immutable track copies.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository]
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// NextSequence returns the next snapshot sequence number
func (r *SnapshotRepository) NextSequence() (int, error) {
	return NextSequence(r.db, "snapshots")
}

// Create inserts a snapshot and its tracks in one transaction
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if snapshot.ID() == "" {
		snapshot.SetID(shared.GenerateID())
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (id, sequence, user_id, source_playlist_id, signature,
			archive_playlist_id, archive_playlist_url, track_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.ID(), snapshot.Sequence(), snapshot.UserID(), snapshot.SourcePlaylistID(),
		snapshot.Signature(), snapshot.ArchivePlaylistID(), snapshot.ArchivePlaylistURL(),
		snapshot.TrackCount(), snapshot.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for _, track := range snapshot.Tracks() {
		track.SetID(shared.GenerateID())
		track.SetSnapshotID(snapshot.ID())

		_, err = tx.Exec(`
			INSERT INTO snapshot_tracks (id, snapshot_id, position, track_uri, track_name,
				artist_name, album_name, album_image_url, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, track.ID(), track.SnapshotID(), track.Position(), track.TrackURI(), track.TrackName(),
			track.ArtistName(), nullString(track.AlbumName()), nullString(track.AlbumImageURL()),
			track.DurationMS())
		if err != nil {
			return fmt.Errorf("failed to insert snapshot track: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// Latest returns the most recent snapshot for the pair without its tracks,
// or nil when none exists yet
func (r *SnapshotRepository) Latest(userID, sourcePlaylistID string) (*models.Snapshot, error) {
	query := snapshotSelect + `
		WHERE user_id = ? AND source_playlist_id = ?
		ORDER BY sequence DESC
		LIMIT 1
	`

	snapshot, err := scanSnapshot(r.db.QueryRow(query, userID, sourcePlaylistID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	return snapshot, nil
}

// Get retrieves a snapshot with its tracks in position order
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	snapshot, err := scanSnapshot(r.db.QueryRow(snapshotSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	tracks, err := r.tracksFor(snapshot.ID())
	if err != nil {
		return nil, err
	}
	snapshot.SetTracks(tracks)

	return snapshot, nil
}

// List retrieves snapshots matching the given criteria, newest first, without tracks
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.Snapshot, error) {
	query := snapshotSelect + " WHERE 1=1"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if sourcePlaylistID, ok := criteria["source_playlist_id"].(string); ok && sourcePlaylistID != "" {
		query += " AND source_playlist_id = ?"
		args = append(args, sourcePlaylistID)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

func (r *SnapshotRepository) tracksFor(snapshotID string) ([]*models.SnapshotTrack, error) {
	rows, err := r.db.Query(`
		SELECT id, snapshot_id, position, track_uri, track_name, artist_name,
			album_name, album_image_url, duration_ms
		FROM snapshot_tracks
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.SnapshotTrack
	for rows.Next() {
		var (
			id            string
			snapID        string
			position      int
			trackURI      string
			trackName     string
			artistName    string
			albumName     sql.NullString
			albumImageURL sql.NullString
			durationMS    sql.NullInt64
		)

		err := rows.Scan(&id, &snapID, &position, &trackURI, &trackName, &artistName,
			&albumName, &albumImageURL, &durationMS)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot track: %w", err)
		}

		track := models.NewSnapshotTrack(snapID, position, models.ArchiveTrack{
			URI:           trackURI,
			Name:          trackName,
			Artist:        artistName,
			Album:         albumName.String,
			AlbumImageURL: albumImageURL.String,
			DurationMS:    int(durationMS.Int64),
		})
		track.SetID(id)

		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

const snapshotSelect = `
	SELECT id, sequence, user_id, source_playlist_id, signature,
		archive_playlist_id, archive_playlist_url, track_count, created_at
	FROM snapshots
`

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var (
		id                 string
		sequence           int
		userID             string
		sourcePlaylistID   string
		signature          string
		archivePlaylistID  string
		archivePlaylistURL string
		trackCount         int
		createdAt          time.Time
	)

	err := row.Scan(&id, &sequence, &userID, &sourcePlaylistID, &signature,
		&archivePlaylistID, &archivePlaylistURL, &trackCount, &createdAt)
	if err != nil {
		return nil, err
	}

	snapshot := models.NewSnapshot(sequence, userID, sourcePlaylistID, signature)
	snapshot.SetID(id)
	snapshot.SetArchivePlaylistID(archivePlaylistID)
	snapshot.SetArchivePlaylistURL(archivePlaylistURL)
	snapshot.SetTrackCount(trackCount)
	snapshot.SetCreatedAt(createdAt)
	snapshot.SetUpdatedAt(createdAt)

	return snapshot, nil
}
