package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

const (
	restrictedPlaylistError = "Playlist is restricted or not found (403/404)"
	emptyPlaylistError      = "Playlist has no tracks"
)

// ArchiveResult describes the outcome of archiving one source playlist.
type ArchiveResult struct {
	SourcePlaylistID   string `json:"source_playlist_id"`
	SourceName         string `json:"source_name"`
	Archived           bool   `json:"archived"`
	TrackCount         int    `json:"track_count"`
	SnapshotID         string `json:"snapshot_id,omitempty"`
	ArchivePlaylistURL string `json:"archive_playlist_url,omitempty"`
	Error              string `json:"error,omitempty"`
}

// ComputeSignature hashes the ordered track URIs so unchanged playlists
// are detected without comparing full track lists.
func ComputeSignature(uris []string) string {
	sum := sha256.Sum256([]byte(strings.Join(uris, ",")))
	return hex.EncodeToString(sum[:])
}

// ArchiveEngine snapshots enabled source playlists into dated archive
// playlists when their contents change.
type ArchiveEngine struct {
	catalog    services.Catalog
	tokens     TokenRefresher
	users      UserStore
	sources    SourcePlaylistStore
	snapshots  SnapshotStore
	namePrefix string
	logger     *log.Logger

	// now is swappable for deterministic archive names in tests.
	now func() time.Time
}

// NewArchiveEngine creates an ArchiveEngine with the provided dependencies.
// namePrefix defaults to "Daylist Archive".
func NewArchiveEngine(
	catalog services.Catalog,
	tokens TokenRefresher,
	users UserStore,
	sources SourcePlaylistStore,
	snapshots SnapshotStore,
	namePrefix string,
	logger *log.Logger,
) *ArchiveEngine {
	if namePrefix == "" {
		namePrefix = "Daylist Archive"
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ArchiveEngine{
		catalog:    catalog,
		tokens:     tokens,
		users:      users,
		sources:    sources,
		snapshots:  snapshots,
		namePrefix: namePrefix,
		logger:     logger,
		now:        time.Now,
	}
}

// RunForAll archives every enabled source playlist sequentially. One
// playlist failing never stops the batch; its error is recorded on the
// playlist and reported in its result.
func (e *ArchiveEngine) RunForAll(ctx context.Context, progress chan<- ProgressUpdate) ([]ArchiveResult, error) {
	enabled, err := e.sources.ListEnabled()
	if err != nil {
		return nil, err
	}

	e.logger.Info("running archive", "playlists", len(enabled))

	results := make([]ArchiveResult, 0, len(enabled))
	archived := 0

	for i, source := range enabled {
		sendProgress(progress, archiveUpdate(i+1, len(enabled), source.Name()))

		result := e.archiveOne(ctx, source)
		results = append(results, result)

		if result.Archived {
			archived++
		}

		status := "no changes"
		if result.Archived {
			status = "archived"
		}
		if result.Error != "" {
			status = "failed"
		}
		e.logger.Info("archive pass", "playlist", source.Name(), "status", status, "tracks", result.TrackCount)

		sendProgress(progress, archiveResultUpdate(i+1, len(enabled), source.Name(), result))
	}

	e.logger.Info("archive complete", "archived", archived, "total", len(enabled))

	return results, nil
}

// archiveOne runs the full archival flow for one source playlist. Every
// failure is captured into the result and recorded as the playlist's last
// error instead of propagating.
func (e *ArchiveEngine) archiveOne(ctx context.Context, source *models.SourcePlaylist) ArchiveResult {
	result := ArchiveResult{SourcePlaylistID: source.ID(), SourceName: source.Name()}

	fail := func(message string) ArchiveResult {
		result.Error = message
		if err := e.sources.SetLastError(source.ID(), message); err != nil {
			e.logger.Error("failed to record playlist error", "playlist", source.ID(), "error", err)
		}
		return result
	}

	user, err := e.users.Get(source.UserID())
	if err != nil {
		return fail(err.Error())
	}

	token, updated, err := e.tokens.EnsureValidToken(ctx, user)
	if err != nil {
		return fail(err.Error())
	}
	if updated {
		if err := e.users.Update(user); err != nil {
			return fail(err.Error())
		}
	}

	entries, err := e.catalog.PlaylistTracks(ctx, token, source.SpotifyPlaylistID())
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistRestricted) {
			return fail(restrictedPlaylistError)
		}
		return fail(err.Error())
	}

	tracks := archiveTracks(entries)
	if len(tracks) == 0 {
		return fail(emptyPlaylistError)
	}

	uris := make([]string, len(tracks))
	for i, track := range tracks {
		uris[i] = track.URI
	}
	signature := ComputeSignature(uris)

	latest, err := e.snapshots.Latest(user.ID(), source.ID())
	if err != nil {
		return fail(err.Error())
	}

	if latest != nil && latest.Signature() == signature {
		if err := e.sources.SetLastError(source.ID(), ""); err != nil {
			e.logger.Error("failed to clear playlist error", "playlist", source.ID(), "error", err)
		}
		result.TrackCount = len(tracks)
		return result
	}

	dateStr := e.now().UTC().Format("2006-01-02 15:04")
	archiveName := fmt.Sprintf("%s — %s", e.namePrefix, dateStr)
	description := fmt.Sprintf("Archived from %q on %s", source.Name(), dateStr)

	created, err := e.catalog.CreatePlaylist(ctx, token, user.SpotifyUserID(), archiveName, description)
	if err != nil {
		return fail(err.Error())
	}

	if err := e.catalog.AddTracks(ctx, token, created.ID, uris); err != nil {
		return fail(err.Error())
	}

	sequence, err := e.snapshots.NextSequence()
	if err != nil {
		return fail(err.Error())
	}

	snapshot := models.NewSnapshot(sequence, user.ID(), source.ID(), signature)
	snapshot.SetArchivePlaylistID(created.ID)
	snapshot.SetArchivePlaylistURL(created.ExternalURL)
	snapshot.SetTrackCount(len(tracks))

	snapshotTracks := make([]*models.SnapshotTrack, len(tracks))
	for i, track := range tracks {
		snapshotTracks[i] = models.NewSnapshotTrack("", i, track)
	}
	snapshot.SetTracks(snapshotTracks)

	if err := e.snapshots.Create(snapshot); err != nil {
		return fail(err.Error())
	}

	if err := e.sources.SetLastError(source.ID(), ""); err != nil {
		e.logger.Error("failed to clear playlist error", "playlist", source.ID(), "error", err)
	}

	result.Archived = true
	result.TrackCount = len(tracks)
	result.SnapshotID = snapshot.ID()
	result.ArchivePlaylistURL = created.ExternalURL

	return result
}

// archiveTracks normalizes playlist entries into the archived form,
// dropping entries without a URI.
func archiveTracks(entries []models.PlaylistEntry) []models.ArchiveTrack {
	tracks := make([]models.ArchiveTrack, 0, len(entries))

	for _, entry := range entries {
		if entry.URI == "" {
			continue
		}

		track := models.ArchiveTrack{
			URI:           entry.URI,
			Name:          entry.Name,
			Artist:        strings.Join(entry.Artists, ", "),
			Album:         entry.AlbumName,
			AlbumImageURL: services.AlbumImageURL(entry.AlbumImages),
			DurationMS:    entry.DurationMS,
		}

		if track.Name == "" {
			track.Name = "Unknown"
		}
		if track.Artist == "" {
			track.Artist = "Unknown"
		}
		if track.Album == "" {
			track.Album = "Unknown"
		}

		tracks = append(tracks, track)
	}

	return tracks
}
