package models

import (
	"fmt"

	"github.com/desertthunder/encore/internal/shared"
)

// Snapshot is one archived copy of a source playlist's contents, keyed by
// a content signature so unchanged playlists are stored once.
type Snapshot struct {
	entity

	userID             string
	sourcePlaylistID   string
	signature          string
	archivePlaylistID  string
	archivePlaylistURL string
	trackCount         int

	tracks []*SnapshotTrack
}

// NewSnapshot records an archived playlist state.
func NewSnapshot(sequence int, userID, sourcePlaylistID, signature string) *Snapshot {
	return &Snapshot{
		entity:           newEntity(sequence),
		userID:           userID,
		sourcePlaylistID: sourcePlaylistID,
		signature:        signature,
	}
}

func (s *Snapshot) UserID() string             { return s.userID }
func (s *Snapshot) SourcePlaylistID() string   { return s.sourcePlaylistID }
func (s *Snapshot) Signature() string          { return s.signature }
func (s *Snapshot) ArchivePlaylistID() string  { return s.archivePlaylistID }
func (s *Snapshot) ArchivePlaylistURL() string { return s.archivePlaylistURL }
func (s *Snapshot) TrackCount() int            { return s.trackCount }
func (s *Snapshot) Tracks() []*SnapshotTrack   { return s.tracks }

func (s *Snapshot) SetUserID(id string)             { s.userID = id }
func (s *Snapshot) SetSourcePlaylistID(id string)   { s.sourcePlaylistID = id }
func (s *Snapshot) SetSignature(sig string)         { s.signature = sig }
func (s *Snapshot) SetArchivePlaylistID(id string)  { s.archivePlaylistID = id }
func (s *Snapshot) SetArchivePlaylistURL(u string)  { s.archivePlaylistURL = u }
func (s *Snapshot) SetTrackCount(count int)         { s.trackCount = count }
func (s *Snapshot) SetTracks(tracks []*SnapshotTrack) { s.tracks = tracks }

// Validate checks the snapshot references its inputs and carries a signature.
func (s *Snapshot) Validate() error {
	if s.userID == "" {
		return fmt.Errorf("%w: snapshot requires a user id", shared.ErrInvalidInput)
	}

	if s.sourcePlaylistID == "" {
		return fmt.Errorf("%w: snapshot requires a source playlist id", shared.ErrInvalidInput)
	}

	if s.signature == "" {
		return fmt.Errorf("%w: snapshot requires a content signature", shared.ErrInvalidInput)
	}

	return nil
}

// SnapshotTrack is one ordered entry of an archived playlist.
type SnapshotTrack struct {
	id            string
	snapshotID    string
	position      int
	trackURI      string
	trackName     string
	artistName    string
	albumName     string
	albumImageURL string
	durationMS    int
}

// NewSnapshotTrack attaches an archived entry to a snapshot at a 0-based position.
func NewSnapshotTrack(snapshotID string, position int, track ArchiveTrack) *SnapshotTrack {
	return &SnapshotTrack{
		snapshotID:    snapshotID,
		position:      position,
		trackURI:      track.URI,
		trackName:     track.Name,
		artistName:    track.Artist,
		albumName:     track.Album,
		albumImageURL: track.AlbumImageURL,
		durationMS:    track.DurationMS,
	}
}

func (t *SnapshotTrack) ID() string            { return t.id }
func (t *SnapshotTrack) SnapshotID() string    { return t.snapshotID }
func (t *SnapshotTrack) Position() int         { return t.position }
func (t *SnapshotTrack) TrackURI() string      { return t.trackURI }
func (t *SnapshotTrack) TrackName() string     { return t.trackName }
func (t *SnapshotTrack) ArtistName() string    { return t.artistName }
func (t *SnapshotTrack) AlbumName() string     { return t.albumName }
func (t *SnapshotTrack) AlbumImageURL() string { return t.albumImageURL }
func (t *SnapshotTrack) DurationMS() int       { return t.durationMS }

func (t *SnapshotTrack) SetID(id string)            { t.id = id }
func (t *SnapshotTrack) SetSnapshotID(id string)    { t.snapshotID = id }
func (t *SnapshotTrack) SetPosition(position int)   { t.position = position }
func (t *SnapshotTrack) SetTrackURI(uri string)     { t.trackURI = uri }
func (t *SnapshotTrack) SetTrackName(name string)   { t.trackName = name }
func (t *SnapshotTrack) SetArtistName(name string)  { t.artistName = name }
func (t *SnapshotTrack) SetAlbumName(name string)   { t.albumName = name }
func (t *SnapshotTrack) SetAlbumImageURL(u string)  { t.albumImageURL = u }
func (t *SnapshotTrack) SetDurationMS(ms int)       { t.durationMS = ms }
