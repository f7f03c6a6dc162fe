package models

import (
	"fmt"

	"github.com/desertthunder/encore/internal/shared"
)

// Recommendation is one completed suggestion run against a source playlist.
type Recommendation struct {
	entity

	userID           string
	sourcePlaylistID string
	mode             Mode
	savedPlaylistID  string
	savedPlaylistURL string

	tracks []*RecommendedTrack
}

// NewRecommendation records a suggestion run before its tracks are attached.
func NewRecommendation(sequence int, userID, sourcePlaylistID string, mode Mode) *Recommendation {
	return &Recommendation{
		entity:           newEntity(sequence),
		userID:           userID,
		sourcePlaylistID: sourcePlaylistID,
		mode:             mode,
	}
}

func (r *Recommendation) UserID() string             { return r.userID }
func (r *Recommendation) SourcePlaylistID() string   { return r.sourcePlaylistID }
func (r *Recommendation) Mode() Mode                 { return r.mode }
func (r *Recommendation) SavedPlaylistID() string    { return r.savedPlaylistID }
func (r *Recommendation) SavedPlaylistURL() string   { return r.savedPlaylistURL }
func (r *Recommendation) Tracks() []*RecommendedTrack { return r.tracks }

func (r *Recommendation) SetUserID(id string)           { r.userID = id }
func (r *Recommendation) SetSourcePlaylistID(id string) { r.sourcePlaylistID = id }
func (r *Recommendation) SetMode(mode Mode)             { r.mode = mode }
func (r *Recommendation) SetSavedPlaylistID(id string)  { r.savedPlaylistID = id }
func (r *Recommendation) SetSavedPlaylistURL(u string)  { r.savedPlaylistURL = u }
func (r *Recommendation) SetTracks(tracks []*RecommendedTrack) { r.tracks = tracks }

// Saved reports whether this run was already exported as a playlist.
func (r *Recommendation) Saved() bool {
	return r.savedPlaylistURL != ""
}

// Validate checks the run references its inputs and a known mode.
func (r *Recommendation) Validate() error {
	if r.userID == "" {
		return fmt.Errorf("%w: recommendation requires a user id", shared.ErrInvalidInput)
	}

	if r.sourcePlaylistID == "" {
		return fmt.Errorf("%w: recommendation requires a source playlist id", shared.ErrInvalidInput)
	}

	if !r.mode.Valid() {
		return fmt.Errorf("%w: unknown recommendation mode %q", shared.ErrInvalidInput, r.mode)
	}

	return nil
}

// RecommendedTrack is one ordered entry of a recommendation run. Catalog
// identifier fields are empty when the suggestion could not be resolved.
type RecommendedTrack struct {
	id               string
	recommendationID string
	position         int
	trackName        string
	artistName       string
	reason           string
	spotifyTrackID   string
	trackURI         string
	spotifyURL       string
	albumName        string
	albumImageURL    string
	previewURL       string
	durationMS       int
}

// NewRecommendedTrack attaches a resolved suggestion to a run at a 1-based position.
func NewRecommendedTrack(recommendationID string, position int, track ResolvedTrack) *RecommendedTrack {
	return &RecommendedTrack{
		recommendationID: recommendationID,
		position:         position,
		trackName:        track.TrackName,
		artistName:       track.ArtistName,
		reason:           track.Reason,
		spotifyTrackID:   track.SpotifyTrackID,
		trackURI:         track.TrackURI,
		spotifyURL:       track.SpotifyURL,
		albumName:        track.AlbumName,
		albumImageURL:    track.AlbumImageURL,
		previewURL:       track.PreviewURL,
		durationMS:       track.DurationMS,
	}
}

func (t *RecommendedTrack) ID() string               { return t.id }
func (t *RecommendedTrack) RecommendationID() string { return t.recommendationID }
func (t *RecommendedTrack) Position() int            { return t.position }
func (t *RecommendedTrack) TrackName() string        { return t.trackName }
func (t *RecommendedTrack) ArtistName() string       { return t.artistName }
func (t *RecommendedTrack) Reason() string           { return t.reason }
func (t *RecommendedTrack) SpotifyTrackID() string   { return t.spotifyTrackID }
func (t *RecommendedTrack) TrackURI() string         { return t.trackURI }
func (t *RecommendedTrack) SpotifyURL() string       { return t.spotifyURL }
func (t *RecommendedTrack) AlbumName() string        { return t.albumName }
func (t *RecommendedTrack) AlbumImageURL() string    { return t.albumImageURL }
func (t *RecommendedTrack) PreviewURL() string       { return t.previewURL }
func (t *RecommendedTrack) DurationMS() int          { return t.durationMS }

func (t *RecommendedTrack) SetID(id string)               { t.id = id }
func (t *RecommendedTrack) SetRecommendationID(id string) { t.recommendationID = id }
func (t *RecommendedTrack) SetPosition(position int)      { t.position = position }
func (t *RecommendedTrack) SetTrackName(name string)      { t.trackName = name }
func (t *RecommendedTrack) SetArtistName(name string)     { t.artistName = name }
func (t *RecommendedTrack) SetReason(reason string)       { t.reason = reason }
func (t *RecommendedTrack) SetSpotifyTrackID(id string)   { t.spotifyTrackID = id }
func (t *RecommendedTrack) SetTrackURI(uri string)        { t.trackURI = uri }
func (t *RecommendedTrack) SetSpotifyURL(u string)        { t.spotifyURL = u }
func (t *RecommendedTrack) SetAlbumName(name string)      { t.albumName = name }
func (t *RecommendedTrack) SetAlbumImageURL(u string)     { t.albumImageURL = u }
func (t *RecommendedTrack) SetPreviewURL(u string)        { t.previewURL = u }
func (t *RecommendedTrack) SetDurationMS(ms int)          { t.durationMS = ms }

// Resolved reports whether the entry carries a playable catalog URI.
func (t *RecommendedTrack) Resolved() bool {
	return t.trackURI != ""
}
