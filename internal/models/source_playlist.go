package models

import (
	"fmt"

	"github.com/desertthunder/encore/internal/shared"
)

// SourcePlaylist is the playlist a user selected as the input for
// recommendation runs and scheduled archival.
type SourcePlaylist struct {
	entity

	userID            string
	spotifyPlaylistID string
	name              string
	imageURL          string
	trackCount        int
	enabled           bool
	lastError         string
}

// NewSourcePlaylist records a playlist selection for a user.
func NewSourcePlaylist(sequence int, userID string, playlist Playlist) *SourcePlaylist {
	return &SourcePlaylist{
		entity:            newEntity(sequence),
		userID:            userID,
		spotifyPlaylistID: playlist.ID,
		name:              playlist.Name,
		imageURL:          playlist.ImageURL,
		trackCount:        playlist.TrackCount,
		enabled:           true,
	}
}

func (p *SourcePlaylist) UserID() string            { return p.userID }
func (p *SourcePlaylist) SpotifyPlaylistID() string { return p.spotifyPlaylistID }
func (p *SourcePlaylist) Name() string              { return p.name }
func (p *SourcePlaylist) ImageURL() string          { return p.imageURL }
func (p *SourcePlaylist) TrackCount() int           { return p.trackCount }
func (p *SourcePlaylist) Enabled() bool             { return p.enabled }
func (p *SourcePlaylist) LastError() string         { return p.lastError }

func (p *SourcePlaylist) SetUserID(id string)            { p.userID = id }
func (p *SourcePlaylist) SetSpotifyPlaylistID(id string) { p.spotifyPlaylistID = id }
func (p *SourcePlaylist) SetName(name string)            { p.name = name }
func (p *SourcePlaylist) SetImageURL(url string)         { p.imageURL = url }
func (p *SourcePlaylist) SetTrackCount(count int)        { p.trackCount = count }
func (p *SourcePlaylist) SetEnabled(enabled bool)        { p.enabled = enabled }
func (p *SourcePlaylist) SetLastError(msg string)        { p.lastError = msg }

// Validate checks the selection references a user and a catalog playlist.
func (p *SourcePlaylist) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("%w: source playlist requires a user id", shared.ErrInvalidInput)
	}

	if p.spotifyPlaylistID == "" {
		return fmt.Errorf("%w: source playlist requires a spotify playlist id", shared.ErrInvalidInput)
	}

	return nil
}
