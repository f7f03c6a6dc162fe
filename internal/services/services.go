// package services holds the HTTP clients for external APIs
//
// Spotify (catalog + OAuth), OpenAI-compatible chat completions
package services

import (
	"context"

	"github.com/desertthunder/encore/internal/models"
)

// Catalog defines the music catalog operations the pipelines depend on.
// Access tokens are passed per call so one client serves every stored user.
type Catalog interface {
	// Me retrieves the profile of the token's owner.
	Me(ctx context.Context, token string) (*models.Profile, error)

	// UserPlaylists retrieves every playlist of the token's owner,
	// following pagination to the end.
	UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error)

	// PlaylistTracks retrieves every track of a playlist in order.
	PlaylistTracks(ctx context.Context, token, playlistID string) ([]models.PlaylistEntry, error)

	// SearchTracks runs a catalog search and returns ranked candidates.
	SearchTracks(ctx context.Context, token, query string, limit int) ([]models.CatalogTrack, error)

	// CreatePlaylist creates a private playlist owned by the given user.
	CreatePlaylist(ctx context.Context, token, userID, name, description string) (*models.CreatedPlaylist, error)

	// AddTracks appends track URIs to a playlist in API-sized batches.
	AddTracks(ctx context.Context, token, playlistID string, uris []string) error
}

// Completer defines the chat completion call the suggestion generator depends on.
type Completer interface {
	// Complete sends a prompt pair and returns the raw completion text.
	Complete(ctx context.Context, system, user string) (string, error)
}
