package models

// Mode selects the sampling policy feeding the suggestion generator.
type Mode string

const (
	ModeRecent  Mode = "recent"  // trailing additions, trend-following
	ModeOverall Mode = "overall" // representative sample of the whole playlist
)

// Valid reports whether the mode is one of the two supported values.
func (m Mode) Valid() bool {
	return m == ModeRecent || m == ModeOverall
}

// Playlist represents a playlist summary from the catalog listing.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
	TrackCount int    `json:"track_count"`
	Owner      string `json:"owner,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
}

// PlaylistEntry represents one track inside a fetched playlist.
// Entries without a URI are local or unavailable tracks and get filtered out.
type PlaylistEntry struct {
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	AlbumName   string   `json:"album_name"`
	AlbumImages []string `json:"album_images"`
	DurationMS  int      `json:"duration_ms"`
}

// CatalogTrack represents a ranked candidate from the catalog search API.
type CatalogTrack struct {
	ID            string   `json:"id"`
	URI           string   `json:"uri"`
	Name          string   `json:"name"`
	Artists       []string `json:"artists"`
	AlbumName     string   `json:"album_name"`
	AlbumImageURL string   `json:"album_image_url"`
	PreviewURL    string   `json:"preview_url"`
	ExternalURL   string   `json:"external_url"`
	DurationMS    int      `json:"duration_ms"`
}

// TrackInfo is the minimal track description fed to the suggestion generator.
type TrackInfo struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// Suggestion is one unresolved song suggestion from the generator.
type Suggestion struct {
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
	Reason     string `json:"reason"`
}

// ResolvedTrack is a Suggestion plus catalog identifiers when resolution
// succeeded. Identifier fields stay empty when search found nothing.
type ResolvedTrack struct {
	Suggestion

	SpotifyTrackID string `json:"spotify_track_id,omitempty"`
	TrackURI       string `json:"track_uri,omitempty"`
	SpotifyURL     string `json:"spotify_url,omitempty"`
	AlbumName      string `json:"album_name,omitempty"`
	AlbumImageURL  string `json:"album_image_url,omitempty"`
	PreviewURL     string `json:"preview_url,omitempty"`
	DurationMS     int    `json:"duration_ms,omitempty"`
}

// Resolved reports whether the suggestion was reconciled to a playable track.
func (t ResolvedTrack) Resolved() bool {
	return t.TrackURI != ""
}

// ArchiveTrack is the normalized form of a playlist entry captured into a snapshot.
type ArchiveTrack struct {
	URI           string `json:"uri"`
	Name          string `json:"name"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	AlbumImageURL string `json:"album_image_url,omitempty"`
	DurationMS    int    `json:"duration_ms"`
}

// CreatedPlaylist holds the identifiers returned by the catalog after playlist creation.
type CreatedPlaylist struct {
	ID          string `json:"id"`
	ExternalURL string `json:"external_url"`
}

// Profile represents the authenticated catalog user's profile.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
