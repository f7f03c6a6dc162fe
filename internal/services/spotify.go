// Spotify API implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// addTracksBatchSize is the API ceiling for a single playlist append.
const addTracksBatchSize = 100

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	PreviewURL   string          `json:"preview_url"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// Owner identifies the owner of a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Owner  Owner                `json:"owner"`
	Tracks simplePlaylistTracks `json:"tracks"`
	Images []SpotifyImage       `json:"images"`
	URI    string               `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items []SpotifySimplePlaylist `json:"items"`
	Total int                     `json:"total"`
	Next  *string                 `json:"next"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents one page of a playlist's tracks.
type SpotifyPaginatedTracks struct {
	Items []SpotifyPlaylistTrack `json:"items"`
	Total int                    `json:"total"`
	Next  *string                `json:"next"`
}

// SpotifyService implements [Catalog] against the Spotify Web API.
// Uses [oauth2] for the authorization-code and refresh flows.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token set.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Refresh trades a refresh token for a fresh token set.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return token, nil
}

// EnsureValidToken returns a usable access token for the user, refreshing
// when the stored one has expired. The caller persists the user when
// updated is true.
func (s *SpotifyService) EnsureValidToken(ctx context.Context, user *models.User) (string, bool, error) {
	if !user.TokenExpired() {
		return user.AccessToken(), false, nil
	}

	if user.RefreshToken() == "" {
		return "", false, fmt.Errorf("%w: no refresh token stored", shared.ErrNotAuthenticated)
	}

	token, err := s.Refresh(ctx, user.RefreshToken())
	if err != nil {
		return "", false, err
	}

	expiresIn := int(time.Until(token.Expiry).Seconds())
	user.SetTokens(token.AccessToken, token.RefreshToken, expiresIn)

	return token.AccessToken, true, nil
}

// doRequest performs an authenticated request against the Spotify API and
// decodes the JSON response into result when provided.
func (s *SpotifyService) doRequest(ctx context.Context, token, method, endpoint string, body, result any) error {
	apiURL := s.baseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status %d", shared.ErrPlaylistRestricted, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// nextEndpoint strips the API base from a pagination URL so it can be
// passed back through doRequest.
func (s *SpotifyService) nextEndpoint(next *string) string {
	if next == nil {
		return ""
	}
	return strings.TrimPrefix(*next, s.baseURL)
}

// Me retrieves the current authenticated user's profile.
func (s *SpotifyService) Me(ctx context.Context, token string) (*models.Profile, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, token, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	profile := models.Profile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}

	if len(user.Images) > 0 {
		profile.AvatarURL = user.Images[0].URL
	}

	return &profile, nil
}

// UserPlaylists retrieves every playlist of the current user, following
// pagination until the API reports no further page.
func (s *SpotifyService) UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error) {
	var playlists []models.Playlist
	endpoint := "/me/playlists?limit=50"

	for endpoint != "" {
		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			playlist := models.Playlist{
				ID:         item.ID,
				Name:       item.Name,
				TrackCount: item.Tracks.Total,
				Owner:      item.Owner.DisplayName,
				OwnerID:    item.Owner.ID,
			}

			if len(item.Images) > 0 {
				playlist.ImageURL = item.Images[0].URL
			}

			playlists = append(playlists, playlist)
		}

		endpoint = s.nextEndpoint(page.Next)
	}

	return playlists, nil
}

// PlaylistTracks retrieves every track of a playlist in order, following
// pagination. Local and unavailable entries come back without a URI and
// are dropped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, token, playlistID string) ([]models.PlaylistEntry, error) {
	var entries []models.PlaylistEntry
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=100", url.PathEscape(playlistID))

	for endpoint != "" {
		var page SpotifyPaginatedTracks
		if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.URI == "" {
				continue
			}

			entry := models.PlaylistEntry{
				URI:        item.Track.URI,
				Name:       item.Track.Name,
				AlbumName:  item.Track.Album.Name,
				DurationMS: item.Track.DurationMS,
			}

			for _, artist := range item.Track.Artists {
				entry.Artists = append(entry.Artists, artist.Name)
			}

			for _, image := range item.Track.Album.Images {
				entry.AlbumImages = append(entry.AlbumImages, image.URL)
			}

			entries = append(entries, entry)
		}

		endpoint = s.nextEndpoint(page.Next)
	}

	return entries, nil
}

// SearchTracks runs a track search and returns the ranked candidates.
func (s *SpotifyService) SearchTracks(ctx context.Context, token, query string, limit int) ([]models.CatalogTrack, error) {
	if limit <= 0 {
		limit = 3
	}

	endpoint := fmt.Sprintf("/search?type=track&q=%s&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.CatalogTrack, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		track := models.CatalogTrack{
			ID:          item.ID,
			URI:         item.URI,
			Name:        item.Name,
			AlbumName:   item.Album.Name,
			PreviewURL:  item.PreviewURL,
			ExternalURL: item.ExternalURLs.Spotify,
			DurationMS:  item.DurationMS,
		}

		for _, artist := range item.Artists {
			track.Artists = append(track.Artists, artist.Name)
		}

		if len(item.Album.Images) > 0 {
			track.AlbumImageURL = item.Album.Images[0].URL
		}

		tracks = append(tracks, track)
	}

	return tracks, nil
}

// CreatePlaylist creates a private playlist owned by the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, token, userID, name, description string) (*models.CreatedPlaylist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	}

	var response struct {
		ID           string       `json:"id"`
		ExternalURLs externalURLs `json:"external_urls"`
	}

	if err := s.doRequest(ctx, token, http.MethodPost, endpoint, body, &response); err != nil {
		return nil, err
	}

	return &models.CreatedPlaylist{
		ID:          response.ID,
		ExternalURL: response.ExternalURLs.Spotify,
	}, nil
}

// AddTracks appends track URIs to a playlist, splitting into the
// API's 100-URI batches.
func (s *SpotifyService) AddTracks(ctx context.Context, token, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += addTracksBatchSize {
		end := start + addTracksBatchSize
		if end > len(uris) {
			end = len(uris)
		}

		body := map[string]any{"uris": uris[start:end]}

		if err := s.doRequest(ctx, token, http.MethodPost, endpoint, body, nil); err != nil {
			return err
		}
	}

	return nil
}

// FindDaylist locates the Spotify-generated daylist among the user's playlists.
func (s *SpotifyService) FindDaylist(ctx context.Context, token string) (*models.Playlist, error) {
	playlists, err := s.UserPlaylists(ctx, token)
	if err != nil {
		return nil, err
	}

	for _, playlist := range playlists {
		if playlist.OwnerID == "spotify" && strings.Contains(strings.ToLower(playlist.Name), "daylist") {
			return &playlist, nil
		}
	}

	return nil, fmt.Errorf("%w: no daylist among %d playlists", shared.ErrPlaylistNotFound, len(playlists))
}

// AlbumImageURL picks the archive display image for an album: the second
// (smaller) image when more than one exists, otherwise the first.
func AlbumImageURL(images []string) string {
	switch {
	case len(images) > 1:
		return images[1]
	case len(images) == 1:
		return images[0]
	default:
		return ""
	}
}
