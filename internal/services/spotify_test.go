package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

func newTestSpotifyService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.baseURL = server.URL
	return srv, server
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("With Valid Credentials", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
			"redirect_uri":  "http://localhost:9999/callback",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if srv.Name() != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", srv.Name())
		}

		if srv.config.RedirectURL != "http://localhost:9999/callback" {
			t.Errorf("unexpected redirect URI %s", srv.config.RedirectURL)
		}
	})

	t.Run("Missing Client ID", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_secret": "secret"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Client Secret", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_id": "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default Redirect URI", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if srv.config.RedirectURL != "http://localhost:8080/callback" {
			t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
		}
	})
}

func TestAuthURL(t *testing.T) {
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	authURL := srv.AuthURL("test_state")

	if !strings.Contains(authURL, "accounts.spotify.com") {
		t.Error("auth URL should contain Spotify domain")
	}
	if !strings.Contains(authURL, "test_client_id") {
		t.Error("auth URL should contain client_id")
	}
	if !strings.Contains(authURL, "test_state") {
		t.Error("auth URL should contain state")
	}
	if !strings.Contains(authURL, "playlist-modify-private") {
		t.Error("auth URL should request the playlist write scope")
	}
}

func TestUserPlaylists(t *testing.T) {
	t.Run("Follows Pagination", func(t *testing.T) {
		var baseURL string

		mux := http.NewServeMux()
		mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test_token" {
				t.Errorf("unexpected authorization header %s", r.Header.Get("Authorization"))
			}

			if r.URL.Query().Get("offset") == "" {
				next := baseURL + "/me/playlists?limit=50&offset=50"
				fmt.Fprintf(w, `{"items":[{"id":"pl_1","name":"daylist","owner":{"id":"spotify","display_name":"Spotify"},"tracks":{"total":20},"images":[{"url":"https://img/1"}]}],"next":%q}`, next)
				return
			}

			fmt.Fprint(w, `{"items":[{"id":"pl_2","name":"mine","owner":{"id":"user_1","display_name":"Me"},"tracks":{"total":5}}],"next":null}`)
		})

		srv, server := newTestSpotifyService(t, mux)
		baseURL = server.URL

		playlists, err := srv.UserPlaylists(context.Background(), "test_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists across pages, got %d", len(playlists))
		}

		if playlists[0].ID != "pl_1" || playlists[1].ID != "pl_2" {
			t.Errorf("expected pages in order, got %s then %s", playlists[0].ID, playlists[1].ID)
		}

		if playlists[0].ImageURL != "https://img/1" {
			t.Errorf("expected first image to be used, got %s", playlists[0].ImageURL)
		}
	})
}

func TestPlaylistTracks(t *testing.T) {
	t.Run("Drops Entries Without URIs", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/pl_1/tracks", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items":[
				{"track":{"uri":"spotify:track:a","name":"A","artists":[{"name":"X"},{"name":"Y"}],"album":{"name":"Alb","images":[{"url":"big"},{"url":"small"}]},"duration_ms":1000}},
				{"track":null},
				{"track":{"uri":"","name":"local file"}}
			],"next":null}`)
		})

		srv, _ := newTestSpotifyService(t, mux)

		entries, err := srv.PlaylistTracks(context.Background(), "test_token", "pl_1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(entries) != 1 {
			t.Fatalf("expected a single usable entry, got %d", len(entries))
		}

		if entries[0].URI != "spotify:track:a" {
			t.Errorf("unexpected uri %s", entries[0].URI)
		}

		if len(entries[0].Artists) != 2 {
			t.Errorf("expected both artists, got %v", entries[0].Artists)
		}
	})

	t.Run("Maps Restricted Playlists", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/pl_private/tracks", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		srv, _ := newTestSpotifyService(t, mux)

		_, err := srv.PlaylistTracks(context.Background(), "test_token", "pl_private")
		if !errors.Is(err, shared.ErrPlaylistRestricted) {
			t.Errorf("expected ErrPlaylistRestricted, got %v", err)
		}
	})
}

func TestSearchTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "track" {
			t.Errorf("expected track search, got type %s", r.URL.Query().Get("type"))
		}

		if r.URL.Query().Get("q") != "track:Weird Fishes artist:Radiohead" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}

		fmt.Fprint(w, `{"tracks":{"items":[{"id":"t1","uri":"spotify:track:t1","name":"Weird Fishes","artists":[{"name":"Radiohead"}],"album":{"name":"In Rainbows","images":[{"url":"big"},{"url":"small"},{"url":"tiny"}]},"external_urls":{"spotify":"https://open.spotify.com/track/t1"}}]}}`)
	})

	srv, _ := newTestSpotifyService(t, mux)

	tracks, err := srv.SearchTracks(context.Background(), "test_token", "track:Weird Fishes artist:Radiohead", 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}

	if tracks[0].AlbumImageURL != "big" {
		t.Errorf("expected the first album image, got %s", tracks[0].AlbumImageURL)
	}
}

func TestCreatePlaylistAndAddTracks(t *testing.T) {
	var batches [][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/users/user_1/playlists", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode create body: %v", err)
		}

		if public, ok := body["public"].(bool); !ok || public {
			t.Error("expected created playlist to be private")
		}

		fmt.Fprint(w, `{"id":"new_pl","external_urls":{"spotify":"https://open.spotify.com/playlist/new_pl"}}`)
	})
	mux.HandleFunc("/playlists/new_pl/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode add body: %v", err)
		}

		batches = append(batches, body.URIs)
		fmt.Fprint(w, `{"snapshot_id":"snap"}`)
	})

	srv, _ := newTestSpotifyService(t, mux)

	created, err := srv.CreatePlaylist(context.Background(), "test_token", "user_1", "Daylist Archive", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if created.ID != "new_pl" {
		t.Errorf("unexpected playlist id %s", created.ID)
	}

	uris := make([]string, 250)
	for i := range uris {
		uris[i] = fmt.Sprintf("spotify:track:%d", i)
	}

	if err := srv.AddTracks(context.Background(), "test_token", "new_pl", uris); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(batches) != 3 {
		t.Fatalf("expected 3 batches for 250 uris, got %d", len(batches))
	}

	if len(batches[0]) != 100 || len(batches[1]) != 100 || len(batches[2]) != 50 {
		t.Errorf("unexpected batch sizes %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestFindDaylist(t *testing.T) {
	t.Run("Matches Spotify-Owned Daylist", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items":[
				{"id":"pl_copy","name":"daylist copy","owner":{"id":"user_1"},"tracks":{"total":10}},
				{"id":"pl_day","name":"daylist • chill tuesday","owner":{"id":"spotify"},"tracks":{"total":50}}
			],"next":null}`)
		})

		srv, _ := newTestSpotifyService(t, mux)

		playlist, err := srv.FindDaylist(context.Background(), "test_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if playlist.ID != "pl_day" {
			t.Errorf("expected the spotify-owned daylist, got %s", playlist.ID)
		}
	})

	t.Run("Reports Missing Daylist", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items":[],"next":null}`)
		})

		srv, _ := newTestSpotifyService(t, mux)

		_, err := srv.FindDaylist(context.Background(), "test_token")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestAlbumImageURL(t *testing.T) {
	cases := []struct {
		name   string
		images []string
		want   string
	}{
		{"Multiple Images", []string{"big", "small", "tiny"}, "small"},
		{"Single Image", []string{"only"}, "only"},
		{"No Images", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AlbumImageURL(tc.images); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEnsureValidToken(t *testing.T) {
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	t.Run("Returns Stored Token When Fresh", func(t *testing.T) {
		user := models.NewUser(1, models.Profile{ID: "user_1"})
		user.SetTokens("fresh_access", "refresh", 3600)

		token, updated, err := srv.EnsureValidToken(context.Background(), user)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if updated {
			t.Error("expected no refresh for a fresh token")
		}

		if token != "fresh_access" {
			t.Errorf("unexpected token %s", token)
		}
	})

	t.Run("Fails Without Refresh Token", func(t *testing.T) {
		user := models.NewUser(1, models.Profile{ID: "user_1"})
		user.SetTokens("stale_access", "", 0)

		_, _, err := srv.EnsureValidToken(context.Background(), user)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
