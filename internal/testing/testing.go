// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"golang.org/x/oauth2"
)

// MockCatalog is a configurable test double for [services.Catalog]
type MockCatalog struct {
	Profile       *models.Profile
	Playlists     []models.Playlist
	Tracks        map[string][]models.PlaylistEntry
	SearchResults map[string][]models.CatalogTrack
	Created       *models.CreatedPlaylist
	AddedURIs     [][]string

	MeErr        error
	PlaylistsErr error
	TracksErr    error
	SearchErr    error
	CreateErr    error
	AddErr       error
}

func (m *MockCatalog) Me(ctx context.Context, token string) (*models.Profile, error) {
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	return m.Profile, nil
}

func (m *MockCatalog) UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, token, playlistID string) ([]models.PlaylistEntry, error) {
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.Tracks[playlistID], nil
}

func (m *MockCatalog) SearchTracks(ctx context.Context, token, query string, limit int) ([]models.CatalogTrack, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResults[query], nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, token, userID, name, description string) (*models.CreatedPlaylist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Created, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, token, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedURIs = append(m.AddedURIs, uris)
	return nil
}

// MockSpotify extends [MockCatalog] with the OAuth surface the CLI needs.
type MockSpotify struct {
	MockCatalog

	AuthURLValue string
	Token        *oauth2.Token
	ExchangeErr  error
	ValidToken   string
	Refreshed    bool
	EnsureErr    error
	Daylist      *models.Playlist
	DaylistErr   error
}

func (m *MockSpotify) AuthURL(state string) string {
	return m.AuthURLValue + "?state=" + state
}

func (m *MockSpotify) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	return m.Token, nil
}

func (m *MockSpotify) EnsureValidToken(ctx context.Context, user *models.User) (string, bool, error) {
	if m.EnsureErr != nil {
		return "", false, m.EnsureErr
	}
	return m.ValidToken, m.Refreshed, nil
}

func (m *MockSpotify) FindDaylist(ctx context.Context, token string) (*models.Playlist, error) {
	if m.DaylistErr != nil {
		return nil, m.DaylistErr
	}
	return m.Daylist, nil
}

// MockCompleter is a test double for [services.Completer]
type MockCompleter struct {
	Responses []string
	Err       error
	Calls     int
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	call := m.Calls
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if call < len(m.Responses) {
		return m.Responses[call], nil
	}
	if len(m.Responses) > 0 {
		return m.Responses[len(m.Responses)-1], nil
	}
	return "", nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
