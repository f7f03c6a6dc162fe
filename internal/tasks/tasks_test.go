package tasks

import (
	"context"
	"sync"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

type mockCatalog struct {
	mu sync.Mutex

	tracks    map[string][]models.PlaylistEntry
	tracksErr error

	search      map[string][]models.CatalogTrack
	searchErr   error
	searchCalls []string

	created      *models.CreatedPlaylist
	createErr    error
	createdNames []string

	added  [][]string
	addErr error
}

func (m *mockCatalog) Me(ctx context.Context, token string) (*models.Profile, error) {
	return nil, nil
}

func (m *mockCatalog) UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error) {
	return nil, nil
}

func (m *mockCatalog) PlaylistTracks(ctx context.Context, token, playlistID string) ([]models.PlaylistEntry, error) {
	if m.tracksErr != nil {
		return nil, m.tracksErr
	}
	return m.tracks[playlistID], nil
}

func (m *mockCatalog) SearchTracks(ctx context.Context, token, query string, limit int) ([]models.CatalogTrack, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, query)
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.search[query], nil
}

func (m *mockCatalog) CreatePlaylist(ctx context.Context, token, userID, name, description string) (*models.CreatedPlaylist, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createdNames = append(m.createdNames, name)
	return m.created, nil
}

func (m *mockCatalog) AddTracks(ctx context.Context, token, playlistID string, uris []string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, uris)
	return nil
}

type mockCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	call := m.calls
	m.calls++

	if call < len(m.errs) && m.errs[call] != nil {
		return "", m.errs[call]
	}
	if call < len(m.responses) {
		return m.responses[call], nil
	}
	if len(m.responses) > 0 {
		return m.responses[len(m.responses)-1], nil
	}
	return "{}", nil
}

type mockTokens struct {
	token   string
	updated bool
	err     error
}

func (m *mockTokens) EnsureValidToken(ctx context.Context, user *models.User) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	return m.token, m.updated, nil
}

type mockUserStore struct {
	users   map[string]*models.User
	updates int
}

func (m *mockUserStore) Get(id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, shared.ErrNotAuthenticated
}

func (m *mockUserStore) Update(user *models.User) error {
	m.updates++
	return nil
}

type mockSourceStore struct {
	enabled map[string]*models.SourcePlaylist
	all     []*models.SourcePlaylist
	errors  map[string]string
}

func (m *mockSourceStore) Enabled(userID string) (*models.SourcePlaylist, error) {
	return m.enabled[userID], nil
}

func (m *mockSourceStore) ListEnabled() ([]*models.SourcePlaylist, error) {
	return m.all, nil
}

func (m *mockSourceStore) SetLastError(id, message string) error {
	if m.errors == nil {
		m.errors = map[string]string{}
	}
	m.errors[id] = message
	return nil
}

type mockRecommendationStore struct {
	sequence int
	created  []*models.Recommendation
	saved    map[string][2]string
}

func (m *mockRecommendationStore) NextSequence() (int, error) {
	m.sequence++
	return m.sequence, nil
}

func (m *mockRecommendationStore) Create(rec *models.Recommendation) error {
	if rec.ID() == "" {
		rec.SetID(shared.GenerateID())
	}
	m.created = append(m.created, rec)
	return nil
}

func (m *mockRecommendationStore) Get(id string) (*models.Recommendation, error) {
	for _, rec := range m.created {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (m *mockRecommendationStore) MarkSaved(id, playlistID, playlistURL string) error {
	if m.saved == nil {
		m.saved = map[string][2]string{}
	}
	m.saved[id] = [2]string{playlistID, playlistURL}

	for _, rec := range m.created {
		if rec.ID() == id {
			rec.SetSavedPlaylistID(playlistID)
			rec.SetSavedPlaylistURL(playlistURL)
		}
	}
	return nil
}

type mockSnapshotStore struct {
	sequence int
	latest   map[string]*models.Snapshot
	created  []*models.Snapshot
}

func (m *mockSnapshotStore) NextSequence() (int, error) {
	m.sequence++
	return m.sequence, nil
}

func (m *mockSnapshotStore) Create(snapshot *models.Snapshot) error {
	if snapshot.ID() == "" {
		snapshot.SetID(shared.GenerateID())
	}
	m.created = append(m.created, snapshot)
	return nil
}

func (m *mockSnapshotStore) Latest(userID, sourcePlaylistID string) (*models.Snapshot, error) {
	return m.latest[userID+"/"+sourcePlaylistID], nil
}

func newTestUser(id string) *models.User {
	user := models.NewUser(1, models.Profile{ID: "spotify_" + id})
	user.SetID(id)
	user.SetTokens("access", "refresh", 3600)
	return user
}

func newTestSource(id, userID, playlistID, name string) *models.SourcePlaylist {
	source := models.NewSourcePlaylist(1, userID, models.Playlist{ID: playlistID, Name: name})
	source.SetID(id)
	return source
}
