package tasks

import (
	"context"

	"github.com/desertthunder/encore/internal/models"
)

// TokenRefresher hands out a usable access token for a stored user,
// refreshing lazily. The updated flag tells the caller to persist the user.
type TokenRefresher interface {
	EnsureValidToken(ctx context.Context, user *models.User) (token string, updated bool, err error)
}

// UserStore is the slice of the user repository the engines need.
type UserStore interface {
	Get(id string) (*models.User, error)
	Update(user *models.User) error
}

// SourcePlaylistStore exposes source playlist selection and error bookkeeping.
type SourcePlaylistStore interface {
	// Enabled returns the user's enabled source playlist, or nil when
	// none is selected.
	Enabled(userID string) (*models.SourcePlaylist, error)

	// ListEnabled returns every enabled source playlist across users.
	ListEnabled() ([]*models.SourcePlaylist, error)

	// SetLastError records (or clears, with "") the playlist's last
	// archival error.
	SetLastError(id, message string) error
}

// RecommendationStore persists recommendation runs and their tracks.
type RecommendationStore interface {
	NextSequence() (int, error)
	Create(rec *models.Recommendation) error
	Get(id string) (*models.Recommendation, error)
	MarkSaved(id, playlistID, playlistURL string) error
}

// SnapshotStore persists archive snapshots and their tracks.
type SnapshotStore interface {
	NextSequence() (int, error)
	Create(snapshot *models.Snapshot) error

	// Latest returns the most recent snapshot for the pair, or nil when
	// none exists yet.
	Latest(userID, sourcePlaylistID string) (*models.Snapshot, error)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the pipeline.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
