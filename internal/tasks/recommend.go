package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// recentSampleSize is how many trailing tracks feed a recent-mode run.
	recentSampleSize = 15

	// overallSampleCap bounds the systematic sample in overall mode.
	overallSampleCap = 25

	// defaultSearchRate is the search QPS ceiling during resolution.
	defaultSearchRate = 5.0
)

// SampleTracks picks the tracks fed to the generator. Recent mode takes the
// trailing additions; overall mode takes the whole playlist when it is small
// enough, otherwise an evenly-strided sample capped at overallSampleCap.
func SampleTracks(entries []models.PlaylistEntry, mode models.Mode) []models.TrackInfo {
	all := make([]models.TrackInfo, 0, len(entries))
	for _, entry := range entries {
		info := models.TrackInfo{Name: entry.Name, Artist: "Unknown", Album: entry.AlbumName}
		if len(entry.Artists) > 0 {
			info.Artist = entry.Artists[0]
		}
		all = append(all, info)
	}

	if mode == models.ModeRecent {
		if len(all) > recentSampleSize {
			return all[len(all)-recentSampleSize:]
		}
		return all
	}

	if len(all) <= overallSampleCap {
		return all
	}

	step := len(all) / overallSampleCap
	sampled := make([]models.TrackInfo, 0, overallSampleCap)
	for i := 0; i < len(all) && len(sampled) < overallSampleCap; i += step {
		sampled = append(sampled, all[i])
	}

	return sampled
}

// RecommendOpts configures a recommendation run.
type RecommendOpts struct {
	Mode      models.Mode // Sampling mode: recent or overall
	Count     int         // Suggestions to request (default 10)
	RateLimit float64     // Catalog searches per second (default 5)
}

// RecommendEngine runs the sample → generate → resolve → persist pipeline.
type RecommendEngine struct {
	catalog         services.Catalog
	tokens          TokenRefresher
	generator       *SuggestionGenerator
	resolver        *TrackResolver
	users           UserStore
	sources         SourcePlaylistStore
	recommendations RecommendationStore
	logger          *log.Logger
}

// NewRecommendEngine creates a RecommendEngine with the provided dependencies.
func NewRecommendEngine(
	catalog services.Catalog,
	tokens TokenRefresher,
	completer services.Completer,
	users UserStore,
	sources SourcePlaylistStore,
	recommendations RecommendationStore,
	logger *log.Logger,
) *RecommendEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &RecommendEngine{
		catalog:         catalog,
		tokens:          tokens,
		generator:       NewSuggestionGenerator(completer, logger),
		resolver:        NewTrackResolver(catalog, logger),
		users:           users,
		sources:         sources,
		recommendations: recommendations,
		logger:          logger,
	}
}

// Run executes a full recommendation run for the user's enabled source
// playlist and persists the result. Per-suggestion resolution failures
// degrade those entries to unresolved; only generation failure is terminal.
func (e *RecommendEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, userID string, opts RecommendOpts) (*models.Recommendation, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: mode must be %q or %q", shared.ErrInvalidArgument, models.ModeRecent, models.ModeOverall)
	}

	user, err := e.users.Get(userID)
	if err != nil {
		return nil, err
	}

	token, err := e.usableToken(ctx, user)
	if err != nil {
		return nil, err
	}

	source, err := e.sources.Enabled(user.ID())
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: no source playlist selected", shared.ErrPlaylistNotFound)
	}

	sendProgress(progress, fetchSourceUpdate(source.Name()))

	entries, err := e.catalog.PlaylistTracks(ctx, token, source.SpotifyPlaylistID())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: source playlist is empty", shared.ErrInvalidInput)
	}

	sample := SampleTracks(entries, opts.Mode)
	sendProgress(progress, sampleUpdate(len(sample), len(entries), opts.Mode))

	count := opts.Count
	if count <= 0 {
		count = defaultSuggestionCount
	}
	sendProgress(progress, generateUpdate(count))

	suggestions, err := e.generator.Generate(ctx, sample, opts.Mode, count)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, resolveUpdate(0, len(suggestions), nil))
	resolved := e.resolveAll(ctx, progress, token, suggestions, opts.RateLimit)

	resolvedCount := 0
	tracks := make([]*models.RecommendedTrack, len(resolved))
	for i, track := range resolved {
		tracks[i] = models.NewRecommendedTrack("", i+1, track)
		if track.Resolved() {
			resolvedCount++
		}
	}

	sendProgress(progress, persistUpdate(resolvedCount, len(resolved)))

	sequence, err := e.recommendations.NextSequence()
	if err != nil {
		return nil, err
	}

	rec := models.NewRecommendation(sequence, user.ID(), source.ID(), opts.Mode)
	rec.SetTracks(tracks)

	if err := e.recommendations.Create(rec); err != nil {
		return nil, err
	}

	e.logger.Info("recommendation run complete",
		"recommendation", rec.ID(),
		"mode", opts.Mode,
		"resolved", resolvedCount,
		"total", len(resolved))

	return rec, nil
}

// Save exports a run as a private catalog playlist. Idempotent: a run that
// was already saved returns its stored URL without creating anything.
func (e *RecommendEngine) Save(ctx context.Context, progress chan<- ProgressUpdate, userID, recommendationID string) (string, error) {
	user, err := e.users.Get(userID)
	if err != nil {
		return "", err
	}

	rec, err := e.recommendations.Get(recommendationID)
	if err != nil {
		return "", err
	}
	if rec == nil || rec.UserID() != user.ID() {
		return "", fmt.Errorf("%w: recommendation %s not found", shared.ErrInvalidArgument, recommendationID)
	}

	if rec.Saved() {
		return rec.SavedPlaylistURL(), nil
	}

	uris := make([]string, 0, len(rec.Tracks()))
	for _, track := range rec.Tracks() {
		if track.Resolved() {
			uris = append(uris, track.TrackURI())
		}
	}
	if len(uris) == 0 {
		return "", fmt.Errorf("%w: no resolved tracks to save", shared.ErrInvalidInput)
	}

	token, err := e.usableToken(ctx, user)
	if err != nil {
		return "", err
	}

	sourceName := "Playlist"
	if source, err := e.sources.Enabled(user.ID()); err == nil && source != nil {
		sourceName = source.Name()
	}

	name := fmt.Sprintf("Recs: %s (%s)", sourceName, rec.CreatedAt().Format("1/2/2006"))

	flavor := "overall style"
	if rec.Mode() == models.ModeRecent {
		flavor = "recent additions"
	}
	description := fmt.Sprintf("AI recommendations based on %s", flavor)

	sendProgress(progress, savePlaylistUpdate(name))

	created, err := e.catalog.CreatePlaylist(ctx, token, user.SpotifyUserID(), name, description)
	if err != nil {
		return "", err
	}

	if err := e.catalog.AddTracks(ctx, token, created.ID, uris); err != nil {
		return "", err
	}

	if err := e.recommendations.MarkSaved(rec.ID(), created.ID, created.ExternalURL); err != nil {
		return "", err
	}

	e.logger.Info("recommendation saved", "recommendation", rec.ID(), "playlist", created.ID, "tracks", len(uris))

	return created.ExternalURL, nil
}

// usableToken refreshes the user's token when needed and persists the update.
func (e *RecommendEngine) usableToken(ctx context.Context, user *models.User) (string, error) {
	token, updated, err := e.tokens.EnsureValidToken(ctx, user)
	if err != nil {
		return "", err
	}

	if updated {
		if err := e.users.Update(user); err != nil {
			return "", err
		}
	}

	return token, nil
}

// resolveAll resolves every suggestion concurrently, bounded by a shared
// rate limiter, and writes results by index so order is preserved.
func (e *RecommendEngine) resolveAll(ctx context.Context, progress chan<- ProgressUpdate, token string, suggestions []models.Suggestion, rateLimit float64) []models.ResolvedTrack {
	if rateLimit <= 0 {
		rateLimit = defaultSearchRate
	}

	limiter := rate.NewLimiter(rate.Limit(rateLimit), 1)
	resolved := make([]models.ResolvedTrack, len(suggestions))

	var wg sync.WaitGroup
	for i := range suggestions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			suggestion := suggestions[i]
			resolved[i] = models.ResolvedTrack{Suggestion: suggestion}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			track, err := e.resolver.Resolve(ctx, token, suggestion)
			if err != nil || track == nil {
				if err != nil {
					e.logger.Warn("search failed", "track", suggestion.TrackName, "artist", suggestion.ArtistName)
				}
				sendProgress(progress, resolveUpdate(i+1, len(suggestions), &suggestion))
				return
			}

			resolved[i].SpotifyTrackID = track.ID
			resolved[i].TrackURI = track.URI
			resolved[i].SpotifyURL = track.ExternalURL
			resolved[i].AlbumName = track.AlbumName
			resolved[i].AlbumImageURL = track.AlbumImageURL
			resolved[i].PreviewURL = track.PreviewURL
			resolved[i].DurationMS = track.DurationMS

			sendProgress(progress, resolveUpdate(i+1, len(suggestions), &suggestion))
		}(i)
	}
	wg.Wait()

	return resolved
}
