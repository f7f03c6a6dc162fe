package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// recommendEngine wires a RecommendEngine from the runner's dependencies.
func (r *Runner) recommendEngine() (*tasks.RecommendEngine, error) {
	if err := r.requireSpotify(); err != nil {
		return nil, err
	}
	if r.completer == nil {
		return nil, fmt.Errorf("%w: OpenAI api_key must be set in config.toml or the environment", shared.ErrServiceUnavailable)
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	return tasks.NewRecommendEngine(
		r.spotify,
		r.spotify,
		r.completer,
		repositories.NewUserRepository(db),
		repositories.NewSourcePlaylistRepository(db),
		repositories.NewRecommendationRepository(db),
		r.logger,
	), nil
}

// RecommendRun runs a full recommendation pipeline for the stored user.
func (r *Runner) RecommendRun(ctx context.Context, cmd *cli.Command) error {
	mode := models.Mode(cmd.String("mode"))
	count := cmd.Int("count")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	engine, err := r.recommendEngine()
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SampleTracksPhase:
				r.writePlain("🎛  %s\n", update.Message)
			case tasks.GenerateSuggestions:
				r.writePlain("\n🤖 %s\n", update.Message)
			case tasks.ResolveTracks:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.PersistRun:
				r.writePlain("\n💾 %s\n", update.Message)
			}
		}
	}()

	rec, err := engine.Run(ctx, progressCh, user.ID(), tasks.RecommendOpts{Mode: mode, Count: int(count)})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(recommendationView(rec), pretty)
	}

	resolved := 0
	for _, track := range rec.Tracks() {
		if track.Resolved() {
			resolved++
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Recommendations Ready")
	r.writePlain("Run ID: %s\n", rec.ID())
	r.writePlain("Mode: %s\n", rec.Mode())
	r.writePlain("Resolved: %d/%d\n\n", resolved, len(rec.Tracks()))

	for _, track := range rec.Tracks() {
		marker := "✓"
		if !track.Resolved() {
			marker = "✗"
		}
		r.writePlain("%s %d. %s - %s\n", marker, track.Position(), track.ArtistName(), track.TrackName())
		if track.Reason() != "" {
			r.writePlain("     %s\n", track.Reason())
		}
	}

	r.writePlain("\nSave to Spotify with: encore recommend save --id %s\n", rec.ID())

	return nil
}

// RecommendList lists past recommendation runs for the stored user.
func (r *Runner) RecommendList(ctx context.Context, cmd *cli.Command) error {
	modeFilter := cmd.String("mode")
	useJSON := cmd.Bool("json")

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	criteria := map[string]any{"user_id": user.ID()}
	if modeFilter != "" {
		criteria["mode"] = modeFilter
	}

	recs, err := repositories.NewRecommendationRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if useJSON {
		views := make([]map[string]any, len(recs))
		for i, rec := range recs {
			views[i] = recommendationView(rec)
		}
		return r.writeJSON(views, true)
	}

	if len(recs) == 0 {
		r.writePlain("No recommendation runs yet. Run 'encore recommend run'\n")
		return nil
	}

	r.writePlain("Found %d runs:\n\n", len(recs))
	for _, rec := range recs {
		r.writePlain("%s  %s  %s", rec.CreatedAt().Format("2006-01-02 15:04"), rec.Mode(), rec.ID())
		if rec.Saved() {
			r.writePlain("  → %s", rec.SavedPlaylistURL())
		}
		r.writePlain("\n")
	}

	return nil
}

// RecommendSave saves a recommendation run as a Spotify playlist.
func (r *Runner) RecommendSave(ctx context.Context, cmd *cli.Command) error {
	recommendationID := cmd.String("id")

	engine, err := r.recommendEngine()
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📝 %s\n", update.Message)
		}
	}()

	url, err := engine.Save(ctx, progressCh, user.ID(), recommendationID)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("✓ Playlist saved: %s\n", url)
	return nil
}

// recommendationView flattens a run into a JSON-friendly shape.
func recommendationView(rec *models.Recommendation) map[string]any {
	tracks := make([]map[string]any, len(rec.Tracks()))
	for i, track := range rec.Tracks() {
		tracks[i] = map[string]any{
			"position":    track.Position(),
			"track_name":  track.TrackName(),
			"artist_name": track.ArtistName(),
			"reason":      track.Reason(),
			"resolved":    track.Resolved(),
		}
		if track.Resolved() {
			tracks[i]["track_uri"] = track.TrackURI()
			tracks[i]["spotify_url"] = track.SpotifyURL()
			tracks[i]["album_name"] = track.AlbumName()
		}
	}

	view := map[string]any{
		"id":         rec.ID(),
		"mode":       rec.Mode(),
		"created_at": rec.CreatedAt(),
		"tracks":     tracks,
	}
	if rec.Saved() {
		view["saved_playlist_url"] = rec.SavedPlaylistURL()
	}

	return view
}
