package main

import (
	"context"

	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ArchiveRun archives every enabled source playlist into dated snapshots.
func (r *Runner) ArchiveRun(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.requireSpotify(); err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	engine := tasks.NewArchiveEngine(
		r.spotify,
		r.spotify,
		repositories.NewUserRepository(db),
		repositories.NewSourcePlaylistRepository(db),
		repositories.NewSnapshotRepository(db),
		r.config.Archive.NamePrefix,
		r.logger,
	)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if !useJSON {
				r.writePlain("📦 %s\n", update.Message)
			}
		}
	}()

	results, err := engine.RunForAll(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(results, pretty)
	}

	archived := 0
	failed := 0
	for _, result := range results {
		if result.Archived {
			archived++
		}
		if result.Error != "" {
			failed++
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Archive Run Complete")
	r.writePlain("Playlists checked: %d\n", len(results))
	r.writePlain("Archived: %d\n", archived)
	r.writePlain("Unchanged: %d\n", len(results)-archived-failed)
	if failed > 0 {
		r.writePlain("Failed: %d\n", failed)
		for _, result := range results {
			if result.Error != "" {
				r.writePlain("  - %s: %s\n", result.SourceName, result.Error)
			}
		}
	}

	for _, result := range results {
		if result.Archived && result.ArchivePlaylistURL != "" {
			r.writePlain("  → %s\n", result.ArchivePlaylistURL)
		}
	}

	return nil
}

// ArchiveHistory lists stored snapshots for the current source playlist.
func (r *Runner) ArchiveHistory(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	source, err := repositories.NewSourcePlaylistRepository(db).Enabled(user.ID())
	if err != nil {
		return err
	}

	if source == nil {
		r.writePlain("No source playlist selected. Run 'encore source pick'\n")
		return nil
	}

	snapshots, err := repositories.NewSnapshotRepository(db).List(map[string]any{
		"user_id":            user.ID(),
		"source_playlist_id": source.ID(),
	})
	if err != nil {
		return err
	}

	if useJSON {
		views := make([]map[string]any, len(snapshots))
		for i, snapshot := range snapshots {
			views[i] = map[string]any{
				"id":                   snapshot.ID(),
				"created_at":           snapshot.CreatedAt(),
				"signature":            snapshot.Signature(),
				"track_count":          snapshot.TrackCount(),
				"archive_playlist_url": snapshot.ArchivePlaylistURL(),
			}
		}
		return r.writeJSON(views, true)
	}

	if len(snapshots) == 0 {
		r.writePlain("No snapshots yet for '%s'. Run 'encore archive run'\n", source.Name())
		return nil
	}

	r.writePlain("Snapshots of '%s':\n\n", source.Name())
	for _, snapshot := range snapshots {
		r.writePlain("%s  %d tracks", snapshot.CreatedAt().Format("2006-01-02 15:04"), snapshot.TrackCount())
		if snapshot.ArchivePlaylistURL() != "" {
			r.writePlain("  → %s", snapshot.ArchivePlaylistURL())
		}
		r.writePlain("\n")
	}

	return nil
}
