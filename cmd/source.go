package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/ui"
	"github.com/urfave/cli/v3"
)

// SourceSet selects a source playlist by Spotify ID or by exact name.
func (r *Runner) SourceSet(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	name := cmd.String("name")

	if playlistID == "" && name == "" {
		return fmt.Errorf("%w: either --id or --name must be provided", shared.ErrMissingArgument)
	}
	if playlistID != "" && name != "" {
		return fmt.Errorf("%w: cannot specify both --id and --name", shared.ErrInvalidArgument)
	}

	if err := r.requireSpotify(); err != nil {
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

	token, err := r.usableToken(ctx, db, user)
	if err != nil {
		return err
	}

	playlists, err := r.spotify.UserPlaylists(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var match *models.Playlist
	for i := range playlists {
		if playlistID != "" && playlists[i].ID == playlistID {
			match = &playlists[i]
			break
		}
		if name != "" && strings.EqualFold(playlists[i].Name, name) {
			match = &playlists[i]
			break
		}
	}

	if match == nil {
		return fmt.Errorf("%w: no playlist matched", shared.ErrPlaylistNotFound)
	}

	return r.saveSource(db, user.ID(), *match)
}

// SourcePick launches the interactive picker for the source playlist.
func (r *Runner) SourcePick(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
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

	token, err := r.usableToken(ctx, db, user)
	if err != nil {
		return err
	}

	sources := repositories.NewSourcePlaylistRepository(db)
	model := ui.NewModel(ctx, r.spotify, sources, token, user.ID())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running picker: %w", err)
	}

	if model.Err() != nil {
		return model.Err()
	}

	if saved := model.Saved(); saved != nil {
		r.writePlain("✓ Source playlist set to '%s'\n", saved.Name())
	}

	return nil
}

// SourceShow displays the currently enabled source playlist.
func (r *Runner) SourceShow(ctx context.Context, cmd *cli.Command) error {
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

	r.writePlain("Source playlist: %s\n", source.Name())
	r.writePlain("  Spotify ID: %s\n", source.SpotifyPlaylistID())
	r.writePlain("  Tracks: %d\n", source.TrackCount())
	if source.LastError() != "" {
		r.writePlain("  Last error: %s\n", source.LastError())
	}

	return nil
}

// SourceDaylist auto-detects the user's Spotify daylist and selects it.
func (r *Runner) SourceDaylist(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
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

	token, err := r.usableToken(ctx, db, user)
	if err != nil {
		return err
	}

	daylist, err := r.spotify.FindDaylist(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if daylist == nil {
		return fmt.Errorf("%w: no daylist found in your library; follow it on Spotify first", shared.ErrPlaylistNotFound)
	}

	return r.saveSource(db, user.ID(), *daylist)
}

func (r *Runner) saveSource(db *sql.DB, userID string, playlist models.Playlist) error {
	source := models.NewSourcePlaylist(0, userID, playlist)
	if err := repositories.NewSourcePlaylistRepository(db).SetEnabled(source); err != nil {
		return fmt.Errorf("failed to save source playlist: %w", err)
	}

	r.writePlain("✓ Source playlist set to '%s' (%d tracks)\n", source.Name(), source.TrackCount())
	return nil
}
