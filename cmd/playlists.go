package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the user's Spotify playlists with an optional limit.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

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

	r.logger.Infof("listing spotify playlists with limit %v", limit)

	playlists, err := r.spotify.UserPlaylists(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if p.Owner != "" {
			r.writePlain("   Owner: %s\n", p.Owner)
		}
		r.writePlain("\n")
	}

	return nil
}
