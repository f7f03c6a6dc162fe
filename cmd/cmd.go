// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles Spotify authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored user and token expiry",
				Action: r.AuthStatus,
			},
		},
	}
}

// playlistsCommand lists the user's Spotify playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List Spotify playlists",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to return",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Playlists,
	}
}

// sourceCommand manages the source playlist selection
func sourceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "source",
		Usage: "Manage the source playlist for recommendations and archives",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Select a source playlist by ID or name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Spotify playlist ID",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Playlist name (exact match, case-insensitive)",
					},
				},
				Action: r.SourceSet,
			},
			{
				Name:    "pick",
				Aliases: []string{"ui"},
				Usage:   "Select a source playlist interactively",
				Action:  r.SourcePick,
			},
			{
				Name:   "show",
				Usage:  "Show the current source playlist",
				Action: r.SourceShow,
			},
			{
				Name:   "daylist",
				Usage:  "Auto-detect and select your Spotify daylist",
				Action: r.SourceDaylist,
			},
		},
	}
}

// recommendCommand runs and manages recommendation pipelines
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Generate AI track recommendations from the source playlist",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a recommendation pipeline",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Sampling mode: recent or overall",
						Value:   "recent",
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of suggestions to request",
						Value:   10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RecommendRun,
			},
			{
				Name:  "list",
				Usage: "List past recommendation runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Filter by sampling mode",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecommendList,
			},
			{
				Name:  "save",
				Usage: "Save a recommendation run as a Spotify playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Recommendation run ID",
						Required: true,
					},
				},
				Action: r.RecommendSave,
			},
		},
	}
}

// archiveCommand runs and inspects snapshot archival
func archiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Snapshot source playlists into dated archive playlists",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Archive every enabled source playlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ArchiveRun,
			},
			{
				Name:  "history",
				Usage: "List stored snapshots for the current source playlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ArchiveHistory,
			},
		},
	}
}
