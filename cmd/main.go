package main

import (
	"context"
	"os"

	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotify SpotifyClient
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotify = svc
		}
	}

	var completer services.Completer
	if config.Credentials.OpenAI.APIKey != "" {
		if svc, err := services.NewOpenAIService(
			config.Credentials.OpenAI.APIKey,
			config.Credentials.OpenAI.BaseURL,
			config.Credentials.OpenAI.Model,
		); err == nil {
			completer = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Spotify:    spotify,
		Completer:  completer,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "encore",
		Usage:    "Archive your daylist & generate AI playlist recommendations",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
