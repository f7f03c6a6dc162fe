package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "encore.db" {
			t.Errorf("expected database path encore.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Archive.NamePrefix != "Daylist Archive" {
			t.Errorf("expected archive prefix Daylist Archive, got %s", config.Archive.NamePrefix)
		}

		if config.Credentials.OpenAI.Model != "gpt-4o-mini" {
			t.Errorf("expected default model gpt-4o-mini, got %s", config.Credentials.OpenAI.Model)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9090

[archive]
name_prefix = "Daily Snapshots"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:9090/callback"

[credentials.openai]
api_key = "test_api_key"
base_url = "http://localhost:1234/v1"
model = "test-model"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}

		if config.Archive.NamePrefix != "Daily Snapshots" {
			t.Errorf("expected custom archive prefix, got %s", config.Archive.NamePrefix)
		}

		if config.Credentials.OpenAI.BaseURL != "http://localhost:1234/v1" {
			t.Errorf("expected custom base url, got %s", config.Credentials.OpenAI.BaseURL)
		}
	})

	t.Run("Environment Overrides Credentials", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		t.Setenv("SPOTIFY_CLIENT_ID", "env_client_id")
		t.Setenv("OPENAI_API_KEY", "env_api_key")

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_client_id" {
			t.Errorf("expected env client id to win, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.OpenAI.APIKey != "env_api_key" {
			t.Errorf("expected env api key to win, got %s", config.Credentials.OpenAI.APIKey)
		}
	})
}
