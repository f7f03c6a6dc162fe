package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

var sampleTracks = []models.TrackInfo{
	{Name: "Weird Fishes", Artist: "Radiohead"},
	{Name: "Reckoner", Artist: "Radiohead"},
}

func TestGenerate(t *testing.T) {
	t.Run("Returns Valid Suggestions", func(t *testing.T) {
		completer := &mockCompleter{responses: []string{
			`{"recommendations":[{"trackName":"Holocene","artistName":"Bon Iver","reason":"shares the mellow mood"}]}`,
		}}

		generator := NewSuggestionGenerator(completer, nil)

		suggestions, err := generator.Generate(context.Background(), sampleTracks, models.ModeOverall, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(suggestions) != 1 || suggestions[0].TrackName != "Holocene" {
			t.Fatalf("unexpected suggestions %+v", suggestions)
		}

		if completer.calls != 1 {
			t.Errorf("expected a single attempt, got %d", completer.calls)
		}
	})

	t.Run("Filters Incomplete Suggestions", func(t *testing.T) {
		completer := &mockCompleter{responses: []string{
			`{"recommendations":[
				{"trackName":"Holocene","artistName":"Bon Iver","reason":"fits"},
				{"trackName":"","artistName":"Nobody","reason":"missing name"},
				{"trackName":"Orphan","artistName":"","reason":"missing artist"}
			]}`,
		}}

		generator := NewSuggestionGenerator(completer, nil)

		suggestions, err := generator.Generate(context.Background(), sampleTracks, models.ModeOverall, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(suggestions) != 1 {
			t.Fatalf("expected incomplete suggestions filtered, got %+v", suggestions)
		}
	})

	t.Run("Retries After Empty Batch", func(t *testing.T) {
		completer := &mockCompleter{responses: []string{
			`{"recommendations":[]}`,
			`{"recommendations":[{"trackName":"Holocene","artistName":"Bon Iver","reason":"fits"}]}`,
		}}

		generator := NewSuggestionGenerator(completer, nil)

		suggestions, err := generator.Generate(context.Background(), sampleTracks, models.ModeRecent, 10)
		if err != nil {
			t.Fatalf("expected second attempt to succeed, got %v", err)
		}

		if completer.calls != 2 {
			t.Errorf("expected two attempts, got %d", completer.calls)
		}

		if len(suggestions) != 1 {
			t.Errorf("unexpected suggestions %+v", suggestions)
		}
	})

	t.Run("Retries After Invalid JSON", func(t *testing.T) {
		completer := &mockCompleter{responses: []string{
			`these are some songs you might like`,
			`{"recommendations":[{"trackName":"Holocene","artistName":"Bon Iver","reason":"fits"}]}`,
		}}

		generator := NewSuggestionGenerator(completer, nil)

		if _, err := generator.Generate(context.Background(), sampleTracks, models.ModeRecent, 10); err != nil {
			t.Fatalf("expected second attempt to succeed, got %v", err)
		}
	})

	t.Run("Exhausted Attempts Wrap Last Failure", func(t *testing.T) {
		completer := &mockCompleter{responses: []string{`{"recommendations":[]}`}}

		generator := NewSuggestionGenerator(completer, nil)

		_, err := generator.Generate(context.Background(), sampleTracks, models.ModeOverall, 10)
		if !errors.Is(err, shared.ErrGenerationFailed) {
			t.Fatalf("expected ErrGenerationFailed, got %v", err)
		}

		if !strings.Contains(err.Error(), "empty recommendations") {
			t.Errorf("expected last failure reason in error, got %v", err)
		}

		if completer.calls != 2 {
			t.Errorf("expected exactly two attempts, got %d", completer.calls)
		}
	})

	t.Run("Backend Errors Wrap Last Failure", func(t *testing.T) {
		completer := &mockCompleter{errs: []error{
			errors.New("upstream timeout"),
			errors.New("upstream timeout"),
		}}

		generator := NewSuggestionGenerator(completer, nil)

		_, err := generator.Generate(context.Background(), sampleTracks, models.ModeOverall, 10)
		if !errors.Is(err, shared.ErrGenerationFailed) {
			t.Fatalf("expected ErrGenerationFailed, got %v", err)
		}

		if !strings.Contains(err.Error(), "upstream timeout") {
			t.Errorf("expected backend reason in error, got %v", err)
		}
	})
}

func TestBuildUserPrompt(t *testing.T) {
	t.Run("Numbers The Track List", func(t *testing.T) {
		prompt := buildUserPrompt(sampleTracks, models.ModeOverall, 5)

		if !strings.Contains(prompt, `1. "Weird Fishes" by Radiohead`) {
			t.Errorf("expected numbered track list, got:\n%s", prompt)
		}

		if !strings.Contains(prompt, "Suggest 5 songs") {
			t.Errorf("expected requested count in prompt, got:\n%s", prompt)
		}
	})

	t.Run("Frames By Mode", func(t *testing.T) {
		recent := buildUserPrompt(sampleTracks, models.ModeRecent, 10)
		overall := buildUserPrompt(sampleTracks, models.ModeOverall, 10)

		if !strings.Contains(recent, "RECENTLY") {
			t.Error("expected recent framing in recent mode")
		}

		if !strings.Contains(overall, "ENTIRE") {
			t.Error("expected whole-playlist framing in overall mode")
		}
	})
}
