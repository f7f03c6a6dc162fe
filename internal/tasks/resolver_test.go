package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/encore/internal/models"
)

func TestCleanSearchTerm(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Plain Title", "Weird Fishes", "Weird Fishes"},
		{"Featured Artist", "Stan (feat. Dido)", "Stan"},
		{"Ft Abbreviation", "Freaks (ft. Savage)", "Freaks"},
		{"With Parenthetical", "Stay (with Justin Bieber)", "Stay"},
		{"Bracketed Annotation", "Smells Like Teen Spirit [Explicit]", "Smells Like Teen Spirit"},
		{"Remaster Suffix", "Bohemian Rhapsody - Remastered 2011", "Bohemian Rhapsody"},
		{"Live Suffix", "One - Live at Wembley", "One"},
		{"Radio Edit Suffix", "Animals - Radio Edit", "Animals"},
		{"Hyphenated Title Kept", "Twenty-One", "Twenty-One"},
		{"Combined", "Everlong (feat. Nobody) [Bonus] - Acoustic Version", "Everlong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanSearchTerm(tc.in); got != tc.want {
				t.Errorf("CleanSearchTerm(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	suggestion := models.Suggestion{TrackName: "Weird Fishes", ArtistName: "Radiohead"}

	t.Run("First Tier Wins", func(t *testing.T) {
		catalog := &mockCatalog{
			search: map[string][]models.CatalogTrack{
				"track:Weird Fishes artist:Radiohead": {{URI: "spotify:track:a", Name: "Weird Fishes/Arpeggi"}},
			},
		}

		resolver := NewTrackResolver(catalog, nil)

		track, err := resolver.Resolve(context.Background(), "token", suggestion)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if track == nil || track.URI != "spotify:track:a" {
			t.Fatalf("expected the fielded query match, got %+v", track)
		}

		if len(catalog.searchCalls) != 1 {
			t.Errorf("expected a single query, got %v", catalog.searchCalls)
		}
	})

	t.Run("Falls Through Empty Tiers", func(t *testing.T) {
		catalog := &mockCatalog{
			search: map[string][]models.CatalogTrack{
				"Weird Fishes Radiohead": {{URI: "spotify:track:b", Name: "Weird Fishes"}},
			},
		}

		resolver := NewTrackResolver(catalog, nil)

		track, err := resolver.Resolve(context.Background(), "token", suggestion)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if track == nil || track.URI != "spotify:track:b" {
			t.Fatalf("expected the free-text match, got %+v", track)
		}

		if len(catalog.searchCalls) != 2 {
			t.Errorf("expected two queries, got %v", catalog.searchCalls)
		}
	})

	t.Run("Swallows Query Errors", func(t *testing.T) {
		catalog := &mockCatalog{searchErr: errors.New("rate limited")}

		resolver := NewTrackResolver(catalog, nil)

		track, err := resolver.Resolve(context.Background(), "token", suggestion)
		if err != nil {
			t.Fatalf("expected query errors to be swallowed, got %v", err)
		}

		if track != nil {
			t.Errorf("expected no match after failing tiers, got %+v", track)
		}

		if len(catalog.searchCalls) != 3 {
			t.Errorf("expected all three tiers to be tried, got %v", catalog.searchCalls)
		}
	})

	t.Run("Prefers Substring Match Over Top Result", func(t *testing.T) {
		catalog := &mockCatalog{
			search: map[string][]models.CatalogTrack{
				"track:Weird Fishes artist:Radiohead": {
					{URI: "spotify:track:cover", Name: "Radiohead Medley"},
					{URI: "spotify:track:real", Name: "Weird Fishes/Arpeggi"},
				},
			},
		}

		resolver := NewTrackResolver(catalog, nil)

		track, err := resolver.Resolve(context.Background(), "token", suggestion)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if track == nil || track.URI != "spotify:track:real" {
			t.Fatalf("expected the substring match, got %+v", track)
		}
	})

	t.Run("Falls Back To Top Result", func(t *testing.T) {
		catalog := &mockCatalog{
			search: map[string][]models.CatalogTrack{
				"track:Weird Fishes artist:Radiohead": {
					{URI: "spotify:track:top", Name: "Arpeggi"},
					{URI: "spotify:track:other", Name: "Reckoner"},
				},
			},
		}

		resolver := NewTrackResolver(catalog, nil)

		track, err := resolver.Resolve(context.Background(), "token", suggestion)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if track == nil || track.URI != "spotify:track:top" {
			t.Fatalf("expected the top-ranked fallback, got %+v", track)
		}
	})

	t.Run("Not Found Is Not An Error", func(t *testing.T) {
		catalog := &mockCatalog{}

		resolver := NewTrackResolver(catalog, nil)

		track, err := resolver.Resolve(context.Background(), "token", suggestion)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if track != nil {
			t.Errorf("expected nil track for no candidates, got %+v", track)
		}
	})

	t.Run("Cleans Terms Before Querying", func(t *testing.T) {
		catalog := &mockCatalog{
			search: map[string][]models.CatalogTrack{
				"track:Stan artist:Eminem": {{URI: "spotify:track:stan", Name: "Stan"}},
			},
		}

		resolver := NewTrackResolver(catalog, nil)

		track, err := resolver.Resolve(context.Background(), "token", models.Suggestion{
			TrackName:  "Stan (feat. Dido)",
			ArtistName: "Eminem",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if track == nil || track.URI != "spotify:track:stan" {
			t.Fatalf("expected the cleaned query to match, got %+v", track)
		}
	})
}
