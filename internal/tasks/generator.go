package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

const (
	// generationAttempts bounds the retry loop against a flaky model.
	generationAttempts = 2

	// defaultSuggestionCount is requested when the caller passes no count.
	defaultSuggestionCount = 10
)

const generatorSystemPrompt = `You are a music recommendation expert. You suggest songs that users would genuinely enjoy based on their playlist. Your recommendations MUST be real, well-known songs by real artists that are available on Spotify. Use the most common/official song title and primary artist name exactly as they appear on Spotify. Avoid obscure deep cuts that might not be on Spotify. Focus on quality matches.`

// generationAttempt holds either a usable suggestion batch or the reason
// the attempt produced nothing.
type generationAttempt struct {
	suggestions []models.Suggestion
	failure     string
}

// SuggestionGenerator turns a track sample into unresolved song suggestions
// via a chat completion backend.
type SuggestionGenerator struct {
	completer services.Completer
	logger    *log.Logger
}

// NewSuggestionGenerator creates a generator over the given completion backend.
func NewSuggestionGenerator(completer services.Completer, logger *log.Logger) *SuggestionGenerator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SuggestionGenerator{completer: completer, logger: logger}
}

// Generate asks the model for count suggestions not already in the sample.
// Retries once on failure or an empty batch; when both attempts fail the
// last failure reason is wrapped in ErrGenerationFailed.
func (g *SuggestionGenerator) Generate(ctx context.Context, tracks []models.TrackInfo, mode models.Mode, count int) ([]models.Suggestion, error) {
	if g.completer == nil {
		return nil, fmt.Errorf("%w: completion backend not initialized", shared.ErrServiceUnavailable)
	}

	if count <= 0 {
		count = defaultSuggestionCount
	}

	userPrompt := buildUserPrompt(tracks, mode, count)
	lastFailure := ""

	for attempt := 1; attempt <= generationAttempts; attempt++ {
		result := g.attempt(ctx, userPrompt)
		if result.failure == "" {
			return result.suggestions, nil
		}

		lastFailure = result.failure
		g.logger.Warn("suggestion attempt failed", "attempt", attempt, "reason", lastFailure)
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrGenerationFailed, lastFailure)
}

// attempt runs one completion round trip and filters out suggestions the
// model returned without a track or artist name. An empty batch after
// filtering counts as a failure so the caller retries.
func (g *SuggestionGenerator) attempt(ctx context.Context, userPrompt string) generationAttempt {
	content, err := g.completer.Complete(ctx, generatorSystemPrompt, userPrompt)
	if err != nil {
		return generationAttempt{failure: err.Error()}
	}

	var payload struct {
		Recommendations []models.Suggestion `json:"recommendations"`
	}

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return generationAttempt{failure: fmt.Sprintf("model returned invalid JSON: %v", err)}
	}

	suggestions := make([]models.Suggestion, 0, len(payload.Recommendations))
	for _, suggestion := range payload.Recommendations {
		if suggestion.TrackName == "" || suggestion.ArtistName == "" {
			continue
		}
		suggestions = append(suggestions, suggestion)
	}

	if len(suggestions) == 0 {
		return generationAttempt{failure: "model returned empty recommendations"}
	}

	return generationAttempt{suggestions: suggestions}
}

// buildUserPrompt renders the sampled tracks as a numbered list with
// mode-specific framing and the JSON shape the response must follow.
func buildUserPrompt(tracks []models.TrackInfo, mode models.Mode, count int) string {
	var list strings.Builder
	for i, track := range tracks {
		fmt.Fprintf(&list, "%d. %q by %s\n", i+1, track.Name, track.Artist)
	}

	modePrompt := `These are tracks from across the ENTIRE playlist. The user wants recommendations that match the overall style, mood, and genre of this collection.`
	if mode == models.ModeRecent {
		modePrompt = `These are the most RECENTLY added tracks to this playlist. The user wants recommendations based on their current listening trend and recent taste. Focus on what direction their taste is heading.`
	}

	return fmt.Sprintf(`Here is a playlist with these tracks:

%s
%s

Suggest %d songs that are NOT already in this list. For each suggestion, provide:
1. The exact song name
2. The exact artist name
3. A brief reason (1 sentence) why this fits

Respond in valid JSON format only:
{
  "recommendations": [
    { "trackName": "Song Name", "artistName": "Artist Name", "reason": "Why this fits" }
  ]
}`, list.String(), modePrompt, count)
}
