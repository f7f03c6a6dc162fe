package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// searchLimit is how many ranked candidates each query tier requests.
const searchLimit = 3

var (
	featPattern    = regexp.MustCompile(`(?i)\s*\(feat\..*?\)`)
	ftPattern      = regexp.MustCompile(`(?i)\s*\(ft\..*?\)`)
	withPattern    = regexp.MustCompile(`(?i)\s*\(with.*?\)`)
	bracketPattern = regexp.MustCompile(`\s*\[.*?\]`)
	suffixPattern  = regexp.MustCompile(`(?i)\s*-\s*(Remaster|Remastered|Deluxe|Live|Acoustic|Remix|Radio Edit|Single Version).*$`)
)

// CleanSearchTerm strips featured-artist parentheticals, bracketed
// annotations, and trailing reissue suffixes that throw off catalog search.
func CleanSearchTerm(term string) string {
	cleaned := featPattern.ReplaceAllString(term, "")
	cleaned = ftPattern.ReplaceAllString(cleaned, "")
	cleaned = withPattern.ReplaceAllString(cleaned, "")
	cleaned = bracketPattern.ReplaceAllString(cleaned, "")
	cleaned = suffixPattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// TrackResolver reconciles generated suggestions against the catalog.
type TrackResolver struct {
	catalog services.Catalog
	logger  *log.Logger
}

// NewTrackResolver creates a resolver over the given catalog client.
func NewTrackResolver(catalog services.Catalog, logger *log.Logger) *TrackResolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TrackResolver{catalog: catalog, logger: logger}
}

// Resolve tries three queries from strictest to loosest: a fielded
// track/artist query on cleaned terms, a free-text query on cleaned terms,
// then a free-text query on the raw terms. The first tier returning any
// candidates wins; query errors count as no candidates and the next tier is
// tried. A nil result with nil error means the suggestion matched nothing.
func (r *TrackResolver) Resolve(ctx context.Context, token string, suggestion models.Suggestion) (*models.CatalogTrack, error) {
	cleanTrack := CleanSearchTerm(suggestion.TrackName)
	cleanArtist := CleanSearchTerm(suggestion.ArtistName)

	queries := []string{
		fmt.Sprintf("track:%s artist:%s", cleanTrack, cleanArtist),
		fmt.Sprintf("%s %s", cleanTrack, cleanArtist),
		fmt.Sprintf("%s %s", suggestion.TrackName, suggestion.ArtistName),
	}

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates, err := r.catalog.SearchTracks(ctx, token, query, searchLimit)
		if err != nil {
			r.logger.Debug("search tier failed", "query", query, "error", err)
			continue
		}

		if len(candidates) == 0 {
			continue
		}

		return pickCandidate(candidates, cleanTrack), nil
	}

	return nil, nil
}

// pickCandidate prefers the first candidate whose title and the cleaned
// suggestion title contain each other case-insensitively, falling back to
// the top-ranked result.
func pickCandidate(candidates []models.CatalogTrack, cleanTrack string) *models.CatalogTrack {
	want := strings.ToLower(cleanTrack)

	for i := range candidates {
		got := strings.ToLower(candidates[i].Name)
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return &candidates[i]
		}
	}

	return &candidates[0]
}
