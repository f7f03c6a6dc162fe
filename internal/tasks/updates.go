package tasks

import (
	"fmt"

	"github.com/desertthunder/encore/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	SampleTracksPhase
	GenerateSuggestions
	ResolveTracks
	PersistRun
	SavePlaylist
	ArchivePlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case SampleTracksPhase:
		return "sample_tracks"
	case GenerateSuggestions:
		return "generate_suggestions"
	case ResolveTracks:
		return "resolve_tracks"
	case PersistRun:
		return "persist_run"
	case SavePlaylist:
		return "save_playlist"
	case ArchivePlaylist:
		return "archive_playlist"
	default:
		return ""
	}
}

func fetchSourceUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist (%s)...", name),
	}
}

func sampleUpdate(sampled, total int, mode models.Mode) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SampleTracksPhase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sampled %d of %d tracks (%s)", sampled, total, mode),
	}
}

func generateUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateSuggestions,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Asking for %d suggestions...", count),
	}
}

func resolveUpdate(step, total int, suggestion *models.Suggestion) ProgressUpdate {
	if suggestion == nil {
		return ProgressUpdate{
			Phase:   ResolveTracks,
			Step:    step,
			Total:   total,
			Message: "Resolving suggestions against the catalog...",
		}
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, suggestion.ArtistName, suggestion.TrackName),
	}
}

func persistUpdate(resolved, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving run (%d/%d resolved)", resolved, total),
	}
}

func savePlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SavePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist: %s", name),
	}
}

func archiveUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ArchivePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Archiving: %s...", step, total, name),
	}
}

func archiveResultUpdate(step, total int, name string, result ArchiveResult) ProgressUpdate {
	status := "no changes"
	if result.Archived {
		status = "archived"
	}
	if result.Error != "" {
		status = "failed: " + result.Error
	}
	return ProgressUpdate{
		Phase:   ArchivePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s (%d tracks)", step, total, name, status, result.TrackCount),
		Data:    result,
	}
}
