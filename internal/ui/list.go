package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/encore/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }

func (i playlistItem) Title() string {
	if isDaylist(i.playlist) {
		return fmt.Sprintf("%s ★", i.playlist.Name)
	}
	return i.playlist.Name
}

func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.Owner != "" {
		desc = fmt.Sprintf("%s • by %s", desc, i.playlist.Owner)
	}
	return desc
}

func isDaylist(playlist models.Playlist) bool {
	return strings.Contains(strings.ToLower(playlist.Name), "daylist") && playlist.OwnerID == "spotify"
}
