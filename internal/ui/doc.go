// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a short workflow for picking the source playlist:
//  1. [SourceListView] : Browse the user's Spotify playlists (daylists are starred)
//  2. [ConfirmView] : Confirm the selection
//  3. [ResultView] : Show the persisted selection
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Persisting a selection disables any previously enabled source playlist, so at
// most one is active per user.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
