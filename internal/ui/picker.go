package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
)

// SourceSelector persists a source playlist selection, disabling any prior one.
type SourceSelector interface {
	SetEnabled(source *models.SourcePlaylist) error
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SourceListView ViewState = iota
	ConfirmView
	ResultView
)

// Model drives the interactive source playlist picker.
//
// It fetches the user's playlists, lets them browse and select one, and
// persists the selection through a [SourceSelector].
type Model struct {
	ctx      context.Context
	catalog  services.Catalog
	selector SourceSelector
	token    string
	userID   string

	view         ViewState
	width        int
	height       int
	playlistList list.Model
	playlists    []models.Playlist
	selected     *models.Playlist
	saved        *models.SourcePlaylist
	err          error
	help         help.Model
	keys         keyMap
}

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type sourceSavedMsg struct {
	source *models.SourcePlaylist
	err    error
}

// NewModel creates a new picker model with the provided dependencies.
func NewModel(ctx context.Context, catalog services.Catalog, selector SourceSelector, token, userID string) *Model {
	return &Model{
		ctx:      ctx,
		catalog:  catalog,
		selector: selector,
		token:    token,
		userID:   userID,
		view:     SourceListView,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Saved returns the persisted selection, if any.
func (m *Model) Saved() *models.SourcePlaylist {
	return m.saved
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Init starts the session by fetching the user's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SourceListView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Pick a Source Playlist"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case sourceSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.saved = msg.source
		m.view = ResultView
		return m, nil
	}

	if m.view == SourceListView {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SourceListView:
		return m.renderList()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(playlistItem); ok {
				playlist := item.playlist
				m.selected = &playlist
				m.view = ConfirmView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.selected = nil
		m.view = SourceListView
		return m, nil
	case "y", "enter":
		return m, m.saveSelection()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.catalog.UserPlaylists(m.ctx, m.token)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) saveSelection() tea.Cmd {
	playlist := *m.selected

	return func() tea.Msg {
		source := models.NewSourcePlaylist(0, m.userID, playlist)
		if err := m.selector.SetEnabled(source); err != nil {
			return sourceSavedMsg{err: err}
		}
		return sourceSavedMsg{source: source}
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Use '%s' as the source playlist?", m.selected.Name))
	info := fmt.Sprintf("\nPlaylist: %s\nTracks: %d\n", m.selected.Name, m.selected.TrackCount)
	if isDaylist(*m.selected) {
		info += styles.warn.Render("This looks like your daylist.") + "\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	title := styles.ok.Render("✓ Source Playlist Saved")
	info := fmt.Sprintf("\nRecommendation and archive runs will read from '%s'.\n", m.saved.Name())

	helpKeys := []key.Binding{m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
