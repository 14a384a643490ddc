package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/playback"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TrackListView ViewState = iota
	ItemListView
	PromptView
)

const tickInterval = 500 * time.Millisecond

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	store   *engage.Store
	like    *engage.LikeController
	player  *playback.Controller
	refresh *tasks.RefreshEngine

	width  int
	height int

	trackList list.Model
	itemList  list.Model
	loaded    bool

	snapshot playback.Snapshot
	prompt   *playback.Prompt

	interrupts chan playback.Prompt

	status string
	err    error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, store *engage.Store, like *engage.LikeController, player *playback.Controller, refresh *tasks.RefreshEngine) *Model {
	return &Model{
		ctx:        ctx,
		view:       TrackListView,
		store:      store,
		like:       like,
		player:     player,
		refresh:    refresh,
		interrupts: make(chan playback.Prompt, 1),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// SetPlayer attaches the playback controller. The controller is built
// after the model so its interrupt handler can feed the model's channel.
func (m *Model) SetPlayer(player *playback.Controller) {
	m.player = player
}

// InterruptFunc returns the handler to wire into the playback controller's
// preview-limit prompt.
func (m *Model) InterruptFunc() func(playback.Prompt) {
	return func(p playback.Prompt) {
		select {
		case m.interrupts <- p:
		default:
		}
	}
}

// Init loads the catalog and starts the progress ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCatalog(), m.waitForInterrupt(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.loaded {
			m.trackList.SetSize(msg.Width-4, msg.Height-10)
			m.itemList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ItemListView:
			return m.handleItemListKeys(msg)
		case PromptView:
			return m.handlePromptKeys(msg)
		}

	case catalogLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.trackList = list.New(trackEntries(m.store.Tracks()), list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = "Tracks"
		m.trackList.SetSize(m.width-4, m.height-10)
		m.itemList = list.New(itemEntries(m.store.Items()), list.NewDefaultDelegate(), 0, 0)
		m.itemList.Title = "Items"
		m.itemList.SetSize(m.width-4, m.height-10)
		m.loaded = true
		return m, nil

	case playStartedMsg:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Playback failed: %v", msg.err))
		} else {
			m.status = ""
		}
		return m, nil

	case outcomeMsg:
		switch msg.outcome.Result {
		case engage.RolledBack:
			m.status = styles.warn.Render(fmt.Sprintf("Change reverted: %v", msg.outcome.Err))
		default:
			m.status = ""
		}
		return m, nil

	case interruptMsg:
		prompt := msg.prompt
		m.prompt = &prompt
		m.view = PromptView
		return m, m.waitForInterrupt()

	case tickMsg:
		m.player.HandleTimeUpdate()
		m.snapshot = m.player.Snapshot()
		if m.loaded {
			m.trackList.SetItems(trackEntries(m.store.Tracks()))
			m.itemList.SetItems(itemEntries(m.store.Items()))
		}
		return m, m.tick()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}
	if !m.loaded {
		return styles.help.Render("Loading catalog...")
	}

	switch m.view {
	case TrackListView:
		return m.renderTrackList()
	case ItemListView:
		return m.renderItemList()
	case PromptView:
		return m.renderPrompt()
	default:
		return ""
	}
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.player.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.view = ItemListView
		return m, nil
	case key.Matches(msg, m.keys.pause):
		return m, m.togglePause()
	case key.Matches(msg, m.keys.play):
		if selected, ok := m.trackList.SelectedItem().(trackEntry); ok {
			return m, m.playTrack(selected.state.TrackID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleItemListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.player.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.like):
		if selected, ok := m.itemList.SelectedItem().(itemEntry); ok {
			return m, m.toggleLike(selected.state.ItemID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.itemList, cmd = m.itemList.Update(msg)
	return m, cmd
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.player.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.prompt = nil
		m.view = TrackListView
		if err := m.player.Resume(); err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Resume failed: %v", err))
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if m.prompt != nil && len(m.prompt.Links) > 0 {
			if err := shared.OpenBrowser(m.prompt.Links[0]); err != nil {
				m.status = styles.warn.Render(fmt.Sprintf("Could not open browser: %v", err))
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.no):
		m.prompt = nil
		m.view = TrackListView
		m.player.Stop()
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.loaded {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.view {
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	case ItemListView:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		_, err := m.refresh.Load(m.ctx, nil)
		return catalogLoadedMsg{err: err}
	}
}

func (m *Model) playTrack(trackID string) tea.Cmd {
	return func() tea.Msg {
		err := m.player.Start(m.ctx, trackID)
		return playStartedMsg{trackID: trackID, err: err}
	}
}

func (m *Model) togglePause() tea.Cmd {
	return func() tea.Msg {
		snap := m.player.Snapshot()
		if snap.IsPlaying {
			return playStartedMsg{trackID: snap.TrackID, err: m.player.Pause()}
		}
		return playStartedMsg{trackID: snap.TrackID, err: m.player.Resume()}
	}
}

func (m *Model) toggleLike(itemID string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.like.Toggle(m.ctx, itemID)
		if err != nil {
			return outcomeMsg{outcome: engage.Outcome{Result: engage.RolledBack, Err: err}}
		}
		return outcomeMsg{outcome: <-outcome}
	}
}

func (m *Model) waitForInterrupt() tea.Cmd {
	return func() tea.Msg {
		return interruptMsg{prompt: <-m.interrupts}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.play, m.keys.pause, m.keys.tab, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s\n%s", m.trackList.View(), m.renderNowPlaying(), m.status, helpView)
}

func (m *Model) renderItemList() string {
	helpKeys := []key.Binding{m.keys.like, m.keys.tab, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s\n%s", m.itemList.View(), m.renderNowPlaying(), m.status, helpView)
}

func (m *Model) renderNowPlaying() string {
	snap := m.snapshot
	if snap.State == playback.Idle || snap.TrackID == "" {
		return styles.help.Render("Nothing playing")
	}

	progress := fmt.Sprintf("%s / %s",
		formatter.FormatDuration(int(snap.Progress.Seconds())),
		formatter.FormatDuration(int(snap.Duration.Seconds())),
	)

	var state string
	switch {
	case snap.Interrupted:
		state = styles.warn.Render("interrupted")
	case snap.IsPlaying:
		state = styles.ok.Render("playing")
	default:
		state = styles.help.Render("paused")
	}

	return fmt.Sprintf("%s %s - %s  [%s]  %d plays", state, snap.Artist, snap.Title, progress, snap.PlayCount)
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("Still listening?")

	var info string
	if m.prompt != nil {
		track := m.prompt.Track
		info = fmt.Sprintf("\n%s - %s paused at the preview limit.\n", track.Artist, track.Title)
		if len(m.prompt.Links) > 0 {
			info += "\nHear the full track:\n"
			for _, link := range m.prompt.Links {
				info += fmt.Sprintf("  %s\n", link)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.open, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n%s", title, info, helpView)
}
