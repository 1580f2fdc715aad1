package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PodcastListView ViewState = iota
	EpisodeListView
)

// headerLines is the space reserved above and below a list for the header and help.
const headerLines = 8

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	repo        repositories.Repository
	view        ViewState
	width       int
	height      int
	podcastList list.Model
	episodeList list.Model
	selected    *services.PodcastView
	rating      services.Rating
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model browsing repo.
func NewModel(ctx context.Context, repo repositories.Repository) *Model {
	return &Model{
		ctx:         ctx,
		repo:        repo,
		view:        PodcastListView,
		podcastList: newList(nil, "Podcasts"),
		episodeList: newList(nil, "Episodes"),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	return l
}

// ViewState returns the view being shown.
func (m *Model) ViewState() ViewState { return m.view }

// Init initializes the TUI by loading the catalogue.
func (m *Model) Init() tea.Cmd {
	return m.loadCatalogue()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.podcastList.SetSize(msg.Width-4, msg.Height-headerLines)
		m.episodeList.SetSize(msg.Width-4, msg.Height-headerLines)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PodcastListView:
			return m.handlePodcastListKeys(msg)
		case EpisodeListView:
			return m.handleEpisodeListKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCatalogueLoaded:
		data := msg.data.(catalogueLoaded)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(data.podcasts))
		for i, p := range data.podcasts {
			items[i] = podcastItem{podcast: p}
		}
		cmd := m.podcastList.SetItems(items)
		m.podcastList.Title = fmt.Sprintf("Podcasts (%d)", len(items))
		return m, cmd

	case MsgPodcastLoaded:
		data := msg.data.(podcastLoaded)
		if data.err != nil {
			m.err = data.err
			m.view = PodcastListView
			return m, nil
		}
		m.err = nil
		m.selected = &data.podcast
		m.rating = data.rating
		items := make([]list.Item, len(data.episodes))
		for i, e := range data.episodes {
			items[i] = episodeItem{episode: e}
		}
		m.episodeList = newList(items, fmt.Sprintf("Episodes of '%s'", data.podcast.Title))
		m.episodeList.SetSize(m.width-4, m.height-headerLines)
		m.view = EpisodeListView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PodcastListView:
		return m.renderPodcastList()
	case EpisodeListView:
		return m.renderEpisodeList()
	default:
		return ""
	}
}

func (m *Model) handlePodcastListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.podcastList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.podcastList, cmd = m.podcastList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back) && m.err != nil:
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.podcastList.SelectedItem().(podcastItem); ok {
			return m, m.loadPodcast(selected.podcast.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.podcastList, cmd = m.podcastList.Update(msg)
	return m, cmd
}

func (m *Model) handleEpisodeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.episodeList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.episodeList, cmd = m.episodeList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.episodeList.FilterState() == list.FilterApplied {
			m.episodeList.ResetFilter()
			return m, nil
		}
		m.view = PodcastListView
		m.selected = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.episodeList, cmd = m.episodeList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PodcastListView:
		m.podcastList, cmd = m.podcastList.Update(msg)
	case EpisodeListView:
		m.episodeList, cmd = m.episodeList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadCatalogue() tea.Cmd {
	return func() tea.Msg {
		podcasts, err := services.GetPodcastsByAlphabet(m.ctx, m.repo)
		return catalogueLoadedMsg(podcasts, err)
	}
}

func (m *Model) loadPodcast(podcastID int) tea.Cmd {
	return func() tea.Msg {
		podcast, err := services.GetPodcastByID(m.ctx, m.repo, podcastID)
		if err != nil {
			return podcastLoadedMsg(services.PodcastView{}, nil, services.Rating{}, err)
		}
		episodes, err := services.GetEpisodes(m.ctx, m.repo, podcastID)
		if err != nil {
			return podcastLoadedMsg(podcast, nil, services.Rating{}, err)
		}
		rating, err := services.GetAverageRating(m.ctx, m.repo, podcastID)
		return podcastLoadedMsg(podcast, services.NewEpisodeViews(episodes), rating, err)
	}
}

func (m *Model) renderPodcastList() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.filter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.podcastList.View(), styles.help.Render(helpView))
}

func (m *Model) renderEpisodeList() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderHeader(), m.episodeList.View(), styles.help.Render(helpView))
}

// renderHeader shows the selected podcast's title, author, categories and rating.
func (m *Model) renderHeader() string {
	if m.selected == nil {
		return ""
	}
	details := []string{"by " + m.selected.Author}
	if m.selected.Categories != "" {
		details = append(details, m.selected.Categories)
	}
	if m.selected.Language != "" {
		details = append(details, m.selected.Language)
	}

	rating := fmt.Sprintf("%s %.1f (%d reviews)",
		styles.stars.Render(m.rating.Stars), m.rating.Number, len(m.selected.Reviews))

	return fmt.Sprintf("%s\n%s\n%s",
		styles.title.Render(m.selected.Title),
		styles.detail.Render(strings.Join(details, " • ")),
		rating,
	)
}
