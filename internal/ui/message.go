package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/podshelf/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogueLoaded MsgKind = iota
	MsgPodcastLoaded
)

type catalogueLoaded struct {
	podcasts []services.PodcastView
	err      error
}

type podcastLoaded struct {
	podcast  services.PodcastView
	episodes []services.EpisodeView
	rating   services.Rating
	err      error
}

// catalogueLoadedMsg is the constructor for [MsgCatalogueLoaded]
func catalogueLoadedMsg(podcasts []services.PodcastView, err error) Msg {
	return Msg{kind: MsgCatalogueLoaded, data: catalogueLoaded{podcasts, err}}
}

// podcastLoadedMsg is the constructor for [MsgPodcastLoaded]
func podcastLoadedMsg(podcast services.PodcastView, episodes []services.EpisodeView, rating services.Rating, err error) Msg {
	return Msg{kind: MsgPodcastLoaded, data: podcastLoaded{podcast, episodes, rating, err}}
}
