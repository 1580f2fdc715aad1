package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/podshelf/internal/services"
)

var (
	_ list.Item = podcastItem{}
	_ list.Item = episodeItem{}
)

// podcastItem wraps [services.PodcastView] to implement [list.Item].
//
// Filtering matches the title and the author.
type podcastItem struct {
	podcast services.PodcastView
}

func (i podcastItem) FilterValue() string { return i.podcast.Title + " " + i.podcast.Author }
func (i podcastItem) Title() string       { return i.podcast.Title }
func (i podcastItem) Description() string {
	desc := i.podcast.Author
	if i.podcast.Categories != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.podcast.Categories)
	}
	return desc
}

// episodeItem wraps [services.EpisodeView] to implement [list.Item].
type episodeItem struct {
	episode services.EpisodeView
}

func (i episodeItem) FilterValue() string { return i.episode.Title }
func (i episodeItem) Title() string       { return i.episode.Title }
func (i episodeItem) Description() string {
	return fmt.Sprintf("%s • %s", i.episode.Duration, i.episode.PubDate)
}
