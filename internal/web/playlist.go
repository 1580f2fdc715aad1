package web

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/podshelf/internal/formatter"
	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/services"
)

func descriptionPath(podcastID, page int) string {
	return fmt.Sprintf("/description/%d?page=%d", podcastID, page)
}

// changeEpisode applies an add or remove and returns to the episode's podcast page.
func (s *Server) changeEpisode(
	w http.ResponseWriter, r *http.Request, username string,
	apply func(*models.Playlist, int) (*models.Episode, error), message string,
) {
	episodeID, ok := s.pathID(w, r, "episode_id")
	if !ok {
		return
	}
	playlist, err := services.GetUserPlaylist(r.Context(), s.repo, username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	episode, err := apply(playlist, episodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, message)
	http.Redirect(w, r, descriptionPath(episode.PodcastID(), pageParam(r)), http.StatusFound)
}

func (s *Server) addToPlaylist(w http.ResponseWriter, r *http.Request, username string) {
	s.changeEpisode(w, r, username, func(p *models.Playlist, id int) (*models.Episode, error) {
		return services.AddEpisodeToPlaylist(r.Context(), s.repo, p, id)
	}, "Episode added")
}

func (s *Server) removeFromPlaylist(w http.ResponseWriter, r *http.Request, username string) {
	s.changeEpisode(w, r, username, func(p *models.Playlist, id int) (*models.Episode, error) {
		return services.RemoveEpisodeFromPlaylist(r.Context(), s.repo, p, id)
	}, "Episode removed")
}

// changePodcast applies an add-all or remove-all, flashing only when the playlist changed.
func (s *Server) changePodcast(
	w http.ResponseWriter, r *http.Request, username string,
	apply func(*models.Playlist, int) (bool, error), message string,
) {
	podcastID, ok := s.pathID(w, r, "podcast_id")
	if !ok {
		return
	}
	if _, err := services.GetPodcastByID(r.Context(), s.repo, podcastID); err != nil {
		s.fail(w, r, err)
		return
	}
	playlist, err := services.GetUserPlaylist(r.Context(), s.repo, username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	changed, err := apply(playlist, podcastID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if changed {
		s.flash(w, r, message)
	}
	http.Redirect(w, r, descriptionPath(podcastID, pageParam(r)), http.StatusFound)
}

func (s *Server) addPodcastToPlaylist(w http.ResponseWriter, r *http.Request, username string) {
	s.changePodcast(w, r, username, func(p *models.Playlist, id int) (bool, error) {
		return services.AddAllEpisodesToPlaylist(r.Context(), s.repo, p, id)
	}, "All episodes in podcast added")
}

func (s *Server) removePodcastFromPlaylist(w http.ResponseWriter, r *http.Request, username string) {
	s.changePodcast(w, r, username, func(p *models.Playlist, id int) (bool, error) {
		return services.RemoveAllEpisodesFromPlaylist(r.Context(), s.repo, p, id)
	}, "All episodes in podcast removed")
}

type playlistEntry struct {
	Episode services.EpisodeView
	Podcast *services.PodcastView
}

type playlistContent struct {
	Title   string
	Owner   string
	Entries []playlistEntry
	Pager   pager
	Formats []formatter.Format
}

func (s *Server) playlist(w http.ResponseWriter, r *http.Request, username string) {
	ctx := r.Context()
	playlist, err := services.GetUserPlaylist(ctx, s.repo, username)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page := pageParam(r)
	onPage, total := services.Paginate(playlist.Episodes(), page, services.PlaylistPageSize)
	podcasts, err := services.PlaylistEpisodePodcasts(ctx, s.repo, onPage)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	entries := make([]playlistEntry, len(onPage))
	for i, e := range onPage {
		entries[i] = playlistEntry{Episode: services.NewEpisodeView(e)}
		if p, ok := podcasts[e.ID()]; ok {
			view := services.NewPodcastView(p)
			entries[i].Podcast = &view
		}
	}

	s.render(w, r, http.StatusOK, "playlist.html", "Playlist", playlistContent{
		Title:   playlist.Title(),
		Owner:   username,
		Entries: entries,
		Pager:   newPager(r, page, total),
		Formats: []formatter.Format{formatter.FormatCSV, formatter.FormatMarkdown, formatter.FormatText},
	})
}

func (s *Server) removeEpisode(w http.ResponseWriter, r *http.Request, username string) {
	episodeID, ok := s.pathID(w, r, "episode_id")
	if !ok {
		return
	}
	playlist, err := services.GetUserPlaylist(r.Context(), s.repo, username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := services.RemoveEpisodeFromPlaylist(r.Context(), s.repo, playlist, episodeID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, "Episode removed")
	http.Redirect(w, r, fmt.Sprintf("/playlist?page=%d", pageParam(r)), http.StatusFound)
}

func (s *Server) exportPlaylist(w http.ResponseWriter, r *http.Request, username string) {
	format, err := formatter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Unknown export format.")
		return
	}

	ctx := r.Context()
	playlist, err := services.GetUserPlaylist(ctx, s.repo, username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	podcasts, err := services.PlaylistEpisodePodcasts(ctx, s.repo, playlist.Episodes())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, err := formatter.Export(&formatter.PlaylistExport{Playlist: playlist, Podcasts: podcasts}, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="playlist_%d%s"`, playlist.ID(), format.Extension()))
	w.Write(data)
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request, username string) {
	podcastID, ok := s.pathID(w, r, "podcast_id")
	if !ok {
		return
	}
	if err := services.Subscribe(r.Context(), s.repo, username, podcastID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, "Subscribed")
	http.Redirect(w, r, descriptionPath(podcastID, pageParam(r)), http.StatusFound)
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request, username string) {
	podcastID, ok := s.pathID(w, r, "podcast_id")
	if !ok {
		return
	}
	if err := services.Unsubscribe(r.Context(), s.repo, username, podcastID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, "Unsubscribed")

	target := descriptionPath(podcastID, pageParam(r))
	if r.FormValue("next") == "subscriptions" {
		target = "/subscriptions"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) subscriptions(w http.ResponseWriter, r *http.Request, username string) {
	podcasts, err := services.GetSubscriptions(r.Context(), s.repo, username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "subscriptions.html", "Subscriptions", podcasts)
}
