package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/repositories"
)

// GetUserPlaylist returns the user's playlist, creating "<username>'s playlist" with the user's id on first use.
func GetUserPlaylist(ctx context.Context, repo repositories.Repository, username string) (*models.Playlist, error) {
	user, err := repo.GetUser(ctx, username)
	if err != nil {
		return nil, translate(err, ErrUnknownUser)
	}

	playlist, err := repo.GetPlaylistByUser(ctx, user.ID())
	if err == nil {
		return playlist, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	playlist, err = models.NewPlaylist(user.ID(), user, fmt.Sprintf("%s's playlist", user.Username()))
	if err != nil {
		return nil, err
	}
	if err := repo.AddPlaylist(ctx, playlist); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	return playlist, nil
}

// AddEpisodeToPlaylist adds the episode and stores the playlist. It returns the episode for redirects.
func AddEpisodeToPlaylist(ctx context.Context, repo repositories.Repository, playlist *models.Playlist, episodeID int) (*models.Episode, error) {
	episode, err := GetEpisodeByID(ctx, repo, episodeID)
	if err != nil {
		return nil, err
	}
	playlist.AddEpisode(episode)
	if err := repo.UpdateUsersPlaylist(ctx, playlist); err != nil {
		return nil, err
	}
	return episode, nil
}

func RemoveEpisodeFromPlaylist(ctx context.Context, repo repositories.Repository, playlist *models.Playlist, episodeID int) (*models.Episode, error) {
	episode, err := GetEpisodeByID(ctx, repo, episodeID)
	if err != nil {
		return nil, err
	}
	playlist.RemoveEpisode(episode)
	if err := repo.UpdateUsersPlaylist(ctx, playlist); err != nil {
		return nil, err
	}
	return episode, nil
}

// AddAllEpisodesToPlaylist adds every episode of the podcast, oldest first, skipping members.
// It reports whether the playlist changed and only stores it when it did.
func AddAllEpisodesToPlaylist(ctx context.Context, repo repositories.Repository, playlist *models.Playlist, podcastID int) (bool, error) {
	return changeAll(ctx, repo, playlist, podcastID, playlist.AddEpisode)
}

// RemoveAllEpisodesFromPlaylist is the inverse of [AddAllEpisodesToPlaylist].
func RemoveAllEpisodesFromPlaylist(ctx context.Context, repo repositories.Repository, playlist *models.Playlist, podcastID int) (bool, error) {
	return changeAll(ctx, repo, playlist, podcastID, playlist.RemoveEpisode)
}

func changeAll(ctx context.Context, repo repositories.Repository, playlist *models.Playlist, podcastID int, apply func(*models.Episode) bool) (bool, error) {
	episodes, err := GetEpisodes(ctx, repo, podcastID)
	if err != nil {
		return false, err
	}

	changed := false
	for _, e := range episodes {
		if apply(e) {
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	if err := repo.UpdateUsersPlaylist(ctx, playlist); err != nil {
		return false, err
	}
	return true, nil
}

// PlaylistEpisodePodcasts resolves each episode's parent podcast, keyed by episode id.
// Episodes whose podcast has gone are left out.
func PlaylistEpisodePodcasts(ctx context.Context, repo repositories.Repository, episodes []*models.Episode) (map[int]*models.Podcast, error) {
	podcasts := make(map[int]*models.Podcast, len(episodes))
	byPodcast := make(map[int]*models.Podcast)
	for _, e := range episodes {
		p, ok := byPodcast[e.PodcastID()]
		if !ok {
			var err error
			p, err = repo.GetPodcast(ctx, e.PodcastID())
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			byPodcast[e.PodcastID()] = p
		}
		podcasts[e.ID()] = p
	}
	return podcasts, nil
}
