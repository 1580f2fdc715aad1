package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/podshelf/internal/models"
)

const episodeColumns = `
	episode_id, podcast_id, title, episode_link, episode_length, description, pub_date
	FROM episodes`

func upsertEpisode(ctx context.Context, q querier, e *models.Episode) error {
	if e == nil {
		return fmt.Errorf("%w: nil episode", models.ErrInvalid)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO episodes (episode_id, podcast_id, title, episode_link, episode_length, description, pub_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(episode_id) DO UPDATE SET
			podcast_id = excluded.podcast_id,
			title = excluded.title,
			episode_link = excluded.episode_link,
			episode_length = excluded.episode_length,
			description = excluded.description,
			pub_date = excluded.pub_date
	`, e.ID(), e.PodcastID(), e.Title(), e.Link(), e.Length(), e.Description(), e.PubDate())
	if err != nil {
		return fmt.Errorf("failed to insert episode %d: %w", e.ID(), err)
	}
	return nil
}

func (r *SQLRepository) AddEpisode(ctx context.Context, episode *models.Episode) error {
	return r.AddMultipleEpisodes(ctx, []*models.Episode{episode})
}

func (r *SQLRepository) AddMultipleEpisodes(ctx context.Context, episodes []*models.Episode) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range episodes {
			if err := upsertEpisode(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLRepository) GetEpisode(ctx context.Context, id int) (*models.Episode, error) {
	episodes, err := r.queryEpisodes(ctx, "SELECT"+episodeColumns+" WHERE episode_id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(episodes) == 0 {
		return nil, fmt.Errorf("episode %d: %w", id, ErrNotFound)
	}
	return episodes[0], nil
}

func (r *SQLRepository) GetEpisodes(ctx context.Context) ([]*models.Episode, error) {
	return r.queryEpisodes(ctx, "SELECT"+episodeColumns+" ORDER BY episode_id")
}

func (r *SQLRepository) GetEpisodesForPodcast(ctx context.Context, podcastID int) ([]*models.Episode, error) {
	return r.queryEpisodes(ctx, "SELECT"+episodeColumns+" WHERE podcast_id = ? ORDER BY episode_id", podcastID)
}

func (r *SQLRepository) GetNumberOfEpisodes(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM episodes")
}

func (r *SQLRepository) GetNumberOfEpisodesForPodcast(ctx context.Context, podcastID int) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM episodes WHERE podcast_id = ?", podcastID)
}

func (r *SQLRepository) queryEpisodes(ctx context.Context, query string, args ...any) ([]*models.Episode, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	episodes := []*models.Episode{}
	for rows.Next() {
		var id, podcastID, length int
		var title, link, description, pubDate string
		if err := rows.Scan(&id, &podcastID, &title, &link, &length, &description, &pubDate); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		e, err := models.NewEpisode(id, podcastID, title, link, length, description, pubDate)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return episodes, nil
}
