package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/podshelf/internal/models"
)

func (r *SQLRepository) AddPlaylist(ctx context.Context, playlist *models.Playlist) error {
	return r.UpdateUsersPlaylist(ctx, playlist)
}

// UpdateUsersPlaylist replaces the owner's playlist row and its episode list in one transaction.
func (r *SQLRepository) UpdateUsersPlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist == nil {
		return fmt.Errorf("%w: nil playlist", models.ErrInvalid)
	}
	ownerID := playlist.Owner().ID()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM playlists WHERE user_id = ? AND playlist_id <> ?", ownerID, playlist.ID(),
		); err != nil {
			return fmt.Errorf("failed to clear previous playlist of user %d: %w", ownerID, err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO playlists (playlist_id, user_id, playlist_title) VALUES (?, ?, ?)
			ON CONFLICT(playlist_id) DO UPDATE SET
				user_id = excluded.user_id,
				playlist_title = excluded.playlist_title
		`, playlist.ID(), ownerID, playlist.Title())
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("playlist %d: %w", playlist.ID(), ErrConflict)
			}
			return fmt.Errorf("failed to insert playlist %d: %w", playlist.ID(), err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_episodes WHERE playlist_id = ?", playlist.ID()); err != nil {
			return fmt.Errorf("failed to clear playlist %d: %w", playlist.ID(), err)
		}
		for _, e := range playlist.Episodes() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO playlist_episodes (playlist_id, episode_id) VALUES (?, ?)", playlist.ID(), e.ID(),
			); err != nil {
				return fmt.Errorf("failed to add episode %d to playlist %d: %w", e.ID(), playlist.ID(), err)
			}
		}
		return nil
	})
}

func (r *SQLRepository) GetPlaylistByUser(ctx context.Context, userID int) (*models.Playlist, error) {
	var id int
	var title string
	err := r.db.QueryRowContext(ctx,
		"SELECT playlist_id, playlist_title FROM playlists WHERE user_id = ?", userID,
	).Scan(&id, &title)
	if err != nil {
		return nil, notFound(err, "playlist for user %d", userID)
	}

	owner, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	playlist, err := models.NewPlaylist(id, owner, title)
	if err != nil {
		return nil, err
	}

	episodes, err := r.queryEpisodes(ctx, `
		SELECT e.episode_id, e.podcast_id, e.title, e.episode_link, e.episode_length, e.description, e.pub_date
		FROM playlist_episodes pe
		JOIN episodes e ON e.episode_id = pe.episode_id
		WHERE pe.playlist_id = ?
		ORDER BY pe.id`, id)
	if err != nil {
		return nil, err
	}
	for _, e := range episodes {
		playlist.AddEpisode(e)
	}
	return playlist, nil
}
