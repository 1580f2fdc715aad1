package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/podshelf/internal/models"
)

// AddUser upserts by id. A username already held by another id is [ErrConflict].
func (r *SQLRepository) AddUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("%w: nil user", models.ErrInvalid)
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (user_id, username, password_hash) VALUES (?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				username = excluded.username,
				password_hash = excluded.password_hash
		`, user.ID(), user.Username(), user.PasswordHash())
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("username %q: %w", user.Username(), ErrConflict)
			}
			return fmt.Errorf("failed to insert user %d: %w", user.ID(), err)
		}
		for _, s := range user.Subscriptions() {
			if err := insertSubscription(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLRepository) GetUser(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, "SELECT user_id, username, password_hash FROM users WHERE username = ?",
		strings.TrimSpace(username))
}

func (r *SQLRepository) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return r.getUser(ctx, "SELECT user_id, username, password_hash FROM users WHERE user_id = ?", id)
}

func (r *SQLRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var id int
	var username, hash string
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&id, &username, &hash); err != nil {
		return nil, notFound(err, "user %v", arg)
	}
	user, err := models.NewUser(id, username, hash)
	if err != nil {
		return nil, err
	}

	subs, err := r.GetSubscriptionsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		user.AddSubscription(s)
	}
	return user, nil
}

func (r *SQLRepository) GetNumberOfUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM users")
}

func insertSubscription(ctx context.Context, q querier, s *models.PodcastSubscription) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO subscriptions (subscription_id, user_id, podcast_id) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, s.ID(), s.OwnerID(), s.PodcastID())
	if err != nil {
		return fmt.Errorf("failed to insert subscription %d: %w", s.ID(), err)
	}
	return nil
}

// AddSubscription stores s once per user and podcast.
func (r *SQLRepository) AddSubscription(ctx context.Context, s *models.PodcastSubscription) error {
	if s == nil {
		return fmt.Errorf("%w: nil subscription", models.ErrInvalid)
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertSubscription(ctx, tx, s)
	})
}

func (r *SQLRepository) RemoveSubscription(ctx context.Context, s *models.PodcastSubscription) error {
	if s == nil {
		return fmt.Errorf("%w: nil subscription", models.ErrInvalid)
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM subscriptions WHERE user_id = ? AND podcast_id = ?",
			s.OwnerID(), s.PodcastID())
		if err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

func (r *SQLRepository) GetSubscriptionsForUser(ctx context.Context, userID int) ([]*models.PodcastSubscription, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT subscription_id, user_id, podcast_id FROM subscriptions WHERE user_id = ? ORDER BY subscription_id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []*models.PodcastSubscription{}
	for rows.Next() {
		var id, owner, podcast int
		if err := rows.Scan(&id, &owner, &podcast); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		s, err := models.NewPodcastSubscription(id, owner, podcast)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return subs, nil
}
