package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/podshelf/internal/models"
)

const reviewColumns = `
	r.review_id, r.podcast_id, r.rating, r.review_text, r.timestamp,
	u.user_id, u.username, u.password_hash
	FROM reviews r
	JOIN users u ON u.user_id = r.user_id`

// AddReview upserts the review. The podcast and writer must already be stored.
// A review with [models.UnassignedID] takes the rowid SQLite allocates for it.
func (r *SQLRepository) AddReview(ctx context.Context, review *models.Review) error {
	if review == nil {
		return fmt.Errorf("%w: nil review", models.ErrInvalid)
	}
	if review.ID() == models.UnassignedID {
		var id int64
		err := r.withTx(ctx, func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO reviews (podcast_id, user_id, rating, review_text, timestamp)
				VALUES (?, ?, ?, ?, ?)
			`, review.PodcastID(), review.Writer().ID(), review.Rating(), review.Comment(), review.Timestamp().UTC())
			if err != nil {
				return fmt.Errorf("failed to insert review: %w", err)
			}
			if id, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("failed to read review id: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return review.AssignID(int(id))
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (review_id, podcast_id, user_id, rating, review_text, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(review_id) DO UPDATE SET
				podcast_id = excluded.podcast_id,
				user_id = excluded.user_id,
				rating = excluded.rating,
				review_text = excluded.review_text,
				timestamp = excluded.timestamp
		`, review.ID(), review.PodcastID(), review.Writer().ID(), review.Rating(), review.Comment(), review.Timestamp().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert review %d: %w", review.ID(), err)
		}
		return nil
	})
}

func (r *SQLRepository) GetReviews(ctx context.Context) ([]*models.Review, error) {
	return r.queryReviews(ctx, "SELECT"+reviewColumns+" ORDER BY r.review_id")
}

func (r *SQLRepository) GetReviewsForPodcast(ctx context.Context, podcastID int) ([]*models.Review, error) {
	return r.queryReviews(ctx, "SELECT"+reviewColumns+" WHERE r.podcast_id = ? ORDER BY r.review_id", podcastID)
}

// queryReviews shares one *User per writer across the result.
func (r *SQLRepository) queryReviews(ctx context.Context, query string, args ...any) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	writers := make(map[int]*models.User)
	reviews := []*models.Review{}
	for rows.Next() {
		var id, podcastID, rating, userID int
		var comment, username, hash string
		var ts time.Time
		if err := rows.Scan(&id, &podcastID, &rating, &comment, &ts, &userID, &username, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		writer := writers[userID]
		if writer == nil {
			if writer, err = models.NewUser(userID, username, hash); err != nil {
				return nil, err
			}
			writers[userID] = writer
		}

		rv, err := models.NewReview(id, writer, podcastID, rating, comment)
		if err != nil {
			return nil, err
		}
		rv.SetTimestamp(ts)
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reviews, nil
}
