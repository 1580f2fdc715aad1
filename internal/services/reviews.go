package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/repositories"
)

// AddReview posts a review stamped now. The repository numbers it as it is stored.
func AddReview(ctx context.Context, repo repositories.Repository, username string, podcastID int, comment string, rating int) (*models.Review, error) {
	if _, err := repo.GetPodcast(ctx, podcastID); err != nil {
		return nil, translate(err, ErrNonExistentPodcast)
	}
	user, err := repo.GetUser(ctx, username)
	if err != nil {
		return nil, translate(err, ErrUnknownUser)
	}

	review, err := models.NewReview(models.UnassignedID, user, podcastID, rating, comment)
	if err != nil {
		return nil, err
	}
	review.Touch()

	if err := repo.AddReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to store review: %w", err)
	}
	return review, nil
}

func GetReviewsForPodcast(ctx context.Context, repo repositories.Repository, podcastID int) ([]ReviewView, error) {
	reviews, err := repo.GetReviewsForPodcast(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	return NewReviewViews(reviews), nil
}
