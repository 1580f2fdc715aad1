package services

import (
	"context"
	"errors"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/shared"
)

func subscriptionFor(ctx context.Context, repo repositories.Repository, username string, podcastID int) (*models.PodcastSubscription, error) {
	user, err := repo.GetUser(ctx, username)
	if err != nil {
		return nil, translate(err, ErrUnknownUser)
	}
	if _, err := repo.GetPodcast(ctx, podcastID); err != nil {
		return nil, translate(err, ErrNonExistentPodcast)
	}
	return models.NewPodcastSubscription(shared.GenerateNumericID(), user.ID(), podcastID)
}

// Subscribe records the subscription once; repeating it is a no-op.
func Subscribe(ctx context.Context, repo repositories.Repository, username string, podcastID int) error {
	s, err := subscriptionFor(ctx, repo, username, podcastID)
	if err != nil {
		return err
	}
	return repo.AddSubscription(ctx, s)
}

func Unsubscribe(ctx context.Context, repo repositories.Repository, username string, podcastID int) error {
	s, err := subscriptionFor(ctx, repo, username, podcastID)
	if err != nil {
		return err
	}
	return repo.RemoveSubscription(ctx, s)
}

// GetSubscriptions returns the podcasts the user follows, in subscription order.
func GetSubscriptions(ctx context.Context, repo repositories.Repository, username string) ([]PodcastView, error) {
	user, err := repo.GetUser(ctx, username)
	if err != nil {
		return nil, translate(err, ErrUnknownUser)
	}
	subs, err := repo.GetSubscriptionsForUser(ctx, user.ID())
	if err != nil {
		return nil, err
	}

	views := make([]PodcastView, 0, len(subs))
	for _, s := range subs {
		p, err := repo.GetPodcast(ctx, s.PodcastID())
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, NewPodcastView(p))
	}
	return views, nil
}

// IsSubscribed reports whether the user follows the podcast. Unknown users follow nothing.
func IsSubscribed(ctx context.Context, repo repositories.Repository, username string, podcastID int) (bool, error) {
	user, err := repo.GetUser(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.SubscribedTo(podcastID), nil
}
