// package repositories provides the storage backends behind a single [Repository] interface.
package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/podshelf/internal/models"
)

var (
	// ErrNotFound is the absent result of every read of a missing id or name.
	ErrNotFound = fmt.Errorf("not found")
	// ErrConflict is returned when a write would break a uniqueness rule such as usernames.
	ErrConflict = fmt.Errorf("conflict")
)

// RandomPodcastLimit caps [PodcastRepository.GetRandomPodcasts].
const RandomPodcastLimit = 10

// AuthorRepository stores podcast creators.
type AuthorRepository interface {
	AddAuthor(ctx context.Context, author *models.Author) error
	AddMultipleAuthors(ctx context.Context, authors []*models.Author) error
	GetAuthors(ctx context.Context) ([]*models.Author, error)
	GetNumberOfAuthors(ctx context.Context) (int, error)
}

// CategoryRepository stores genre labels.
type CategoryRepository interface {
	AddCategory(ctx context.Context, category *models.Category) error
	AddMultipleCategories(ctx context.Context, categories []*models.Category) error
	GetCategories(ctx context.Context) ([]*models.Category, error) // GetCategories returns categories ordered by name
	GetCategory(ctx context.Context, name string) (*models.Category, error)
}

// PodcastRepository stores the catalogue aggregate.
//
// Add operations upsert by id. Searches trim the query and match case-insensitive substrings,
// returning podcasts in title order.
type PodcastRepository interface {
	AddPodcast(ctx context.Context, podcast *models.Podcast) error
	AddMultiplePodcasts(ctx context.Context, podcasts []*models.Podcast) error
	GetPodcast(ctx context.Context, id int) (*models.Podcast, error)
	GetPodcasts(ctx context.Context) ([]*models.Podcast, error)     // GetPodcasts returns podcasts ordered by title
	GetPodcastsByID(ctx context.Context) ([]*models.Podcast, error) // GetPodcastsByID returns podcasts ordered by id
	GetNumberOfPodcasts(ctx context.Context) (int, error)
	GetPodcastTitles(ctx context.Context) ([]string, error)
	// GetPodcastsByAlphabet returns the podcasts whose title is in titles, ordered by [models.CompareAlphabetical].
	GetPodcastsByAlphabet(ctx context.Context, titles []string) ([]*models.Podcast, error)
	// GetRandomPodcasts returns up to [RandomPodcastLimit] podcasts in no particular order.
	GetRandomPodcasts(ctx context.Context) ([]*models.Podcast, error)
	SearchPodcastsByTitle(ctx context.Context, text string) ([]*models.Podcast, error)
	SearchPodcastsByAuthor(ctx context.Context, text string) ([]*models.Podcast, error)
	SearchPodcastsByCategory(ctx context.Context, text string) ([]*models.Podcast, error)
	SearchPodcastsByLanguage(ctx context.Context, text string) ([]*models.Podcast, error)
}

// EpisodeRepository stores episodes. Adding an episode attaches it to a known parent podcast.
type EpisodeRepository interface {
	AddEpisode(ctx context.Context, episode *models.Episode) error
	AddMultipleEpisodes(ctx context.Context, episodes []*models.Episode) error
	GetEpisode(ctx context.Context, id int) (*models.Episode, error)
	GetEpisodes(ctx context.Context) ([]*models.Episode, error) // GetEpisodes returns episodes ordered by id
	// GetEpisodesForPodcast is empty for an unknown podcast.
	GetEpisodesForPodcast(ctx context.Context, podcastID int) ([]*models.Episode, error)
	GetNumberOfEpisodes(ctx context.Context) (int, error)
	GetNumberOfEpisodesForPodcast(ctx context.Context, podcastID int) (int, error)
}

// UserRepository stores accounts. Usernames are unique.
type UserRepository interface {
	AddUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetNumberOfUsers(ctx context.Context) (int, error)
}

// ReviewRepository stores reviews and links them to their podcast.
type ReviewRepository interface {
	AddReview(ctx context.Context, review *models.Review) error
	GetReviews(ctx context.Context) ([]*models.Review, error)
	GetReviewsForPodcast(ctx context.Context, podcastID int) ([]*models.Review, error)
}

// PlaylistRepository stores one playlist per user.
type PlaylistRepository interface {
	AddPlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByUser(ctx context.Context, userID int) (*models.Playlist, error)
	// UpdateUsersPlaylist upserts the owner association and the current episode list.
	UpdateUsersPlaylist(ctx context.Context, playlist *models.Playlist) error
}

// SubscriptionRepository stores podcast subscriptions.
type SubscriptionRepository interface {
	AddSubscription(ctx context.Context, subscription *models.PodcastSubscription) error
	RemoveSubscription(ctx context.Context, subscription *models.PodcastSubscription) error
	GetSubscriptionsForUser(ctx context.Context, userID int) ([]*models.PodcastSubscription, error)
}

// Repository is the capability set every storage backend implements with identical semantics.
type Repository interface {
	AuthorRepository
	CategoryRepository
	PodcastRepository
	EpisodeRepository
	UserRepository
	ReviewRepository
	PlaylistRepository
	SubscriptionRepository

	// Reset removes every record, ahead of a whole-catalogue repopulation.
	Reset(ctx context.Context) error
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*SQLRepository)(nil)
	_ Repository = (*CachedRepository)(nil)
)
