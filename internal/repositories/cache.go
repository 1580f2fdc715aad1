package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/desertthunder/podshelf/internal/models"
)

const (
	DefaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 10 * time.Minute

	podcastKeyPrefix = "podcast:"
	titlesKey        = "podcast-titles"
)

// CachedRepository wraps a [Repository] with a read-through cache for podcast lookups.
//
// Every write that can change a podcast, its episodes or its reviews flushes the cache.
// User, playlist and subscription methods pass straight through.
type CachedRepository struct {
	Repository
	cache *cache.Cache
}

// NewCachedRepository decorates repo. A non-positive ttl uses [DefaultCacheExpiration].
func NewCachedRepository(repo Repository, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultCacheExpiration
	}
	return &CachedRepository{Repository: repo, cache: cache.New(ttl, cacheCleanupInterval)}
}

func (r *CachedRepository) GetPodcast(ctx context.Context, id int) (*models.Podcast, error) {
	key := podcastKeyPrefix + strconv.Itoa(id)
	if v, ok := r.cache.Get(key); ok {
		if p, ok := v.(*models.Podcast); ok {
			return p, nil
		}
	}

	p, err := r.Repository.GetPodcast(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, p)
	return p, nil
}

func (r *CachedRepository) GetPodcastTitles(ctx context.Context) ([]string, error) {
	if v, ok := r.cache.Get(titlesKey); ok {
		if titles, ok := v.([]string); ok {
			return titles, nil
		}
	}

	titles, err := r.Repository.GetPodcastTitles(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(titlesKey, titles)
	return titles, nil
}

// Len reports how many entries are currently cached.
func (r *CachedRepository) Len() int { return r.cache.ItemCount() }

func (r *CachedRepository) flushAfter(err error) error {
	r.cache.Flush()
	return err
}

func (r *CachedRepository) AddAuthor(ctx context.Context, author *models.Author) error {
	return r.flushAfter(r.Repository.AddAuthor(ctx, author))
}

func (r *CachedRepository) AddMultipleAuthors(ctx context.Context, authors []*models.Author) error {
	return r.flushAfter(r.Repository.AddMultipleAuthors(ctx, authors))
}

func (r *CachedRepository) AddCategory(ctx context.Context, category *models.Category) error {
	return r.flushAfter(r.Repository.AddCategory(ctx, category))
}

func (r *CachedRepository) AddMultipleCategories(ctx context.Context, categories []*models.Category) error {
	return r.flushAfter(r.Repository.AddMultipleCategories(ctx, categories))
}

func (r *CachedRepository) AddPodcast(ctx context.Context, podcast *models.Podcast) error {
	return r.flushAfter(r.Repository.AddPodcast(ctx, podcast))
}

func (r *CachedRepository) AddMultiplePodcasts(ctx context.Context, podcasts []*models.Podcast) error {
	return r.flushAfter(r.Repository.AddMultiplePodcasts(ctx, podcasts))
}

func (r *CachedRepository) AddEpisode(ctx context.Context, episode *models.Episode) error {
	return r.flushAfter(r.Repository.AddEpisode(ctx, episode))
}

func (r *CachedRepository) AddMultipleEpisodes(ctx context.Context, episodes []*models.Episode) error {
	return r.flushAfter(r.Repository.AddMultipleEpisodes(ctx, episodes))
}

func (r *CachedRepository) AddReview(ctx context.Context, review *models.Review) error {
	return r.flushAfter(r.Repository.AddReview(ctx, review))
}

func (r *CachedRepository) Reset(ctx context.Context) error {
	return r.flushAfter(r.Repository.Reset(ctx))
}
