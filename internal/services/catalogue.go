package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/repositories"
)

// Filter selects the podcast field a search matches against.
type Filter string

const (
	FilterTitle    Filter = "title"
	FilterAuthor   Filter = "author"
	FilterCategory Filter = "category"
	FilterLanguage Filter = "language"
)

// Filters lists every supported search filter, in menu order.
var Filters = []Filter{FilterTitle, FilterAuthor, FilterCategory, FilterLanguage}

// ParseFilter reads a filter name case-insensitively. The bool is false for unknown names.
func ParseFilter(s string) (Filter, bool) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	return f, slices.Contains(Filters, f)
}

// MaxStars is the width of a star rating.
const MaxStars = 5

func GetRandomPodcasts(ctx context.Context, repo repositories.Repository) ([]PodcastView, error) {
	podcasts, err := repo.GetRandomPodcasts(ctx)
	if err != nil {
		return nil, err
	}
	return NewPodcastViews(podcasts), nil
}

func GetPodcastTitles(ctx context.Context, repo repositories.Repository) ([]string, error) {
	return repo.GetPodcastTitles(ctx)
}

// GetPodcastsByAlphabet returns the catalogue ordered letters-first, case-insensitively.
func GetPodcastsByAlphabet(ctx context.Context, repo repositories.Repository) ([]PodcastView, error) {
	titles, err := repo.GetPodcastTitles(ctx)
	if err != nil {
		return nil, err
	}
	podcasts, err := repo.GetPodcastsByAlphabet(ctx, titles)
	if err != nil {
		return nil, err
	}
	return NewPodcastViews(podcasts), nil
}

// SearchResults runs a filtered search and sorts the matches with [models.CompareAlphabetical].
// An unknown filter yields no results.
func SearchResults(ctx context.Context, repo repositories.Repository, query string, filter Filter) ([]PodcastView, error) {
	var search func(context.Context, string) ([]*models.Podcast, error)
	switch filter {
	case FilterTitle:
		search = repo.SearchPodcastsByTitle
	case FilterAuthor:
		search = repo.SearchPodcastsByAuthor
	case FilterCategory:
		search = repo.SearchPodcastsByCategory
	case FilterLanguage:
		search = repo.SearchPodcastsByLanguage
	default:
		return []PodcastView{}, nil
	}

	podcasts, err := search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search by %s failed: %w", filter, err)
	}
	models.SortPodcastsAlphabetically(podcasts)
	return NewPodcastViews(podcasts), nil
}

func GetPodcastByID(ctx context.Context, repo repositories.Repository, podcastID int) (PodcastView, error) {
	p, err := repo.GetPodcast(ctx, podcastID)
	if err != nil {
		return PodcastView{}, translate(err, ErrNonExistentPodcast)
	}
	return NewPodcastView(p), nil
}

// GetEpisodes returns a podcast's episodes oldest first. Episodes with unparseable dates sort last.
func GetEpisodes(ctx context.Context, repo repositories.Repository, podcastID int) ([]*models.Episode, error) {
	episodes, err := repo.GetEpisodesForPodcast(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	SortByPublished(episodes)
	return episodes, nil
}

// SortByPublished orders episodes by parsed publish date, stable for ties.
func SortByPublished(episodes []*models.Episode) {
	slices.SortStableFunc(episodes, func(a, b *models.Episode) int {
		at, aErr := a.PublishedAt()
		bt, bErr := b.PublishedAt()
		switch {
		case aErr != nil && bErr != nil:
			return 0
		case aErr != nil:
			return 1
		case bErr != nil:
			return -1
		}
		return at.Compare(bt)
	})
}

func GetEpisodeByID(ctx context.Context, repo repositories.Repository, episodeID int) (*models.Episode, error) {
	e, err := repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, translate(err, ErrNonExistentEpisode)
	}
	return e, nil
}

func GetAverageRating(ctx context.Context, repo repositories.Repository, podcastID int) (Rating, error) {
	p, err := repo.GetPodcast(ctx, podcastID)
	if err != nil {
		return Rating{}, translate(err, ErrNonExistentPodcast)
	}
	return NewRating(p.AverageRating()), nil
}

// NewRating rounds avg half to even, to one decimal for the number and to a whole star count out of [MaxStars].
func NewRating(avg float64) Rating {
	filled := min(max(int(math.RoundToEven(avg)), 0), MaxStars)
	return Rating{
		Number: math.RoundToEven(avg*10) / 10,
		Stars:  strings.Repeat("★", filled) + strings.Repeat("☆", MaxStars-filled),
	}
}
