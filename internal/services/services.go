package services

import (
	"errors"
	"fmt"

	"github.com/desertthunder/podshelf/internal/repositories"
)

var (
	ErrNonExistentPodcast = fmt.Errorf("podcast does not exist")
	ErrNonExistentEpisode = fmt.Errorf("episode does not exist")
	ErrUnknownUser        = fmt.Errorf("unknown user")
	ErrNameNotUnique      = fmt.Errorf("the username already exists")
	ErrAuthentication     = fmt.Errorf("the username or password is incorrect")
)

// Page sizes used by each listing.
const (
	CataloguePageSize   = 12
	SearchPageSize      = 8
	DescriptionPageSize = 6
	PlaylistPageSize    = 9
)

// Paginate returns the items on page (1-based) and the total number of pages.
//
// Pages below 1 are treated as 1. A page past the end is empty and the total is unchanged.
func Paginate[T any](items []T, page, perPage int) ([]T, int) {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	total := (len(items) + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}, total
	}
	end := min(start+perPage, len(items))
	return items[start:end], total
}

// translate maps repository absence onto the service error sentinel.
func translate(err, sentinel error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return err
}
