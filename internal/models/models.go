// package models defines the data model for the podcast catalogue
package models

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalid is wrapped by every validation failure raised while constructing or mutating an entity.
var ErrInvalid = fmt.Errorf("invalid value")

// Model defines the base interface for all domain entities.
//
// Identity is a non-negative integer assigned at construction. Reviews built with [UnassignedID]
// are numbered once, when first stored.
type Model interface {
	ID() int // ID returns the unique identifier for this model
}

// UnassignedID marks a review whose id is chosen by the repository that stores it.
const UnassignedID = 0

// validateID checks that id is a non-negative integer.
func validateID(field string, id int) error {
	if id < 0 {
		return fmt.Errorf("%w: %s must be a non-negative integer, got %d", ErrInvalid, field, id)
	}
	return nil
}

// validateText trims s and checks that something remains.
func validateText(field, s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrInvalid, field)
	}
	return trimmed, nil
}

// IndexOf returns the position of the model with the given id, or -1.
func IndexOf[T Model](items []T, id int) int {
	return slices.IndexFunc(items, func(item T) bool { return item.ID() == id })
}

// ContainsID reports whether a model with the given id is present in items.
func ContainsID[T Model](items []T, id int) bool {
	return IndexOf(items, id) >= 0
}

// CompareAlphabetical orders titles so that those beginning with a letter come before all others,
// each group compared case-insensitively.
func CompareAlphabetical(a, b string) int {
	aLetter, bLetter := startsWithLetter(a), startsWithLetter(b)
	switch {
	case aLetter && !bLetter:
		return -1
	case !aLetter && bLetter:
		return 1
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsLetter(r)
}

// SortPodcastsAlphabetically sorts podcasts in place by [CompareAlphabetical] on their titles.
func SortPodcastsAlphabetically(podcasts []*Podcast) {
	slices.SortStableFunc(podcasts, func(a, b *Podcast) int {
		return CompareAlphabetical(a.Title(), b.Title())
	})
}
