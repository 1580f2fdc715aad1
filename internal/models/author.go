package models

import (
	"fmt"
	"slices"
	"strings"
)

// Author is the creator of one or more podcasts.
type Author struct {
	id         int
	name       string
	podcastIDs []int
}

// NewAuthor creates an Author, trimming the name.
func NewAuthor(id int, name string) (*Author, error) {
	if err := validateID("author id", id); err != nil {
		return nil, err
	}
	trimmed, err := validateText("author name", name)
	if err != nil {
		return nil, err
	}
	return &Author{id: id, name: trimmed}, nil
}

func (a *Author) ID() int      { return a.id }
func (a *Author) Name() string { return a.name }

// SetName replaces the author's name.
func (a *Author) SetName(name string) error {
	trimmed, err := validateText("author name", name)
	if err != nil {
		return err
	}
	a.name = trimmed
	return nil
}

// PodcastIDs returns a copy of the ids of podcasts credited to the author.
func (a *Author) PodcastIDs() []int {
	return slices.Clone(a.podcastIDs)
}

// AddPodcast records the podcast id once.
func (a *Author) AddPodcast(podcastID int) {
	if !slices.Contains(a.podcastIDs, podcastID) {
		a.podcastIDs = append(a.podcastIDs, podcastID)
	}
}

// RemovePodcast drops the podcast id if present.
func (a *Author) RemovePodcast(podcastID int) {
	a.podcastIDs = slices.DeleteFunc(a.podcastIDs, func(id int) bool { return id == podcastID })
}

// Equal compares authors by id.
func (a *Author) Equal(o *Author) bool {
	return o != nil && a.id == o.id
}

// Compare orders authors by name.
func (a *Author) Compare(o *Author) int {
	return strings.Compare(a.name, o.name)
}

func (a *Author) String() string {
	return fmt.Sprintf("<Author %d: %s>", a.id, a.name)
}
