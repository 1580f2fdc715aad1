package models

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// PubDateLayout is the textual timestamp format of [Episode.PubDate], e.g. "2019-07-29 06:30:00+00".
const PubDateLayout = "2006-01-02 15:04:05-07"

// Episode is a single show of a podcast.
//
// The parent podcast is held by id; see [Podcast.AddEpisode] for the owning side.
type Episode struct {
	id          int
	podcastID   int
	title       string
	link        string
	length      int
	description string
	pubDate     string
}

// NewEpisode creates an Episode. length is in seconds.
func NewEpisode(id, podcastID int, title, link string, length int, description, pubDate string) (*Episode, error) {
	if err := validateID("episode id", id); err != nil {
		return nil, err
	}
	if err := validateID("podcast id", podcastID); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: episode length must be non-negative, got %d", ErrInvalid, length)
	}
	trimmed, err := validateText("episode title", title)
	if err != nil {
		return nil, err
	}
	return &Episode{
		id:          id,
		podcastID:   podcastID,
		title:       trimmed,
		link:        link,
		length:      length,
		description: description,
		pubDate:     strings.TrimSpace(pubDate),
	}, nil
}

func (e *Episode) ID() int             { return e.id }
func (e *Episode) PodcastID() int      { return e.podcastID }
func (e *Episode) Title() string       { return e.title }
func (e *Episode) Link() string        { return e.link }
func (e *Episode) Length() int         { return e.length }
func (e *Episode) Description() string { return e.description }
func (e *Episode) PubDate() string     { return e.pubDate }

func (e *Episode) SetTitle(title string) error {
	trimmed, err := validateText("episode title", title)
	if err != nil {
		return err
	}
	e.title = trimmed
	return nil
}

func (e *Episode) SetLink(link string) error {
	if _, err := validateText("episode link", link); err != nil {
		return err
	}
	e.link = link
	return nil
}

func (e *Episode) SetDescription(description string) error {
	if _, err := validateText("episode description", description); err != nil {
		return err
	}
	e.description = description
	return nil
}

// PublishedAt parses the publication date.
func (e *Episode) PublishedAt() (time.Time, error) {
	t, err := time.Parse(PubDateLayout, e.pubDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparseable publication date %q", ErrInvalid, e.pubDate)
	}
	return t, nil
}

// Equal compares id, title, link, length and description.
func (e *Episode) Equal(o *Episode) bool {
	return o != nil &&
		e.id == o.id &&
		e.title == o.title &&
		e.link == o.link &&
		e.length == o.length &&
		e.description == o.description
}

// Compare orders episodes by id.
func (e *Episode) Compare(o *Episode) int {
	return cmp.Compare(e.id, o.id)
}

func (e *Episode) String() string {
	return fmt.Sprintf("<Episode %d of podcast %d: %s>", e.id, e.podcastID, e.title)
}
