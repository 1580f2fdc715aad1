package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

const DefaultPlaylistTitle = "Untitled playlist"

// Playlist is a user's ordered, duplicate-free episode queue.
type Playlist struct {
	id       int
	owner    *User
	title    string
	episodes []*Episode
}

// NewPlaylist creates an empty Playlist. An empty title becomes [DefaultPlaylistTitle].
func NewPlaylist(id int, owner *User, title string) (*Playlist, error) {
	if err := validateID("playlist id", id); err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: playlist owner is required", ErrInvalid)
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultPlaylistTitle
	}
	return &Playlist{id: id, owner: owner, title: title}, nil
}

func (p *Playlist) ID() int       { return p.id }
func (p *Playlist) Owner() *User  { return p.owner }
func (p *Playlist) Title() string { return p.title }

func (p *Playlist) SetTitle(title string) error {
	if _, err := validateText("playlist title", title); err != nil {
		return err
	}
	p.title = title
	return nil
}

func (p *Playlist) Clone() *Playlist {
	c := *p
	c.episodes = slices.Clone(p.episodes)
	return &c
}

// Episodes returns the queued episodes in order.
func (p *Playlist) Episodes() []*Episode { return slices.Clone(p.episodes) }

func (p *Playlist) Len() int { return len(p.episodes) }

// Contains reports whether an equal episode is queued.
func (p *Playlist) Contains(e *Episode) bool {
	return e != nil && slices.ContainsFunc(p.episodes, e.Equal)
}

// AddEpisode appends e unless it is already queued. It reports whether the playlist changed.
func (p *Playlist) AddEpisode(e *Episode) bool {
	if e == nil || p.Contains(e) {
		return false
	}
	p.episodes = append(p.episodes, e)
	return true
}

// RemoveEpisode drops e. Removing a non-member is a no-op that reports false.
func (p *Playlist) RemoveEpisode(e *Episode) bool {
	if !p.Contains(e) {
		return false
	}
	p.episodes = slices.DeleteFunc(p.episodes, e.Equal)
	return true
}

func (p *Playlist) Equal(o *Playlist) bool {
	return o != nil && p.id == o.id
}

func (p *Playlist) Compare(o *Playlist) int {
	return cmp.Compare(p.id, o.id)
}

func (p *Playlist) String() string {
	return fmt.Sprintf("<Playlist %d: %s by %s, %d episodes>", p.id, p.title, p.owner, len(p.episodes))
}
