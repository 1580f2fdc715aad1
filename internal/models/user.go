package models

import (
	"cmp"
	"fmt"
	"slices"
)

// User is a registered account. The password is only ever held as a hash.
type User struct {
	id            int
	username      string
	passwordHash  string
	subscriptions []*PodcastSubscription
}

// NewUser creates a User, trimming the username.
func NewUser(id int, username, passwordHash string) (*User, error) {
	if err := validateID("user id", id); err != nil {
		return nil, err
	}
	trimmed, err := validateText("username", username)
	if err != nil {
		return nil, err
	}
	if _, err := validateText("password hash", passwordHash); err != nil {
		return nil, err
	}
	return &User{id: id, username: trimmed, passwordHash: passwordHash}, nil
}

func (u *User) ID() int              { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }

func (u *User) Clone() *User {
	c := *u
	c.subscriptions = slices.Clone(u.subscriptions)
	return &c
}

// Subscriptions returns the user's podcast subscriptions.
func (u *User) Subscriptions() []*PodcastSubscription { return slices.Clone(u.subscriptions) }

// AddSubscription appends s unless an equal subscription is present.
func (u *User) AddSubscription(s *PodcastSubscription) {
	if s == nil || slices.ContainsFunc(u.subscriptions, s.Equal) {
		return
	}
	u.subscriptions = append(u.subscriptions, s)
}

func (u *User) RemoveSubscription(s *PodcastSubscription) {
	u.subscriptions = slices.DeleteFunc(u.subscriptions, s.Equal)
}

// SubscribedTo reports whether the user holds a subscription to the podcast.
func (u *User) SubscribedTo(podcastID int) bool {
	return slices.ContainsFunc(u.subscriptions, func(s *PodcastSubscription) bool {
		return s.PodcastID() == podcastID
	})
}

func (u *User) Equal(o *User) bool {
	return o != nil && u.id == o.id
}

func (u *User) Compare(o *User) int {
	return cmp.Compare(u.id, o.id)
}

func (u *User) String() string {
	return fmt.Sprintf("<User %d: %s>", u.id, u.username)
}

// PodcastSubscription links a user to a podcast by id.
type PodcastSubscription struct {
	id        int
	ownerID   int
	podcastID int
}

func NewPodcastSubscription(id, ownerID, podcastID int) (*PodcastSubscription, error) {
	for field, v := range map[string]int{"subscription id": id, "owner id": ownerID, "podcast id": podcastID} {
		if err := validateID(field, v); err != nil {
			return nil, err
		}
	}
	return &PodcastSubscription{id: id, ownerID: ownerID, podcastID: podcastID}, nil
}

func (s *PodcastSubscription) ID() int        { return s.id }
func (s *PodcastSubscription) OwnerID() int   { return s.ownerID }
func (s *PodcastSubscription) PodcastID() int { return s.podcastID }

// Equal compares all three fields.
func (s *PodcastSubscription) Equal(o *PodcastSubscription) bool {
	return o != nil && s.id == o.id && s.ownerID == o.ownerID && s.podcastID == o.podcastID
}

func (s *PodcastSubscription) Compare(o *PodcastSubscription) int {
	return cmp.Compare(s.id, o.id)
}

func (s *PodcastSubscription) String() string {
	return fmt.Sprintf("<PodcastSubscription %d: user %d to podcast %d>", s.id, s.ownerID, s.podcastID)
}
