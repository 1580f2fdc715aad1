package models

import (
	"cmp"
	"fmt"
	"time"
)

const (
	MinRating = 0
	MaxRating = 10
)

// Review is a rating and comment written by a user about a podcast.
type Review struct {
	id        int
	writer    *User
	podcastID int
	rating    int
	comment   string
	timestamp time.Time
}

// NewReview creates a Review stamped with the current time.
func NewReview(id int, writer *User, podcastID, rating int, comment string) (*Review, error) {
	if err := validateID("review id", id); err != nil {
		return nil, err
	}
	if err := validateID("podcast id", podcastID); err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, fmt.Errorf("%w: review writer is required", ErrInvalid)
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if _, err := validateText("review comment", comment); err != nil {
		return nil, err
	}
	return &Review{
		id:        id,
		writer:    writer,
		podcastID: podcastID,
		rating:    rating,
		comment:   comment,
		timestamp: time.Now(),
	}, nil
}

// AssignID numbers a review created with [UnassignedID]. Repositories call it on first store.
func (r *Review) AssignID(id int) error {
	if r.id != UnassignedID {
		return fmt.Errorf("%w: review already has id %d", ErrInvalid, r.id)
	}
	if id <= UnassignedID {
		return fmt.Errorf("%w: assigned review id must be positive, got %d", ErrInvalid, id)
	}
	r.id = id
	return nil
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d, got %d", ErrInvalid, MinRating, MaxRating, rating)
	}
	return nil
}

func (r *Review) ID() int              { return r.id }
func (r *Review) Writer() *User        { return r.writer }
func (r *Review) PodcastID() int       { return r.podcastID }
func (r *Review) Rating() int          { return r.rating }
func (r *Review) Comment() string      { return r.comment }
func (r *Review) Timestamp() time.Time { return r.timestamp }

func (r *Review) SetRating(rating int) error {
	if err := validateRating(rating); err != nil {
		return err
	}
	r.rating = rating
	return nil
}

func (r *Review) SetComment(comment string) error {
	if _, err := validateText("review comment", comment); err != nil {
		return err
	}
	r.comment = comment
	return nil
}

// SetTimestamp restores a stored timestamp.
func (r *Review) SetTimestamp(t time.Time) { r.timestamp = t }

// Touch resets the timestamp to now.
func (r *Review) Touch() { r.timestamp = time.Now() }

func (r *Review) Equal(o *Review) bool {
	return o != nil && r.id == o.id
}

func (r *Review) Compare(o *Review) int {
	return cmp.Compare(r.id, o.id)
}

func (r *Review) String() string {
	return fmt.Sprintf("<Review %d by %s: %d>", r.id, r.writer, r.rating)
}
