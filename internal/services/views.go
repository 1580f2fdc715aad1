package services

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/shared"
)

// CategorySeparator joins category names in views.
const CategorySeparator = " | "

type PodcastView struct {
	ID          int          `json:"id"`
	Author      string       `json:"author"`
	Title       string       `json:"title"`
	Image       string       `json:"image"`
	Description string       `json:"description"`
	Website     string       `json:"website"`
	ItunesID    *int         `json:"itunes_id,omitempty"`
	Language    string       `json:"language"`
	Categories  string       `json:"categories"`
	Reviews     []ReviewView `json:"reviews"`
}

type EpisodeView struct {
	ID          int    `json:"id"`
	PodcastID   int    `json:"podcast_id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Length      int    `json:"length"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	PubDate     string `json:"pub_date"`
}

type ReviewView struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	PodcastID int       `json:"podcast_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
	Age       string    `json:"age"`
}

// UserView never carries the password hash.
type UserView struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Rating is a podcast's average rating rounded to one decimal with a five-glyph star rendering.
type Rating struct {
	Number float64 `json:"number"`
	Stars  string  `json:"stars"`
}

func NewPodcastView(p *models.Podcast) PodcastView {
	v := PodcastView{
		ID:          p.ID(),
		Author:      p.AuthorName(),
		Title:       p.Title(),
		Image:       p.Image(),
		Description: p.Description(),
		Website:     p.Website(),
		Language:    p.Language(),
		Categories:  p.CategoryNames(CategorySeparator),
		Reviews:     NewReviewViews(p.Reviews()),
	}
	if id, ok := p.ItunesID(); ok {
		v.ItunesID = &id
	}
	return v
}

func NewPodcastViews(podcasts []*models.Podcast) []PodcastView {
	views := make([]PodcastView, len(podcasts))
	for i, p := range podcasts {
		views[i] = NewPodcastView(p)
	}
	return views
}

func NewEpisodeView(e *models.Episode) EpisodeView {
	return EpisodeView{
		ID:          e.ID(),
		PodcastID:   e.PodcastID(),
		Title:       e.Title(),
		Link:        e.Link(),
		Length:      e.Length(),
		Duration:    shared.FormatDuration(e.Length()),
		Description: e.Description(),
		PubDate:     e.PubDate(),
	}
}

func NewEpisodeViews(episodes []*models.Episode) []EpisodeView {
	views := make([]EpisodeView, len(episodes))
	for i, e := range episodes {
		views[i] = NewEpisodeView(e)
	}
	return views
}

func NewReviewView(r *models.Review) ReviewView {
	return ReviewView{
		ID:        r.ID(),
		Username:  r.Writer().Username(),
		PodcastID: r.PodcastID(),
		Rating:    r.Rating(),
		Comment:   r.Comment(),
		Timestamp: r.Timestamp(),
		Age:       humanize.Time(r.Timestamp()),
	}
}

func NewReviewViews(reviews []*models.Review) []ReviewView {
	views := make([]ReviewView, len(reviews))
	for i, r := range reviews {
		views[i] = NewReviewView(r)
	}
	return views
}

func NewUserView(u *models.User) UserView {
	return UserView{ID: u.ID(), Username: u.Username()}
}
