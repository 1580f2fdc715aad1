package models

import (
	"fmt"
	"slices"
	"strings"
)

const DefaultPodcastLanguage = "Unspecified"

// PodcastDetails holds the optional descriptive fields of a [Podcast].
type PodcastDetails struct {
	Image       string
	Description string
	Website     string
	Language    string
	ItunesID    *int
}

// Podcast is the catalogue aggregate: it owns its ordered categories, episodes and reviews.
type Podcast struct {
	id          int
	author      *Author
	title       string
	image       string
	description string
	website     string
	language    string
	itunesID    *int
	categories  []*Category
	episodes    []*Episode
	reviews     []*Review
}

// NewPodcast creates a Podcast. author may be nil when the creator is unknown.
// An empty language becomes [DefaultPodcastLanguage].
func NewPodcast(id int, author *Author, title string, details PodcastDetails) (*Podcast, error) {
	if err := validateID("podcast id", id); err != nil {
		return nil, err
	}
	trimmed, err := validateText("podcast title", title)
	if err != nil {
		return nil, err
	}

	p := &Podcast{
		id:          id,
		author:      author,
		title:       trimmed,
		image:       details.Image,
		description: details.Description,
		website:     details.Website,
		language:    strings.TrimSpace(details.Language),
	}
	if p.language == "" {
		p.language = DefaultPodcastLanguage
	}
	if details.ItunesID != nil {
		v := *details.ItunesID
		p.itunesID = &v
	}
	return p, nil
}

func (p *Podcast) ID() int             { return p.id }
func (p *Podcast) Author() *Author     { return p.author }
func (p *Podcast) Title() string       { return p.title }
func (p *Podcast) Image() string       { return p.image }
func (p *Podcast) Description() string { return p.description }
func (p *Podcast) Website() string     { return p.website }
func (p *Podcast) Language() string    { return p.language }

// AuthorName returns the author's name, or an empty string without one.
func (p *Podcast) AuthorName() string {
	if p.author == nil {
		return ""
	}
	return p.author.Name()
}

// ItunesID returns the iTunes identifier and whether one is set.
func (p *Podcast) ItunesID() (int, bool) {
	if p.itunesID == nil {
		return 0, false
	}
	return *p.itunesID, true
}

func (p *Podcast) SetAuthor(a *Author) { p.author = a }

func (p *Podcast) SetTitle(title string) error {
	trimmed, err := validateText("podcast title", title)
	if err != nil {
		return err
	}
	p.title = trimmed
	return nil
}

func (p *Podcast) SetImage(image string)             { p.image = image }
func (p *Podcast) SetDescription(description string) { p.description = description }
func (p *Podcast) SetLanguage(language string)       { p.language = language }

func (p *Podcast) SetWebsite(website string) error {
	if _, err := validateText("podcast website", website); err != nil {
		return err
	}
	p.website = website
	return nil
}

func (p *Podcast) SetItunesID(id *int) {
	if id == nil {
		p.itunesID = nil
		return
	}
	v := *id
	p.itunesID = &v
}

// Clone returns a copy that shares the attached entities but none of the slices holding them.
func (p *Podcast) Clone() *Podcast {
	c := *p
	c.categories = slices.Clone(p.categories)
	c.episodes = slices.Clone(p.episodes)
	c.reviews = slices.Clone(p.reviews)
	return &c
}

// Categories returns the podcast's categories in insertion order.
func (p *Podcast) Categories() []*Category { return slices.Clone(p.categories) }

// AddCategory appends c unless a category with the same id is already attached.
func (p *Podcast) AddCategory(c *Category) {
	if c == nil || ContainsID(p.categories, c.ID()) {
		return
	}
	p.categories = append(p.categories, c)
}

func (p *Podcast) RemoveCategory(c *Category) {
	p.categories = slices.DeleteFunc(p.categories, c.Equal)
}

// CategoryNames joins category names with sep.
func (p *Podcast) CategoryNames(sep string) string {
	names := make([]string, 0, len(p.categories))
	for _, c := range p.categories {
		names = append(names, c.Name())
	}
	return strings.Join(names, sep)
}

// Episodes returns the podcast's episodes in insertion order.
func (p *Podcast) Episodes() []*Episode { return slices.Clone(p.episodes) }

// AddEpisode appends e unless an equal episode is already attached.
func (p *Podcast) AddEpisode(e *Episode) {
	if e == nil || slices.ContainsFunc(p.episodes, e.Equal) {
		return
	}
	p.episodes = append(p.episodes, e)
}

func (p *Podcast) RemoveEpisode(e *Episode) {
	p.episodes = slices.DeleteFunc(p.episodes, e.Equal)
}

// Reviews returns the podcast's reviews in the order they were posted.
func (p *Podcast) Reviews() []*Review { return slices.Clone(p.reviews) }

// AddReview appends r. Reviews are append-only.
func (p *Podcast) AddReview(r *Review) {
	if r != nil {
		p.reviews = append(p.reviews, r)
	}
}

// AverageRating is the mean review rating, or 0 without reviews.
func (p *Podcast) AverageRating() float64 {
	if len(p.reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range p.reviews {
		total += r.Rating()
	}
	return float64(total) / float64(len(p.reviews))
}

// Equal compares podcasts by id.
func (p *Podcast) Equal(o *Podcast) bool {
	return o != nil && p.id == o.id
}

// Compare orders podcasts by title.
func (p *Podcast) Compare(o *Podcast) int {
	return strings.Compare(p.title, o.title)
}

func (p *Podcast) String() string {
	return fmt.Sprintf("<Podcast %d: '%s' by %s>", p.id, p.title, p.AuthorName())
}
