package repositories

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/podshelf/internal/models"
)

// MemoryRepository keeps every entity in process.
//
// Podcasts (by title), episodes and playlists (by id) are kept sorted at insert time; id indexes give direct lookup.
// A stored podcast, user or playlist is never changed after it has been handed out. Writes swap in an
// updated copy under the lock, so readers keep a consistent snapshot. Playlists are copied both ways.
type MemoryRepository struct {
	mu sync.RWMutex

	podcasts     []*models.Podcast
	podcastIndex map[int]*models.Podcast

	episodes     []*models.Episode
	episodeIndex map[int]*models.Episode

	authors    map[int]*models.Author
	categories map[int]*models.Category

	users       []*models.User
	usersByName map[string]*models.User

	reviews []*models.Review

	playlists       []*models.Playlist
	playlistsByUser map[int]*models.Playlist

	subscriptions []*models.PodcastSubscription
}

// NewMemoryRepository creates an empty [MemoryRepository].
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{}
	r.reset()
	return r
}

func (r *MemoryRepository) reset() {
	r.podcasts = nil
	r.podcastIndex = make(map[int]*models.Podcast)
	r.episodes = nil
	r.episodeIndex = make(map[int]*models.Episode)
	r.authors = make(map[int]*models.Author)
	r.categories = make(map[int]*models.Category)
	r.users = nil
	r.usersByName = make(map[string]*models.User)
	r.reviews = nil
	r.playlists = nil
	r.playlistsByUser = make(map[int]*models.Playlist)
	r.subscriptions = nil
}

// Reset removes every record.
func (r *MemoryRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	return nil
}

// insertSorted places item at its leftmost sorted position.
func insertSorted[T any](items []T, item T, cmp func(a, b T) int) []T {
	i, _ := slices.BinarySearchFunc(items, item, cmp)
	return slices.Insert(items, i, item)
}

// removeByID drops every model with the given id.
func removeByID[T models.Model](items []T, id int) []T {
	return slices.DeleteFunc(items, func(item T) bool { return item.ID() == id })
}

func (r *MemoryRepository) AddAuthor(ctx context.Context, author *models.Author) error {
	if author == nil {
		return fmt.Errorf("%w: nil author", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authors[author.ID()] = author
	return nil
}

func (r *MemoryRepository) AddMultipleAuthors(ctx context.Context, authors []*models.Author) error {
	for _, a := range authors {
		if err := r.AddAuthor(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryRepository) GetAuthors(ctx context.Context) ([]*models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	authors := make([]*models.Author, 0, len(r.authors))
	for _, a := range r.authors {
		authors = append(authors, a)
	}
	slices.SortFunc(authors, (*models.Author).Compare)
	return authors, nil
}

func (r *MemoryRepository) GetNumberOfAuthors(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.authors), nil
}

func (r *MemoryRepository) AddCategory(ctx context.Context, category *models.Category) error {
	if category == nil {
		return fmt.Errorf("%w: nil category", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID()] = category
	return nil
}

func (r *MemoryRepository) AddMultipleCategories(ctx context.Context, categories []*models.Category) error {
	for _, c := range categories {
		if err := r.AddCategory(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryRepository) GetCategories(ctx context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	categories := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, (*models.Category).Compare)
	return categories, nil
}

func (r *MemoryRepository) GetCategory(ctx context.Context, name string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name = strings.TrimSpace(name)
	for _, c := range r.categories {
		if strings.EqualFold(c.Name(), name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
}

// AddPodcast upserts the podcast together with its author, categories and attached episodes.
func (r *MemoryRepository) AddPodcast(ctx context.Context, podcast *models.Podcast) error {
	if podcast == nil {
		return fmt.Errorf("%w: nil podcast", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addPodcast(podcast)
	return nil
}

func (r *MemoryRepository) addPodcast(podcast *models.Podcast) {
	if _, ok := r.podcastIndex[podcast.ID()]; ok {
		r.podcasts = removeByID(r.podcasts, podcast.ID())
	}
	r.podcasts = insertSorted(r.podcasts, podcast, (*models.Podcast).Compare)
	r.podcastIndex[podcast.ID()] = podcast

	if a := podcast.Author(); a != nil {
		a.AddPodcast(podcast.ID())
		if _, ok := r.authors[a.ID()]; !ok {
			r.authors[a.ID()] = a
		}
	}
	for _, c := range podcast.Categories() {
		if _, ok := r.categories[c.ID()]; !ok {
			r.categories[c.ID()] = c
		}
	}
	for _, e := range podcast.Episodes() {
		r.indexEpisode(e)
	}
}

// replacePodcast swaps in next, a changed copy of a stored podcast with the same title.
func (r *MemoryRepository) replacePodcast(next *models.Podcast) {
	if i := models.IndexOf(r.podcasts, next.ID()); i >= 0 {
		r.podcasts[i] = next
	}
	r.podcastIndex[next.ID()] = next
}

func (r *MemoryRepository) AddMultiplePodcasts(ctx context.Context, podcasts []*models.Podcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range podcasts {
		if p == nil {
			return fmt.Errorf("%w: nil podcast", models.ErrInvalid)
		}
		r.addPodcast(p)
	}
	return nil
}

func (r *MemoryRepository) GetPodcast(ctx context.Context, id int) (*models.Podcast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.podcastIndex[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("podcast %d: %w", id, ErrNotFound)
}

func (r *MemoryRepository) GetPodcasts(ctx context.Context) ([]*models.Podcast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.podcasts), nil
}

func (r *MemoryRepository) GetPodcastsByID(ctx context.Context) ([]*models.Podcast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	podcasts := slices.Clone(r.podcasts)
	slices.SortFunc(podcasts, func(a, b *models.Podcast) int { return a.ID() - b.ID() })
	return podcasts, nil
}

func (r *MemoryRepository) GetNumberOfPodcasts(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.podcasts), nil
}

func (r *MemoryRepository) GetPodcastTitles(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	titles := make([]string, len(r.podcasts))
	for i, p := range r.podcasts {
		titles[i] = p.Title()
	}
	return titles, nil
}

func (r *MemoryRepository) GetPodcastsByAlphabet(ctx context.Context, titles []string) ([]*models.Podcast, error) {
	wanted := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		wanted[t] = struct{}{}
	}

	r.mu.RLock()
	filtered := make([]*models.Podcast, 0, len(titles))
	for _, p := range r.podcasts {
		if _, ok := wanted[p.Title()]; ok {
			filtered = append(filtered, p)
		}
	}
	r.mu.RUnlock()

	models.SortPodcastsAlphabetically(filtered)
	return filtered, nil
}

// GetRandomPodcasts shuffles a copy, leaving the stored order intact.
func (r *MemoryRepository) GetRandomPodcasts(ctx context.Context) ([]*models.Podcast, error) {
	r.mu.RLock()
	podcasts := slices.Clone(r.podcasts)
	r.mu.RUnlock()

	rand.Shuffle(len(podcasts), func(i, j int) { podcasts[i], podcasts[j] = podcasts[j], podcasts[i] })
	if len(podcasts) > RandomPodcastLimit {
		podcasts = podcasts[:RandomPodcastLimit]
	}
	return podcasts, nil
}

func (r *MemoryRepository) filterPodcasts(text string, field func(*models.Podcast) string) []*models.Podcast {
	needle := strings.ToLower(strings.TrimSpace(text))

	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*models.Podcast
	for _, p := range r.podcasts {
		if strings.Contains(strings.ToLower(field(p)), needle) {
			matches = append(matches, p)
		}
	}
	return matches
}

func (r *MemoryRepository) SearchPodcastsByTitle(ctx context.Context, text string) ([]*models.Podcast, error) {
	return r.filterPodcasts(text, (*models.Podcast).Title), nil
}

func (r *MemoryRepository) SearchPodcastsByAuthor(ctx context.Context, text string) ([]*models.Podcast, error) {
	return r.filterPodcasts(text, (*models.Podcast).AuthorName), nil
}

func (r *MemoryRepository) SearchPodcastsByLanguage(ctx context.Context, text string) ([]*models.Podcast, error) {
	return r.filterPodcasts(text, (*models.Podcast).Language), nil
}

// SearchPodcastsByCategory keys matches by podcast title: a title keeps its first position
// and the last podcast seen with it.
func (r *MemoryRepository) SearchPodcastsByCategory(ctx context.Context, text string) ([]*models.Podcast, error) {
	needle := strings.ToLower(strings.TrimSpace(text))

	r.mu.RLock()
	defer r.mu.RUnlock()
	var order []string
	byTitle := make(map[string]*models.Podcast)
	for _, p := range r.podcasts {
		for _, c := range p.Categories() {
			if !strings.Contains(strings.ToLower(c.Name()), needle) {
				continue
			}
			if _, seen := byTitle[p.Title()]; !seen {
				order = append(order, p.Title())
			}
			byTitle[p.Title()] = p
		}
	}

	matches := make([]*models.Podcast, len(order))
	for i, title := range order {
		matches[i] = byTitle[title]
	}
	return matches, nil
}

// indexEpisode upserts e into the sorted episode store and attaches it to a known podcast.
func (r *MemoryRepository) indexEpisode(e *models.Episode) {
	if old, ok := r.episodeIndex[e.ID()]; ok {
		r.episodes = removeByID(r.episodes, e.ID())
		if p, ok := r.podcastIndex[old.PodcastID()]; ok && old != e {
			next := p.Clone()
			next.RemoveEpisode(old)
			r.replacePodcast(next)
		}
	}
	r.episodes = insertSorted(r.episodes, e, (*models.Episode).Compare)
	r.episodeIndex[e.ID()] = e

	if p, ok := r.podcastIndex[e.PodcastID()]; ok && !models.ContainsID(p.Episodes(), e.ID()) {
		next := p.Clone()
		next.AddEpisode(e)
		r.replacePodcast(next)
	}
}

func (r *MemoryRepository) AddEpisode(ctx context.Context, episode *models.Episode) error {
	if episode == nil {
		return fmt.Errorf("%w: nil episode", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexEpisode(episode)
	return nil
}

func (r *MemoryRepository) AddMultipleEpisodes(ctx context.Context, episodes []*models.Episode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range episodes {
		if e == nil {
			return fmt.Errorf("%w: nil episode", models.ErrInvalid)
		}
		r.indexEpisode(e)
	}
	return nil
}

func (r *MemoryRepository) GetEpisode(ctx context.Context, id int) (*models.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.episodeIndex[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("episode %d: %w", id, ErrNotFound)
}

func (r *MemoryRepository) GetEpisodes(ctx context.Context) ([]*models.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.episodes), nil
}

func (r *MemoryRepository) GetEpisodesForPodcast(ctx context.Context, podcastID int) ([]*models.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.podcastIndex[podcastID]; !ok {
		return []*models.Episode{}, nil
	}
	episodes := []*models.Episode{}
	for _, e := range r.episodes {
		if e.PodcastID() == podcastID {
			episodes = append(episodes, e)
		}
	}
	return episodes, nil
}

func (r *MemoryRepository) GetNumberOfEpisodes(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.episodes), nil
}

func (r *MemoryRepository) GetNumberOfEpisodesForPodcast(ctx context.Context, podcastID int) (int, error) {
	episodes, err := r.GetEpisodesForPodcast(ctx, podcastID)
	return len(episodes), err
}

// AddUser upserts by id and rejects a username held by a different user.
func (r *MemoryRepository) AddUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("%w: nil user", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.usersByName[user.Username()]; ok && existing.ID() != user.ID() {
		return fmt.Errorf("username %q: %w", user.Username(), ErrConflict)
	}
	if i := models.IndexOf(r.users, user.ID()); i >= 0 {
		delete(r.usersByName, r.users[i].Username())
		r.users[i] = user
	} else {
		r.users = append(r.users, user)
	}
	r.usersByName[user.Username()] = user
	return nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.usersByName[strings.TrimSpace(username)]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := models.IndexOf(r.users, id); i >= 0 {
		return r.users[i], nil
	}
	return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
}

func (r *MemoryRepository) GetNumberOfUsers(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

// AddReview records the review globally. The podcast-side link is only made when the podcast is stored.
// A review with [models.UnassignedID] is numbered after the highest stored id.
func (r *MemoryRepository) AddReview(ctx context.Context, review *models.Review) error {
	if review == nil {
		return fmt.Errorf("%w: nil review", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID() == models.UnassignedID {
		next := 1
		for _, rv := range r.reviews {
			next = max(next, rv.ID()+1)
		}
		if err := review.AssignID(next); err != nil {
			return err
		}
	}

	if i := models.IndexOf(r.reviews, review.ID()); i >= 0 {
		r.reviews[i] = review
	} else {
		r.reviews = append(r.reviews, review)
	}

	if p, ok := r.podcastIndex[review.PodcastID()]; ok && !models.ContainsID(p.Reviews(), review.ID()) {
		next := p.Clone()
		next.AddReview(review)
		r.replacePodcast(next)
	}
	return nil
}

func (r *MemoryRepository) GetReviews(ctx context.Context) ([]*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.reviews), nil
}

func (r *MemoryRepository) GetReviewsForPodcast(ctx context.Context, podcastID int) ([]*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reviews := []*models.Review{}
	for _, rv := range r.reviews {
		if rv.PodcastID() == podcastID {
			reviews = append(reviews, rv)
		}
	}
	return reviews, nil
}

func (r *MemoryRepository) AddPlaylist(ctx context.Context, playlist *models.Playlist) error {
	return r.UpdateUsersPlaylist(ctx, playlist)
}

func (r *MemoryRepository) GetPlaylistByUser(ctx context.Context, userID int) (*models.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.playlistsByUser[userID]; ok {
		return p.Clone(), nil
	}
	return nil, fmt.Errorf("playlist for user %d: %w", userID, ErrNotFound)
}

func (r *MemoryRepository) UpdateUsersPlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist == nil {
		return fmt.Errorf("%w: nil playlist", models.ErrInvalid)
	}
	stored := playlist.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playlists = removeByID(r.playlists, stored.ID())
	r.playlists = insertSorted(r.playlists, stored, (*models.Playlist).Compare)
	r.playlistsByUser[stored.Owner().ID()] = stored
	return nil
}

func (r *MemoryRepository) replaceUser(i int, u *models.User) {
	r.users[i] = u
	r.usersByName[u.Username()] = u
}

func samePair(a, b *models.PodcastSubscription) bool {
	return a.OwnerID() == b.OwnerID() && a.PodcastID() == b.PodcastID()
}

// AddSubscription stores s once per user and podcast, and attaches it to a stored user.
func (r *MemoryRepository) AddSubscription(ctx context.Context, s *models.PodcastSubscription) error {
	if s == nil {
		return fmt.Errorf("%w: nil subscription", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.ContainsFunc(r.subscriptions, func(o *models.PodcastSubscription) bool { return samePair(o, s) }) {
		return nil
	}
	r.subscriptions = append(r.subscriptions, s)
	if i := models.IndexOf(r.users, s.OwnerID()); i >= 0 {
		u := r.users[i].Clone()
		u.AddSubscription(s)
		r.replaceUser(i, u)
	}
	return nil
}

func (r *MemoryRepository) RemoveSubscription(ctx context.Context, s *models.PodcastSubscription) error {
	if s == nil {
		return fmt.Errorf("%w: nil subscription", models.ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*models.PodcastSubscription
	r.subscriptions = slices.DeleteFunc(r.subscriptions, func(o *models.PodcastSubscription) bool {
		if samePair(o, s) {
			removed = append(removed, o)
			return true
		}
		return false
	})
	if i := models.IndexOf(r.users, s.OwnerID()); i >= 0 && len(removed) > 0 {
		u := r.users[i].Clone()
		for _, o := range removed {
			u.RemoveSubscription(o)
		}
		r.replaceUser(i, u)
	}
	return nil
}

func (r *MemoryRepository) GetSubscriptionsForUser(ctx context.Context, userID int) ([]*models.PodcastSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := []*models.PodcastSubscription{}
	for _, s := range r.subscriptions {
		if s.OwnerID() == userID {
			subs = append(subs, s)
		}
	}
	return subs, nil
}
