package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	goaway "github.com/TwiN/go-away"

	"github.com/desertthunder/podshelf/internal/services"
)

// MinCommentLength is the shortest review comment accepted.
const MinCommentLength = 4

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	podcasts, err := services.GetRandomPodcasts(r.Context(), s.repo)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "home.html", "Home", podcasts)
}

type listingContent struct {
	Podcasts []services.PodcastView
	Pager    pager
}

func (s *Server) catalogue(w http.ResponseWriter, r *http.Request) {
	podcasts, err := services.GetPodcastsByAlphabet(r.Context(), s.repo)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page := pageParam(r)
	onPage, total := services.Paginate(podcasts, page, services.CataloguePageSize)
	s.render(w, r, http.StatusOK, "catalogue.html", "Podcasts", listingContent{
		Podcasts: onPage,
		Pager:    newPager(r, page, total),
	})
}

type searchContent struct {
	listingContent
	Query   string
	Filter  services.Filter
	Filters []services.Filter
	Ran     bool
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filter := services.FilterTitle
	if raw := r.URL.Query().Get("filter"); raw != "" {
		filter = services.Filter(raw)
		if parsed, ok := services.ParseFilter(raw); ok {
			filter = parsed
		}
	}

	content := searchContent{Query: query, Filter: filter, Filters: services.Filters}
	if query != "" {
		results, err := services.SearchResults(r.Context(), s.repo, query, filter)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		page := pageParam(r)
		onPage, total := services.Paginate(results, page, services.SearchPageSize)
		content.Podcasts = onPage
		content.Pager = newPager(r, page, total)
		content.Ran = true
	}
	s.render(w, r, http.StatusOK, "search.html", "Search", content)
}

type descriptionContent struct {
	Podcast    services.PodcastView
	Episodes   []services.EpisodeView
	Reviews    []services.ReviewView
	Rating     services.Rating
	Pager      pager
	LoggedIn   bool
	InPlaylist map[int]bool
	Subscribed bool
}

func (s *Server) description(w http.ResponseWriter, r *http.Request) {
	podcastID, ok := s.pathID(w, r, "podcast_id")
	if !ok {
		return
	}
	ctx := r.Context()

	podcast, err := services.GetPodcastByID(ctx, s.repo, podcastID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	episodes, err := services.GetEpisodes(ctx, s.repo, podcastID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reviews, err := services.GetReviewsForPodcast(ctx, s.repo, podcastID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rating, err := services.GetAverageRating(ctx, s.repo, podcastID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page := pageParam(r)
	onPage, total := services.Paginate(episodes, page, services.DescriptionPageSize)
	content := descriptionContent{
		Podcast:    podcast,
		Episodes:   services.NewEpisodeViews(onPage),
		Reviews:    reviews,
		Rating:     rating,
		Pager:      newPager(r, page, total),
		InPlaylist: map[int]bool{},
	}

	if username, ok := s.currentUser(r); ok {
		playlist, err := services.GetUserPlaylist(ctx, s.repo, username)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		for _, e := range playlist.Episodes() {
			content.InPlaylist[e.ID()] = true
		}
		if content.Subscribed, err = services.IsSubscribed(ctx, s.repo, username, podcastID); err != nil {
			s.fail(w, r, err)
			return
		}
		content.LoggedIn = true
	}

	s.render(w, r, http.StatusOK, "description.html", podcast.Title, content)
}

type reviewContent struct {
	Podcast services.PodcastView
	Comment string
	Rating  int
	Ratings []int
	Error   string
}

func newReviewContent(podcast services.PodcastView) reviewContent {
	ratings := make([]int, 0, services.MaxStars+1)
	for i := range services.MaxStars + 1 {
		ratings = append(ratings, i)
	}
	return reviewContent{Podcast: podcast, Rating: services.MaxStars, Ratings: ratings}
}

func (s *Server) reviewForm(w http.ResponseWriter, r *http.Request, _ string) {
	podcastID, ok := s.pathID(w, r, "podcast_id")
	if !ok {
		return
	}
	podcast, err := services.GetPodcastByID(r.Context(), s.repo, podcastID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "review.html", "Review "+podcast.Title, newReviewContent(podcast))
}

func (s *Server) addReview(w http.ResponseWriter, r *http.Request, username string) {
	podcastID, ok := s.pathID(w, r, "podcast_id")
	if !ok {
		return
	}
	podcast, err := services.GetPodcastByID(r.Context(), s.repo, podcastID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	content := newReviewContent(podcast)
	content.Comment = strings.TrimSpace(r.FormValue("comment"))
	rating, ratingErr := parseRating(r.FormValue("rating"))
	content.Rating = rating

	switch {
	case utf8.RuneCountInString(content.Comment) < MinCommentLength:
		content.Error = "Your comment is too short"
	case goaway.IsProfane(content.Comment):
		content.Error = "Your comment must not contain profanity"
	case ratingErr != "":
		content.Error = ratingErr
	}
	if content.Error != "" {
		s.render(w, r, http.StatusOK, "review.html", "Review "+podcast.Title, content)
		return
	}

	if _, err := services.AddReview(r.Context(), s.repo, username, podcastID, content.Comment, rating); err != nil {
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, "Review posted")
	http.Redirect(w, r, descriptionPath(podcastID, 1), http.StatusFound)
}

// parseRating accepts 0 to [services.MaxStars]; the message is empty when the value is valid.
func parseRating(raw string) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "A rating is required"
	}
	rating, err := strconv.Atoi(raw)
	if err != nil || rating < 0 || rating > services.MaxStars {
		return 0, fmt.Sprintf("Choose a rating between 0 and %d", services.MaxStars)
	}
	return rating, ""
}
