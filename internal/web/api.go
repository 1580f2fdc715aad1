package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/server"
	"github.com/desertthunder/podshelf/internal/services"
)

// apiHandler serves the read-only JSON API. It owns its routes and wraps them in CORS.
type apiHandler struct {
	repo    repositories.Repository
	logger  *log.Logger
	handler http.Handler
}

func newAPIHandler(repo repositories.Repository, logger *log.Logger) *apiHandler {
	h := &apiHandler{repo: repo, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/podcasts", h.podcasts)
	mux.HandleFunc("GET /api/podcasts/{podcast_id}", h.podcast)
	mux.HandleFunc("GET /api/search", h.search)
	h.handler = server.CORS()(mux)
	return h
}

func (h *apiHandler) Routes() []string {
	return []string{
		"GET /api/podcasts",
		"GET /api/podcasts/{podcast_id}",
		"GET /api/search",
		"OPTIONS /api/",
	}
}

func (h *apiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

type podcastPage struct {
	Page       int                    `json:"page"`
	TotalPages int                    `json:"total_pages"`
	Podcasts   []services.PodcastView `json:"podcasts"`
}

type podcastDetail struct {
	Podcast  services.PodcastView   `json:"podcast"`
	Episodes []services.EpisodeView `json:"episodes"`
	Rating   services.Rating        `json:"rating"`
}

type searchResponse struct {
	Query   string                 `json:"query"`
	Filter  services.Filter        `json:"filter"`
	Results []services.PodcastView `json:"results"`
}

type apiError struct {
	Error string `json:"error"`
}

func (h *apiHandler) podcasts(w http.ResponseWriter, r *http.Request) {
	podcasts, err := services.GetPodcastsByAlphabet(r.Context(), h.repo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page := pageParam(r)
	onPage, total := services.Paginate(podcasts, page, services.CataloguePageSize)
	h.writeJSON(w, http.StatusOK, podcastPage{Page: page, TotalPages: total, Podcasts: onPage})
}

func (h *apiHandler) podcast(w http.ResponseWriter, r *http.Request) {
	podcastID, err := strconv.Atoi(r.PathValue("podcast_id"))
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, apiError{Error: services.ErrNonExistentPodcast.Error()})
		return
	}

	ctx := r.Context()
	podcast, err := services.GetPodcastByID(ctx, h.repo, podcastID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	episodes, err := services.GetEpisodes(ctx, h.repo, podcastID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rating, err := services.GetAverageRating(ctx, h.repo, podcastID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, podcastDetail{
		Podcast:  podcast,
		Episodes: services.NewEpisodeViews(episodes),
		Rating:   rating,
	})
}

func (h *apiHandler) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filter := services.FilterTitle
	if raw := r.URL.Query().Get("filter"); raw != "" {
		parsed, ok := services.ParseFilter(raw)
		if !ok {
			h.writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown filter " + strconv.Quote(raw)})
			return
		}
		filter = parsed
	}

	results := []services.PodcastView{}
	if query != "" {
		var err error
		if results, err = services.SearchResults(r.Context(), h.repo, query, filter); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, searchResponse{Query: query, Filter: filter, Results: results})
}

func (h *apiHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNonExistentPodcast) || errors.Is(err, repositories.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, apiError{Error: services.ErrNonExistentPodcast.Error()})
		return
	}
	h.logger.Error("api request failed", "path", r.URL.Path, "request_id", server.RequestID(r.Context()), "error", err)
	h.writeJSON(w, http.StatusInternalServerError, apiError{Error: http.StatusText(http.StatusInternalServerError)})
}

func (h *apiHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	output, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal JSON", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(output, '\n'))
}
