package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gorilla/sessions"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/server"
	"github.com/desertthunder/podshelf/internal/services"
	"github.com/desertthunder/podshelf/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home.html",
	"catalogue.html",
	"search.html",
	"description.html",
	"review.html",
	"playlist.html",
	"subscriptions.html",
	"credentials.html",
	"error.html",
}

const LoginPath = "/authentication/login"

// Options configures a [Server].
type Options struct {
	SessionSecret string
	// LoginRate and LoginBurst bound login attempts per client address.
	LoginRate  float64
	LoginBurst int
	Logger     *log.Logger
}

// Server serves the podshelf web app and its JSON API over a single repository.
type Server struct {
	repo   repositories.Repository
	store  *sessions.CookieStore
	pages  map[string]*template.Template
	logger *log.Logger
	router *server.BasicRouter
}

// NewServer parses the templates and registers every route.
func NewServer(repo repositories.Repository, opts Options) (*Server, error) {
	if opts.SessionSecret == "" {
		return nil, fmt.Errorf("%w: session secret is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore([]byte(opts.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		repo:   repo,
		store:  store,
		pages:  pages,
		logger: opts.Logger,
		router: server.NewBasicRouter(),
	}
	s.routes(server.NewRateLimiter(opts.LoginRate, opts.LoginBurst, 10*time.Minute))
	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func (s *Server) routes(loginLimiter *server.RateLimiter) {
	r := s.router
	r.Use(server.Recover(s.logger), server.RequestLogger(s.logger))

	r.HandleFunc(http.MethodGet, "/{$}", s.home)
	r.HandleFunc(http.MethodGet, "/podcasts", s.catalogue)
	r.HandleFunc(http.MethodGet, "/search", s.search)
	r.HandleFunc(http.MethodGet, "/description/{podcast_id}", s.description)

	r.Handle(http.MethodPost, "/add_to_playlist/{episode_id}", s.requireLogin(s.addToPlaylist))
	r.Handle(http.MethodPost, "/remove_from_playlist/{episode_id}", s.requireLogin(s.removeFromPlaylist))
	r.Handle(http.MethodPost, "/add_podcast_to_playlist/{podcast_id}", s.requireLogin(s.addPodcastToPlaylist))
	r.Handle(http.MethodPost, "/remove_podcast_from_playlist/{podcast_id}", s.requireLogin(s.removePodcastFromPlaylist))

	r.Handle(http.MethodGet, "/add_review/{podcast_id}", s.requireLogin(s.reviewForm))
	r.Handle(http.MethodPost, "/add_review/{podcast_id}", s.requireLogin(s.addReview))

	r.Handle(http.MethodGet, "/playlist", s.requireLogin(s.playlist))
	r.Handle(http.MethodPost, "/remove_episode/{episode_id}", s.requireLogin(s.removeEpisode))
	r.Handle(http.MethodGet, "/playlist/export", s.requireLogin(s.exportPlaylist))

	r.Handle(http.MethodPost, "/subscribe/{podcast_id}", s.requireLogin(s.subscribe))
	r.Handle(http.MethodPost, "/unsubscribe/{podcast_id}", s.requireLogin(s.unsubscribe))
	r.Handle(http.MethodGet, "/subscriptions", s.requireLogin(s.subscriptions))

	r.HandleFunc(http.MethodGet, "/authentication/register", s.registerForm)
	r.HandleFunc(http.MethodPost, "/authentication/register", s.register)
	r.HandleFunc(http.MethodGet, LoginPath, s.loginForm)
	r.Handle(http.MethodPost, LoginPath, server.RateLimit(loginLimiter)(http.HandlerFunc(s.login)))
	r.HandleFunc(http.MethodGet, "/authentication/logout", s.logout)

	r.Handler(newAPIHandler(s.repo, s.logger))
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// pageData is what every template receives; Content holds the page's own values.
type pageData struct {
	Title    string
	Username string
	Flashes  []string
	Content  any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, content any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Error("unknown template", "name", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	username, _ := s.currentUser(r)
	data := pageData{
		Title:    title,
		Username: username,
		Flashes:  s.popFlashes(w, r),
		Content:  content,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render template", "name", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errorContent struct {
	Status  int
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error.html", http.StatusText(status), errorContent{Status: status, Message: message})
}

// fail maps a service error onto a response: absence is a 404, a stale login goes back to the
// login page and anything else is logged and becomes a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownUser):
		s.clearSession(w, r)
		http.Redirect(w, r, LoginPath, http.StatusFound)
	case errors.Is(err, services.ErrNonExistentPodcast):
		s.renderError(w, r, http.StatusNotFound, formMessage(services.ErrNonExistentPodcast))
	case errors.Is(err, services.ErrNonExistentEpisode):
		s.renderError(w, r, http.StatusNotFound, formMessage(services.ErrNonExistentEpisode))
	case errors.Is(err, repositories.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, "Nothing here.")
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", server.RequestID(r.Context()),
			"error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong, please try again.")
	}
}

// pathID reads an integer path wildcard. A malformed id is answered with a 404.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id < 0 {
		s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("No such %s.", strings.TrimSuffix(name, "_id")))
		return 0, false
	}
	return id, true
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// formMessage turns an error into a sentence fit for a form or error page.
func formMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, models.ErrInvalid) {
		msg = strings.TrimPrefix(msg, models.ErrInvalid.Error()+": ")
	}
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// pager links the pages of a listing, keeping the request's other query parameters.
type pager struct {
	Page  int
	Total int
	path  string
	query url.Values
}

func newPager(r *http.Request, page, total int) pager {
	return pager{Page: page, Total: total, path: r.URL.Path, query: r.URL.Query()}
}

func (p pager) HasPrev() bool { return p.Page > 1 }
func (p pager) HasNext() bool { return p.Page < p.Total }
func (p pager) Prev() int     { return p.Page - 1 }
func (p pager) Next() int     { return p.Page + 1 }

func (p pager) URL(page int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return p.path + "?" + q.Encode()
}
